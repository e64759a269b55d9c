package analytics

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders d as "$1,234.56".
func FormatUSD(d decimal.Decimal) string {
	return formatMoney("$", d)
}

// FormatZAR renders d as "R 1,234.56".
func FormatZAR(d decimal.Decimal) string {
	return formatMoney("R ", d)
}

func formatMoney(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	amount := d.Round(2).InexactFloat64()
	return sign + symbol + printer.Sprint(number.Decimal(amount, number.Scale(2)))
}
