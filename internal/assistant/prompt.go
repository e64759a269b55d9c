package assistant

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/kord-engine/kord/internal/inventory"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`Analyze the following inventory and marketplace data for the KORD Asset Engine.
Identify stock in/out flow patterns, prioritize reorders for marketplace-linked items,
and highlight potential revenue risks on Takealot.

Inventory Data:
{{.Items}}

Format the response as a high-level strategic report for an executive dashboard.`))

var chatTemplate = template.Must(template.New("chat").Parse(
	`You are KORD AI, the central nervous system for an enterprise warehouse.
You manage assets and marketplace integrations (Takealot, etc.).
Inventory: {{.Items}}
Query: "{{.Query}}"
Answer like a high-tech facility manager. Focus on stock flow and marketplace performance.`))

func summaryPrompt(items []inventory.Item) (string, error) {
	raw, err := json.MarshalIndent(nonNil(items), "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := summaryTemplate.Execute(&sb, map[string]string{"Items": string(raw)}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func chatPrompt(query string, items []inventory.Item) (string, error) {
	raw, err := json.Marshal(nonNil(items))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := chatTemplate.Execute(&sb, map[string]string{"Items": string(raw), "Query": query}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func nonNil(items []inventory.Item) []inventory.Item {
	if items == nil {
		return []inventory.Item{}
	}
	return items
}
