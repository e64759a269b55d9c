package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/gate"
)

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   chan struct{}
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	block := g.block
	g.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.text, g.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var sampleItems = []inventory.Item{
	{ID: "a", Name: "PlayStation 5", SKU: "PS5-1", Quantity: 2, Price: decimal.NewFromInt(499)},
}

func TestSummarizeReturnsModelText(t *testing.T) {
	gen := &stubGenerator{text: "Reorder PS5."}
	svc := NewService(gen, discard(), nil, time.Second)

	reply, err := svc.Summarize(context.Background(), sampleItems)
	require.NoError(t, err)
	require.Equal(t, Reply{Text: "Reorder PS5."}, reply)
	require.Contains(t, gen.prompts[0], "KORD Asset Engine")
	require.Contains(t, gen.prompts[0], `"sku": "PS5-1"`)
}

func TestFallbackTexts(t *testing.T) {
	cases := []struct {
		name string
		gen  *stubGenerator
		chat bool
		want string
	}{
		{"summary empty", &stubGenerator{text: "  "}, false, SummaryEmpty},
		{"summary error", &stubGenerator{err: errors.New("uplink")}, false, SummaryFailed},
		{"chat empty", &stubGenerator{}, true, ChatEmpty},
		{"chat error", &stubGenerator{err: errors.New("uplink")}, true, ChatFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.gen, discard(), nil, time.Second)
			var reply Reply
			var err error
			if tc.chat {
				reply, err = svc.Answer(context.Background(), "status?", sampleItems)
			} else {
				reply, err = svc.Summarize(context.Background(), sampleItems)
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, reply.Text)
			require.True(t, reply.Fallback)
		})
	}
}

func TestAnswerEmbedsQuery(t *testing.T) {
	gen := &stubGenerator{text: "All green."}
	svc := NewService(gen, discard(), nil, time.Second)

	_, err := svc.Answer(context.Background(), "which items are low?", nil)
	require.NoError(t, err)
	require.Contains(t, gen.prompts[0], `Query: "which items are low?"`)
	require.Contains(t, gen.prompts[0], "Inventory: []")
}

func TestUnconfiguredGeneratorFallsBack(t *testing.T) {
	for name, gen := range map[string]Generator{
		"nil":    nil,
		"no key": NewClient("", "", ""),
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(gen, discard(), nil, time.Second)

			reply, err := svc.Summarize(context.Background(), sampleItems)
			require.NoError(t, err)
			require.Equal(t, Reply{Text: SummaryFailed, Fallback: true}, reply)

			reply, err = svc.Answer(context.Background(), "status?", sampleItems)
			require.NoError(t, err)
			require.Equal(t, Reply{Text: ChatFailed, Fallback: true}, reply)
		})
	}
}

func TestTimeoutFallsBackAndReleasesGate(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{})}
	svc := NewService(gen, discard(), nil, 20*time.Millisecond)

	reply, err := svc.Summarize(context.Background(), sampleItems)
	require.NoError(t, err)
	require.Equal(t, SummaryFailed, reply.Text)
	summary, chat := svc.Busy()
	require.False(t, summary)
	require.False(t, chat)
}

func TestConcurrentRequestOfSameKindIsRejected(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{}), text: "done"}
	svc := NewService(gen, discard(), nil, time.Second)

	done := make(chan Reply, 1)
	go func() {
		reply, _ := svc.Summarize(context.Background(), sampleItems)
		done <- reply
	}()
	require.Eventually(t, func() bool {
		summary, _ := svc.Busy()
		return summary
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Summarize(context.Background(), sampleItems)
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, err, gate.ErrBusy)

	close(gen.block)
	require.Equal(t, "done", (<-done).Text)

	reply, err := svc.Answer(context.Background(), "ping", nil)
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(reply.Text, "Terminal"))
}
