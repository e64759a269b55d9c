package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/gate"
)

// Fallback texts returned in place of a model answer.
const (
	SummaryEmpty  = "Analysis engine offline."
	SummaryFailed = "Audit failed. Check uplink."
	ChatEmpty     = "Command unrecognized."
	ChatFailed    = "Terminal signal lost."
)

// ErrBusy rejects a request while the same kind of request is outstanding.
var ErrBusy = fmt.Errorf("assistant: request in progress: %w", gate.ErrBusy)

// Recorder receives per-call outcomes ("ok", "empty", "error", "rejected").
type Recorder interface {
	Assistant(kind, outcome string, elapsed time.Duration)
}

// Reply is the text shown to the user.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Service runs at most one summary and one chat request at a time, each
// bounded by a timeout. Model failures degrade to fallback text.
type Service struct {
	gen      Generator
	logger   *slog.Logger
	recorder Recorder
	timeout  time.Duration
	summary  *gate.Gate
	chat     *gate.Gate
}

// NewService wires the generator. recorder may be nil. A nil gen behaves
// like a client without an API key, so every reply is a fallback.
func NewService(gen Generator, logger *slog.Logger, recorder Recorder, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = unconfigured{}
	}
	return &Service{
		gen:      gen,
		logger:   logger,
		recorder: recorder,
		timeout:  timeout,
		summary:  gate.New("assistant_summary"),
		chat:     gate.New("assistant_chat"),
	}
}

// Summarize asks for a strategic report over items.
func (s *Service) Summarize(ctx context.Context, items []inventory.Item) (Reply, error) {
	prompt, err := summaryPrompt(items)
	if err != nil {
		return Reply{}, err
	}
	return s.run(ctx, s.summary, "summary", prompt, SummaryEmpty, SummaryFailed)
}

// Answer replies to a free-text query about items.
func (s *Service) Answer(ctx context.Context, query string, items []inventory.Item) (Reply, error) {
	prompt, err := chatPrompt(query, items)
	if err != nil {
		return Reply{}, err
	}
	return s.run(ctx, s.chat, "chat", prompt, ChatEmpty, ChatFailed)
}

// Busy reports whether a summary or chat request is outstanding.
func (s *Service) Busy() (summary, chat bool) {
	return s.summary.InProgress(), s.chat.InProgress()
}

func (s *Service) run(ctx context.Context, g *gate.Gate, kind, prompt, empty, failed string) (Reply, error) {
	start := time.Now()
	var reply Reply
	err := g.Run(ctx, s.timeout, func(ctx context.Context) error {
		text, err := s.gen.Generate(ctx, prompt)
		switch {
		case err != nil:
			s.logger.Warn("assistant call failed", slog.String("kind", kind), slog.Any("error", err))
			reply = Reply{Text: failed, Fallback: true}
			s.observe(kind, "error", start)
		case strings.TrimSpace(text) == "":
			reply = Reply{Text: empty, Fallback: true}
			s.observe(kind, "empty", start)
		default:
			reply = Reply{Text: text}
			s.observe(kind, "ok", start)
		}
		return nil
	})
	if errors.Is(err, gate.ErrBusy) {
		s.observe(kind, "rejected", start)
		return Reply{}, ErrBusy
	}
	return reply, err
}

func (s *Service) observe(kind, outcome string, start time.Time) {
	if s.recorder != nil {
		s.recorder.Assistant(kind, outcome, time.Since(start))
	}
}

type unconfigured struct{}

func (unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
