// Package generation talks to the external case-prep generation API. It turns
// a free-text clinical prompt into a structured AnswerPayload of "pimp"
// questions and useful facts.
//
// Two backends are provided: HTTPGenerator for a JSON-over-HTTP endpoint and
// GeminiGenerator for the Google GenAI SDK. Both are safe for concurrent use.
package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// Generator produces an answer payload for a prompt. Implementations must
// honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.AnswerPayload, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (domain.AnswerPayload, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (domain.AnswerPayload, error) {
	return f(ctx, prompt)
}

var (
	// ErrEmptyPayload is returned when the API answered but produced neither
	// questions nor facts.
	ErrEmptyPayload = errors.New("generation returned an empty payload")

	// ErrUpstreamStatus is wrapped with the HTTP status for non-2xx replies.
	ErrUpstreamStatus = errors.New("generation api returned an error status")
)

// ErrorPayload is the placeholder shown to the member when generation fails.
// It is never persisted.
func ErrorPayload() domain.AnswerPayload {
	return domain.AnswerPayload{
		PimpQuestions:    []string{"BroBot couldn't prep this case right now. Please try again in a moment."},
		OtherUsefulFacts: []string{},
	}
}

// normalize drops blank entries and guarantees non-nil slices so the JSON
// shape is stable for the client.
func normalize(p domain.AnswerPayload) (domain.AnswerPayload, error) {
	p.PimpQuestions = compact(p.PimpQuestions)
	p.OtherUsefulFacts = compact(p.OtherUsefulFacts)
	if p.Empty() {
		return domain.AnswerPayload{}, ErrEmptyPayload
	}
	return p, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
