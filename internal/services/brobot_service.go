// Package services – BroBotService
//
// BroBotService is the response cache gate in front of the case-prep
// generation API. A question is answered from the per-user cache when an
// identical (owner, question) pair was answered before; otherwise the
// generator is called once and the result is persisted for next time.
//
// No lock is held across generation. Two concurrent misses for the same pair
// both generate; the unique index on brobot_responses rejects the second
// insert and that rejection is treated as success.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/generation"
	"github.com/snaportho/snaportho-web/internal/observability"
	"github.com/snaportho/snaportho-web/internal/repo"
)

// Answer sources.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
	SourceError     = "error"
)

// Answer is what Ask returns to the caller.
type Answer struct {
	Question  string               `json:"question"`
	Source    string               `json:"source"`
	Payload   domain.AnswerPayload `json:"data"`
	LatencyMS int64                `json:"latency_ms"`
	CachedAt  *time.Time           `json:"cached_at,omitempty"`
}

// HistoryPage is one page of an owner's cached answers.
type HistoryPage struct {
	Items []domain.CachedResponse
	Total int64
	ETag  string
}

// BroBotService answers case-prep questions through the cache.
type BroBotService struct {
	DB        *gorm.DB
	Generator generation.Generator

	// MaxPromptRunes caps question length; zero disables the check.
	MaxPromptRunes int

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *BroBotService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// Ask runs the cache gate for ownerID and question.
//
// Errors are returned only for input problems and for a failed lookup.
// Generation failures produce an Answer with Source "error" and the
// placeholder payload; cache write failures are logged and do not affect the
// answer.
func (s *BroBotService) Ask(ctx context.Context, ownerID, question string) (*Answer, error) {
	tr := otel.Tracer("services/BroBotService")
	ctx, span := tr.Start(ctx, "Ask",
		trace.WithAttributes(attribute.String("user.id", ownerID)),
	)
	defer span.End()

	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthenticated
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(question) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}
	lg := loggerFor(ctx).With().Str("user_id", ownerID).Logger()

	cached, err := repo.FindResponse(ctx, s.DB, ownerID, question)
	switch {
	case err == nil:
		observability.ObserveLookup(observability.LookupHit)
		span.SetAttributes(attribute.String("brobot.source", SourceCache))
		created := cached.CreatedAt
		return &Answer{
			Question:  question,
			Source:    SourceCache,
			Payload:   cached.AnswerPayload,
			LatencyMS: cached.LatencyMS,
			CachedAt:  &created,
		}, nil
	case !errors.Is(err, repo.ErrNotFound):
		observability.ObserveLookup(observability.LookupError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		lg.Error().Err(err).Msg("brobot cache lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	observability.ObserveLookup(observability.LookupMiss)

	start := s.now()
	payload, err := s.Generator.Generate(ctx, question)
	elapsed := s.now().Sub(start)
	observability.ObserveGeneration(elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("brobot.source", SourceError))
		lg.Error().Err(err).Dur("latency", elapsed).Msg("brobot generation failed")
		return &Answer{
			Question:  question,
			Source:    SourceError,
			Payload:   generation.ErrorPayload(),
			LatencyMS: elapsed.Milliseconds(),
		}, nil
	}

	if _, err := repo.InsertResponse(ctx, s.DB, ownerID, question, payload, elapsed); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			observability.ObserveCacheWrite(observability.WriteDuplicate)
			lg.Debug().Msg("brobot answer already cached by a concurrent request")
		} else {
			observability.ObserveCacheWrite(observability.WriteError)
			lg.Error().Err(err).Msg("brobot cache insert failed")
		}
	} else {
		observability.ObserveCacheWrite(observability.WriteOK)
	}

	span.SetAttributes(attribute.String("brobot.source", SourceGenerated))
	return &Answer{
		Question:  question,
		Source:    SourceGenerated,
		Payload:   payload,
		LatencyMS: elapsed.Milliseconds(),
	}, nil
}

// History lists the owner's cached answers newest first. page is 1-based.
// The ETag changes whenever a row is added for the owner.
func (s *BroBotService) History(ctx context.Context, ownerID string, page, pageSize int) (*HistoryPage, error) {
	tr := otel.Tracer("services/BroBotService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("user.id", ownerID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, maxCreated, err := repo.ResponsesStats(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	out := &HistoryPage{
		Items: []domain.CachedResponse{},
		Total: total,
		ETag:  historyETag(ownerID, total, maxCreated),
	}
	if total == 0 {
		return out, nil
	}
	items, err := repo.ListResponsesPage(ctx, s.DB, ownerID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	out.Items = items
	return out, nil
}

func historyETag(ownerID string, count int64, maxCreated *time.Time) string {
	var ts int64
	if maxCreated != nil {
		ts = maxCreated.UTC().UnixNano()
	}
	return fmt.Sprintf(`W/"brobot:%s:%d:%d"`, ownerID, count, ts)
}
