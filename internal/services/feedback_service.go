// Package services – FeedbackService
//
// FeedbackService stores ratings left on BroBot answers. Feedback is
// append-only and anonymous submissions are accepted. Retries are made safe
// by the Idempotency-Key flow: the handler looks up a prior record before
// calling Submit, and Submit records the key in the same transaction as the
// insert.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/repo"
)

// ScopeFeedback is the idempotency scope of feedback submissions.
const ScopeFeedback = "brobot.feedback"

// MaxFeedbackRunes bounds the free-text feedback field.
const MaxFeedbackRunes = 2000

// FeedbackInput is one feedback submission.
type FeedbackInput struct {
	UserID       string // empty for anonymous visitors
	Prompt       string
	Data         json.RawMessage
	WasHelpful   bool
	UserFeedback string

	// IdempotencyKey, when set with a non-empty UserID, is recorded with
	// IdempotencyTTL so a retry of the same submission is a no-op.
	IdempotencyKey string
	IdempotencyTTL time.Duration
}

// FeedbackService persists case-prep feedback.
type FeedbackService struct {
	DB *gorm.DB
}

// Submit validates and stores one feedback row. When an idempotency key is
// supplied and was already recorded (e.g. by a concurrent retry), the insert
// is rolled back and the original record's resource ID is returned with
// replayed=true.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (id string, replayed bool, err error) {
	tr := otel.Tracer("services/FeedbackService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.Bool("feedback.helpful", in.WasHelpful),
		),
	)
	defer span.End()

	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return "", false, ErrEmptyPrompt
	}
	in.UserFeedback = strings.TrimSpace(in.UserFeedback)
	if utf8.RuneCountInString(in.UserFeedback) > MaxFeedbackRunes {
		return "", false, ErrFeedbackTooLong
	}
	if len(in.Data) > 0 && !json.Valid(in.Data) {
		in.Data = nil
	}

	var userID *string
	if in.UserID != "" {
		uid := in.UserID
		userID = &uid
	}
	useKey := in.UserID != "" && in.IdempotencyKey != "" && in.IdempotencyTTL > 0

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fb, err := repo.CreateFeedback(ctx, tx, repo.FeedbackInput{
			UserID:       userID,
			Prompt:       in.Prompt,
			Data:         in.Data,
			WasHelpful:   in.WasHelpful,
			UserFeedback: in.UserFeedback,
		})
		if err != nil {
			return err
		}
		id = fb.ID
		if !useKey {
			return nil
		}
		_, err = repo.CreateIdempotency(ctx, tx, in.UserID, ScopeFeedback, in.IdempotencyKey, fb.ID, http.StatusAccepted, in.IdempotencyTTL)
		return err
	})
	if err == nil {
		return id, false, nil
	}
	if useKey && errors.Is(err, repo.ErrDuplicate) {
		prev, gerr := repo.GetIdempotency(ctx, s.DB, in.UserID, ScopeFeedback, in.IdempotencyKey, time.Now().UTC())
		if gerr == nil {
			return prev.ResourceID, true, nil
		}
	}
	span.RecordError(err)
	return "", false, err
}

// Get returns a stored feedback row by ID.
func (s *FeedbackService) Get(ctx context.Context, id string) (*domain.CasePrepFeedback, error) {
	var fb domain.CasePrepFeedback
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&fb).Error; err != nil {
		return nil, err
	}
	return &fb, nil
}
