// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for BroBot
// case-prep feedback.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// FeedbackInput carries one rating for a BroBot answer. UserID is nil for
// anonymous visitors.
type FeedbackInput struct {
	UserID       *string
	Prompt       string
	Data         json.RawMessage
	WasHelpful   bool
	UserFeedback string
}

// CreateFeedback inserts a feedback row and returns it.
//
// Feedback is append-only: the same visitor may rate the same answer more
// than once, so there is no uniqueness check here. Retried submissions are
// deduplicated by the idempotency layer instead.
func CreateFeedback(ctx context.Context, db *gorm.DB, in FeedbackInput) (*domain.CasePrepFeedback, error) {
	fb := &domain.CasePrepFeedback{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		Prompt:       in.Prompt,
		Data:         in.Data,
		WasHelpful:   in.WasHelpful,
		UserFeedback: in.UserFeedback,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}
