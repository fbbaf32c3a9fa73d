// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// CachedResponse model that backs the BroBot response cache.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
//
// Error semantics:
//   - FindResponse returns ErrNotFound on a cache miss.
//   - InsertResponse returns ErrDuplicate when the (owner_id, question_text)
//     unique index rejects the row, e.g. when two identical asks raced.
//   - Any other DB error is propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// FindResponse looks up the cached answer for (ownerID, question), limited to
// a single row.
func FindResponse(ctx context.Context, db *gorm.DB, ownerID, question string) (*domain.CachedResponse, error) {
	var out domain.CachedResponse
	err := db.WithContext(ctx).
		Where("owner_id = ? AND question_text = ?", ownerID, question).
		Limit(1).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertResponse persists a freshly generated answer. Rows are never updated
// afterwards.
func InsertResponse(ctx context.Context, db *gorm.DB, ownerID, question string, payload domain.AnswerPayload, latency time.Duration) (*domain.CachedResponse, error) {
	row := &domain.CachedResponse{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		QuestionText:  question,
		AnswerPayload: payload,
		LatencyMS:     latency.Milliseconds(),
		SchemaVersion: domain.CurrentSchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return row, nil
}

// CountResponses returns the number of cached answers owned by ownerID.
func CountResponses(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CachedResponse{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListResponsesPage returns a page of the owner's cached answers, newest
// first. Ties on created_at are broken by id so pages are stable.
func ListResponsesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.CachedResponse, error) {
	var out []domain.CachedResponse
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
