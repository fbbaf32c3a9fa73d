package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// ResponsesStats returns the number of cached answers for ownerID and the
// newest CreatedAt among them. With no rows, count is 0 and maxCreatedAt nil.
//
// Rows are immutable, so (count, maxCreatedAt) changes whenever the owner's
// history changes.
func ResponsesStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, maxCreatedAt *time.Time, err error) {
	if count, err = CountResponses(ctx, db, ownerID); err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.CachedResponse{}).
		Where("owner_id = ?", ownerID).
		Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
