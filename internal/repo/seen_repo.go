package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// HasSeen reports whether subject has a marker for flag.
func HasSeen(ctx context.Context, db *gorm.DB, subject, flag string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SeenFlag{}).
		Where("subject = ? AND flag = ?", subject, flag).
		Count(&n).Error
	return n > 0, err
}

// MarkSeen records the marker. Marking twice is a no-op: the insert is
// ignored on the (subject, flag) unique index.
func MarkSeen(ctx context.Context, db *gorm.DB, subject, flag string) error {
	row := &domain.SeenFlag{
		ID:        uuid.NewString(),
		Subject:   subject,
		Flag:      flag,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}
