package seen

import (
	"context"

	"gorm.io/gorm"

	"github.com/snaportho/snaportho-web/internal/repo"
)

// DB persists marks in the seen_flags table.
type DB struct {
	DB *gorm.DB
}

// Seen implements Store.
func (s *DB) Seen(ctx context.Context, subject, flag string) (bool, error) {
	if err := check(subject, flag); err != nil {
		return false, err
	}
	return repo.HasSeen(ctx, s.DB, subject, flag)
}

// MarkSeen implements Store.
func (s *DB) MarkSeen(ctx context.Context, subject, flag string) error {
	if err := check(subject, flag); err != nil {
		return err
	}
	return repo.MarkSeen(ctx, s.DB, subject, flag)
}
