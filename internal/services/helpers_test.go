package services

import (
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snaportho/snaportho-web/internal/repo"
)

func openMem(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open("file:svc-"+uuid.NewString()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)"),
		&gorm.Config{Logger: logger.Discard, TranslateError: true},
	)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// newTestDB returns a fully migrated private database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openMem(t)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newBareDB has no tables, so every query fails.
func newBareDB(t *testing.T) *gorm.DB { return openMem(t) }
