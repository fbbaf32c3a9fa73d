package repo

import (
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database and migrates the given models.
// Subtest names contain slashes, so the DSN is keyed by a fresh UUID instead.
func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Discard, TranslateError: true},
	)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if len(models) == 0 {
		return db
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate %d models: %v", len(models), err)
	}
	return db
}
