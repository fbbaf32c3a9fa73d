package repo

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snaportho/snaportho-web/internal/domain"
)

func withTempPath(t *testing.T, opts Options) Options {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "snaportho.db")
	}
	return opts
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "snaportho.db")
	db, err := OpenSQLite(path)
	if err == nil || db != nil {
		t.Fatalf("OpenSQLite(%q) = %v, %v; want error", path, db, err)
	}
}

func TestOpenSQLite_Tuning(t *testing.T) {
	db, err := OpenSQLite(withTempPath(t, Options{}).Path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	pragmas := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for name, want := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + name).Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", name, err)
		}
		if strings.ToLower(got) != want {
			t.Errorf("PRAGMA %s = %q, want %q", name, got, want)
		}
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != sqlitePool.maxOpen {
		t.Errorf("max open conns = %d, want %d", n, sqlitePool.maxOpen)
	}
}

func TestAutoMigrate_SchemaUsable(t *testing.T) {
	db, err := Open(withTempPath(t, Options{Driver: "SQLite", Tracing: true}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	// Running it twice must be a no-op.
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}

	m := db.Migrator()
	for _, model := range []any{
		&domain.User{}, &domain.Profile{}, &domain.CachedResponse{},
		&domain.CasePrepFeedback{}, &domain.SeenFlag{}, &domain.Idempotency{},
	} {
		if !m.HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}

	now := time.Now().UTC()
	if err := db.Create(&domain.User{ID: "u1", Email: "resident@snaportho.test", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := db.Omit("User").Create(&domain.Profile{UserID: "u1", FullName: "R", TrainingLevel: domain.TrainingFellow}).Error; err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if err := db.Create(&domain.CachedResponse{ID: "r1", OwnerID: "u1", QuestionText: "hip fracture", CreatedAt: now}).Error; err != nil {
		t.Fatalf("insert response: %v", err)
	}
	var got domain.CachedResponse
	if err := db.First(&got, "id = ?", "r1").Error; err != nil || got.QuestionText != "hip fracture" {
		t.Fatalf("read back: err=%v got=%+v", err, got)
	}
}

func TestOpen_RejectsBadOptions(t *testing.T) {
	for name, opts := range map[string]Options{
		"unknown driver":        {Driver: "mysql"},
		"postgres without dsn":  {Driver: DriverPostgres, URL: "  "},
		"sqlite in missing dir": {Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "x", "y.db")},
	} {
		if _, err := Open(opts); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
