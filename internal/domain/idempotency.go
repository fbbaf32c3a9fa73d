package domain

import "time"

// Idempotency remembers which resource a client's Idempotency-Key produced.
// Rows are unique per (user, scope, key); Scope names the operation, e.g.
// "brobot.feedback", so a key reused on another endpoint is independent.
type Idempotency struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	UserID     string    `gorm:"type:char(36);not null;uniqueIndex:ux_idem_user_scope_key,priority:1"`
	Scope      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_user_scope_key,priority:2"`
	Key        string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_idem_user_scope_key,priority:3"`
	ResourceID string    `gorm:"type:char(36);not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index:ix_idem_expires_at"`
}

func (Idempotency) TableName() string { return "idempotency_keys" }

// Expired reports whether the key may be reused at now.
func (i Idempotency) Expired(now time.Time) bool { return !now.Before(i.ExpiresAt) }
