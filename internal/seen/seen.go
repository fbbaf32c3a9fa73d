// Package seen remembers which one-time UI elements (first-visit banners,
// app promos, onboarding hints) a visitor has already been shown.
//
// A subject is either an authenticated user ID or the anonymous visitor ID
// from the snp_vid cookie. Marking is idempotent in every backend.
package seen

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Store is the "already seen" capability.
type Store interface {
	Seen(ctx context.Context, subject, flag string) (bool, error)
	MarkSeen(ctx context.Context, subject, flag string) error
}

var (
	// ErrInvalidFlag is returned for flag names outside the allowed pattern.
	ErrInvalidFlag = errors.New("invalid flag name")
	// ErrNoSubject is returned when neither a user nor a visitor is known.
	ErrNoSubject = errors.New("no subject")
)

var flagRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// ValidFlag reports whether flag is an acceptable flag name.
func ValidFlag(flag string) bool { return flagRe.MatchString(flag) }

func check(subject, flag string) error {
	if strings.TrimSpace(subject) == "" {
		return ErrNoSubject
	}
	if !ValidFlag(flag) {
		return ErrInvalidFlag
	}
	return nil
}
