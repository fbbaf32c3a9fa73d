// Package services holds the business logic of the SnapOrtho site: the BroBot
// case-prep cache gate, feedback collection, member auth, and onboarding
// profiles. This file centralizes the service-level error values so callers
// can match them with errors.Is.
//
// Translation into user-facing messages or HTTP status codes happens in the
// handler layer.
package services

import "errors"

// BroBot errors.
var (
	// ErrUnauthenticated is returned when an operation needs an owner but the
	// caller is anonymous. Nothing is looked up or generated.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrEmptyPrompt is returned when a question or feedback prompt is blank
	// after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a question exceeds the configured rune limit.
	ErrTooLong = errors.New("prompt too long")

	// ErrLookupFailed is returned when the cache lookup itself fails. The
	// generator is not called in that case.
	ErrLookupFailed = errors.New("cache lookup failed")

	// ErrFeedbackTooLong is returned when free-text feedback exceeds
	// MaxFeedbackRunes.
	ErrFeedbackTooLong = errors.New("feedback too long")
)

// Auth errors.
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// Profile errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)
