// Package services – ProfileService
//
// ProfileService stores the onboarding answers a member gives after sign-up.
// Saving is an upsert; the first valid save marks the profile completed.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/repo"
)

const (
	minGraduationYear = 1950
	maxInterests      = 20
	maxNameRunes      = 120
	maxInstRunes      = 200
)

var trainingLevels = map[string]struct{}{
	domain.TrainingMedicalStudent: {},
	domain.TrainingResident:       {},
	domain.TrainingFellow:         {},
	domain.TrainingAttending:      {},
	domain.TrainingOther:          {},
}

// ProfileInput is the onboarding form.
type ProfileInput struct {
	FullName       string
	TrainingLevel  string
	Institution    string
	GraduationYear int
	Interests      []string
}

// ProfileService implements onboarding profile use-cases.
type ProfileService struct {
	DB *gorm.DB

	// Now is overridable in tests.
	Now func() time.Time
}

// Get returns the member's profile or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := otel.Tracer("services/ProfileService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	p, err := repo.GetProfile(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// Save validates and normalizes in, then upserts the member's profile.
// Validation failures wrap ErrInvalidProfile with the offending field.
func (s *ProfileService) Save(ctx context.Context, userID string, in ProfileInput) (*domain.Profile, error) {
	ctx, span := otel.Tracer("services/ProfileService").Start(ctx, "Save",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	name := normalizeName(in.FullName)
	if name == "" || utf8.RuneCountInString(name) > maxNameRunes {
		return nil, fmt.Errorf("%w: full_name", ErrInvalidProfile)
	}
	level := strings.ToLower(strings.TrimSpace(in.TrainingLevel))
	if _, ok := trainingLevels[level]; !ok {
		return nil, fmt.Errorf("%w: training_level", ErrInvalidProfile)
	}
	inst := strings.Join(strings.Fields(in.Institution), " ")
	if utf8.RuneCountInString(inst) > maxInstRunes {
		return nil, fmt.Errorf("%w: institution", ErrInvalidProfile)
	}
	if y := in.GraduationYear; y != 0 && (y < minGraduationYear || y > now.Year()+10) {
		return nil, fmt.Errorf("%w: graduation_year", ErrInvalidProfile)
	}
	interests := dedupeInterests(in.Interests)
	if len(interests) > maxInterests {
		return nil, fmt.Errorf("%w: interests", ErrInvalidProfile)
	}

	p := &domain.Profile{
		UserID:         userID,
		FullName:       name,
		TrainingLevel:  level,
		Institution:    inst,
		GraduationYear: in.GraduationYear,
		Interests:      interests,
		Completed:      true,
	}
	if err := repo.UpsertProfile(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return repo.GetProfile(ctx, s.DB, userID)
}

// normalizeName collapses whitespace and title-cases each word.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

// dedupeInterests lower-cases, trims, and removes duplicate interests while
// keeping first-seen order.
func dedupeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		v := strings.ToLower(strings.Join(strings.Fields(raw), " "))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
