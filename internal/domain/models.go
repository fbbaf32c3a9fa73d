// Package domain defines the persistence models for members, BroBot case-prep
// answers, feedback, onboarding profiles, and one-time UI flags. These types
// are mapped with GORM and form the core data layer of the SnapOrtho site.
package domain

import (
	"encoding/json"
	"time"
)

// CurrentSchemaVersion marks the AnswerPayload shape written by this build.
// Rows with an older version are still served from cache as-is.
const CurrentSchemaVersion = 1

// User is a member account.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: normalized (trimmed, lower-cased) login; unique.
//   - PasswordHash: bcrypt hash; never serialized.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(320);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// AnswerPayload is the structured answer produced by the generation API for a
// case-prep question.
type AnswerPayload struct {
	PimpQuestions    []string       `json:"pimpQuestions"`
	OtherUsefulFacts []string       `json:"otherUsefulFacts"`
	Anatomy          map[string]any `json:"anatomy,omitempty"`
}

// Empty reports whether the payload carries no questions and no facts.
func (p AnswerPayload) Empty() bool {
	return len(p.PimpQuestions) == 0 && len(p.OtherUsefulFacts) == 0
}

// CachedResponse is a persisted BroBot answer for one (owner, question) pair.
// Rows are written once on the first successful generation and never mutated.
// The (owner_id, question_text) pair is unique; the store, not the
// application, enforces it.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OwnerID: authenticated user that asked the question.
//   - QuestionText: trimmed question exactly as submitted.
//   - AnswerPayload: generated payload, stored as JSON.
//   - LatencyMS: generation latency observed when the row was written.
//   - SchemaVersion: payload shape marker (see CurrentSchemaVersion).
//   - CreatedAt: insertion time.
type CachedResponse struct {
	ID            string        `json:"id"             gorm:"type:char(36);primaryKey"`
	OwnerID       string        `json:"owner_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_brobot_owner_question,priority:1"`
	QuestionText  string        `json:"question"       gorm:"type:text;not null;uniqueIndex:ux_brobot_owner_question,priority:2"`
	AnswerPayload AnswerPayload `json:"answer"         gorm:"type:text;not null;serializer:json"`
	LatencyMS     int64         `json:"latency_ms"     gorm:"not null;default:0"`
	SchemaVersion int           `json:"schema_version" gorm:"not null;default:1"`
	CreatedAt     time.Time     `json:"created_at"     gorm:"index:idx_brobot_owner_created"`
}

// TableName returns the database table name for CachedResponse.
func (CachedResponse) TableName() string { return "brobot_responses" }

// CasePrepFeedback is a rating left on a BroBot answer. Anonymous feedback is
// allowed, so UserID may be nil.
type CasePrepFeedback struct {
	ID           string          `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       *string         `json:"user_id"       gorm:"type:varchar(64);index"`
	Prompt       string          `json:"prompt"        gorm:"type:text;not null"`
	Data         json.RawMessage `json:"data"          gorm:"type:text;serializer:json"`
	WasHelpful   bool            `json:"wasHelpful"    gorm:"not null"`
	UserFeedback string          `json:"userFeedback"  gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName returns the database table name for CasePrepFeedback.
func (CasePrepFeedback) TableName() string { return "brobot_feedback" }

// Training levels accepted by the onboarding form.
const (
	TrainingMedicalStudent = "medical_student"
	TrainingResident       = "resident"
	TrainingFellow         = "fellow"
	TrainingAttending      = "attending"
	TrainingOther          = "other"
)

// Profile holds onboarding answers for a member. There is at most one profile
// per user; saves upsert on UserID.
type Profile struct {
	UserID         string    `json:"user_id"         gorm:"type:char(36);primaryKey"`
	FullName       string    `json:"full_name"       gorm:"type:varchar(120);not null"`
	TrainingLevel  string    `json:"training_level"  gorm:"type:varchar(32);not null;check:training_level IN ('medical_student','resident','fellow','attending','other')"`
	Institution    string    `json:"institution"     gorm:"type:varchar(200)"`
	GraduationYear int       `json:"graduation_year"`
	Interests      []string  `json:"interests"       gorm:"type:text;serializer:json"`
	Completed      bool      `json:"completed"       gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// User is the owning account. Profiles are removed with their user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// SeenFlag records that a subject (user or anonymous visitor) has already
// seen a one-time UI element, e.g. a first-visit banner.
type SeenFlag struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Subject   string    `json:"subject"    gorm:"type:varchar(64);not null;uniqueIndex:ux_seen_subject_flag,priority:1"`
	Flag      string    `json:"flag"       gorm:"type:varchar(64);not null;uniqueIndex:ux_seen_subject_flag,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for SeenFlag.
func (SeenFlag) TableName() string { return "seen_flags" }
