package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/config"
	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/seen"
	"github.com/snaportho/snaportho-web/internal/services"
	"github.com/snaportho/snaportho-web/internal/utils"
)

// BroBotService answers case-prep questions through the response cache.
type BroBotService interface {
	Ask(ctx context.Context, ownerID, question string) (*services.Answer, error)
	History(ctx context.Context, ownerID string, page, pageSize int) (*services.HistoryPage, error)
}

// FeedbackService stores ratings on BroBot answers.
type FeedbackService interface {
	Submit(ctx context.Context, in services.FeedbackInput) (id string, replayed bool, err error)
}

// AuthService owns accounts and sessions.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// ProfileService owns onboarding profiles.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Save(ctx context.Context, userID string, in services.ProfileInput) (*domain.Profile, error)
}

// Deps are the collaborators of Handlers. Nil services leave their routes
// unusable but do not prevent construction.
type Deps struct {
	BroBot   BroBotService
	Feedback FeedbackService
	Auth     AuthService
	Profiles ProfileService
	Seen     seen.Store

	DeepLink       config.DeepLinkConfig
	IdempotencyTTL time.Duration
}

// Handlers groups the page and API endpoints.
type Handlers struct {
	brobot   BroBotService
	feedback FeedbackService
	auth     AuthService
	profiles ProfileService
	seen     seen.Store

	deepLink       config.DeepLinkConfig
	fallbackHosts  []string
	idempotencyTTL time.Duration
}

// New constructs Handlers from d.
func New(d Deps) *Handlers {
	ttl := d.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handlers{
		brobot:         d.BroBot,
		feedback:       d.Feedback,
		auth:           d.Auth,
		profiles:       d.Profiles,
		seen:           d.Seen,
		deepLink:       d.DeepLink,
		fallbackHosts:  d.DeepLink.FallbackHosts(),
		idempotencyTTL: ttl,
	}
}

// userID returns the authenticated member, or "" for anonymous callers.
func userID(c *gin.Context) string { return middleware.UserID(c) }

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination reads page and page_size, bounded to [1, 100] per page.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"), 20, 100)
}
