package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/services"
)

// ProfileRequest is the onboarding form.
type ProfileRequest struct {
	FullName       string   `json:"full_name"       binding:"required,notblank,max=120" example:"Jane Doe"`
	TrainingLevel  string   `json:"training_level"  binding:"required,oneof=medical_student resident fellow attending other" example:"resident"`
	Institution    string   `json:"institution"     binding:"max=200" example:"Mass General"`
	GraduationYear int      `json:"graduation_year" binding:"gte=0" example:"2027"`
	Interests      []string `json:"interests"       binding:"max=20,dive,max=64" example:"trauma,spine"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get my onboarding profile
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.Profile
// @Failure     401  {object}  handlers.ErrorResponse "Sign in required"
// @Failure     404  {object}  handlers.ErrorResponse "No profile yet"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), userID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}

// SaveProfile godoc
// @ID          saveProfile
// @Summary     Create or update my onboarding profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ProfileRequest  true  "Profile"
// @Success     200   {object}  domain.Profile
// @Failure     400   {object}  handlers.ErrorResponse "Invalid profile"
// @Failure     401   {object}  handlers.ErrorResponse "Sign in required"
// @Router      /profile [put]
func (h *Handlers) SaveProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidProfile, "full_name and a valid training_level are required")
		return
	}
	p, err := h.profiles.Save(c.Request.Context(), userID(c), services.ProfileInput{
		FullName:       req.FullName,
		TrainingLevel:  req.TrainingLevel,
		Institution:    req.Institution,
		GraduationYear: req.GraduationYear,
		Interests:      req.Interests,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
		case errors.Is(err, services.ErrInvalidProfile):
			fail(c, http.StatusBadRequest, ErrCodeInvalidProfile, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}
