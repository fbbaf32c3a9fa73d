// Auth HTTP handlers.
//
//   - POST /auth/signup   (create an account, returns a session)
//   - POST /auth/signin   (exchange credentials for a session)
//   - GET  /auth/session  (the member behind the bearer token)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/services"
)

// CredentialsRequest is the payload of sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email"    binding:"required,email,max=320" example:"resident@example.org"`
	Password string `json:"password" binding:"required,max=256"       example:"correct horse battery"`
}

// SignUp godoc
// @ID          signUp
// @Summary     Create an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CredentialsRequest  true  "Credentials"
// @Success     201   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse "Invalid email or weak password"
// @Failure     409   {object}  handlers.ErrorResponse "Email already registered"
// @Failure     500   {object}  handlers.ErrorResponse "Internal server error"
// @Router      /auth/signup [post]
func (h *Handlers) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "a valid email and password are required")
		return
	}
	sess, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid email")
		case errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "password must be at least 8 characters")
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeEmailTaken, "email already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sess)
}

// SignIn godoc
// @ID          signIn
// @Summary     Sign in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CredentialsRequest  true  "Credentials"
// @Success     200   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     401   {object}  handlers.ErrorResponse "Invalid email or password"
// @Failure     500   {object}  handlers.ErrorResponse "Internal server error"
// @Router      /auth/signin [post]
func (h *Handlers) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}
	sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sess)
}

// CurrentSession godoc
// @ID          currentSession
// @Summary     Current member
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse "Sign in required"
// @Router      /auth/session [get]
func (h *Handlers) CurrentSession(c *gin.Context) {
	u, err := h.auth.CurrentUser(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
