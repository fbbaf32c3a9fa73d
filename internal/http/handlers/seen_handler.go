package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/seen"
)

// SeenResponse reports whether a one-time UI element was already shown.
type SeenResponse struct {
	Flag string `json:"flag" example:"app_promo"`
	Seen bool   `json:"seen" example:"false"`
}

// GetSeen godoc
// @ID          getSeen
// @Summary     Has this visitor seen a flag
// @Description The subject is the signed-in member, or the anonymous visitor cookie.
// @Tags        Seen
// @Produce     json
// @Param       flag  path      string  true  "Flag name"  example(app_promo)
// @Success     200   {object}  handlers.SeenResponse
// @Failure     400   {object}  handlers.ErrorResponse "Invalid flag"
// @Router      /seen/{flag} [get]
func (h *Handlers) GetSeen(c *gin.Context) {
	flag := c.Param("flag")
	v, err := h.seen.Seen(c.Request.Context(), middleware.Subject(c), flag)
	if err != nil {
		h.seenError(c, err)
		return
	}
	ok(c, http.StatusOK, SeenResponse{Flag: flag, Seen: v})
}

// MarkSeen godoc
// @ID          markSeen
// @Summary     Remember that a flag was shown
// @Tags        Seen
// @Param       flag  path  string  true  "Flag name"  example(app_promo)
// @Success     204   {string}  string  "No Content"
// @Failure     400   {object}  handlers.ErrorResponse "Invalid flag"
// @Router      /seen/{flag} [put]
func (h *Handlers) MarkSeen(c *gin.Context) {
	if err := h.seen.MarkSeen(c.Request.Context(), middleware.Subject(c), c.Param("flag")); err != nil {
		h.seenError(c, err)
		return
	}
	noContent(c)
}

func (h *Handlers) seenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, seen.ErrInvalidFlag):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFlag, "invalid flag name")
	case errors.Is(err, seen.ErrNoSubject):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cookies are required")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
