// BroBot HTTP handlers.
//
//   - POST /brobot/ask      (answer a question, cache first)
//   - GET  /brobot/history  (list the caller's cached answers)
//
// Both require a signed-in member; the cache is keyed per owner.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/services"
)

// AskRequest is the JSON payload of POST /brobot/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required,notblank" example:"Describe the blood supply of the femoral head"`
}

// HistoryResponse is one page of cached answers.
type HistoryResponse struct {
	Items      []domain.CachedResponse `json:"items"`
	Pagination Pagination              `json:"pagination"`
}

// Ask godoc
// @ID          askBroBot
// @Summary     Ask BroBot a case-prep question
// @Description Returns the cached answer for an identical earlier question, otherwise generates one and caches it.
// @Description When generation fails the response is a placeholder with source "error" and nothing is cached.
// @Tags        BroBot
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.AskRequest  true  "Question"
// @Success     200   {object}  services.Answer
// @Failure     400   {object}  handlers.ErrorResponse "Empty or too long question"
// @Failure     401   {object}  handlers.ErrorResponse "Sign in required"
// @Failure     429   {object}  handlers.ErrorResponse "Rate limited"
// @Failure     503   {object}  handlers.ErrorResponse "Cache lookup failed"
// @Router      /brobot/ask [post]
func (h *Handlers) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeEmptyPrompt, "question is required")
		return
	}

	ans, err := h.brobot.Ask(c.Request.Context(), userID(c), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
		case errors.Is(err, services.ErrEmptyPrompt):
			fail(c, http.StatusBadRequest, ErrCodeEmptyPrompt, "question is required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodePromptTooLong, "question is too long")
		case errors.Is(err, services.ErrLookupFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeLookupFailed, "answers are unavailable right now, try again shortly")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ans)
}

// History godoc
// @ID          brobotHistory
// @Summary     List cached BroBot answers
// @Description Newest first. Supports conditional requests via ETag / If-None-Match.
// @Tags        BroBot
// @Produce     json
// @Security    BearerAuth
// @Param       page       query     int  false  "Page (>=1)"          default(1)
// @Param       page_size  query     int  false  "Page size (1..100)"  default(20)
// @Success     200        {object}  handlers.HistoryResponse
// @Success     304        {string}  string  "Not Modified"
// @Failure     401        {object}  handlers.ErrorResponse "Sign in required"
// @Failure     500        {object}  handlers.ErrorResponse "Internal server error"
// @Router      /brobot/history [get]
func (h *Handlers) History(c *gin.Context) {
	page, size := clampPagination(c)

	res, err := h.brobot.History(c.Request.Context(), userID(c), page, size)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	c.Header("ETag", res.ETag)
	c.Header("Cache-Control", "private, no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && match == res.ETag {
		c.Status(http.StatusNotModified)
		return
	}

	items := res.Items
	if items == nil {
		items = []domain.CachedResponse{}
	}
	ok(c, http.StatusOK, HistoryResponse{
		Items:      items,
		Pagination: newPagination(page, size, res.Total),
	})
}
