// Feedback HTTP handlers.
//
//   - POST /brobot/feedback  (rate a BroBot answer)
//
// Anonymous visitors may leave feedback. Members may send an Idempotency-Key
// so client retries store the rating once.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/services"
)

// FeedbackRequest is the JSON payload of POST /brobot/feedback.
type FeedbackRequest struct {
	Prompt       string          `json:"prompt"                 binding:"required,notblank" example:"Describe the blood supply of the femoral head"`
	Data         json.RawMessage `json:"data,omitempty"         swaggertype:"object"`
	WasHelpful   *bool           `json:"wasHelpful"             binding:"required" example:"true"`
	UserFeedback string          `json:"userFeedback,omitempty" example:"Missed the artery of ligamentum teres"`
}

// FeedbackCreated is returned when feedback is accepted.
type FeedbackCreated struct {
	ID string `json:"id" example:"0b6f3b5e-8d0c-4e0c-9a55-6a3d9f1f2c11"`
}

// HeaderIdempotencyReplayed marks a response served for a repeated key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// SubmitFeedback godoc
// @ID          submitFeedback
// @Summary     Rate a BroBot answer
// @Description Stores whether an answer was helpful with optional free text. Repeating a request with the same Idempotency-Key returns the original ID.
// @Tags        BroBot
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header    string                    false  "Client retry key"
// @Param       body             body      handlers.FeedbackRequest  true   "Feedback"
// @Success     202              {object}  handlers.FeedbackCreated
// @Failure     400              {object}  handlers.ErrorResponse "Invalid payload"
// @Failure     500              {object}  handlers.ErrorResponse "Internal server error"
// @Router      /brobot/feedback [post]
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt and wasHelpful are required")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	id, replayed, err := h.feedback.Submit(c.Request.Context(), services.FeedbackInput{
		UserID:         userID(c),
		Prompt:         req.Prompt,
		Data:           req.Data,
		WasHelpful:     *req.WasHelpful,
		UserFeedback:   req.UserFeedback,
		IdempotencyKey: key,
		IdempotencyTTL: h.idempotencyTTL,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt):
			fail(c, http.StatusBadRequest, ErrCodeEmptyPrompt, "prompt is required")
		case errors.Is(err, services.ErrFeedbackTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "feedback is too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeFeedbackFailed, err.Error())
		}
		return
	}

	if replayed || middleware.IsReplay(c) {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusAccepted, FeedbackCreated{ID: id})
}
