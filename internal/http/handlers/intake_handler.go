// Conversational intake HTTP handlers.
//
// This file exposes the public endpoints used by the lost-item chat widget:
//   - GET  /intake/greeting  (the assistant's opening line)
//   - POST /intake/messages  (answer the latest user turn)
//
// The flow is stateless on the server: the client sends the full conversation
// history with every exchange and no turn is ever persisted. When the
// assistant's reply signals completion, the handler returns the filed claim
// and its tracking number alongside the reply.
//
// Idempotency: a client that retries the final POST with the same
// Idempotency-Key receives the originally filed claim instead of a duplicate.
package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/assistant"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/http/middleware"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
)

//
// DTOs
//

// IntakeTurn is one prior utterance in the conversation.
type IntakeTurn struct {
	// Role is "user" or "assistant".
	Role string `json:"role" binding:"required,oneof=user assistant" example:"user"`
	// Content is the utterance text.
	Content string `json:"content" binding:"required,min=1" example:"I lost my phone yesterday"`
}

// IntakeRequest is the JSON payload for one intake exchange. Messages carry
// the full conversation so far, oldest first, ending with the newest user
// turn.
type IntakeRequest struct {
	Messages []IntakeTurn `json:"messages" binding:"required,min=1,dive"`
}

// IntakeResponse is the assistant's answer for one exchange.
type IntakeResponse struct {
	// Reply is the assistant utterance to render.
	Reply string `json:"reply"`
	// Done reports whether the conversation is complete and a claim was filed.
	Done bool `json:"done"`
	// Claim is present only when Done is true.
	Claim *domain.Claim `json:"claim,omitempty"`
	// TrackingNumber duplicates Claim.TrackingNumber for convenience.
	TrackingNumber string `json:"tracking_number,omitempty" example:"LF482913"`
}

// GreetingResponse carries the assistant's opening line.
type GreetingResponse struct {
	Reply string `json:"reply"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
// CRLF/CR become LF, runs of 3+ LFs collapse to two, and surrounding
// whitespace is trimmed.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

//
// Handlers
//

// Greeting godoc
// @ID          intakeGreeting
// @Summary     Assistant opening line
// @Description Returns the fixed greeting the chat widget shows before the first user turn.
// @Tags        Intake
// @Produce     json
//
// @Success     200  {object}  handlers.GreetingResponse
// @Router      /intake/greeting [get]
func (h *Handlers) Greeting(c *gin.Context) {
	ok(c, http.StatusOK, GreetingResponse{Reply: assistant.Greeting})
}

// PostIntakeMessage godoc
// @ID          postIntakeMessage
// @Summary     Advance the intake conversation
// @Description Answers the latest user turn. When the reply signals completion, a claim is filed and returned with its tracking number.
// @Description Supports idempotency via the Idempotency-Key header (same key → same claim).
// @Tags        Intake
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.IntakeRequest  true  "Conversation so far, ending with the newest user turn"
//
// @Success     200  {object}  handlers.IntakeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request (empty history, turn too long)"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /intake/messages [post]
func (h *Handlers) PostIntakeMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "messages required, roles must be user or assistant")
		return
	}

	history := make([]domain.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		history = append(history, domain.Turn{
			Role:    m.Role,
			Content: sanitizeContent(m.Content),
		})
	}

	subject := middleware.IdempotencySubject(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	res, err := h.intakeSvc.Advance(ctx, subject, idemKey, history)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyHistory):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation must contain a user message")
		case errors.Is(err, services.ErrTurnTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeIntakeFailed, err.Error())
		}
		return
	}

	if middleware.IsReplay(c) {
		c.Header("Idempotency-Replayed", "true")
	}

	resp := IntakeResponse{Reply: res.Reply, Done: res.Done}
	if res.Done && res.Claim != nil {
		resp.Claim = res.Claim
		resp.TrackingNumber = res.Claim.TrackingNumber
	}
	ok(c, http.StatusOK, resp)
}
