// Claim review HTTP handlers.
//
// This file exposes the claim lifecycle endpoints:
//   - GET  /claims                        (claims visible to the venue, ETag support)
//   - POST /claims/{id}/verify            (pending → verified)
//   - POST /claims/{id}/reject            (pending → rejected)
//   - GET  /claims/{id}/matches           (candidate items for a claim)
//   - GET  /claims/track/{trackingNumber} (public status lookup)
//
// The tracking endpoint is public and deliberately returns a reduced view of
// the claim so that guessing a tracking number never exposes contact details.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
)

//
// DTOs
//

// ListClaimsResponse wraps a page of the claims visible to a venue and
// pagination information.
type ListClaimsResponse struct {
	Claims     []domain.Claim `json:"claims"`
	Pagination Pagination     `json:"pagination"`
}

// ClaimMatchesResponse carries candidate items for a claim, best first.
type ClaimMatchesResponse struct {
	Matches []services.MatchCandidate `json:"matches"`
}

// TrackResponse is the public view of a claim. Contact details and the full
// reported description are intentionally omitted.
type TrackResponse struct {
	TrackingNumber string    `json:"tracking_number" example:"LF482913"`
	Status         string    `json:"status" example:"pending"`
	Summary        string    `json:"summary" example:"Black Phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

//
// Handlers
//

// ListClaims godoc
// @ID          listClaims
// @Summary     List claims visible to the venue
// @Description Returns one page of the claims linked to the venue's items, oldest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Claims
// @Produce     json
// @Security    BearerAuth
//
// @Param       page           query   int     false "Page number (default 1)"
// @Param       page_size      query   int     false "Page size (default 20, max 100)"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListClaimsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims [get]
func (h *Handlers) ListClaims(c *gin.Context) {
	ctx := c.Request.Context()
	vid := venueID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.claimSvc.Stats(ctx, vid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"claims:%s:%d:%d"`, vid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	claims, total, err := h.claimSvc.ListPageForVenue(ctx, vid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListClaimsResponse{
		Claims: claims,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// VerifyClaim godoc
// @ID          verifyClaim
// @Summary     Verify a pending claim
// @Description Moves a claim from pending to verified. Claims already in a terminal state return 409.
// @Tags        Claims
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Claim ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Claim
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Claim not found"
// @Failure     409  {object} handlers.ErrorResponse "Claim is not pending"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id}/verify [post]
func (h *Handlers) VerifyClaim(c *gin.Context) {
	h.transitionClaim(c, domain.ClaimStatusVerified)
}

// RejectClaim godoc
// @ID          rejectClaim
// @Summary     Reject a pending claim
// @Description Moves a claim from pending to rejected. Claims already in a terminal state return 409.
// @Tags        Claims
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Claim ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Claim
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Claim not found"
// @Failure     409  {object} handlers.ErrorResponse "Claim is not pending"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id}/reject [post]
func (h *Handlers) RejectClaim(c *gin.Context) {
	h.transitionClaim(c, domain.ClaimStatusRejected)
}

// transitionClaim is the shared verify/reject implementation.
func (h *Handlers) transitionClaim(c *gin.Context, target string) {
	claimID := c.Param("id")
	if _, err := uuid.Parse(claimID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "claim id must be a UUID")
		return
	}

	claim, err := h.claimSvc.Transition(c.Request.Context(), venueID(c), claimID, target)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClaimNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "claim not found")
		case errors.Is(err, services.ErrInvalidTransition):
			fail(c, http.StatusConflict, ErrCodeConflict, "claim is not pending")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, claim)
}

// ClaimMatches godoc
// @ID          claimMatches
// @Summary     Candidate items for a claim
// @Description Returns catalog items that may match the claim, best first. May be empty.
// @Tags        Claims
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Claim ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.ClaimMatchesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Claim not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id}/matches [get]
func (h *Handlers) ClaimMatches(c *gin.Context) {
	claimID := c.Param("id")
	if _, err := uuid.Parse(claimID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "claim id must be a UUID")
		return
	}

	claim, err := h.claimSvc.GetForVenue(c.Request.Context(), venueID(c), claimID)
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "claim not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	matches, err := h.matcher.Match(c.Request.Context(), claim)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if matches == nil {
		matches = []services.MatchCandidate{}
	}

	ok(c, http.StatusOK, ClaimMatchesResponse{Matches: matches})
}

// TrackClaim godoc
// @ID          trackClaim
// @Summary     Track a claim by its tracking number
// @Description Public status lookup for claimants. Returns a reduced claim view without contact details.
// @Tags        Claims
// @Produce     json
//
// @Param       trackingNumber  path  string  true  "Tracking number"  example(LF482913)
//
// @Success     200  {object} handlers.TrackResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown tracking number"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/track/{trackingNumber} [get]
func (h *Handlers) TrackClaim(c *gin.Context) {
	tn := strings.TrimSpace(c.Param("trackingNumber"))
	if tn == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tracking number required")
		return
	}

	claim, err := h.claimSvc.Track(c.Request.Context(), tn)
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown tracking number")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, TrackResponse{
		TrackingNumber: claim.TrackingNumber,
		Status:         claim.Status,
		Summary:        claim.Summary,
		CreatedAt:      claim.CreatedAt,
		UpdatedAt:      claim.UpdatedAt,
	})
}
