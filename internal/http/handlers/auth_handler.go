// Venue account HTTP handlers.
//
// This file exposes REST endpoints for venue registration and profile
// management:
//   - POST /venues/signup   (register a venue, returns access token)
//   - POST /venues/login    (authenticate, returns access token)
//   - GET  /venues/me       (current venue profile)
//   - PUT  /venues/me       (update profile fields)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. The service interfaces
// they consume live here so transport stays decoupled from business logic.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/http/middleware"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService defines venue account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Signup registers a venue and returns it with a fresh access token.
	Signup(ctx context.Context, in services.SignupInput) (*domain.Venue, utils.AccessToken, error)
	// Login authenticates a venue by email and password.
	Login(ctx context.Context, email, password string) (*domain.Venue, utils.AccessToken, error)
	// Profile returns the venue record for an authenticated venue id.
	Profile(ctx context.Context, venueID string) (*domain.Venue, error)
	// UpdateProfile applies a partial profile update and returns the result.
	UpdateProfile(ctx context.Context, venueID string, upd services.ProfileUpdate) (*domain.Venue, error)
}

// ItemService defines catalog operations consumed by HTTP handlers.
type ItemService interface {
	// Create registers a found item for the venue.
	Create(ctx context.Context, venueID string, in services.CreateItemInput) (*domain.LostItem, error)
	// ListPage returns one page of the venue's catalog, oldest first, plus
	// the total count.
	ListPage(ctx context.Context, venueID string, page, pageSize int) ([]domain.LostItem, int64, error)
	// Delete removes an item together with its photos and linked claims.
	Delete(ctx context.Context, venueID, itemID string) error
	// Stats returns the catalog row count and latest update time (ETag support).
	Stats(ctx context.Context, venueID string) (int64, *time.Time, error)
}

// ClaimService defines claim lifecycle operations consumed by HTTP handlers.
type ClaimService interface {
	// Track resolves a claim by its public tracking number.
	Track(ctx context.Context, trackingNumber string) (*domain.Claim, error)
	// ListPageForVenue returns one page of the claims visible to the venue,
	// oldest first, plus the total count.
	ListPageForVenue(ctx context.Context, venueID string, page, pageSize int) ([]domain.Claim, int64, error)
	// GetForVenue returns one claim if the venue may see it.
	GetForVenue(ctx context.Context, venueID, claimID string) (*domain.Claim, error)
	// Transition moves a pending claim to verified or rejected.
	Transition(ctx context.Context, venueID, claimID, target string) (*domain.Claim, error)
	// Stats returns the visible-claim count and latest update time (ETag support).
	Stats(ctx context.Context, venueID string) (int64, *time.Time, error)
}

// IntakeService defines the conversational intake operation.
type IntakeService interface {
	// Advance answers the latest user turn, filing a claim on completion.
	Advance(ctx context.Context, subject, idemKey string, history []domain.Turn) (*services.IntakeResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for venue accounts, the item catalog, claim
// review, and conversational intake. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	authSvc   AuthService
	itemSvc   ItemService
	claimSvc  ClaimService
	intakeSvc IntakeService
	matcher   services.Matcher
}

// New constructs and returns a Handlers instance bound to the given services.
func New(authSvc AuthService, itemSvc ItemService, claimSvc ClaimService, intakeSvc IntakeService, matcher services.Matcher) *Handlers {
	return &Handlers{
		authSvc:   authSvc,
		itemSvc:   itemSvc,
		claimSvc:  claimSvc,
		intakeSvc: intakeSvc,
		matcher:   matcher,
	}
}

// venueID extracts the authenticated venue id set by the auth middleware.
// Guarded routes always have it; an empty value on an unguarded route means
// the caller is anonymous.
func venueID(c *gin.Context) string {
	id, _ := middleware.VenueID(c)
	return id
}

//
// DTOs
//

// SignupRequest is the JSON payload for registering a venue.
type SignupRequest struct {
	// Name is the display name shown on the venue dashboard.
	Name string `json:"name" binding:"required,min=1,max=255" example:"Central Library"`
	// Email is the login identifier; must be unique across venues.
	Email string `json:"email" binding:"required,email" example:"front-desk@central-library.example"`
	// Password must be at least 8 characters.
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
	// Type categorizes the venue (university, mall, hotel, …).
	Type    string `json:"type" binding:"required,min=1,max=64" example:"university"`
	Address string `json:"address" binding:"max=255" example:"1 Campus Way"`
	// Logo is an optional base64 data URL.
	Logo string `json:"logo"`
}

// LoginRequest is the JSON payload for venue authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"front-desk@central-library.example"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse wraps a venue together with its freshly issued access token.
type AuthResponse struct {
	Venue *domain.Venue `json:"venue"`
	// Token is a bearer JWT for the Authorization header.
	Token string `json:"token"`
	// ExpiresAt is the token expiry in RFC 3339 UTC.
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest carries optional profile fields; absent fields are
// left unchanged. Email and password cannot be changed through this endpoint.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Address *string `json:"address"`
	Logo    *string `json:"logo"`
}

//
// Handlers
//

// Signup godoc
// @ID          signupVenue
// @Summary     Register a venue
// @Description Creates a venue account and returns the venue with an access token.
// @Tags        Venues
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignupRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /venues/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email, type and a password of at least 8 characters are required")
		return
	}

	v, tok, err := h.authSvc.Signup(c.Request.Context(), services.SignupInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Type:     strings.TrimSpace(req.Type),
		Address:  strings.TrimSpace(req.Address),
		Logo:     req.Logo,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, AuthResponse{Venue: v, Token: tok.Token, ExpiresAt: tok.Exp})
}

// Login godoc
// @ID          loginVenue
// @Summary     Authenticate a venue
// @Description Verifies email and password and returns the venue with an access token.
// @Tags        Venues
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /venues/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	v, tok, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, AuthResponse{Venue: v, Token: tok.Token, ExpiresAt: tok.Exp})
}

// Me godoc
// @ID          getVenueProfile
// @Summary     Current venue profile
// @Description Returns the authenticated venue's profile.
// @Tags        Venues
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.Venue
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Venue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /venues/me [get]
func (h *Handlers) Me(c *gin.Context) {
	v, err := h.authSvc.Profile(c.Request.Context(), venueID(c))
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}

// UpdateMe godoc
// @ID          updateVenueProfile
// @Summary     Update venue profile
// @Description Applies a partial update to the authenticated venue's profile. Email and password are immutable here.
// @Tags        Venues
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Fields to update"
//
// @Success     200  {object}  domain.Venue
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Venue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /venues/me [put]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	v, err := h.authSvc.UpdateProfile(c.Request.Context(), venueID(c), services.ProfileUpdate{
		Name:    req.Name,
		Type:    req.Type,
		Address: req.Address,
		Logo:    req.Logo,
	})
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}
