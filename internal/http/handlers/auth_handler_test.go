package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/utils"
)

// ---------- flexible service stubs shared by the handler tests ----------

type stubAuthSvc struct {
	signup  func(context.Context, services.SignupInput) (*domain.Venue, utils.AccessToken, error)
	login   func(context.Context, string, string) (*domain.Venue, utils.AccessToken, error)
	profile func(context.Context, string) (*domain.Venue, error)
	update  func(context.Context, string, services.ProfileUpdate) (*domain.Venue, error)
}

func (s stubAuthSvc) Signup(ctx context.Context, in services.SignupInput) (*domain.Venue, utils.AccessToken, error) {
	if s.signup != nil {
		return s.signup(ctx, in)
	}
	return &domain.Venue{ID: "v1"}, utils.AccessToken{Token: "tok"}, nil
}

func (s stubAuthSvc) Login(ctx context.Context, email, password string) (*domain.Venue, utils.AccessToken, error) {
	if s.login != nil {
		return s.login(ctx, email, password)
	}
	return &domain.Venue{ID: "v1"}, utils.AccessToken{Token: "tok"}, nil
}

func (s stubAuthSvc) Profile(ctx context.Context, venueID string) (*domain.Venue, error) {
	if s.profile != nil {
		return s.profile(ctx, venueID)
	}
	return &domain.Venue{ID: venueID}, nil
}

func (s stubAuthSvc) UpdateProfile(ctx context.Context, venueID string, upd services.ProfileUpdate) (*domain.Venue, error) {
	if s.update != nil {
		return s.update(ctx, venueID, upd)
	}
	return &domain.Venue{ID: venueID}, nil
}

type stubItemSvc struct {
	create   func(context.Context, string, services.CreateItemInput) (*domain.LostItem, error)
	listPage func(context.Context, string, int, int) ([]domain.LostItem, int64, error)
	del      func(context.Context, string, string) error
	stats    func(context.Context, string) (int64, *time.Time, error)
}

func (s stubItemSvc) Create(ctx context.Context, venueID string, in services.CreateItemInput) (*domain.LostItem, error) {
	if s.create != nil {
		return s.create(ctx, venueID, in)
	}
	return &domain.LostItem{ID: "i1", VenueID: venueID}, nil
}

func (s stubItemSvc) ListPage(ctx context.Context, venueID string, page, pageSize int) ([]domain.LostItem, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, venueID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubItemSvc) Delete(ctx context.Context, venueID, itemID string) error {
	if s.del != nil {
		return s.del(ctx, venueID, itemID)
	}
	return nil
}

func (s stubItemSvc) Stats(ctx context.Context, venueID string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, venueID)
	}
	return 0, nil, nil
}

type stubClaimSvc struct {
	track      func(context.Context, string) (*domain.Claim, error)
	listPage   func(context.Context, string, int, int) ([]domain.Claim, int64, error)
	get        func(context.Context, string, string) (*domain.Claim, error)
	transition func(context.Context, string, string, string) (*domain.Claim, error)
	stats      func(context.Context, string) (int64, *time.Time, error)
}

func (s stubClaimSvc) Track(ctx context.Context, tn string) (*domain.Claim, error) {
	if s.track != nil {
		return s.track(ctx, tn)
	}
	return &domain.Claim{TrackingNumber: tn}, nil
}

func (s stubClaimSvc) ListPageForVenue(ctx context.Context, venueID string, page, pageSize int) ([]domain.Claim, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, venueID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubClaimSvc) Stats(ctx context.Context, venueID string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, venueID)
	}
	return 0, nil, nil
}

func (s stubClaimSvc) GetForVenue(ctx context.Context, venueID, claimID string) (*domain.Claim, error) {
	if s.get != nil {
		return s.get(ctx, venueID, claimID)
	}
	return &domain.Claim{ID: claimID}, nil
}

func (s stubClaimSvc) Transition(ctx context.Context, venueID, claimID, target string) (*domain.Claim, error) {
	if s.transition != nil {
		return s.transition(ctx, venueID, claimID, target)
	}
	return &domain.Claim{ID: claimID, Status: target}, nil
}

type stubIntakeSvc struct {
	advance func(context.Context, string, string, []domain.Turn) (*services.IntakeResult, error)
}

func (s stubIntakeSvc) Advance(ctx context.Context, subject, idemKey string, history []domain.Turn) (*services.IntakeResult, error) {
	if s.advance != nil {
		return s.advance(ctx, subject, idemKey, history)
	}
	return &services.IntakeResult{Reply: "ok"}, nil
}

// newTestRouter wires a Handlers instance into a bare gin engine. venueID,
// when non-empty, is injected the way the auth middleware would.
func newTestRouter(h *Handlers, venueID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if venueID != "" {
		r.Use(func(c *gin.Context) {
			c.Set("venueID", venueID)
			c.Next()
		})
	}
	r.POST("/venues/signup", h.Signup)
	r.POST("/venues/login", h.Login)
	r.GET("/venues/me", h.Me)
	r.PUT("/venues/me", h.UpdateMe)
	r.POST("/items", h.CreateItem)
	r.GET("/items", h.ListItems)
	r.DELETE("/items/:id", h.DeleteItem)
	r.GET("/claims", h.ListClaims)
	r.POST("/claims/:id/verify", h.VerifyClaim)
	r.POST("/claims/:id/reject", h.RejectClaim)
	r.GET("/claims/:id/matches", h.ClaimMatches)
	r.GET("/claims/track/:trackingNumber", h.TrackClaim)
	r.GET("/intake/greeting", h.Greeting)
	r.POST("/intake/messages", h.PostIntakeMessage)
	return r
}

func newStubHandlers(auth AuthService, item ItemService, claim ClaimService, intake IntakeService) *Handlers {
	if auth == nil {
		auth = stubAuthSvc{}
	}
	if item == nil {
		item = stubItemSvc{}
	}
	if claim == nil {
		claim = stubClaimSvc{}
	}
	if intake == nil {
		intake = stubIntakeSvc{}
	}
	return New(auth, item, claim, intake, services.NoMatcher{})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- venue account endpoints ----------

func TestSignup_Success(t *testing.T) {
	var gotInput services.SignupInput
	auth := stubAuthSvc{
		signup: func(_ context.Context, in services.SignupInput) (*domain.Venue, utils.AccessToken, error) {
			gotInput = in
			return &domain.Venue{ID: "v1", Name: in.Name, Email: "front@lib.example"},
				utils.AccessToken{Token: "jwt-token", Exp: time.Now().Add(time.Hour)}, nil
		},
	}
	r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "")

	w := doJSON(t, r, http.MethodPost, "/venues/signup", map[string]any{
		"name":     "  Central Library ",
		"email":    "front@lib.example",
		"password": "longenough",
		"type":     "university",
		"address":  " 1 Campus Way ",
	}, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token != "jwt-token" || resp.Venue == nil || resp.Venue.ID != "v1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotInput.Name != "Central Library" || gotInput.Address != "1 Campus Way" {
		t.Fatalf("input not trimmed: %+v", gotInput)
	}
}

func TestSignup_ValidationAndConflict(t *testing.T) {
	t.Run("short password rejected before the service", func(t *testing.T) {
		called := false
		auth := stubAuthSvc{signup: func(context.Context, services.SignupInput) (*domain.Venue, utils.AccessToken, error) {
			called = true
			return nil, utils.AccessToken{}, nil
		}}
		r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "")

		w := doJSON(t, r, http.MethodPost, "/venues/signup", map[string]any{
			"name": "X", "email": "x@y.example", "password": "short", "type": "mall",
		}, nil)

		if w.Code != http.StatusBadRequest || called {
			t.Fatalf("code=%d called=%v", w.Code, called)
		}
	})

	t.Run("duplicate email maps to 409", func(t *testing.T) {
		auth := stubAuthSvc{signup: func(context.Context, services.SignupInput) (*domain.Venue, utils.AccessToken, error) {
			return nil, utils.AccessToken{}, services.ErrEmailTaken
		}}
		r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "")

		w := doJSON(t, r, http.MethodPost, "/venues/signup", map[string]any{
			"name": "X", "email": "x@y.example", "password": "longenough", "type": "mall",
		}, nil)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
		var er ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &er)
		if er.Code != ErrCodeConflict {
			t.Fatalf("unexpected error code: %+v", er)
		}
	})
}

func TestLogin_SuccessAndInvalidCredentials(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := stubAuthSvc{login: func(_ context.Context, email, password string) (*domain.Venue, utils.AccessToken, error) {
			if email != "a@b.example" || password != "pw-longenough" {
				t.Fatalf("credentials not forwarded: %q %q", email, password)
			}
			return &domain.Venue{ID: "v1"}, utils.AccessToken{Token: "jwt"}, nil
		}}
		r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "")

		w := doJSON(t, r, http.MethodPost, "/venues/login", map[string]any{
			"email": "a@b.example", "password": "pw-longenough",
		}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("wrong password maps to 401", func(t *testing.T) {
		auth := stubAuthSvc{login: func(context.Context, string, string) (*domain.Venue, utils.AccessToken, error) {
			return nil, utils.AccessToken{}, services.ErrInvalidCredentials
		}}
		r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "")

		w := doJSON(t, r, http.MethodPost, "/venues/login", map[string]any{
			"email": "a@b.example", "password": "nope",
		}, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestMe_NotFound(t *testing.T) {
	auth := stubAuthSvc{profile: func(context.Context, string) (*domain.Venue, error) {
		return nil, services.ErrVenueNotFound
	}}
	r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "v-gone")

	w := doJSON(t, r, http.MethodGet, "/venues/me", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateMe_ForwardsOnlyProvidedFields(t *testing.T) {
	var got services.ProfileUpdate
	auth := stubAuthSvc{update: func(_ context.Context, venueID string, upd services.ProfileUpdate) (*domain.Venue, error) {
		if venueID != "v7" {
			t.Fatalf("venueID = %q", venueID)
		}
		got = upd
		return &domain.Venue{ID: venueID, Name: "New"}, nil
	}}
	r := newTestRouter(newStubHandlers(auth, nil, nil, nil), "v7")

	w := doJSON(t, r, http.MethodPut, "/venues/me", map[string]any{"name": "New"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.Name == nil || *got.Name != "New" {
		t.Fatalf("name pointer not forwarded: %+v", got)
	}
	if got.Type != nil || got.Address != nil || got.Logo != nil {
		t.Fatalf("absent fields should stay nil: %+v", got)
	}
}
