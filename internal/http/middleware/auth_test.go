package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(parse TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(RequireVenue(parse))
	r.GET("/me", func(c *gin.Context) {
		id, ok := VenueID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "missing venue")
			return
		}
		c.String(http.StatusOK, id)
	})
	return r
}

func TestRequireVenue_MissingOrMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(string) (string, error) { return "v1", nil }
	r := authRouter(parse)

	for _, auth := range []string{"", "Basic abc", "bearer lowercase", "Token x"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("auth %q: expected 401, got %d", auth, w.Code)
		}
		if !strings.Contains(w.Body.String(), "unauthorized") {
			t.Fatalf("auth %q: expected unauthorized code in body, got %s", auth, w.Body.String())
		}
	}
}

func TestRequireVenue_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(string) (string, error) { return "", errors.New("expired") }
	r := authRouter(parse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid or expired token") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRequireVenue_ValidToken_SetsVenueID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	parse := func(tok string) (string, error) {
		seen = tok
		return "venue-42", nil
	}
	r := authRouter(parse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer  tok-123 ") // extra whitespace is trimmed
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "venue-42" {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}
	if seen != "tok-123" {
		t.Fatalf("parser received %q, want trimmed token", seen)
	}
}

func TestVenueID_AbsentAndBlank(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := VenueID(c); ok {
		t.Fatalf("expected absent venue ID")
	}
	c.Set("venueID", "")
	if _, ok := VenueID(c); ok {
		t.Fatalf("blank venue ID should report absent")
	}
}
