package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func idemRouter(lookup IdempotencyLookup, inspect func(*gin.Context)) *gin.Engine {
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/x", func(c *gin.Context) {
		if inspect != nil {
			inspect(c)
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestIdempotencyValidator_NoHeader_NoOp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var sawKey, sawReplay bool
	r := idemRouter(nil, func(c *gin.Context) {
		_, sawKey = GetIdempotencyKey(c)
		sawReplay = IsReplay(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sawKey || sawReplay {
		t.Fatalf("no header should leave context untouched: key=%v replay=%v", sawKey, sawReplay)
	}
}

func TestIdempotencyValidator_InvalidKey_Rejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []string{
		"bad key with spaces",
		"emoji-⚡",
		strings.Repeat("a", 201),
	}
	for _, key := range cases {
		r := idemRouter(nil, nil)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: expected 400, got %d", key, w.Code)
		}
		if !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: expected bad_idempotency_key body, got %s", key, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_ValidKey_StashedInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotKey string
	r := idemRouter(nil, func(c *gin.Context) { gotKey, _ = GetIdempotencyKey(c) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(HeaderIdempotencyKey, "retry-abc.123:v1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || gotKey != "retry-abc.123:v1" {
		t.Fatalf("code=%d key=%q", w.Code, gotKey)
	}
}

func TestIdempotencyValidator_ReplayDetection_SetsFlags(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotSubject, gotKey string
	lookup := func(_ context.Context, subject, key string, _ time.Time) (bool, error) {
		gotSubject, gotKey = subject, key
		return true, nil
	}

	var replay, bypass bool
	r := idemRouter(lookup, func(c *gin.Context) {
		replay = IsReplay(c)
		bypass = IsRateBypass(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = "203.0.113.5:4444"
	req.Header.Set(HeaderIdempotencyKey, "same-key")
	r.ServeHTTP(w, req)

	if !replay || !bypass {
		t.Fatalf("expected replay+bypass flags, got replay=%v bypass=%v", replay, bypass)
	}
	if gotKey != "same-key" || !strings.HasPrefix(gotSubject, "ip:") {
		t.Fatalf("lookup called with subject=%q key=%q", gotSubject, gotKey)
	}
}

func TestIdempotencyValidator_LookupErrorDoesNotBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)

	lookup := func(_ context.Context, _, _ string, _ time.Time) (bool, error) {
		return false, errors.New("db down")
	}
	var replay bool
	r := idemRouter(lookup, func(c *gin.Context) { replay = IsReplay(c) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || replay {
		t.Fatalf("lookup error should not block or flag replay: code=%d replay=%v", w.Code, replay)
	}
}

func TestIdempotencySubject_VenueOverIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.RemoteAddr = "203.0.113.1:1000"

	if got := IdempotencySubject(c); !strings.HasPrefix(got, "ip:") {
		t.Fatalf("expected ip subject, got %q", got)
	}
	c.Set("venueID", "v9")
	if got := IdempotencySubject(c); got != "venue:v9" {
		t.Fatalf("expected venue subject, got %q", got)
	}
}
