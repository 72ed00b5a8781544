package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/config"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

func assistantCfg(key, baseURL string) config.AssistantConfig {
	return config.AssistantConfig{
		APIKey:        key,
		GroqBaseURL:   baseURL,
		OpenAIBaseURL: baseURL,
		GroqModel:     "llama3-8b-8192",
		OpenAIModel:   "gpt-3.5-turbo",
		MaxTokens:     150,
		Temperature:   0.7,
		Timeout:       2 * time.Second,
	}
}

func TestNewClient_NoKey_ReturnsNil(t *testing.T) {
	if c := NewClient(assistantCfg("", "http://unused")); c != nil {
		t.Fatalf("expected nil client without a credential")
	}
	if c := NewClient(assistantCfg("   ", "http://unused")); c != nil {
		t.Fatalf("expected nil client for blank credential")
	}
}

func TestNewClient_ProviderSelection(t *testing.T) {
	groq := NewClient(assistantCfg("gsk_abc123", "http://x"))
	if groq == nil || groq.Model() != "llama3-8b-8192" {
		t.Fatalf("gsk_ prefix must select the groq model, got %v", groq)
	}

	openai := NewClient(assistantCfg("sk-abc123", "http://x"))
	if openai == nil || openai.Model() != "gpt-3.5-turbo" {
		t.Fatalf("non-groq key must select the openai model, got %v", openai)
	}
}

func TestClient_Advance_SendsSystemPromptAndBearer(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"What color was it?"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(assistantCfg("gsk_test", srv.URL))
	reply, err := c.Advance(context.Background(), []domain.Turn{
		{Role: domain.RoleUser, Content: "I lost my phone"},
	})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if reply != "What color was it?" {
		t.Fatalf("reply = %q", reply)
	}
	if gotAuth != "Bearer gsk_test" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != domain.RoleSystem {
		t.Fatalf("request must lead with the system turn, got %+v", gotReq.Messages)
	}
	if gotReq.Model != "llama3-8b-8192" {
		t.Fatalf("model = %q", gotReq.Model)
	}
}

func TestClient_Advance_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(assistantCfg("gsk_test", srv.URL))
	if _, err := c.Advance(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestClient_Advance_EmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(assistantCfg("gsk_test", srv.URL))
	if _, err := c.Advance(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}

func TestEngine_FallsBackToScriptOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEngine(NewClient(assistantCfg("gsk_test", srv.URL)))
	got := e.Advance(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "I lost my phone"}})
	if got != scriptPrompts[0] {
		t.Fatalf("got %q, want first scripted prompt", got)
	}
}

func TestEngine_NilRemoteUsesScript(t *testing.T) {
	e := NewEngine(nil)
	got := e.Advance(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hello"}})
	if got != scriptPrompts[0] {
		t.Fatalf("got %q, want first scripted prompt", got)
	}
}

func TestEngine_UsesRemoteWhenHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"remote says hi"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(assistantCfg("gsk_test", srv.URL)))
	got := e.Advance(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hello"}})
	if got != "remote says hi" {
		t.Fatalf("got %q", got)
	}
}
