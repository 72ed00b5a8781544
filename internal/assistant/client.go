// Package assistant implements the conversational engine behind the lost-item
// intake flow. A remote OpenAI-compatible chat-completion endpoint produces
// assistant replies when a credential is configured; a deterministic scripted
// responder covers the no-credential case and every remote failure.
//
// This file contains the HTTP client for the remote endpoint. Provider
// selection is a startup-time convention: credentials with the "gsk_" prefix
// talk to Groq, everything else talks to OpenAI.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/config"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// groqKeyPrefix marks a Groq credential; any other non-empty key is treated
// as an OpenAI credential.
const groqKeyPrefix = "gsk_"

// systemPrompt is the fixed instructional turn prepended to every remote
// request. The closing sentence is what the completion-phrase detection in
// the intake flow keys on.
const systemPrompt = `You are a helpful AI assistant for a Lost & Found system at venues like universities, malls, and hotels.

Your job is to help users report lost items by collecting the following information in a conversational, empathetic way:

1. **Item type** (phone, wallet, keys, bag, clothing, etc.)
2. **Color** and appearance
3. **Brand** or distinctive features
4. **Location** where they think they lost it (be specific - building, room, area)
5. **Additional description** (size, condition, unique markings)
6. **Contact information** (name, email, phone number)

**Guidelines:**
- Ask ONE question at a time
- Be empathetic and understanding - losing something is stressful
- Keep responses short and conversational (1-2 sentences max)
- Use natural language, not formal questionnaire style
- If they give multiple answers at once, acknowledge all but focus on one missing piece
- Be encouraging - let them know you're here to help find their item
- Once you have ALL the required information (item type, color, brand/features, location, description, name, email, phone), end by saying "Great news! We may have your item at our venue. Let me submit your claim now - you'll receive a tracking number shortly."

**IMPORTANT:** Only end the conversation when you have collected ALL required information. Do not submit until you have everything needed.

**Current conversation context:** User is reporting a lost item. Start by asking what they lost.`

// Responder produces one assistant utterance from the full turn history,
// which includes the latest user turn.
type Responder interface {
	Advance(ctx context.Context, history []domain.Turn) (string, error)
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []domain.Turn `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the subset of the chat-completions response we consume:
// only the first choice's message content is used.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpc       *http.Client
}

// NewClient builds a Client from the assistant configuration, selecting the
// provider from the credential prefix. It returns nil when no credential is
// configured; callers treat a nil client as "scripted responses only".
func NewClient(cfg config.AssistantConfig) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	baseURL, model := cfg.OpenAIBaseURL, cfg.OpenAIModel
	if strings.HasPrefix(cfg.APIKey, groqKeyPrefix) {
		baseURL, model = cfg.GroqBaseURL, cfg.GroqModel
	}
	log.Info().Str("model", model).Msg("assistant: remote completion endpoint configured")
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpc:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the model identifier sent with each completion request.
func (c *Client) Model() string { return c.model }

// Advance sends the system prompt plus the full history to the remote
// endpoint and returns the first choice's content verbatim. Any transport,
// status, or decoding problem is returned as an error; the caller decides
// how to recover (the Engine falls back to the script).
func (c *Client) Advance(ctx context.Context, history []domain.Turn) (string, error) {
	msgs := make([]domain.Turn, 0, len(history)+1)
	msgs = append(msgs, domain.Turn{Role: domain.RoleSystem, Content: systemPrompt})
	msgs = append(msgs, history...)

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded amount of the error body for the diagnostic log.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("assistant: completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("assistant: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("assistant: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}
