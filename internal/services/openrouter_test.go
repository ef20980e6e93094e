package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jobs-search/internal/models"
	"github.com/jobs-search/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchModel(t *testing.T) {
	assert.Equal(t, "openai/gpt-4o-mini:online", SearchModel("openai/gpt-4o-mini"))
	assert.Equal(t, "openai/gpt-4o-mini:online", SearchModel("openai/gpt-4o-mini:online"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(models.SearchQuery{Keywords: " python developer ", Location: "Austin, TX"})

	assert.Contains(t, prompt, `"python developer"`)
	assert.Contains(t, prompt, "Austin, TX")
	for _, label := range []string{"Title:", "Company:", "Location:", "Description:", "Link:"} {
		assert.Contains(t, prompt, label)
	}
	assert.Contains(t, prompt, parser.NoJobsMarker)
}

func TestBuildPromptAnyLocation(t *testing.T) {
	prompt := BuildPrompt(models.SearchQuery{Keywords: "go engineer"})

	assert.Contains(t, prompt, "in any location")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unauthorized status",
			err:  errors.New("request failed with status code 401: {\"error\":{\"message\":\"No auth credentials found\"}}"),
			want: ErrInvalidAPIKey,
		},
		{
			name: "transport failure",
			err:  &url.Error{Op: "Post", URL: "https://openrouter.ai/api/v1/chat/completions", Err: errors.New("dial tcp: lookup openrouter.ai: no such host")},
			want: ErrConnectivity,
		},
		{
			name: "wrapped transport failure",
			err:  fmt.Errorf("failed to send request: %w", &url.Error{Op: "Post", URL: "x", Err: io.EOF}),
			want: ErrConnectivity,
		},
		{
			name: "refused without url error",
			err:  errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
			want: ErrConnectivity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.err), tt.want)
		})
	}
}

func TestClassifyErrorOther(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"overloaded", errors.New("model overloaded")},
		{"digits in message", errors.New("prompt has 4013 tokens, limit is 4010")},
		{"moderation", errors.New("request failed with status code 403: {\"error\":{\"message\":\"Input was flagged by moderation\"}}")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(tt.err)

			assert.NotErrorIs(t, err, ErrInvalidAPIKey)
			assert.NotErrorIs(t, err, ErrConnectivity)
			assert.Contains(t, err.Error(), tt.err.Error())
		})
	}
}

func TestSearchAgainstStub(t *testing.T) {
	const reply = "Title: Backend Engineer\nCompany: Acme\nLocation: Remote\nDescription: Go services.\nLink: https://acme.example/jobs/1"

	var gotAuth, gotRaw string
	var gotBody struct {
		Model string `json:"model"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		gotRaw = string(raw)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stubCompletion(reply))
	}))
	defer srv.Close()

	svc := NewOpenRouterService("openai/gpt-4o-mini", "sk-test-key", srv.URL)
	got, err := svc.Search(context.Background(), models.SearchQuery{Keywords: "backend", Location: "Remote"})
	require.NoError(t, err)

	assert.Equal(t, reply, got)
	assert.Equal(t, "Bearer sk-test-key", gotAuth)
	assert.Equal(t, "openai/gpt-4o-mini:online", gotBody.Model)
	assert.Contains(t, gotRaw, "backend")
}

func TestSearchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewOpenRouterService("openai/gpt-4o-mini", "sk-test-key", "http://127.0.0.1:1")
	_, err := svc.Search(ctx, models.SearchQuery{Keywords: "backend"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchUnauthorizedStub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":401,"message":"No auth credentials found"}}`)
	}))
	defer srv.Close()

	svc := NewOpenRouterService("openai/gpt-4o-mini", "sk-revoked", srv.URL)
	_, err := svc.Search(context.Background(), models.SearchQuery{Keywords: "backend"})

	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestSearchDeadlineStopsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	svc := NewOpenRouterService("openai/gpt-4o-mini", "sk-test-key", srv.URL)
	start := time.Now()
	_, err := svc.Search(ctx, models.SearchQuery{Keywords: "backend"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

// stubCompletion is an OpenAI-compatible chat completion body.
func stubCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "gen-test",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "openai/gpt-4o-mini:online",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}
