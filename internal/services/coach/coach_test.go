package coach

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
)

func newOpenAITestClient(url string) *OpenAIClient {
	return NewOpenAIClient(config.Coach{
		CoachAPIKey:  "test-key",
		CoachBaseURL: url,
		CoachModel:   "gpt-4o-mini",
		CoachTimeout: 5 * time.Second,
	})
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Try three sets of squats."}}]}`))
	}))
	defer server.Close()

	client := newOpenAITestClient(server.URL)
	reply, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "coach"},
		{Role: "user", Content: "leg day ideas?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try three sets of squats.", reply)
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth_error"}}`))
	}))
	defer server.Close()

	client := newOpenAITestClient(server.URL)
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestChat_AddsSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "how do I start running?", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Start slow."}}]}`))
	}))
	defer server.Close()

	svc := New(newOpenAITestClient(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	reply, err := svc.Chat(context.Background(), "user-1", "how do I start running?")
	require.NoError(t, err)
	assert.Equal(t, "Start slow.", reply)
}
