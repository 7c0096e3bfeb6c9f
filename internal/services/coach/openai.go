package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
)

const completionsEndpoint = "/chat/completions"

// OpenAIClient клиент chat-completions API, совместимого с OpenAI.
type OpenAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIClient создает клиента по настройкам конфигурации.
func NewOpenAIClient(cfg config.Coach) *OpenAIClient {
	return &OpenAIClient{
		client: &http.Client{
			Timeout: cfg.CoachTimeout,
		},
		baseURL: cfg.CoachBaseURL,
		apiKey:  cfg.CoachAPIKey,
		model:   cfg.CoachModel,
	}
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete выполняет запрос к chat-completions API и возвращает
// содержимое первого ответа модели.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	const op = "coach.Complete"

	payload, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+completionsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("%s: api error: %s", op, parsed.Error.Message)
		}
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: empty completion", op)
	}
	return parsed.Choices[0].Message.Content, nil
}
