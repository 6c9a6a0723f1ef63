// Package agent dispatches prompts to the configured LLM backend and
// returns the raw generated text.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"rag/config"

	"github.com/pkoukk/tiktoken-go"
)

// ErrGeneration marks any transport error, timeout, or malformed
// response from the generation backend.
var ErrGeneration = errors.New("generation service")

const chatSystem = `You are a helpful assistant that answers strictly from the provided context and cites sources using the bracketed markers.`

type Generator struct {
	provider string
	url      string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

type Config struct {
	Provider string
	URL      string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

func New(cfg Config, logger *slog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider: cfg.Provider,
		url:      cfg.URL,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Generate sends the prompt to the configured provider. Generation is
// expected to take tens of seconds; the client timeout bounds it.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		g.logger.Info("generation finished", "provider", g.provider, "took", time.Since(start))
	}()

	if count, err := countTokens(prompt); err == nil {
		g.logger.Info("dispatching prompt", "provider", g.provider, "model", g.model, "prompt_tokens", count)
	}

	switch g.provider {
	case config.ProviderOpenAI:
		return g.generateChat(ctx, prompt)
	default:
		return g.generateOllama(ctx, prompt)
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response *string `json:"response"`
}

func (g *Generator) generateOllama(ctx context.Context, prompt string) (string, error) {
	body, err := g.post(ctx, ollamaRequest{Model: g.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}
	if parsed.Response == nil {
		return "", fmt.Errorf("%w: response field missing", ErrGeneration)
	}
	return *parsed.Response, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Generator) generateChat(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: chatSystem},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
		TopP:        0.9,
	}
	body, err := g.post(ctx, req)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGeneration)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (g *Generator) post(ctx context.Context, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrGeneration, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, body)
	}
	return body, nil
}

func countTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
