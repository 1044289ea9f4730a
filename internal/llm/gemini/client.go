package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/perito/internal/llm"
)

const DefaultModel = "gemini-flash-latest"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// Client generates with the Gemini API.
type Client struct {
	cfg    Config
	models *genai.Models
	logger *slog.Logger
}

var _ llm.Generator = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	logger.Debug("llm.gemini.client_ready", "model", cfg.Model)
	return &Client{cfg: cfg, models: client.Models, logger: logger}, nil
}

func (c *Client) Name() string { return "gemini:" + c.cfg.Model }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		c.logger.Error("llm.gemini.generate_failed", "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	text := resp.Text()
	c.logger.Info("llm.gemini.generate_ok",
		"model", c.cfg.Model,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
