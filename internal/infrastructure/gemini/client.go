// Package gemini wraps the Gemini API for response phrasing and text embeddings.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/furnilens/backend/internal/domain"
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured
var ErrMissingAPIKey = errors.New("gemini api key not configured")

const (
	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	defaultMaxRetries     = 3
)

// modelsAPI is the part of genai.Models the client uses
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config holds Gemini client settings
type Config struct {
	APIKey            string
	Model             string
	EmbeddingModel    string
	Dimension         int
	RequestsPerMinute int
	MaxRetries        int
	Debug             bool
}

// Client implements domain.TextGenerator and domain.Embedder
type Client struct {
	models         modelsAPI
	model          string
	embeddingModel string
	dimension      int32
	rateLimiter    *rate.Limiter
	maxRetries     int
	debug          bool
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Gemini client backed by the public Gemini API
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return newClient(gc.Models, cfg), nil
}

func newClient(models modelsAPI, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	// Requests per minute; zero disables limiting
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = min(cfg.RequestsPerMinute, 5)
	}

	return &Client{
		models:         models,
		model:          model,
		embeddingModel: embeddingModel,
		dimension:      int32(cfg.Dimension),
		rateLimiter:    rate.NewLimiter(limit, burst),
		maxRetries:     maxRetries,
		debug:          cfg.Debug,
		sleep:          sleepContext,
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Debug().Msgf("[GEMINI] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retry number attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryable reports whether an API error is worth another attempt
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return true
}

// withRetry runs call under the rate limiter, retrying transient failures
func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		err := call()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().Msgf("[GEMINI] %s failed (attempt %d): %v", op, attempt, err)

		if !isRetryable(err) || attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, exponentialBackoff(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// EnhanceMessage asks the model for a short conversational message about the results
func (c *Client) EnhanceMessage(ctx context.Context, query string, products []domain.ProductSummary) (string, error) {
	prompt, err := buildPrompt(query, products)
	if err != nil {
		return "", err
	}
	c.debugLog("prompt for %q:\n%s", query, prompt)

	var text string
	err = c.withRetry(ctx, "GenerateContent", func() error {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrGenerationFailed)
	}

	log.Info().Msgf("[GEMINI] Generated message for query: %q", query)
	return text, nil
}

// Embed returns one embedding vector per input text, in order
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Role: "user", Parts: []*genai.Part{{Text: text}}}
	}

	cfg := &genai.EmbedContentConfig{}
	if c.dimension > 0 {
		cfg.OutputDimensionality = genai.Ptr(c.dimension)
	}

	var vectors [][]float32
	err := c.withRetry(ctx, "EmbedContent", func() error {
		resp, err := c.models.EmbedContent(ctx, c.embeddingModel, contents, cfg)
		if err != nil {
			return err
		}
		if len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
		}
		vectors = make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			vectors[i] = e.Values
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}

	c.debugLog("embedded %d texts with %s", len(texts), c.embeddingModel)
	return vectors, nil
}

const promptTemplate = `You are a helpful furniture shopping assistant. A customer searched for: %q

Top matching products:
%s

Write a friendly reply of 2-3 sentences that:
1. Acknowledges what they asked for
2. Summarizes the variety and price range of what was found
3. Ends with one short follow-up question

Do not invent products that are not listed.`

func buildPrompt(query string, products []domain.ProductSummary) (string, error) {
	summary, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode product summary: %w", err)
	}
	return fmt.Sprintf(promptTemplate, query, summary), nil
}
