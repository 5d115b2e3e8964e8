package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/metrics"
	"github.com/kailas-cloud/intentsearch/internal/transport/classifier"
)

const provider = "openai"

// systemPrompt pins the model to the classification service's JSON contract.
const systemPrompt = `You classify storefront search queries for a sports retailer.
Reply with a single JSON object and nothing else:
{"intent": [...], "fixedQuery": "...", "suggestedPages": [...], "isGibberish": false}
- intent: zero or more of "product", "content", "community", "sport", "staticPage", "brand".
- fixedQuery: the query with spelling corrected; the query itself if already correct.
- suggestedPages: names of static pages (About, Contact, FAQ, Shipping, Returns, Privacy, Terms, Careers) the user is looking for, most likely first.
- isGibberish: true when the query is not meaningful text.`

// Classifier classifies queries with an OpenAI-compatible chat model.
type Classifier struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// Config holds the LLM provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	User    string
	Logger  *zap.Logger
}

// NewClassifier creates an OpenAI-compatible classifier.
func NewClassifier(cfg *Config) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Classifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// Classify asks the model for a JSON classification of q.
// Every failure wraps domain.ErrClassifierUnavailable.
func (c *Classifier) Classify(ctx context.Context, q query.Query) (intent.Classification, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: q.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		User:        c.user,
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)
	metrics.ClassifierRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())

	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues(provider, "error").Inc()
		return intent.Classification{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ClassifierRequestsTotal.WithLabelValues(provider, "invalid_response").Inc()
		return intent.Classification{}, fmt.Errorf("empty completion: %w", domain.ErrClassifierUnavailable)
	}

	cls, err := classifier.Decode([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues(provider, "invalid_response").Inc()
		return intent.Classification{}, err
	}

	metrics.ClassifierRequestsTotal.WithLabelValues(provider, "success").Inc()
	c.logger.Debug("Classification completed",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return cls, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Classifier) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	wrap := domain.ErrClassifierUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("classification API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("classification API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("classification API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("classification request failed: %w: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
