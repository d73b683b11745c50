// Package chat calls an Azure OpenAI-compatible chat completion deployment
// and surfaces the usage metadata the cost engine prices.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/models"
)

// SystemPrompt frames the assistant for clinical quality staff.
const SystemPrompt = `You are a clinical quality analytics assistant helping healthcare quality leaders
analyze VTE (Venous Thromboembolism) prevention performance data. You help identify:
- Performance trends against goals
- Departments or units needing improvement
- Opportunities to enhance VTE prophylaxis rates
- Patterns in clinical quality metrics

Be concise, data-driven, and actionable in your responses. When discussing metrics,
reference specific numbers and percentages when available.`

const maxRetries = 3

// Client sends chat completion requests to Azure OpenAI deployments.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

// New creates a Client from the OpenAI configuration.
func New(cfg config.OpenAIConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// resolveDeployment maps a model name to the endpoint and deployment serving
// it. Models without a configured entry go to the default endpoint, using
// the model name as the deployment.
func (c *Client) resolveDeployment(model string) (endpoint, deployment string) {
	for _, d := range c.cfg.Models {
		if strings.EqualFold(d.Model, model) {
			endpoint, deployment = d.Endpoint, d.Deployment
			if endpoint == "" {
				endpoint = c.cfg.Endpoint
			}
			if deployment == "" {
				deployment = d.Model
			}
			return endpoint, deployment
		}
	}
	if model == "" {
		return c.cfg.Endpoint, c.cfg.Deployment
	}
	return c.cfg.Endpoint, model
}

// completionURL builds the Azure OpenAI chat completions URL for a deployment.
func (c *Client) completionURL(endpoint, deployment string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), deployment, c.cfg.APIVersion)
}

// Complete sends one chat completion request. The system prompt is prepended
// when the caller did not supply one. Transient upstream failures (429, 5xx)
// are retried up to three times with a linear backoff.
func (c *Client) Complete(ctx context.Context, model string, messages []models.ChatMessage, maxTokens int) (*models.ChatCompletionResponse, error) {
	endpoint, deployment := c.resolveDeployment(model)
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured for model %q", model)
	}

	if len(messages) == 0 || messages[0].Role != "system" {
		messages = append([]models.ChatMessage{{Role: "system", Content: SystemPrompt}}, messages...)
	}

	reqBody := models.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = &maxTokens
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	url := c.completionURL(endpoint, deployment)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create completion request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("api-key", c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read completion response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("completion API returned %d: %s", resp.StatusCode, truncate(body, 200))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("completion API returned %d: %s", resp.StatusCode, truncate(body, 200))
		}

		var completion models.ChatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			return nil, fmt.Errorf("parse completion response: %w", err)
		}
		return &completion, nil
	}

	return nil, fmt.Errorf("completion failed after %d attempts: %w", maxRetries+1, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
