package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"core/internal/config"
	"core/internal/resilience"
)

// GeminiClient handles Gemini API interactions for text generation and
// embeddings.
type GeminiClient struct {
	config     *config.GeminiConfig
	httpClient *http.Client
	policy     *resilience.Policy
}

// NewGeminiClient creates a new Gemini client guarded by the given
// resilience policy.
func NewGeminiClient(cfg *config.GeminiConfig, policy *resilience.Policy) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		policy: policy,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *GeminiClient) IsEnabled() bool {
	return c.config.Enabled
}

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GenerateContent requests a completion from the named model.
func (c *GeminiClient) GenerateContent(ctx context.Context, modelName, prompt string) (string, error) {
	if !c.config.Enabled {
		return "", fmt.Errorf("gemini API is not enabled (missing API key)")
	}

	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.generate(ctx, modelName, prompt)
	})
}

// GenerateWithFallback tries the primary chat model, then the fallback model
// on any failure. An error is returned only when both models fail.
func (c *GeminiClient) GenerateWithFallback(ctx context.Context, prompt string) (string, error) {
	text, err := c.GenerateContent(ctx, c.config.ChatModel, prompt)
	if err == nil {
		return text, nil
	}
	log.Printf("Warning: primary model %s failed, trying %s: %v", c.config.ChatModel, c.config.FallbackModel, err)

	text, fbErr := c.GenerateContent(ctx, c.config.FallbackModel, prompt)
	if fbErr == nil {
		return text, nil
	}
	return "", fmt.Errorf("both generation models failed: %v; fallback: %w", err, fbErr)
}

func (c *GeminiClient) generate(ctx context.Context, modelName, prompt string) (string, error) {
	req := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.APIBase, modelName, c.config.APIKey)
	body, err := c.post(ctx, url, reqBody, "gemini")
	if err != nil {
		return "", err
	}

	var result geminiGenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model %s", modelName)
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// Embed returns the embedding vector for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("gemini API is not enabled (missing API key)")
	}

	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) ([]float32, error) {
		req := geminiEmbedRequest{
			Model:   "models/" + c.config.EmbeddingModel,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		}
		reqBody, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.config.APIBase, c.config.EmbeddingModel, c.config.APIKey)
		body, err := c.post(ctx, url, reqBody, "gemini-embed")
		if err != nil {
			return nil, err
		}

		var result geminiEmbedResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
		}
		if len(result.Embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding from model %s", c.config.EmbeddingModel)
		}

		return result.Embedding.Values, nil
	})
}

// post sends a JSON POST and classifies the response status for the
// resilience policy.
func (c *GeminiClient) post(ctx context.Context, url string, reqBody []byte, service string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, resilience.NewTransientError(fmt.Errorf("failed to send request: %w", err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(fmt.Errorf("failed to read response: %w", err), 0)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resilience.NewAuthError(service, resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
