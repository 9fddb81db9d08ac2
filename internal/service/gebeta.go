package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"core/internal/config"
	"core/internal/resilience"
)

// MatrixResult is one per-destination distance from the routing matrix.
type MatrixResult struct {
	DistanceMeters float64 `json:"distance"`
}

// GebetaClient calls the Gebeta Maps routing-matrix API.
type GebetaClient struct {
	config     *config.GebetaConfig
	httpClient *http.Client
	policy     *resilience.Policy
}

// NewGebetaClient creates a new routing-matrix client guarded by the given
// resilience policy.
func NewGebetaClient(cfg *config.GebetaConfig, policy *resilience.Policy) *GebetaClient {
	return &GebetaClient{
		config: cfg,
		policy: policy,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *GebetaClient) IsEnabled() bool {
	return c.config.Enabled
}

// Matrix returns point-to-point road distances from the origin to each
// destination, in request order. At most 10 destinations are supported by the
// provider; callers must truncate before calling.
func (c *GebetaClient) Matrix(ctx context.Context, originLat, originLon float64, destinations [][2]float64) ([]MatrixResult, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("gebeta API is not enabled (missing API key)")
	}
	if len(destinations) == 0 {
		return []MatrixResult{}, nil
	}

	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) ([]MatrixResult, error) {
		return c.matrix(ctx, originLat, originLon, destinations)
	})
}

func (c *GebetaClient) matrix(ctx context.Context, originLat, originLon float64, destinations [][2]float64) ([]MatrixResult, error) {
	dests := make([]string, 0, len(destinations))
	for _, d := range destinations {
		dests = append(dests, fmt.Sprintf("%f,%f", d[0], d[1]))
	}

	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", originLat, originLon))
	params.Set("destinations", strings.Join(dests, ";"))

	reqURL := fmt.Sprintf("%s/matrix?%s", c.config.APIBase, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-Gebeta-API-Key", c.config.APIKey)

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
		return nil, resilience.NewAuthError("gebeta", resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("matrix request failed with status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("matrix request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Distances []MatrixResult `json:"distances"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matrix response: %w", err)
	}
	if len(result.Distances) != len(destinations) {
		return nil, fmt.Errorf("matrix response has %d distances for %d destinations", len(result.Distances), len(destinations))
	}

	return result.Distances, nil
}
