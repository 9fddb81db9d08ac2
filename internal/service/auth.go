package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"core/internal/config"
	"core/internal/resilience"
)

// AuthUser is the verified identity returned by the user-management service.
type AuthUser struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AuthClient verifies bearer tokens against the user-management service.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	policy     *resilience.Policy
}

// NewAuthClient creates a token-verification client guarded by the given
// resilience policy.
func NewAuthClient(cfg *config.ServicesConfig, policy *resilience.Policy) *AuthClient {
	return &AuthClient{
		baseURL: cfg.UserManagementURL,
		policy:  policy,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.AuthTimeout) * time.Second,
		},
	}
}

// Verify checks the bearer token and returns the verified identity.
func (c *AuthClient) Verify(ctx context.Context, token string) (*AuthUser, error) {
	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) (*AuthUser, error) {
		return c.verify(ctx, token)
	})
}

func (c *AuthClient) verify(ctx context.Context, token string) (*AuthUser, error) {
	reqURL := fmt.Sprintf("%s/auth/verify", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

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
		return nil, resilience.NewAuthError("user-management", resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("token verification failed with status %d", resp.StatusCode), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("token verification failed with status %d: %s", resp.StatusCode, string(body))
	}

	var user AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification response: %w", err)
	}
	return &user, nil
}
