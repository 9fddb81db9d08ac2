package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"core/internal/config"
	"core/internal/model"
	"core/internal/resilience"
)

// SearchQuery is one inventory query. Nil pointer fields are omitted from
// the request, leaving that constraint unset.
type SearchQuery struct {
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	HouseType *string
	Bedrooms  *int
	Amenities []string
	UserLat   *float64
	UserLon   *float64
	Status    string
}

// InventoryClient calls the search-filters service for candidate properties.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
	policy     *resilience.Policy
}

// NewInventoryClient creates a new inventory search client guarded by the
// given resilience policy.
func NewInventoryClient(cfg *config.ServicesConfig, policy *resilience.Policy) *InventoryClient {
	return &InventoryClient{
		baseURL: cfg.SearchFiltersURL,
		policy:  policy,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.SearchTimeout) * time.Second,
		},
	}
}

// Search returns the candidate properties matching the query.
func (c *InventoryClient) Search(ctx context.Context, q SearchQuery) ([]model.Property, error) {
	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) ([]model.Property, error) {
		return c.search(ctx, q)
	})
}

func (c *InventoryClient) search(ctx context.Context, q SearchQuery) ([]model.Property, error) {
	params := url.Values{}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*q.MinPrice, 'f', 2, 64))
	}
	if q.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*q.MaxPrice, 'f', 2, 64))
	}
	if q.HouseType != nil {
		params.Set("house_type", *q.HouseType)
	}
	if q.Bedrooms != nil {
		params.Set("bedrooms", strconv.Itoa(*q.Bedrooms))
	}
	for _, a := range q.Amenities {
		params.Add("amenities", a)
	}
	if q.UserLat != nil {
		params.Set("user_lat", strconv.FormatFloat(*q.UserLat, 'f', 6, 64))
	}
	if q.UserLon != nil {
		params.Set("user_lon", strconv.FormatFloat(*q.UserLon, 'f', 6, 64))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}

	reqURL := fmt.Sprintf("%s/api/v1/search?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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
		return nil, resilience.NewAuthError("search-filters", resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results []model.Property `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	return result.Results, nil
}
