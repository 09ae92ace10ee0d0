// Package places is a minimal client for the Places API (New) text search.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient builds a client that waits at least delay between requests.
func NewClient(apiKey string, delay time.Duration) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		limiter:    newLimiter(delay),
	}
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// NewSearchRequest fills the fixed request fields and biases the search to a
// circle around the given center.
func NewSearchRequest(textQuery string, lat, lng, radius float64) SearchRequest {
	return SearchRequest{
		TextQuery:      textQuery,
		LanguageCode:   "ja",
		MaxResultCount: MaxResultCount,
		LocationBias: &LocationBias{Circle: Circle{
			Center: LatLng{Latitude: lat, Longitude: lng},
			Radius: radius,
		}},
	}
}

// SearchText runs one places:searchText call restricted to fieldMask.
func (c *Client) SearchText(ctx context.Context, in SearchRequest, fieldMask []string) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", strings.Join(fieldMask, ","))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out SearchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("places api: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || out.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("places api: status %d: %s", resp.StatusCode, msg)
	}
	return &out, nil
}
