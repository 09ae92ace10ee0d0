// Package overpass queries the OpenStreetMap Overpass API for aggregate counts.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://overpass-api.de/api/interpreter"

// Circle is the search area of a count query, radius in meters.
type Circle struct {
	Lat, Lng, Radius float64
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient returns a client that spaces requests by at least delay.
func NewClient(delay time.Duration) *Client {
	lim := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		lim = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Client{
		httpClient: http.DefaultClient,
		endpoint:   defaultEndpoint,
		userAgent:  "cuisinemap/1.0",
		limiter:    lim,
	}
}

type countResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

var unsafeTag = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// Query builds an Overpass QL count of restaurants whose cuisine tag matches
// any of tags, case-insensitively, inside area.
func Query(area Circle, tags []string) string {
	alts := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = unsafeTag.ReplaceAllString(t, ""); t != "" {
			alts = append(alts, t)
		}
	}
	filter := fmt.Sprintf(`["amenity"="restaurant"]["cuisine"~"%s",i](around:%s,%s,%s)`,
		strings.Join(alts, "|"), ftoa(area.Radius), ftoa(area.Lat), ftoa(area.Lng))
	return fmt.Sprintf("[out:json][timeout:60];(node%s;way%s;);out count;", filter, filter)
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Count returns the number of matching elements reported by the server.
func (c *Client) Count(ctx context.Context, area Circle, tags []string) (int, error) {
	if len(tags) == 0 {
		return 0, fmt.Errorf("overpass: no cuisine tags given")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	form := url.Values{}
	form.Set("data", Query(area, tags))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("overpass: status %d", resp.StatusCode)
	}

	var out countResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("overpass: decode: %w", err)
	}
	if len(out.Elements) == 0 {
		return 0, fmt.Errorf("overpass: empty count response")
	}
	total, err := strconv.Atoi(out.Elements[0].Tags["total"])
	if err != nil {
		return 0, fmt.Errorf("overpass: bad total %q: %w", out.Elements[0].Tags["total"], err)
	}
	return total, nil
}
