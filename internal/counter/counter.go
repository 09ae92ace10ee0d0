// Package counter turns search responses into per-area store counts.
package counter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cuisinemap/internal/models"
	"cuisinemap/pkg/overpass"
	"cuisinemap/pkg/places"
)

const (
	// MaxPages bounds the paginated policy.
	MaxPages = 3
	// Cap is the saturation threshold of the paginated policy.
	Cap = MaxPages * places.MaxResultCount
)

var ErrUnknownPolicy = errors.New("counter: unknown policy")

// Counter produces the count for one (cuisine, area) pair.
type Counter interface {
	Count(ctx context.Context, cuisine models.Cuisine, area models.Area) (models.Count, error)
}

// Searcher is the subset of the places client the policies use.
type Searcher interface {
	SearchText(ctx context.Context, in places.SearchRequest, fieldMask []string) (*places.SearchResponse, error)
}

// Aggregator is the subset of the overpass client the open-data policy uses.
type Aggregator interface {
	Count(ctx context.Context, area overpass.Circle, tags []string) (int, error)
}

const (
	PolicySingle    = "single"
	PolicyPaginated = "paginated"
	PolicyUnion     = "union"
	PolicyOpenData  = "opendata"
)

// New selects a policy by name. The open-data policy needs agg; the others
// need s.
func New(policy string, s Searcher, agg Aggregator) (Counter, error) {
	switch policy {
	case PolicySingle:
		return &SingleCall{Search: s}, nil
	case "", PolicyPaginated:
		return &Paginated{Search: s, PageDelay: 300 * time.Millisecond}, nil
	case PolicyUnion:
		return &Union{Search: s}, nil
	case PolicyOpenData:
		return &OpenData{Aggregate: agg}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

func searchRequest(query string, area models.Area) places.SearchRequest {
	return places.NewSearchRequest(query+" "+area.Name, area.Lat, area.Lng, area.Radius)
}

// SingleCall issues one request. A full page means the true count is unknown.
type SingleCall struct {
	Search Searcher
}

func (p *SingleCall) Count(ctx context.Context, cuisine models.Cuisine, area models.Area) (models.Count, error) {
	resp, err := p.Search.SearchText(ctx, searchRequest(cuisine.Query, area), places.CountFields)
	if err != nil {
		return models.Count{}, err
	}
	n := len(resp.Places)
	if n >= places.MaxResultCount {
		return models.AtLeast(places.MaxResultCount), nil
	}
	return models.Exact(n), nil
}

// Paginated follows page tokens for up to MaxPages pages and saturates at Cap.
type Paginated struct {
	Search    Searcher
	PageDelay time.Duration
}

func (p *Paginated) Count(ctx context.Context, cuisine models.Cuisine, area models.Area) (models.Count, error) {
	req := searchRequest(cuisine.Query, area)
	total := 0
	for page := 0; page < MaxPages; page++ {
		resp, err := p.Search.SearchText(ctx, req, places.CountFields)
		if err != nil {
			return models.Count{}, fmt.Errorf("page %d: %w", page+1, err)
		}
		total += len(resp.Places)
		if total >= Cap {
			return models.AtLeast(Cap), nil
		}
		if len(resp.Places) < places.MaxResultCount || resp.NextPageToken == "" {
			break
		}
		req.PageToken = resp.NextPageToken
		if err := sleep(ctx, p.PageDelay); err != nil {
			return models.Count{}, err
		}
	}
	return models.Exact(total), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SubQueries splits an OR-joined query into its alternatives.
func SubQueries(query string) []string {
	var out []string
	for _, q := range strings.Split(query, " OR ") {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// SubResult is the outcome of one alternative of a union count.
type SubResult struct {
	Query string
	IDs   int
	Err   error
}

// Union counts each alternative of the query separately and reports the
// number of distinct places across all of them.
type Union struct {
	Search Searcher
}

func (p *Union) Count(ctx context.Context, cuisine models.Cuisine, area models.Area) (models.Count, error) {
	n, _, err := p.Breakdown(ctx, cuisine.Query, area)
	if err != nil {
		return models.Count{}, err
	}
	return models.Exact(n), nil
}

// Breakdown returns the union size plus a per-alternative result. Failed
// alternatives are reported, not fatal; the call fails only if all of them do.
func (p *Union) Breakdown(ctx context.Context, query string, area models.Area) (int, []SubResult, error) {
	seen := make(map[string]struct{})
	subs := SubQueries(query)
	if len(subs) == 0 {
		return 0, nil, errors.New("counter: empty query")
	}
	results := make([]SubResult, 0, len(subs))
	failed := 0
	for _, q := range subs {
		resp, err := p.Search.SearchText(ctx, searchRequest(q, area), []string{"places.id"})
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			failed++
			results = append(results, SubResult{Query: q, Err: err})
			continue
		}
		for _, pl := range resp.Places {
			seen[pl.ID] = struct{}{}
		}
		results = append(results, SubResult{Query: q, IDs: len(resp.Places)})
	}
	if failed == len(subs) {
		return 0, results, fmt.Errorf("all %d sub-queries failed: %w", failed, results[0].Err)
	}
	return len(seen), results, nil
}

// OpenData counts via the Overpass aggregate query using the cuisine's OSM
// tag synonyms. The result is always exact.
type OpenData struct {
	Aggregate Aggregator
}

func (p *OpenData) Count(ctx context.Context, cuisine models.Cuisine, area models.Area) (models.Count, error) {
	if len(cuisine.OSMTags) == 0 {
		return models.Count{}, fmt.Errorf("cuisine %s has no osm tags", cuisine.ID)
	}
	n, err := p.Aggregate.Count(ctx, overpass.Circle{Lat: area.Lat, Lng: area.Lng, Radius: area.Radius}, cuisine.OSMTags)
	if err != nil {
		return models.Count{}, err
	}
	return models.Exact(n), nil
}
