// Package discovery finds rare cuisines: genres with only a handful of
// restaurants in an area.
package discovery

import (
	"context"
	"time"

	"cuisinemap/internal/counter"
	"cuisinemap/internal/models"
	"cuisinemap/pkg/geo"
	"cuisinemap/pkg/places"

	"go.uber.org/zap"
)

const (
	MinRare = 1
	MaxRare = 10

	unknownName = "名称不明"
)

// InBand reports whether n qualifies as rare.
func InBand(n int) bool {
	return n >= MinRare && n <= MaxRare
}

type Scanner struct {
	search   counter.Searcher
	cuisines []models.RareCuisine
	areas    []models.Area
	now      func() time.Time
	log      *zap.Logger
}

func NewScanner(search counter.Searcher, cuisines []models.RareCuisine, areas []models.Area, log *zap.Logger) *Scanner {
	return &Scanner{search: search, cuisines: cuisines, areas: areas, now: time.Now, log: log}
}

// Scan queries every rare cuisine in every area, cuisine outer. A failed
// search is logged and treated as "not rare here". Scan only fails when ctx
// is canceled.
func (s *Scanner) Scan(ctx context.Context) (*models.DiscoveryDocument, error) {
	doc := &models.DiscoveryDocument{
		LastUpdated: s.now().UTC().Format("2006-01-02"),
		Discoveries: []models.Discovery{},
	}

	for _, c := range s.cuisines {
		entry := models.Discovery{
			CuisineName: c.Name,
			Flag:        c.Flag,
			ByArea:      map[string]models.AreaDiscovery{},
		}
		for _, a := range s.areas {
			restaurants, err := s.searchArea(ctx, c, a)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.Warn("discovery search failed",
					zap.String("cuisine", c.Name), zap.String("area", a.ID), zap.Error(err))
				continue
			}
			if !InBand(len(restaurants)) {
				s.log.Debug("not rare here", zap.String("cuisine", c.Name), zap.String("area", a.ID), zap.Int("count", len(restaurants)))
				continue
			}
			entry.ByArea[a.ID] = models.AreaDiscovery{Count: len(restaurants), Restaurants: restaurants}
			entry.TotalCount += len(restaurants)
			s.log.Info("rare cuisine found", zap.String("cuisine", c.Name), zap.String("area", a.ID), zap.Int("count", len(restaurants)))
		}
		if len(entry.ByArea) > 0 {
			doc.Discoveries = append(doc.Discoveries, entry)
		}
	}

	s.log.Info("discovery scan finished", zap.Int("discoveries", len(doc.Discoveries)))
	return doc, nil
}

func (s *Scanner) searchArea(ctx context.Context, c models.RareCuisine, a models.Area) ([]models.Restaurant, error) {
	req := places.NewSearchRequest(c.Query+" "+a.Name, a.Lat, a.Lng, a.Radius)
	req.IncludedType = "restaurant"

	resp, err := s.search.SearchText(ctx, req, places.DiscoveryFields)
	if err != nil {
		return nil, err
	}
	out := make([]models.Restaurant, 0, len(resp.Places))
	for _, p := range resp.Places {
		name := p.Name()
		if name == "" {
			name = unknownName
		}
		out = append(out, models.Restaurant{
			Name:    name,
			Address: p.FormattedAddress,
			PlaceID: placeID(p.ID),
			Area:    geo.Locality(p.FormattedAddress),
		})
	}
	return out, nil
}

func placeID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
