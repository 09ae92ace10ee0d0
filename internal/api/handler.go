// Package api serves the registry, the latest discoveries, and live
// restaurant listings as JSON for the presentation layer.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cuisinemap/internal/counter"
	"cuisinemap/internal/history"
	"cuisinemap/internal/registry"

	"go.uber.org/zap"
)

const (
	maxShownRestaurants = 3
	defaultHistoryLimit = 52
	maxHistoryLimit     = 520
)

// HistoryReader is satisfied by *history.PostgresRepo.
type HistoryReader interface {
	ListCounts(ctx context.Context, cuisineID, areaID string, limit int) ([]history.Snapshot, error)
}

// Deps wires a Handler. Search and History may be nil; their endpoints then
// answer 503.
type Deps struct {
	Registry    *registry.Registry
	Discoveries *DiscoverySnapshot
	Search      counter.Searcher
	History     HistoryReader
	PhotoKey    string
	CacheTTL    time.Duration
	Log         *zap.Logger
}

// Handler serves the read API.
type Handler struct {
	reg         *registry.Registry
	discoveries *DiscoverySnapshot
	search      counter.Searcher
	history     HistoryReader
	photoKey    string
	cache       *placeCache
	now         func() time.Time
	logr        *zap.Logger
}

// NewHandler fills Deps defaults: an empty discoveries snapshot and a one hour
// listing cache.
func NewHandler(d Deps) *Handler {
	if d.Discoveries == nil {
		d.Discoveries = NewDiscoverySnapshot(nil)
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = time.Hour
	}
	h := &Handler{
		reg:         d.Registry,
		discoveries: d.Discoveries,
		search:      d.Search,
		history:     d.History,
		photoKey:    d.PhotoKey,
		now:         time.Now,
		logr:        d.Log,
	}
	h.cache = newPlaceCache(d.CacheTTL, func() time.Time { return h.now() })
	return h
}

// CuisineCard is one tile of the cuisine grid for the selected area.
type CuisineCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FlagCode    string   `json:"flagCode"`
	MenuItems   []string `json:"menuItems"`
	Count       string   `json:"count"`
	LastUpdated string   `json:"lastUpdated"`
}

// DiscoveryEntry is a discovered cuisine as seen from one area. More counts
// the listings cut from Restaurants.
type DiscoveryEntry struct {
	CuisineName string           `json:"cuisineName"`
	Flag        string           `json:"flag"`
	Count       int              `json:"count"`
	TotalCount  int              `json:"totalCount"`
	Restaurants []DiscoveredShop `json:"restaurants"`
	More        int              `json:"more"`
}

// DiscoveredShop is a listing with a ready-made maps link.
type DiscoveredShop struct {
	Name    string `json:"name"`
	Area    string `json:"area,omitempty"`
	PlaceID string `json:"placeId,omitempty"`
	MapURL  string `json:"mapUrl"`
}

// GetAreas handles GET /api/areas
func (h *Handler) GetAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.reg.Areas,
		"total":   len(h.reg.Areas),
	})
}

// GetCuisines handles GET /api/cuisines?area=<id>
// An unknown or empty area falls back to the first registry area.
func (h *Handler) GetCuisines(w http.ResponseWriter, r *http.Request) {
	area := h.reg.AreaOrDefault(r.URL.Query().Get("area"))

	cards := make([]CuisineCard, 0, len(h.reg.Cuisines))
	for _, c := range h.reg.Cuisines {
		count := "0"
		if v, ok := c.Counts[area.ID]; ok {
			count = v.String()
		}
		cards = append(cards, CuisineCard{
			ID:          c.ID,
			Name:        c.Name,
			FlagCode:    c.FlagCode,
			MenuItems:   c.MenuItems,
			Count:       count,
			LastUpdated: c.LastUpdated,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"area":             area,
		"lastUpdated":      h.reg.LastUpdated,
		"lastUpdatedLabel": japaneseDate(h.reg.LastUpdated),
		"data":             cards,
		"total":            len(cards),
	})
}

// GetDiscoveries handles GET /api/discoveries?area=<id>
func (h *Handler) GetDiscoveries(w http.ResponseWriter, r *http.Request) {
	area := h.reg.AreaOrDefault(r.URL.Query().Get("area"))

	doc := h.discoveries.Get()
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"area":    area.ID,
			"data":    []DiscoveryEntry{},
			"total":   0,
		})
		return
	}

	entries := make([]DiscoveryEntry, 0)
	for _, d := range doc.Discoveries {
		byArea, ok := d.ByArea[area.ID]
		if !ok || byArea.Count == 0 {
			continue
		}
		shown := byArea.Restaurants
		if len(shown) > maxShownRestaurants {
			shown = shown[:maxShownRestaurants]
		}
		shops := make([]DiscoveredShop, 0, len(shown))
		for _, s := range shown {
			var id string
			if s.PlaceID != nil {
				id = *s.PlaceID
			}
			shops = append(shops, DiscoveredShop{
				Name:    s.Name,
				Area:    s.Area,
				PlaceID: id,
				MapURL:  mapURL(id, s.Name),
			})
		}
		entries = append(entries, DiscoveryEntry{
			CuisineName: d.CuisineName,
			Flag:        d.Flag,
			Count:       byArea.Count,
			TotalCount:  d.TotalCount,
			Restaurants: shops,
			More:        max(byArea.Count-maxShownRestaurants, 0),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"area":        area.ID,
		"lastUpdated": doc.LastUpdated,
		"data":        entries,
		"total":       len(entries),
	})
}

// GetHistory handles GET /api/history?cuisine=<id>&area=<id>&limit=<n>
// Returns the recorded counts for one pair, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "history is not configured",
		})
		return
	}

	q := r.URL.Query()
	cuisine, ok := h.reg.Cuisine(q.Get("cuisine"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "unknown cuisine",
		})
		return
	}
	area := h.reg.AreaOrDefault(q.Get("area"))

	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	snaps, err := h.history.ListCounts(r.Context(), cuisine.ID, area.ID, limit)
	if err != nil {
		h.logr.Error("failed to list count history",
			zap.String("cuisine", cuisine.ID), zap.String("area", area.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "failed to retrieve history",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cuisine": cuisine.ID,
		"area":    area.ID,
		"data":    snaps,
		"total":   len(snaps),
	})
}

// mapURL links to the place when its id is known, otherwise to a name search.
func mapURL(placeID, name string) string {
	if placeID != "" {
		return "https://www.google.com/maps/search/?api=1&query=Google&query_place_id=" + url.QueryEscape(placeID)
	}
	return "https://www.google.com/maps/search/?q=" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

// japaneseDate renders 2026-02-21 as 2026年2月21日.
func japaneseDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return strconv.Itoa(t.Year()) + "年" + strconv.Itoa(int(t.Month())) + "月" + strconv.Itoa(t.Day()) + "日"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}
