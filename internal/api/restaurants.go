package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cuisinemap/internal/models"
	"cuisinemap/pkg/geo"
	"cuisinemap/pkg/places"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

const (
	pageSize       = 10
	unknownName    = "名称不明"
	photoMaxWidth  = 400
	noDistanceText = "---"
)

// Opening hours are read in the city the registry areas are in.
var displayZone = time.FixedZone("JST", 9*60*60)

type Restaurant struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	RatingCount  int     `json:"ratingCount"`
	Address      string  `json:"address"`
	Locality     string  `json:"locality,omitempty"`
	Distance     *int    `json:"distance"`
	DistanceText string  `json:"distanceText"`
	PhotoURL     string  `json:"photoUrl,omitempty"`
	OpenNow      *bool   `json:"openNow"`
	TodayHours   string  `json:"todayHours,omitempty"`
	PlaceID      string  `json:"placeId,omitempty"`
	MapURL       string  `json:"mapUrl"`
}

// GetRestaurants handles GET /api/restaurants?cuisine=<id>&area=<id>&page=<n>
// Pages are 1-based. Search results are cached per cuisine and area.
func (h *Handler) GetRestaurants(w http.ResponseWriter, r *http.Request) {
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

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "page must be a positive integer",
			})
			return
		}
		page = n
	}

	if h.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "live search is not configured",
		})
		return
	}

	found, err := h.searchPlaces(r, cuisine, area)
	if err != nil {
		h.logr.Error("restaurant search failed",
			zap.String("cuisine", cuisine.ID), zap.String("area", area.ID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   "failed to retrieve restaurants",
		})
		return
	}

	total := len(found)
	pages := (total + pageSize - 1) / pageSize
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	now := h.now().In(displayZone)
	data := make([]Restaurant, 0, end-start)
	for _, p := range found[start:end] {
		data = append(data, h.toRestaurant(p, area, now))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"cuisine":  cuisine.ID,
		"area":     area.ID,
		"data":     data,
		"total":    total,
		"page":     page,
		"pages":    pages,
		"pageSize": pageSize,
	})
}

func (h *Handler) searchPlaces(r *http.Request, cuisine models.Cuisine, area models.Area) ([]places.Place, error) {
	key := cuisine.ID + "_" + area.ID
	if cached, ok := h.cache.get(key); ok {
		return cached, nil
	}

	req := places.NewSearchRequest(cuisine.Name+" "+area.Name, area.Lat, area.Lng, area.Radius)
	resp, err := h.search.SearchText(r.Context(), req, places.DetailFields)
	if err != nil {
		return nil, err
	}
	h.cache.put(key, resp.Places)
	return resp.Places, nil
}

func (h *Handler) toRestaurant(p places.Place, area models.Area, now time.Time) Restaurant {
	out := Restaurant{
		Name:         p.Name(),
		Rating:       p.Rating,
		RatingCount:  p.UserRatingCount,
		Address:      p.FormattedAddress,
		Locality:     geo.Locality(p.FormattedAddress),
		DistanceText: noDistanceText,
		PlaceID:      p.ID,
	}
	if out.Name == "" {
		out.Name = unknownName
	}
	if p.Location != nil {
		d := geo.Distance(area.Center(), orb.Point{p.Location.Longitude, p.Location.Latitude})
		out.Distance = &d
		out.DistanceText = geo.FormatDistance(d)
	}
	if len(p.Photos) > 0 && p.Photos[0].Name != "" {
		out.PhotoURL = photoURL(p.Photos[0].Name, h.photoKey)
	}
	if oh := p.CurrentOpeningHours; oh != nil {
		out.OpenNow = oh.OpenNow
		out.TodayHours = todayHours(oh.WeekdayDescriptions, now)
	}
	out.MapURL = mapURL(p.ID, out.Name)
	return out
}

func photoURL(photoName, key string) string {
	return "https://places.googleapis.com/v1/" + photoName + "/media?maxWidthPx=" + strconv.Itoa(photoMaxWidth) + "&key=" + key
}

// todayHours picks today's line from a Monday-first week and drops the
// "<weekday>: " prefix.
func todayHours(descriptions []string, now time.Time) string {
	idx := (int(now.Weekday()) + 6) % 7
	if idx >= len(descriptions) {
		return ""
	}
	entry := descriptions[idx]
	if i := strings.Index(entry, ": "); i >= 0 {
		return entry[i+2:]
	}
	return entry
}
