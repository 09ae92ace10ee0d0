package registry

import "cuisinemap/internal/models"

// Store persists refreshed counts. Implementations only touch the fields named
// by an update and report a miss instead of guessing.
type Store interface {
	Name() string
	// SetCount records c for the pair and stamps the cuisine's lastUpdated with
	// date. It returns false if the count field could not be located.
	SetCount(cuisineID, areaID string, c models.Count, date string) bool
	// Stamp updates the global last-updated stamp, reporting whether it exists.
	Stamp(date string) bool
	Save() error
}
