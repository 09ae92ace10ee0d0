// Package registry holds the shared area and cuisine configuration and the
// stores that persist refreshed counts back into it.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"cuisinemap/internal/models"
)

var (
	// ErrLoad marks an unreadable or malformed registry. Fatal for every command.
	ErrLoad = errors.New("registry: load failed")
	// ErrPersist marks a failed write. A run that cannot persist must not report success.
	ErrPersist = errors.New("registry: persist failed")
)

// Registry is the single source of area geometry and cuisine definitions.
type Registry struct {
	LastUpdated  string               `json:"lastUpdated"`
	Areas        []models.Area        `json:"areas"`
	Cuisines     []models.Cuisine     `json:"cuisines"`
	RareCuisines []models.RareCuisine `json:"rareCuisines"`
}

// Pair is one unit of work for the count refresh.
type Pair struct {
	Area    models.Area
	Cuisine models.Cuisine
}

// Load reads and validates the registry file at path.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses and validates a registry. Any failure wraps ErrLoad.
func Decode(r io.Reader) (*Registry, error) {
	var reg Registry
	if err := json.NewDecoder(r).Decode(&reg); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLoad, err)
	}
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return &reg, nil
}

func (r *Registry) validate() error {
	if len(r.Areas) == 0 {
		return errors.New("no areas defined")
	}
	seen := make(map[string]struct{})
	for _, a := range r.Areas {
		if a.ID == "" {
			return errors.New("area with empty id")
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate area id %q", a.ID)
		}
		if a.Radius <= 0 {
			return fmt.Errorf("area %q: radius must be positive", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	seen = make(map[string]struct{})
	for _, c := range r.Cuisines {
		if c.ID == "" {
			return errors.New("cuisine with empty id")
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate cuisine id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Encode serializes the registry deterministically: two-space indent, map keys
// sorted, no HTML escaping, trailing newline.
func (r *Registry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pairs returns every (area, cuisine) combination, area outer and cuisine inner.
func (r *Registry) Pairs() []Pair {
	pairs := make([]Pair, 0, len(r.Areas)*len(r.Cuisines))
	for _, a := range r.Areas {
		for _, c := range r.Cuisines {
			pairs = append(pairs, Pair{Area: a, Cuisine: c})
		}
	}
	return pairs
}

// Area looks up an area by id.
func (r *Registry) Area(id string) (models.Area, bool) {
	for _, a := range r.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return models.Area{}, false
}

// Cuisine looks up a cuisine by id.
func (r *Registry) Cuisine(id string) (models.Cuisine, bool) {
	for _, c := range r.Cuisines {
		if c.ID == id {
			return c, true
		}
	}
	return models.Cuisine{}, false
}

// AreaOrDefault resolves a user-selected area id, falling back to the first area.
func (r *Registry) AreaOrDefault(id string) models.Area {
	if a, ok := r.Area(id); ok {
		return a
	}
	return r.Areas[0]
}
