package registry

import (
	"fmt"
	"os"

	"cuisinemap/internal/models"
)

// JSONStore applies updates to a parsed registry and writes it back whole.
type JSONStore struct {
	path string
	reg  *Registry
}

func NewJSONStore(path string, reg *Registry) *JSONStore {
	return &JSONStore{path: path, reg: reg}
}

func (s *JSONStore) Name() string { return "registry" }

func (s *JSONStore) SetCount(cuisineID, areaID string, c models.Count, date string) bool {
	if _, ok := s.reg.Area(areaID); !ok {
		return false
	}
	for i := range s.reg.Cuisines {
		cu := &s.reg.Cuisines[i]
		if cu.ID != cuisineID {
			continue
		}
		if cu.Counts == nil {
			cu.Counts = make(map[string]models.Count)
		}
		cu.Counts[areaID] = c
		cu.LastUpdated = date
		return true
	}
	return false
}

func (s *JSONStore) Stamp(date string) bool {
	s.reg.LastUpdated = date
	return true
}

func (s *JSONStore) Save() error {
	data, err := s.reg.Encode()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
