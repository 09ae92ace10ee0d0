// Package history records every refresh run and the counts it fetched.
package history

import (
	"time"

	"cuisinemap/internal/models"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Policy     string
	Pairs      int
	Updated    int
	Failed     int
	Missing    int
	Error      string
}

// Snapshot is one fetched count, kept even when the store could not be patched.
type Snapshot struct {
	RunID     string       `json:"runId"`
	CuisineID string       `json:"cuisineId"`
	AreaID    string       `json:"areaId"`
	Count     models.Count `json:"count"`
	FetchedAt time.Time    `json:"fetchedAt"`
}
