package models

// Cuisine is a genre shown in the main grid. Counts is keyed by Area.ID and
// rewritten on every refresh run; the rest is edited by hand.
type Cuisine struct {
	ID          string           `json:"id"`
	FlagCode    string           `json:"flagCode"`
	Name        string           `json:"name"`
	Query       string           `json:"query"`
	OSMTags     []string         `json:"osmTags,omitempty"`
	MenuItems   []string         `json:"menuItems"`
	Counts      map[string]Count `json:"counts"`
	LastUpdated string           `json:"lastUpdated"`
}

// RareCuisine is an input of the discovery scan.
type RareCuisine struct {
	Name  string `json:"name"`
	Flag  string `json:"flag"`
	Query string `json:"query"`
}
