package models

import "github.com/paulmach/orb"

// Area is a named search region: a center point plus a radius in meters.
type Area struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// Center returns the area center as an orb point (lon, lat order).
func (a Area) Center() orb.Point {
	return orb.Point{a.Lng, a.Lat}
}
