// Package keys builds the canonical object-storage keys for published artifacts.
package keys

import (
	"fmt"
	"strings"
)

const (
	discoveriesPrefix = "discoveries"
	registryPrefix    = "registry"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// LatestDiscoveries is the key the API server watches for reloads.
func LatestDiscoveries() string {
	return discoveriesPrefix + "/latest.json"
}

// Discoveries returns the dated archive key for a discoveries document.
func Discoveries(date string) string {
	return fmt.Sprintf("%s/%s.json", discoveriesPrefix, sanitizeKey(date))
}

// RegistrySnapshot returns the key of a registry snapshot taken after a refresh run.
func RegistrySnapshot(date, runID string) string {
	return fmt.Sprintf("%s/%s/%s.json", registryPrefix, sanitizeKey(date), sanitizeKey(runID))
}

// IsLatestDiscoveries reports whether a decoded object key names the latest document.
func IsLatestDiscoveries(key string) bool {
	return key == LatestDiscoveries()
}
