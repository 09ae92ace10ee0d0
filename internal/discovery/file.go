package discovery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"cuisinemap/internal/models"
	"cuisinemap/internal/registry"
)

// WriteFile replaces path with the indented document, names written
// literally. Failure wraps registry.ErrPersist.
func WriteFile(path string, doc *models.DiscoveryDocument) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: encode discoveries: %v", registry.ErrPersist, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", registry.ErrPersist, err)
	}
	return nil
}

// ReadFile loads a previously written document.
func ReadFile(path string) (*models.DiscoveryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc models.DiscoveryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}
