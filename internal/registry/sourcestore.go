package registry

import (
	"fmt"
	"os"
	"regexp"

	"cuisinemap/internal/models"
)

var stampPattern = regexp.MustCompile(`(const LAST_UPDATED = ')[^']*(';)`)

// SourceStore patches counts inside a front-end source file in place. Each
// cuisine record is expected on a single line starting at its `id: '...'` key.
type SourceStore struct {
	path string
	text string
}

// OpenSourceStore reads the file at path. A read failure wraps ErrLoad.
func OpenSourceStore(path string) (*SourceStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return &SourceStore{path: path, text: string(data)}, nil
}

func (s *SourceStore) Name() string { return "source:" + s.path }

// SetCount patches the count token first and the cuisine date second. The date
// is only touched when the count field was found.
func (s *SourceStore) SetCount(cuisineID, areaID string, c models.Count, date string) bool {
	text, ok := PatchCount(s.text, cuisineID, areaID, c)
	if !ok {
		return false
	}
	if patched, ok := PatchDate(text, cuisineID, date); ok {
		text = patched
	}
	s.text = text
	return true
}

func (s *SourceStore) Stamp(date string) bool {
	text, ok := PatchStamp(s.text, date)
	s.text = text
	return ok
}

func (s *SourceStore) Save() error {
	if err := os.WriteFile(s.path, []byte(s.text), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func recordPrefix(cuisineID string) string {
	return `(\bid:\s*'` + regexp.QuoteMeta(cuisineID) + `'[^\n]*?`
}

// PatchCount replaces the value of areaID inside the record for cuisineID.
// An empty areaID targets a single-area `count:` field.
func PatchCount(text, cuisineID, areaID string, c models.Count) (string, bool) {
	key := `'` + regexp.QuoteMeta(areaID) + `':\s*)`
	if areaID == "" {
		key = `\bcount:\s*)`
	}
	re := regexp.MustCompile(recordPrefix(cuisineID) + key + `(?:'[^'\n]*'|\d+)`)
	return replaceFirst(re, text, "'"+c.String()+"'")
}

// PatchDate replaces the lastUpdated literal inside the record for cuisineID.
func PatchDate(text, cuisineID, date string) (string, bool) {
	re := regexp.MustCompile(recordPrefix(cuisineID) + `\blastUpdated:\s*)'[^'\n]*'`)
	return replaceFirst(re, text, "'"+date+"'")
}

// PatchStamp rewrites the global LAST_UPDATED constant.
func PatchStamp(text, date string) (string, bool) {
	loc := stampPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[3]] + date + text[loc[4]:], true
}

// replaceFirst keeps capture group 1 and replaces the rest of the first match.
func replaceFirst(re *regexp.Regexp, text, value string) (string, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[3]] + value + text[loc[1]:], true
}
