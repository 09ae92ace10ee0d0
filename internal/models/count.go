package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Count is a store count. A saturated count means "at least Value"; the true
// number is unknown because the search service capped its results.
type Count struct {
	Value     int
	Saturated bool
}

// Exact is a count known to be n.
func Exact(n int) Count { return Count{Value: n} }

// AtLeast is a count capped at n, rendered as "n+".
func AtLeast(n int) Count { return Count{Value: n, Saturated: true} }

func (c Count) String() string {
	if c.Saturated {
		return strconv.Itoa(c.Value) + "+"
	}
	return strconv.Itoa(c.Value)
}

// ParseCount accepts "45" or "60+".
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	saturated := strings.HasSuffix(s, "+")
	n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil || n < 0 {
		return Count{}, fmt.Errorf("invalid count %q", s)
	}
	return Count{Value: n, Saturated: saturated}, nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the string form and the older bare-integer form.
// A null count is an error.
func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("count must be a string or integer, got null")
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("invalid count %d", n)
		}
		*c = Exact(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a string or integer: %w", err)
	}
	parsed, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
