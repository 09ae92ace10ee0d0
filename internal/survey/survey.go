// Package survey prints a read-only per-sub-query breakdown of cuisine counts
// for one area.
package survey

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"cuisinemap/internal/counter"
	"cuisinemap/internal/models"
)

type Item struct {
	Label   string
	Unique  int
	Subs    []counter.SubResult
	Err     error
	Queries []string
}

type Survey struct {
	union *counter.Union
}

func New(search counter.Searcher) *Survey {
	return &Survey{union: &counter.Union{Search: search}}
}

// Run surveys every cuisine in area. Per-cuisine failures are kept in the
// result; only cancellation aborts.
func (s *Survey) Run(ctx context.Context, area models.Area, cuisines []models.Cuisine) ([]Item, error) {
	items := make([]Item, 0, len(cuisines))
	for _, c := range cuisines {
		n, subs, err := s.union.Breakdown(ctx, c.Query, area)
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		items = append(items, Item{Label: c.Name, Unique: n, Subs: subs, Err: err, Queries: counter.SubQueries(c.Query)})
	}
	return items, nil
}

// Write renders the breakdown followed by an aligned summary table.
func Write(w io.Writer, area models.Area, date string, items []Item) {
	rule := strings.Repeat("=", 48)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  store count survey: %s\n", area.Name)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "center : %g, %g  radius: %g km\n", area.Lat, area.Lng, area.Radius/1000)
	fmt.Fprintf(w, "date   : %s\n", date)
	fmt.Fprintln(w, "note   : each request returns at most 20 places; OR queries are split and de-duplicated by place id.")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, it := range items {
		quoted := make([]string, len(it.Queries))
		for i, q := range it.Queries {
			quoted[i] = fmt.Sprintf("%q", q)
		}
		fmt.Fprintf(w, "[%s]\n", it.Label)
		fmt.Fprintf(w, "  queries: %s\n", strings.Join(quoted, " OR "))
		for _, sub := range it.Subs {
			if sub.Err != nil {
				fmt.Fprintf(w, "    %q: ERROR %v\n", sub.Query, sub.Err)
				continue
			}
			fmt.Fprintf(w, "    %q: %d\n", sub.Query, sub.IDs)
		}
		if it.Err != nil {
			fmt.Fprintf(w, "  failed: %v\n\n", it.Err)
			continue
		}
		fmt.Fprintf(w, "  unique: %d\n\n", it.Unique)
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  summary")
	fmt.Fprintln(w, rule)
	width := 0
	for _, it := range items {
		if n := utf8.RuneCountInString(it.Label); n > width {
			width = n
		}
	}
	width += 2
	for _, it := range items {
		pad := strings.Repeat("　", width-utf8.RuneCountInString(it.Label))
		count := fmt.Sprintf("%3d", it.Unique)
		if it.Err != nil {
			count = "  -"
		}
		fmt.Fprintf(w, "  %s%s: %s\n", it.Label, pad, count)
	}
	fmt.Fprintln(w, rule)
}
