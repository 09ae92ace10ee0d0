package survey

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cuisinemap/internal/models"
	"cuisinemap/pkg/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher map[string][]string

func (f fakeSearcher) SearchText(_ context.Context, in places.SearchRequest, _ []string) (*places.SearchResponse, error) {
	ids, ok := f[in.TextQuery]
	if !ok {
		return nil, errors.New("HTTP 500")
	}
	resp := &places.SearchResponse{}
	for _, id := range ids {
		resp.Places = append(resp.Places, places.Place{ID: id})
	}
	return resp, nil
}

func TestSurvey_RunAndWrite(t *testing.T) {
	area := models.Area{ID: "tokyo-23", Name: "東京23区", Lat: 35.6762, Lng: 139.6503, Radius: 15000}
	search := fakeSearcher{
		"南インド料理 東京23区": {"a", "b"},
		"ミールス 東京23区":   {"b", "c", "d"},
		"台湾料理 東京23区":   {"t"},
	}
	cuisines := []models.Cuisine{
		{Name: "南インド料理", Query: "南インド料理 OR ミールス OR ドーサ"},
		{Name: "台湾料理", Query: "台湾料理"},
		{Name: "不明", Query: "nothing"},
	}

	items, err := New(search).Run(context.Background(), area, cuisines)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 4, items[0].Unique)
	assert.Len(t, items[0].Subs, 3)
	assert.Equal(t, 1, items[1].Unique)
	assert.Error(t, items[2].Err)

	var buf bytes.Buffer
	Write(&buf, area, "2026-03-08", items)
	out := buf.String()
	assert.Contains(t, out, `"ドーサ": ERROR`)
	assert.Contains(t, out, "unique: 4")
	assert.Contains(t, out, "radius: 15 km")

	var summary []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  ") && strings.Contains(line, "　") {
			summary = append(summary, line)
		}
	}
	require.Len(t, summary, 3)
	col := strings.Index(summary[0], ":")
	for _, l := range summary[1:] {
		assert.Equal(t, len([]rune(summary[0][:col])), len([]rune(l[:strings.Index(l, ":")])), "summary rows are aligned")
	}
}
