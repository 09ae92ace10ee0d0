package counter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cuisinemap/internal/models"
	"cuisinemap/pkg/overpass"
	"cuisinemap/pkg/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchText(ctx context.Context, in places.SearchRequest, fieldMask []string) (*places.SearchResponse, error) {
	args := m.Called(ctx, in, fieldMask)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.SearchResponse), args.Error(1)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Count(ctx context.Context, area overpass.Circle, tags []string) (int, error) {
	args := m.Called(ctx, area, tags)
	return args.Int(0), args.Error(1)
}

var (
	tokyo = models.Area{ID: "tokyo-23", Name: "東京23区", Lat: 35.6762, Lng: 139.6503, Radius: 15000}
	thai  = models.Cuisine{ID: "thai", Query: "thai restaurant", OSMTags: []string{"thai"}}
)

func page(prefix string, n int, token string) *places.SearchResponse {
	resp := &places.SearchResponse{NextPageToken: token}
	for i := 0; i < n; i++ {
		resp.Places = append(resp.Places, places.Place{ID: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return resp
}

func withToken(tok string) interface{} {
	return mock.MatchedBy(func(r places.SearchRequest) bool { return r.PageToken == tok })
}

func TestPaginated_Count(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		pages []*places.SearchResponse
		want  models.Count
		wantN int
	}{
		{name: "short first page", pages: []*places.SearchResponse{page("a", 7, "")}, want: models.Exact(7), wantN: 1},
		{name: "full page without token", pages: []*places.SearchResponse{page("a", 20, "")}, want: models.Exact(20), wantN: 1},
		{name: "exact 45 over three pages", pages: []*places.SearchResponse{page("a", 20, "t1"), page("b", 20, "t2"), page("c", 5, "")}, want: models.Exact(45), wantN: 3},
		{name: "saturates at 60", pages: []*places.SearchResponse{page("a", 20, "t1"), page("b", 20, "t2"), page("c", 20, "t3")}, want: models.AtLeast(60), wantN: 3},
		{name: "empty", pages: []*places.SearchResponse{page("a", 0, "")}, want: models.Exact(0), wantN: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockSearcher)
			tokens := []string{"", "t1", "t2"}
			for i, p := range tt.pages {
				m.On("SearchText", ctx, withToken(tokens[i]), places.CountFields).Return(p, nil).Once()
			}
			got, err := (&Paginated{Search: m}).Count(ctx, thai, tokyo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			m.AssertNumberOfCalls(t, "SearchText", tt.wantN)
		})
	}
}

func TestPaginated_RequestShape(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	m.On("SearchText", ctx, mock.MatchedBy(func(r places.SearchRequest) bool {
		return r.TextQuery == "thai restaurant 東京23区" &&
			r.LanguageCode == "ja" &&
			r.MaxResultCount == 20 &&
			r.LocationBias.Circle.Radius == 15000
	}), places.CountFields).Return(page("a", 3, ""), nil)

	got, err := (&Paginated{Search: m}).Count(ctx, thai, tokyo)
	require.NoError(t, err)
	assert.Equal(t, "3", got.String())
}

func TestPaginated_ErrorAbandonsPair(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	m.On("SearchText", ctx, withToken(""), places.CountFields).Return(page("a", 20, "t1"), nil).Once()
	m.On("SearchText", ctx, withToken("t1"), places.CountFields).Return(nil, errors.New("quota exceeded")).Once()

	_, err := (&Paginated{Search: m}).Count(ctx, thai, tokyo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestPaginated_WaitsBetweenPages(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	m.On("SearchText", ctx, withToken(""), places.CountFields).Return(page("a", 20, "t1"), nil).Once()
	m.On("SearchText", ctx, withToken("t1"), places.CountFields).Return(page("b", 4, ""), nil).Once()

	start := time.Now()
	got, err := (&Paginated{Search: m, PageDelay: 60 * time.Millisecond}).Count(ctx, thai, tokyo)
	require.NoError(t, err)
	assert.Equal(t, models.Exact(24), got)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPaginated_CancelledDuringPageDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	m := new(mockSearcher)
	m.On("SearchText", mock.Anything, withToken(""), places.CountFields).Return(page("a", 20, "t1"), nil).Once()

	start := time.Now()
	_, err := (&Paginated{Search: m, PageDelay: time.Hour}).Count(ctx, thai, tokyo)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	m.AssertNumberOfCalls(t, "SearchText", 1)
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}

func TestSingleCall_Count(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "below cap", n: 19, want: "19"},
		{name: "full page", n: 20, want: "20+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockSearcher)
			m.On("SearchText", ctx, mock.Anything, places.CountFields).Return(page("a", tt.n, "tok"), nil).Once()
			got, err := (&SingleCall{Search: m}).Count(ctx, thai, tokyo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestUnion_Breakdown(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	query := func(q string) interface{} {
		return mock.MatchedBy(func(r places.SearchRequest) bool { return r.TextQuery == q+" 東京23区" })
	}
	m.On("SearchText", ctx, query("南インド料理"), mock.Anything).Return(page("x", 3, ""), nil)
	m.On("SearchText", ctx, query("ミールス"), mock.Anything).Return(page("x", 5, ""), nil)
	m.On("SearchText", ctx, query("ドーサ"), mock.Anything).Return(nil, errors.New("boom"))

	n, subs, err := (&Union{Search: m}).Breakdown(ctx, "南インド料理 OR ミールス OR ドーサ", tokyo)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "ids x-0..x-2 overlap with x-0..x-4")
	require.Len(t, subs, 3)
	assert.Equal(t, 3, subs[0].IDs)
	assert.Error(t, subs[2].Err)
}

func TestUnion_AllFail(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	m.On("SearchText", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	_, err := (&Union{Search: m}).Count(ctx, models.Cuisine{Query: "a OR b"}, tokyo)
	assert.Error(t, err)
}

func TestSubQueries(t *testing.T) {
	assert.Equal(t, []string{"indian restaurant", "nepali restaurant"}, SubQueries("indian restaurant OR nepali restaurant"))
	assert.Equal(t, []string{"thai restaurant"}, SubQueries("thai restaurant"))
	assert.Nil(t, SubQueries("  "))
}

func TestOpenData_Count(t *testing.T) {
	ctx := context.Background()
	agg := new(mockAggregator)
	agg.On("Count", ctx, overpass.Circle{Lat: tokyo.Lat, Lng: tokyo.Lng, Radius: tokyo.Radius}, []string{"thai"}).Return(137, nil)

	got, err := (&OpenData{Aggregate: agg}).Count(ctx, thai, tokyo)
	require.NoError(t, err)
	assert.Equal(t, models.Exact(137), got, "open data counts are never saturated")

	_, err = (&OpenData{Aggregate: agg}).Count(ctx, models.Cuisine{ID: "x"}, tokyo)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", PolicySingle, PolicyPaginated, PolicyUnion, PolicyOpenData} {
		c, err := New(name, nil, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}
	_, err := New("guess", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
