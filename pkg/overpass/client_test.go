package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestQuery(t *testing.T) {
	q := Query(Circle{Lat: 35.6762, Lng: 139.6503, Radius: 15000}, []string{"indian", "nepali", `bad"tag`})
	wantParts := []string{
		"[out:json][timeout:60];",
		`["cuisine"~"indian|nepali|badtag",i]`,
		"(around:15000,35.6762,139.6503)",
		"out count;",
	}
	for _, p := range wantParts {
		if !strings.Contains(q, p) {
			t.Errorf("query %q lacks %q", q, p)
		}
	}
}

func TestClient_Count(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    int
		wantErr bool
	}{
		{name: "total tag", status: 200, body: `{"elements":[{"type":"count","tags":{"nodes":"40","ways":"2","total":"42"}}]}`, want: 42},
		{name: "no elements", status: 200, body: `{"elements":[]}`, wantErr: true},
		{name: "non-numeric total", status: 200, body: `{"elements":[{"type":"count","tags":{"total":"x"}}]}`, wantErr: true},
		{name: "rate limited", status: 429, body: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Fatal(err)
				}
				if !strings.HasPrefix(r.PostForm.Get("data"), "[out:json]") {
					t.Errorf("unexpected query: %q", r.PostForm.Get("data"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(0)
			c.endpoint = server.URL
			got, err := c.Count(context.Background(), Circle{Lat: 1, Lng: 2, Radius: 3}, []string{"thai"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestClient_SpacesRequests(t *testing.T) {
	const delay = 80 * time.Millisecond
	var stamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		_, _ = w.Write([]byte(`{"elements":[{"type":"count","tags":{"total":"1"}}]}`))
	}))
	defer server.Close()

	c := NewClient(delay)
	c.endpoint = server.URL
	for i := 0; i < 3; i++ {
		if _, err := c.Count(context.Background(), Circle{Lat: 1, Lng: 2, Radius: 3}, []string{"thai"}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if len(stamps) != 3 {
		t.Fatalf("got %d requests", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < delay-10*time.Millisecond {
			t.Errorf("request %d followed the previous one after %v", i, gap)
		}
	}
}
