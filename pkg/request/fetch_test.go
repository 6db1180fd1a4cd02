package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/streamkit/go-tidal/internal/testutil"
	"github.com/streamkit/go-tidal/pkg/envelope"
)

type track struct {
	ID    float64
	Title string
}

func parseTrack(obj map[string]any) (track, error) {
	id, ok := obj["id"].(float64)
	if !ok {
		return track{}, fmt.Errorf("missing id")
	}
	title, _ := obj["title"].(string)
	return track{ID: id, Title: title}, nil
}

func TestGet_SingleObject(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/tracks/7", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id": 7, "title": "Solo"}`,
	})

	got, err := Get(context.Background(), c, "tracks/7", nil, parseTrack)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Solo" {
		t.Errorf("Get() = %v, want single Solo track", got)
	}
}

func TestGet_FlatList(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/albums/1/tracks", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"items": [{"id": 1, "title": "One"}, {"id": 2, "title": "Two"}]}`,
	})

	got, err := Get(context.Background(), c, "albums/1/tracks", nil, parseTrack)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "One" || got[1].Title != "Two" {
		t.Errorf("Get() = %v, want [One Two]", got)
	}
}

func TestGet_WrappedList(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/playlists/p/tracks", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{"items": [
			{"item": {"id": 1, "title": "One"}, "created": "2020-01-01", "type": "TRACK"}
		]}`,
	})

	type dated struct {
		Title     string
		DateAdded string
	}
	parse := func(obj map[string]any) (dated, error) {
		title, _ := obj["title"].(string)
		added, _ := obj["dateAdded"].(string)
		return dated{Title: title, DateAdded: added}, nil
	}

	got, err := Get(context.Background(), c, "playlists/p/tracks", nil, parse)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 1 || got[0].DateAdded != "2020-01-01" {
		t.Errorf("Get() = %v, want dateAdded hoisted from created", got)
	}
}

func TestGet_APIErrorPropagates(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/tracks/404", testutil.NewNotFoundResponse())

	_, err := Get(context.Background(), c, "tracks/404", nil, parseTrack)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Get() error = %T, want *APIError", err)
	}
}

func TestGet_MissingParser(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/tracks/7", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id": 7}`,
	})

	_, err := Get[track](context.Background(), c, "tracks/7", nil, nil)
	if !errors.Is(err, envelope.ErrParserRequired) {
		t.Fatalf("Get() error = %v, want ErrParserRequired", err)
	}
}

func TestGetOne(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/tracks/7", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id": 7, "title": "Solo"}`,
	})

	got, err := GetOne(context.Background(), c, "tracks/7", nil, parseTrack)
	if err != nil {
		t.Fatalf("GetOne() error = %v", err)
	}
	if got.Title != "Solo" {
		t.Errorf("GetOne() = %v, want Solo", got)
	}
}

func TestGetOne_RejectsList(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/albums/1/tracks", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"items": [{"id": 1}, {"id": 2}]}`,
	})

	_, err := GetOne(context.Background(), c, "albums/1/tracks", nil, parseTrack)
	if !errors.Is(err, ErrNotSingleObject) {
		t.Fatalf("GetOne() error = %v, want ErrNotSingleObject", err)
	}
}

func TestGetItems_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		totalItems   int
		wantRequests int
		wantOffsets  []string
	}{
		{
			name:         "short first page",
			totalItems:   37,
			wantRequests: 1,
			wantOffsets:  []string{"0"},
		},
		{
			name:         "two pages 100 plus 37",
			totalItems:   137,
			wantRequests: 2,
			wantOffsets:  []string{"0", "100"},
		},
		{
			name:         "exact multiple needs trailing empty page",
			totalItems:   200,
			wantRequests: 3,
			wantOffsets:  []string{"0", "100", "200"},
		},
		{
			name:         "empty collection",
			totalItems:   0,
			wantRequests: 1,
			wantOffsets:  []string{"0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockTidal()
			defer mock.Close()

			c, _ := newTestClient(mock)
			mock.SetPaginatedItems("/v1/playlists/p/tracks", testutil.NumberedItems(0, tt.totalItems))

			got, err := GetItems(context.Background(), c, "playlists/p/tracks", parseTrack)
			if err != nil {
				t.Fatalf("GetItems() error = %v", err)
			}
			if len(got) != tt.totalItems {
				t.Errorf("item count = %d, want %d", len(got), tt.totalItems)
			}
			for i, item := range got {
				if int(item.ID) != i {
					t.Fatalf("items[%d].ID = %v, want %d (order must be preserved)", i, item.ID, i)
				}
			}

			urls := mock.RequestURLs()
			if len(urls) != tt.wantRequests {
				t.Fatalf("request count = %d, want %d", len(urls), tt.wantRequests)
			}
			for i, want := range tt.wantOffsets {
				q := urls[i].Query()
				if got := q.Get("offset"); got != want {
					t.Errorf("request %d offset = %q, want %q", i, got, want)
				}
				if got := q.Get("limit"); got != "100" {
					t.Errorf("request %d limit = %q, want 100", i, got)
				}
			}
		})
	}
}

func TestGetItems_FailedPageAborts(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetHandler("/v1/playlists/p/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			w.Write([]byte(pageOfItems(100)))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"userMessage": "Something went wrong"}`))
	})

	_, err := GetItems(context.Background(), c, "playlists/p/tracks", parseTrack)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetItems() error = %T (%v), want *APIError", err, err)
	}
}

func pageOfItems(n int) string {
	body := `{"items": [`
	for i := 0; i < n; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id": %d}`, i)
	}
	return body + `]}`
}

func TestGetItemsWithRegistry(t *testing.T) {
	mock := testutil.NewMockTidal()
	defer mock.Close()

	c, _ := newTestClient(mock)
	mock.SetResponse("/v1/favorites", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{"items": [
			{"item": {"id": 1, "title": "A Song"}, "type": "TRACK"},
			{"item": {"id": 2, "title": "A Clip"}, "type": "VIDEO"}
		]}`,
	})

	reg := envelope.Registry[string]{
		"tracks": func(obj map[string]any) (string, error) { return "track:" + obj["title"].(string), nil },
		"videos": func(obj map[string]any) (string, error) { return "video:" + obj["title"].(string), nil },
	}

	got, err := GetItemsWithRegistry(context.Background(), c, "favorites", nil, reg)
	if err != nil {
		t.Fatalf("GetItemsWithRegistry() error = %v", err)
	}
	if len(got) != 2 || got[0] != "track:A Song" || got[1] != "video:A Clip" {
		t.Errorf("GetItemsWithRegistry() = %v", got)
	}
}
