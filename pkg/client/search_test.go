package client

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/yt-finder/internal/testutil"
	"github.com/Sternrassler/yt-finder/pkg/pagination"
	"github.com/google/go-cmp/cmp"
)

// pagedSearch serves three pages of 50, 50 and 13 videos keyed by page token.
func pagedSearch(mock *testutil.MockYouTube, totals [3]int64) {
	pages := map[string]testutil.MockResponse{
		"":   testutil.NewSearchPage(testutil.NewVideoItems("vid", 0, 50), totals[0], "p2"),
		"p2": testutil.NewSearchPage(testutil.NewVideoItems("vid", 50, 50), totals[1], "p3"),
		"p3": testutil.NewSearchPage(testutil.NewVideoItems("vid", 100, 13), totals[2], ""),
	}

	mock.SetHandler(testutil.PathSearch, func(w http.ResponseWriter, r *http.Request) {
		resp, ok := pages[r.URL.Query().Get("pageToken")]
		if !ok {
			resp = testutil.NewErrorResponse(http.StatusBadRequest, "invalidPageToken", "bad token")
		}
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	})
}

func TestSearchAll_FetchesEveryPage(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	pagedSearch(mock, [3]int64{1000000, 999999, 5})

	c := newTestClient(t, mock, "key-a")

	res := c.SearchAll(t.Context(), "golang", SearchFilters{})
	if res.Err != nil {
		t.Fatalf("SearchAll() error = %v", res.Err)
	}

	if len(res.Items) != 113 {
		t.Errorf("items = %d, want 113", len(res.Items))
	}
	if res.Pages != 3 {
		t.Errorf("pages = %d, want 3", res.Pages)
	}
	if !res.HasEstimate || res.TotalEstimate != 1000000 {
		t.Errorf("estimate = %d (has=%v), want 1000000 from the first page", res.TotalEstimate, res.HasEstimate)
	}

	first := res.Items[0]
	want := Video{
		ID:           "vid-000",
		Title:        "Video vid-000",
		ChannelID:    "UCvid",
		ChannelTitle: "Channel UCvid",
		PublishedAt:  "2024-01-02T03:04:05Z",
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first video mismatch (-want +got):\n%s", diff)
	}
	if got := res.Items[112].ID; got != "vid-112" {
		t.Errorf("last ID = %q, want vid-112", got)
	}

	queries := mock.GetQueries()
	if len(queries) != 3 {
		t.Fatalf("requests = %d, want 3", len(queries))
	}
	for i, q := range queries {
		if got := q["maxResults"]; len(got) != 1 || got[0] != "50" {
			t.Errorf("request %d maxResults = %v, want 50", i, got)
		}
		if got := q["type"]; len(got) != 1 || got[0] != "video" {
			t.Errorf("request %d type = %v, want video", i, got)
		}
		if got := q["q"]; len(got) != 1 || got[0] != "golang" {
			t.Errorf("request %d q = %v, want golang", i, got)
		}
	}
	if _, ok := queries[0]["pageToken"]; ok {
		t.Error("first request should not carry a page token")
	}
	if got := queries[2]["pageToken"]; len(got) != 1 || got[0] != "p3" {
		t.Errorf("third pageToken = %v, want p3", got)
	}
}

func TestSearchAll_PartialOnExhaustion(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()

	pages := map[string]testutil.MockResponse{
		"":   testutil.NewSearchPage(testutil.NewVideoItems("vid", 0, 50), 500, "p2"),
		"p2": testutil.NewSearchPage(testutil.NewVideoItems("vid", 50, 50), 500, "p3"),
		"p3": testutil.NewQuotaExceededResponse(),
	}
	mock.SetHandler(testutil.PathSearch, func(w http.ResponseWriter, r *http.Request) {
		resp := pages[r.URL.Query().Get("pageToken")]
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	})

	c := newTestClient(t, mock, "key-a", "key-b")

	res := c.SearchAll(t.Context(), "golang", SearchFilters{})

	if !errors.Is(res.Err, ErrPoolExhausted) {
		t.Fatalf("Err = %v, want ErrPoolExhausted", res.Err)
	}
	if !res.Partial() {
		t.Error("Partial() = false, want true")
	}
	if len(res.Items) != 100 {
		t.Errorf("items = %d, want 100", len(res.Items))
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.Pages)
	}

	// two good pages, then one attempt per key on the third
	if got := mock.GetRequestCount(); got != 4 {
		t.Errorf("requests = %d, want 4", got)
	}
}

func TestSearchAll_Filters(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage(nil, 0, ""))

	c := newTestClient(t, mock, "key-a")

	after := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := c.SearchAll(t.Context(), "cats", SearchFilters{
		Duration:       DurationLong,
		Definition:     DefinitionHigh,
		PublishedAfter: after,
		Language:       "de",
	})
	if res.Err != nil {
		t.Fatalf("SearchAll() error = %v", res.Err)
	}

	q := mock.GetQueries()[0]
	checks := map[string]string{
		"videoDuration":     "long",
		"videoDefinition":   "high",
		"publishedAfter":    "2024-05-01T12:00:00Z",
		"relevanceLanguage": "de",
	}
	for param, want := range checks {
		if got := q[param]; len(got) != 1 || got[0] != want {
			t.Errorf("%s = %v, want %q", param, got, want)
		}
	}
}

func TestSearchAll_AnyFiltersAreOmitted(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage(nil, 0, ""))

	c := newTestClient(t, mock, "key-a")

	res := c.SearchAll(t.Context(), "cats", SearchFilters{Duration: FilterAny, Definition: FilterAny})
	if res.Err != nil {
		t.Fatalf("SearchAll() error = %v", res.Err)
	}

	q := mock.GetQueries()[0]
	for _, param := range []string{"videoDuration", "videoDefinition", "publishedAfter", "relevanceLanguage"} {
		if _, ok := q[param]; ok {
			t.Errorf("%s should not be sent", param)
		}
	}
}

func TestSearchAll_InvalidFilter(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()

	c := newTestClient(t, mock, "key-a")

	res := c.SearchAll(t.Context(), "cats", SearchFilters{Duration: "forever"})
	if res.Err == nil {
		t.Fatal("expected error for invalid filter")
	}
	if got := mock.GetRequestCount(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestSearchFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filters SearchFilters
		wantErr bool
	}{
		{"zero", SearchFilters{}, false},
		{"any", SearchFilters{Duration: FilterAny, Definition: FilterAny}, false},
		{"short standard", SearchFilters{Duration: DurationShort, Definition: DefinitionStandard}, false},
		{"medium", SearchFilters{Duration: DurationMedium}, false},
		{"bad duration", SearchFilters{Duration: "huge"}, true},
		{"bad definition", SearchFilters{Definition: "4k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishedWithin(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		window  string
		want    time.Time
		wantErr bool
	}{
		{window: "", want: time.Time{}},
		{window: "any", want: time.Time{}},
		{window: "hour", want: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
		{window: "today", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{window: "week", want: time.Date(2024, 3, 8, 10, 30, 0, 0, time.UTC)},
		{window: "month", want: time.Date(2024, 2, 14, 10, 30, 0, 0, time.UTC)},
		{window: "year", want: time.Date(2023, 3, 16, 10, 30, 0, 0, time.UTC)},
		{window: "decade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			got, err := PublishedWithin(tt.window, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PublishedWithin(%q) error = %v, wantErr %v", tt.window, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("PublishedWithin(%q) = %v, want %v", tt.window, got, tt.want)
			}
		})
	}
}

func TestChannelVideos(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()

	items := testutil.NewVideoItems("up", 0, 3)
	items = append(items, testutil.SearchItem{Kind: "youtube#playlist", ChannelID: "UCup", Title: "A playlist"})
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage(items, 4, ""))

	c := newTestClient(t, mock, "key-a")

	res := c.ChannelVideos(t.Context(), "UCup")
	if res.Err != nil {
		t.Fatalf("ChannelVideos() error = %v", res.Err)
	}

	var ids []string
	for _, v := range res.Items {
		ids = append(ids, v.ID)
	}
	if diff := cmp.Diff([]string{"up-000", "up-001", "up-002"}, ids); diff != "" {
		t.Errorf("video IDs mismatch (-want +got):\n%s", diff)
	}

	q := mock.GetQueries()[0]
	checks := map[string]string{
		"channelId": "UCup",
		"type":      "video",
		"order":     "date",
	}
	for param, want := range checks {
		if got := q[param]; len(got) != 1 || got[0] != want {
			t.Errorf("%s = %v, want %q", param, got, want)
		}
	}
}

func TestSearchAll_MaxPages(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	// every page points at another page
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage(testutil.NewVideoItems("loop", 0, 2), 10, "again"))

	pool := newTestClient(t, mock, "key-a").Pool()
	cfg := DefaultConfig(testUserAgent)
	cfg.Endpoint = mock.URL()
	cfg.RateLimit = 1000
	cfg.Pagination = pagination.Config{MaxPages: 3}

	c, err := New(pool, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := c.SearchAll(t.Context(), "loop", SearchFilters{})
	if !errors.Is(res.Err, pagination.ErrMaxPagesReached) {
		t.Fatalf("Err = %v, want ErrMaxPagesReached", res.Err)
	}
	if len(res.Items) != 6 {
		t.Errorf("items = %d, want 6", len(res.Items))
	}
}
