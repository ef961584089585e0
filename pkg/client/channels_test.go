package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/yt-finder/internal/testutil"
	"github.com/Sternrassler/yt-finder/pkg/duration"
	"github.com/google/go-cmp/cmp"
)

// joinedParam returns every value of a query parameter joined by commas,
// whether the client sent it repeated or comma-separated.
func joinedParam(q map[string][]string, name string) string {
	return strings.Join(q[name], ",")
}

func TestResolveChannel_ChannelURL(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewChannelsResponse([]testutil.ChannelDetail{
		{ID: "UCabc_123-x", Title: "Gopher TV"},
	}))

	c := newTestClient(t, mock, "key-a")

	ch, err := c.ResolveChannel(t.Context(), "https://www.youtube.com/channel/UCabc_123-x/videos")
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	if diff := cmp.Diff(Channel{ID: "UCabc_123-x", Title: "Gopher TV"}, ch); diff != "" {
		t.Errorf("channel mismatch (-want +got):\n%s", diff)
	}

	q := mock.GetQueries()[0]
	if got := q["id"]; len(got) != 1 || got[0] != "UCabc_123-x" {
		t.Errorf("id = %v, want UCabc_123-x", got)
	}
}

func TestResolveChannel_ChannelURLFallsBackToID(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewServerErrorResponse())

	c := newTestClient(t, mock, "key-a")

	ch, err := c.ResolveChannel(t.Context(), "youtube.com/channel/UCxyz")
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	if ch.ID != "UCxyz" || ch.Title != "UCxyz" {
		t.Errorf("channel = %+v, want ID and title UCxyz", ch)
	}
}

func TestResolveChannel_Handle(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewChannelsResponse([]testutil.ChannelDetail{
		{ID: "UChandle", Title: "Handle Channel"},
	}))

	c := newTestClient(t, mock, "key-a")

	for _, input := range []string{"@gopher.tv", "https://www.youtube.com/@gopher.tv"} {
		mock.Reset()

		ch, err := c.ResolveChannel(t.Context(), input)
		if err != nil {
			t.Fatalf("ResolveChannel(%q) error = %v", input, err)
		}
		if ch.ID != "UChandle" {
			t.Errorf("ResolveChannel(%q).ID = %q, want UChandle", input, ch.ID)
		}

		q := mock.GetQueries()[0]
		if got := q["forHandle"]; len(got) != 1 || got[0] != "gopher.tv" {
			t.Errorf("forHandle = %v, want gopher.tv", got)
		}
	}
}

func TestResolveChannel_HandleFallsBackToSearch(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewChannelsResponse(nil))
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage([]testutil.SearchItem{
		{Kind: "youtube#channel", ChannelID: "UCfound", Title: "Found"},
	}, 1, ""))

	c := newTestClient(t, mock, "key-a")

	ch, err := c.ResolveChannel(t.Context(), "@missing")
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	if diff := cmp.Diff(Channel{ID: "UCfound", Title: "Found"}, ch); diff != "" {
		t.Errorf("channel mismatch (-want +got):\n%s", diff)
	}

	queries := mock.GetQueries()
	last := queries[len(queries)-1]
	if got := last["q"]; len(got) != 1 || got[0] != "@missing" {
		t.Errorf("search q = %v, want @missing", got)
	}
	if got := last["type"]; len(got) != 1 || got[0] != "channel" {
		t.Errorf("search type = %v, want channel", got)
	}
}

func TestResolveChannel_FreeText(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage([]testutil.SearchItem{
		{Kind: "youtube#channel", ChannelID: "UCtext", Title: "Text Channel"},
	}, 1, ""))

	c := newTestClient(t, mock, "key-a")

	ch, err := c.ResolveChannel(t.Context(), "  gopher academy  ")
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	if ch.ID != "UCtext" {
		t.Errorf("ID = %q, want UCtext", ch.ID)
	}
	if got := mock.GetQueries()[0]["q"]; len(got) != 1 || got[0] != "gopher academy" {
		t.Errorf("q = %v, want trimmed input", got)
	}
}

func TestResolveChannel_NotFound(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathSearch, testutil.NewSearchPage(nil, 0, ""))

	c := newTestClient(t, mock, "key-a")

	for _, input := range []string{"", "nobody at all"} {
		_, err := c.ResolveChannel(t.Context(), input)
		if !errors.Is(err, ErrChannelNotFound) {
			t.Errorf("ResolveChannel(%q) error = %v, want ErrChannelNotFound", input, err)
		}
	}
}

func TestChannelStats(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewChannelsResponse([]testutil.ChannelDetail{
		{ID: "UC1", Title: "One", Subscribers: 1200, Videos: 34, Views: 56789},
		{ID: "UC2", Title: "Two", Subscribers: 5, Videos: 1, Views: 10},
	}))

	c := newTestClient(t, mock, "key-a")

	stats, err := c.ChannelStats(t.Context(), []string{"UC1", "", "UC2", "UC1"})
	if err != nil {
		t.Fatalf("ChannelStats() error = %v", err)
	}

	want := map[string]ChannelStats{
		"UC1": {Title: "One", Subscribers: 1200, Videos: 34, Views: 56789},
		"UC2": {Title: "Two", Subscribers: 5, Videos: 1, Views: 10},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	if got := joinedParam(mock.GetQueries()[0], "id"); got != "UC1,UC2" {
		t.Errorf("id = %q, want deduplicated UC1,UC2", got)
	}
}

func TestChannelStats_CapsAtPageSize(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathChannels, testutil.NewChannelsResponse(nil))

	c := newTestClient(t, mock, "key-a")

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("UC%02d", i)
	}
	if _, err := c.ChannelStats(t.Context(), ids); err != nil {
		t.Fatalf("ChannelStats() error = %v", err)
	}

	sent := strings.Split(joinedParam(mock.GetQueries()[0], "id"), ",")
	if len(sent) != MaxPageSize {
		t.Errorf("ids sent = %d, want %d", len(sent), MaxPageSize)
	}
}

func TestChannelStats_Empty(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()

	c := newTestClient(t, mock, "key-a")

	stats, err := c.ChannelStats(t.Context(), []string{"", ""})
	if err != nil {
		t.Fatalf("ChannelStats() error = %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("stats = %v, want empty", stats)
	}
	if got := mock.GetRequestCount(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestChannelIDs(t *testing.T) {
	videos := []Video{
		{ID: "a", ChannelID: "UC2"},
		{ID: "b", ChannelID: "UC1"},
		{ID: "c", ChannelID: "UC2"},
		{ID: "d"},
	}

	if diff := cmp.Diff([]string{"UC2", "UC1"}, ChannelIDs(videos)); diff != "" {
		t.Errorf("ChannelIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoDurations_Chunks(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()

	var calls int
	mock.SetHandler(testutil.PathVideos, func(w http.ResponseWriter, r *http.Request) {
		calls++
		ids := strings.Split(joinedParam(r.URL.Query(), "id"), ",")

		// second chunk fails with a non-credential error
		if calls == 2 {
			resp := testutil.NewServerErrorResponse()
			w.WriteHeader(resp.StatusCode)
			w.Write([]byte(resp.Body))
			return
		}

		details := make([]testutil.VideoDetail, len(ids))
		for i, id := range ids {
			details[i] = testutil.VideoDetail{ID: id, Title: "T " + id, Duration: "PT1M30S"}
		}
		resp := testutil.NewVideosResponse(details)
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	})

	c := newTestClient(t, mock, "key-a")

	videos := make([]Video, 120)
	for i := range videos {
		videos[i] = Video{ID: fmt.Sprintf("v%03d", i)}
	}

	entries, err := c.VideoDurations(t.Context(), videos, duration.DefaultThreshold)
	if err == nil {
		t.Fatal("expected error for failed chunk")
	}
	if !errors.Is(err, ErrNotRetryable) {
		t.Errorf("error = %v, want ErrNotRetryable", err)
	}

	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("requests = %d, want 3 chunks", got)
	}

	// chunks 0-49 and 100-119 survive
	if len(entries) != 70 {
		t.Fatalf("entries = %d, want 70", len(entries))
	}
	if entries[50].VideoID != "v100" {
		t.Errorf("entries[50].VideoID = %q, want v100", entries[50].VideoID)
	}

	want := duration.Entry{VideoID: "v000", Title: "T v000", Seconds: 90, Bucket: duration.BucketLong}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoDurations_MissingDuration(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathVideos, testutil.NewVideosResponse([]testutil.VideoDetail{
		{ID: "live", Title: "Live stream"},
	}))

	c := newTestClient(t, mock, "key-a")

	entries, err := c.VideoDurations(t.Context(), []Video{{ID: "live"}}, duration.DefaultThreshold)
	if err != nil {
		t.Fatalf("VideoDurations() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Seconds != 0 || entries[0].Bucket != duration.BucketShort {
		t.Errorf("entries = %+v, want one short entry of 0 seconds", entries)
	}
}

func TestVideoTitle(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathVideos, testutil.NewVideosResponse([]testutil.VideoDetail{
		{ID: "dQw4w9WgXcQ", Title: "Never Gonna"},
	}))

	c := newTestClient(t, mock, "key-a")

	if got := c.VideoTitle(t.Context(), "dQw4w9WgXcQ"); got != "Never Gonna" {
		t.Errorf("VideoTitle() = %q, want %q", got, "Never Gonna")
	}

	mock.SetResponse(testutil.PathVideos, testutil.NewVideosResponse(nil))
	if got := c.VideoTitle(t.Context(), "missing1234"); got != "missing1234" {
		t.Errorf("VideoTitle() = %q, want the ID as fallback", got)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abcDEF_-123", "abcDEF_-123"},
		{"https://www.youtube.com/channel/UCxyz", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ExtractVideoID(tt.url); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
