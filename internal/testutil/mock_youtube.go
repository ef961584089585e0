// Package testutil provides testing utilities for the YouTube finder.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// API paths served by the mock, relative to the service base path.
const (
	PathSearch   = "/youtube/v3/search"
	PathChannels = "/youtube/v3/channels"
	PathVideos   = "/youtube/v3/videos"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockYouTube is a configurable mock of the YouTube Data API v3.
type MockYouTube struct {
	server    *httptest.Server
	mu        sync.RWMutex
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	keyErrors map[string]MockResponse

	// Tracking
	RequestCount int
	Keys         []string
	Paths        []string
	Queries      []map[string][]string

	LastRequestHeader http.Header
}

// NewMockYouTube creates a new mock YouTube API server.
func NewMockYouTube() *MockYouTube {
	mock := &MockYouTube{
		handlers:  make(map[string]func(w http.ResponseWriter, r *http.Request)),
		keyErrors: make(map[string]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")

		mock.mu.Lock()
		mock.RequestCount++
		mock.Keys = append(mock.Keys, key)
		mock.Paths = append(mock.Paths, r.URL.Path)
		mock.Queries = append(mock.Queries, r.URL.Query())
		mock.LastRequestHeader = r.Header.Clone()
		keyErr, rejected := mock.keyErrors[key]
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if rejected {
			writeResponse(w, keyErr)
			return
		}

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, NewErrorResponse(http.StatusNotFound, "notFound", "no handler for "+r.URL.Path))
	}))

	return mock
}

// URL returns the base URL to pass as the client endpoint.
func (m *MockYouTube) URL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockYouTube) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockYouTube) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Keys = nil
	m.Paths = nil
	m.Queries = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockYouTube) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockYouTube) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// RejectKey makes every request carrying key fail with resp, whatever the path.
func (m *MockYouTube) RejectKey(key string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyErrors[key] = resp
}

// AcceptKey removes a rejection configured with RejectKey.
func (m *MockYouTube) AcceptKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyErrors, key)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockYouTube) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetKeys returns the API key of every request, in arrival order.
func (m *MockYouTube) GetKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.Keys))
	copy(out, m.Keys)
	return out
}

// GetQueries returns the query parameters of every request, in arrival order.
func (m *MockYouTube) GetQueries() []map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]map[string][]string, len(m.Queries))
	copy(out, m.Queries)
	return out
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockYouTube) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK response with v encoded as JSON.
func NewJSONResponse(v any) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal response: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}
}

// NewErrorResponse creates an error response in the Google API error format.
func NewErrorResponse(code int, reason, message string) MockResponse {
	body := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"errors": []map[string]any{
				{"domain": "youtube.api", "reason": reason, "message": message},
			},
		},
	}
	resp := NewJSONResponse(body)
	resp.StatusCode = code
	return resp
}

// NewQuotaExceededResponse creates a 403 quotaExceeded response.
func NewQuotaExceededResponse() MockResponse {
	return NewErrorResponse(http.StatusForbidden, "quotaExceeded",
		"The request cannot be completed because you have exceeded your quota.")
}

// NewRateLimitResponse creates a 429 rateLimitExceeded response.
func NewRateLimitResponse() MockResponse {
	return NewErrorResponse(http.StatusTooManyRequests, "rateLimitExceeded", "Too many requests.")
}

// NewInvalidKeyResponse creates a 400 keyInvalid response.
func NewInvalidKeyResponse() MockResponse {
	return NewErrorResponse(http.StatusBadRequest, "keyInvalid", "API key not valid. Please pass a valid API key.")
}

// NewServerErrorResponse creates a 500 backendError response.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "backendError", "Backend Error")
}

// SearchItem is a minimal search.list item.
type SearchItem struct {
	VideoID   string
	ChannelID string
	Title     string
	Kind      string
}

// NewSearchPage creates a search.list response. total < 0 omits pageInfo
// and an empty next omits nextPageToken.
func NewSearchPage(items []SearchItem, total int64, next string) MockResponse {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		kind := it.Kind
		if kind == "" {
			kind = "youtube#video"
		}
		id := map[string]any{"kind": kind}
		if it.VideoID != "" {
			id["videoId"] = it.VideoID
		}
		if kind == "youtube#channel" {
			id["channelId"] = it.ChannelID
		}
		out = append(out, map[string]any{
			"kind": "youtube#searchResult",
			"id":   id,
			"snippet": map[string]any{
				"title":        it.Title,
				"channelId":    it.ChannelID,
				"channelTitle": "Channel " + it.ChannelID,
				"publishedAt":  "2024-01-02T03:04:05Z",
			},
		})
	}

	body := map[string]any{
		"kind":  "youtube#searchListResponse",
		"items": out,
	}
	if total >= 0 {
		body["pageInfo"] = map[string]any{"totalResults": total, "resultsPerPage": 50}
	}
	if next != "" {
		body["nextPageToken"] = next
	}
	return NewJSONResponse(body)
}

// NewVideoItems creates n search items with IDs derived from prefix and
// offset, for example "vid-000", "vid-001".
func NewVideoItems(prefix string, offset, n int) []SearchItem {
	items := make([]SearchItem, n)
	for i := range items {
		id := fmt.Sprintf("%s-%03d", prefix, offset+i)
		items[i] = SearchItem{VideoID: id, ChannelID: "UC" + prefix, Title: "Video " + id}
	}
	return items
}

// VideoDetail is a minimal videos.list item.
type VideoDetail struct {
	ID       string
	Title    string
	Duration string
}

// NewVideosResponse creates a videos.list response.
func NewVideosResponse(videos []VideoDetail) MockResponse {
	items := make([]map[string]any, 0, len(videos))
	for _, v := range videos {
		items = append(items, map[string]any{
			"kind":           "youtube#video",
			"id":             v.ID,
			"snippet":        map[string]any{"title": v.Title},
			"contentDetails": map[string]any{"duration": v.Duration},
		})
	}
	return NewJSONResponse(map[string]any{"kind": "youtube#videoListResponse", "items": items})
}

// ChannelDetail is a minimal channels.list item.
type ChannelDetail struct {
	ID          string
	Title       string
	Subscribers uint64
	Videos      uint64
	Views       uint64
}

// NewChannelsResponse creates a channels.list response.
func NewChannelsResponse(channels []ChannelDetail) MockResponse {
	items := make([]map[string]any, 0, len(channels))
	for _, ch := range channels {
		items = append(items, map[string]any{
			"kind":    "youtube#channel",
			"id":      ch.ID,
			"snippet": map[string]any{"title": ch.Title},
			"statistics": map[string]any{
				"subscriberCount": fmt.Sprintf("%d", ch.Subscribers),
				"videoCount":      fmt.Sprintf("%d", ch.Videos),
				"viewCount":       fmt.Sprintf("%d", ch.Views),
			},
		})
	}
	return NewJSONResponse(map[string]any{"kind": "youtube#channelListResponse", "items": items})
}
