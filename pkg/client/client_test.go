package client

import (
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/yt-finder/internal/testutil"
	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"github.com/rs/zerolog"
)

const testUserAgent = "TestApp/1.0.0 (test@example.com)"

// newTestClient creates a client against mock with the given keys.
func newTestClient(t *testing.T, mock *testutil.MockYouTube, keys ...string) *Client {
	t.Helper()

	pool, err := keypool.New(keys, zerolog.Nop())
	if err != nil {
		t.Fatalf("keypool.New() error = %v", err)
	}

	cfg := DefaultConfig(testUserAgent)
	cfg.Endpoint = mock.URL()
	cfg.RateLimit = 1000
	cfg.Burst = 100
	cfg.Timeout = 5 * time.Second

	c, err := New(pool, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.SetLogger(zerolog.Nop())
	return c
}

func TestNew_Validation(t *testing.T) {
	pool, err := keypool.New([]string{"key-a"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("keypool.New() error = %v", err)
	}

	tests := []struct {
		name        string
		pool        *keypool.Pool
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			pool:        pool,
			expectError: false,
		},
		{
			name:        "nil pool",
			pool:        nil,
			expectError: true,
			errorMsg:    "key pool is required",
		},
		{
			name:        "empty user agent",
			pool:        pool,
			mutate:      func(c *Config) { c.UserAgent = "" },
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "page size too large",
			pool:        pool,
			mutate:      func(c *Config) { c.PageSize = 51 },
			expectError: true,
			errorMsg:    "page_size must be in [1, 50] (got 51)",
		},
		{
			name:        "page size zero",
			pool:        pool,
			mutate:      func(c *Config) { c.PageSize = 0 },
			expectError: true,
			errorMsg:    "page_size must be in [1, 50] (got 0)",
		},
		{
			name:        "rate limit zero",
			pool:        pool,
			mutate:      func(c *Config) { c.RateLimit = 0 },
			expectError: true,
			errorMsg:    "rate_limit must be > 0 (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(testUserAgent)
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			client, err := New(tt.pool, cfg)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Error("Expected client but got nil")
			}
		})
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	pool, _ := keypool.New([]string{"key-a"}, zerolog.Nop())

	c, err := New(pool, Config{UserAgent: testUserAgent, PageSize: 10, RateLimit: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.config.Burst != 1 {
		t.Errorf("Burst = %d, want 1", c.config.Burst)
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.config.Timeout)
	}
	if c.config.ProbeQuery != "test" {
		t.Errorf("ProbeQuery = %q, want %q", c.config.ProbeQuery, "test")
	}
	if c.Pool() != pool {
		t.Error("Pool() did not return the configured pool")
	}
}

func TestDefaultConfig(t *testing.T) {
	userAgent := "TestApp/1.0.0"
	cfg := DefaultConfig(userAgent)

	if cfg.UserAgent != userAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, userAgent)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %v, want 5", cfg.RateLimit)
	}
	if cfg.PageSize != MaxPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, MaxPageSize)
	}
	if cfg.ProbeQuery != "test" {
		t.Errorf("ProbeQuery = %q, want %q", cfg.ProbeQuery, "test")
	}
	if cfg.Pagination.MaxPages != 1000 {
		t.Errorf("Pagination.MaxPages = %d, want 1000", cfg.Pagination.MaxPages)
	}
}

func TestClient_UserAgentAndKeySent(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.SetResponse(testutil.PathVideos, testutil.NewVideosResponse(nil))

	c := newTestClient(t, mock, "key-a")
	c.VideoTitle(t.Context(), "abc")

	ua := mock.GetLastRequestHeader().Get("User-Agent")
	if !strings.Contains(ua, testUserAgent) {
		t.Errorf("User-Agent = %q, want it to contain %q", ua, testUserAgent)
	}

	keys := mock.GetKeys()
	if len(keys) != 1 || keys[0] != "key-a" {
		t.Errorf("keys sent = %v, want [key-a]", keys)
	}
}
