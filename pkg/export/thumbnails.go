package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var thumbnailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ytfinder_thumbnails_total",
	Help: "Thumbnail downloads by result (maxres, fallback, failed)",
}, []string{"result"})

const (
	// DefaultImageBaseURL serves video thumbnails.
	DefaultImageBaseURL = "https://img.youtube.com/vi"

	// MinMaxResBytes is the size below which a maxres thumbnail is taken to
	// be the placeholder served for videos without one.
	MinMaxResBytes = 5000
)

// ErrThumbnailStatus is returned when the image host answers with a non-2xx status.
var ErrThumbnailStatus = errors.New("unexpected thumbnail status")

// ThumbnailConfig configures a Thumbnails fetcher.
type ThumbnailConfig struct {
	// Dir receives the images.
	Dir string

	// BaseURL overrides DefaultImageBaseURL (tests, mirrors).
	BaseURL string

	// Timeout per image request.
	Timeout time.Duration
}

// Thumbnail identifies one video whose image should be fetched.
type Thumbnail struct {
	VideoID string
	Title   string
}

// Thumbnails downloads video thumbnails, preferring the highest resolution.
type Thumbnails struct {
	config     ThumbnailConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewThumbnails creates a fetcher writing into cfg.Dir.
func NewThumbnails(cfg ThumbnailConfig, logger zerolog.Logger) (*Thumbnails, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("thumbnail directory is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Thumbnails{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// SetTransport sets a custom HTTP transport (for testing).
func (t *Thumbnails) SetTransport(rt http.RoundTripper) {
	t.httpClient.Transport = rt
}

// Path returns the file an image for th is written to:
// "<safe title> [<id>].jpg" inside the configured directory.
func (t *Thumbnails) Path(th Thumbnail) string {
	return filepath.Join(t.config.Dir, fmt.Sprintf("%s [%s].jpg", SafeFilename(th.Title), th.VideoID))
}

// Fetch downloads the maxres thumbnail of th. When that image is missing or
// smaller than MinMaxResBytes the hqdefault image is written instead.
// It returns the path of the written file.
func (t *Thumbnails) Fetch(ctx context.Context, th Thumbnail) (string, error) {
	if th.VideoID == "" {
		return "", fmt.Errorf("video ID is required")
	}

	if err := os.MkdirAll(t.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail directory: %w", err)
	}

	data, err := t.get(ctx, th.VideoID, "maxresdefault.jpg")
	result := "maxres"
	if err != nil || len(data) < MinMaxResBytes {
		t.logger.Debug().
			Err(err).
			Str("video_id", th.VideoID).
			Int("bytes", len(data)).
			Msg("maxres thumbnail unavailable, using hqdefault")

		data, err = t.get(ctx, th.VideoID, "hqdefault.jpg")
		result = "fallback"
	}
	if err != nil {
		thumbnailsTotal.WithLabelValues("failed").Inc()
		return "", err
	}

	path := t.Path(th)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		thumbnailsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("write thumbnail: %w", err)
	}

	thumbnailsTotal.WithLabelValues(result).Inc()
	return path, nil
}

// FetchAll downloads every thumbnail in order. Failures are logged and
// skipped; the number of written images and the joined errors are returned.
func (t *Thumbnails) FetchAll(ctx context.Context, items []Thumbnail) (int, error) {
	var (
		count int
		errs  []error
	)

	for _, th := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		path, err := t.Fetch(ctx, th)
		if err != nil {
			t.logger.Warn().Err(err).Str("video_id", th.VideoID).Msg("Thumbnail download failed")
			errs = append(errs, fmt.Errorf("%s: %w", th.VideoID, err))
			continue
		}

		count++
		t.logger.Info().Str("video_id", th.VideoID).Str("path", path).Msg("Thumbnail saved")
	}

	return count, errors.Join(errs...)
}

func (t *Thumbnails) get(ctx context.Context, videoID, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", t.config.BaseURL, videoID, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrThumbnailStatus, name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
