package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/yt-finder/internal/output"
	"github.com/Sternrassler/yt-finder/pkg/client"
	"github.com/Sternrassler/yt-finder/pkg/export"
	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"github.com/Sternrassler/yt-finder/pkg/logging"
	"github.com/Sternrassler/yt-finder/pkg/metrics"
)

// settings is the resolved configuration shared by every command.
type settings struct {
	KeysFile     string
	LogLevel     logging.LogLevel
	Pretty       bool
	MetricsAddr  string
	RedisURL     string
	RedisList    string
	RateLimit    float64
	UserAgent    string
	Endpoint     string
	ImageBaseURL string
}

func loadSettings(v *viper.Viper) (settings, error) {
	level, err := logging.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return settings{}, err
	}

	s := settings{
		KeysFile:     v.GetString("keys_file"),
		LogLevel:     level,
		Pretty:       v.GetBool("pretty"),
		MetricsAddr:  v.GetString("metrics_addr"),
		RedisURL:     v.GetString("redis_url"),
		RedisList:    v.GetString("redis_list"),
		RateLimit:    v.GetFloat64("rate_limit"),
		UserAgent:    v.GetString("user_agent"),
		Endpoint:     v.GetString("endpoint"),
		ImageBaseURL: v.GetString("image_base_url"),
	}

	if s.KeysFile == "" {
		return settings{}, fmt.Errorf("keys file is required (--keys or %s_KEYS_FILE)", EnvPrefix)
	}
	if s.RateLimit <= 0 {
		return settings{}, fmt.Errorf("rate_limit must be > 0 (got %g)", s.RateLimit)
	}
	if s.UserAgent == "" {
		s.UserAgent = "yt-finder/" + versionInfo.Version
	}
	return s, nil
}

// app holds the collaborators of one command run.
type app struct {
	settings settings
	out      io.Writer
	logger   zerolog.Logger
	client   *client.Client
	queue    *export.RedisQueue

	stopMetrics context.CancelFunc
	metricsDone chan error
}

// newApp loads configuration and keys, builds the API client and runs the
// quota probe. A probe without an active key is reported but not fatal.
func newApp(cmd *cobra.Command, v *viper.Viper) (*app, error) {
	s, err := loadSettings(v)
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.Config{
		Level:  s.LogLevel,
		Pretty: s.Pretty,
		Output: cmd.ErrOrStderr(),
	})

	a := &app{
		settings: s,
		out:      cmd.OutOrStdout(),
		logger:   logging.NewLogger(logging.ComponentCLI),
	}

	keys, err := keypool.LoadFile(s.KeysFile)
	if err != nil {
		return nil, err
	}

	pool, err := keypool.New(keys, logging.NewLogger(logging.ComponentKeyPool))
	if err != nil {
		return nil, err
	}

	cfg := client.DefaultConfig(s.UserAgent)
	cfg.RateLimit = s.RateLimit
	cfg.Endpoint = s.Endpoint

	a.client, err = client.New(pool, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	a.logger.Info().
		Int("keys", pool.Size()).
		Str("file", s.KeysFile).
		Msg("Using keys file")

	if s.RedisURL != "" {
		a.queue, err = export.NewRedisQueueFromURL(s.RedisURL, s.RedisList, logging.NewLogger(logging.ComponentExport))
		if err != nil {
			return nil, err
		}
	}

	if s.MetricsAddr != "" {
		if err := a.startMetrics(cmd.Context()); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.probe(cmd.Context())
	return a, nil
}

func (a *app) startMetrics(ctx context.Context) error {
	srv, err := metrics.Listen(a.settings.MetricsAddr, logging.NewLogger(logging.ComponentMetrics))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	a.stopMetrics = cancel
	a.metricsDone = make(chan error, 1)
	go func() {
		a.metricsDone <- srv.Serve(ctx)
	}()
	return nil
}

// probe checks every key and prints the report.
func (a *app) probe(ctx context.Context) client.ProbeReport {
	report := a.client.Probe(ctx)
	fmt.Fprintln(a.out, output.ProbeTable(report))
	if !report.HasActive() {
		fmt.Fprintln(a.out, "Warning: no active API key, requests will probably fail.")
	}
	return report
}

// pushLinks queues ids when a Redis queue is configured.
func (a *app) pushLinks(ctx context.Context, ids []string) {
	if a.queue == nil || len(ids) == 0 {
		return
	}

	n, err := a.queue.Push(ctx, ids)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to queue links")
		fmt.Fprintf(a.out, "Queue error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Queued %d link(s) → redis list %s\n", n, a.queue.Key())
}

func (a *app) thumbnails(dir string) (*export.Thumbnails, error) {
	return export.NewThumbnails(export.ThumbnailConfig{
		Dir:     dir,
		BaseURL: a.settings.ImageBaseURL,
	}, logging.NewLogger(logging.ComponentExport))
}

// Close releases the Redis connection and stops the metrics server.
func (a *app) Close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if a.stopMetrics != nil {
		a.stopMetrics()
		if err := <-a.metricsDone; err != nil {
			a.logger.Warn().Err(err).Msg("Metrics server stopped with error")
		}
	}
}
