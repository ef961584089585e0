// Package cmd implements the ytfinder command line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the CLI,
// for example YTFINDER_KEYS_FILE or YTFINDER_REDIS_URL.
const EnvPrefix = "YTFINDER"

// Version info set by main package
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// persistentFlags maps viper keys to the root flags that feed them.
var persistentFlags = map[string]string{
	"config":         "config",
	"keys_file":      "keys",
	"log_level":      "log-level",
	"pretty":         "pretty",
	"metrics_addr":   "metrics-addr",
	"redis_url":      "redis-url",
	"redis_list":     "redis-list",
	"rate_limit":     "rate-limit",
	"user_agent":     "user-agent",
	"endpoint":       "endpoint",
	"image_base_url": "image-base-url",
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own configuration.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "ytfinder",
		Short: "Search YouTube through a rotating pool of API keys",
		Long: `ytfinder searches the YouTube Data API v3, splits channel uploads into long
videos and shorts, and downloads thumbnails. Requests rotate through a pool of
API keys whenever one runs out of quota.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(v)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (YAML)")
	pf.String("keys", "api_keys.txt", "file with one API key per line")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("pretty", true, "human-readable console logs instead of JSON")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	pf.String("redis-url", "", "push found links to Redis (redis://host:6379/0)")
	pf.String("redis-list", "ytfinder:links", "Redis list receiving links")
	pf.Float64("rate-limit", 5, "maximum API requests per second")
	pf.String("user-agent", "", "User-Agent suffix sent with API requests")
	pf.String("endpoint", "", "override the YouTube API base URL")
	pf.String("image-base-url", "", "override the thumbnail host")
	_ = pf.MarkHidden("endpoint")
	_ = pf.MarkHidden("image-base-url")

	bindFlags(v, pf, persistentFlags)

	root.AddCommand(
		newProbeCmd(v),
		newSearchCmd(v),
		newChannelCmd(v),
		newThumbCmd(v),
		newVersionCmd(),
	)

	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

// readConfigFile loads the optional YAML config file. Flags and environment
// variables override its values.
func readConfigFile(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}
