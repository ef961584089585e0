package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/yt-finder/internal/output"
	"github.com/Sternrassler/yt-finder/pkg/client"
	"github.com/Sternrassler/yt-finder/pkg/export"
)

type searchOptions struct {
	duration   string
	definition string
	since      string
	lang       string
	save       string
	thumbs     bool
	thumbsDir  string
}

func newSearchCmd(v *viper.Viper) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search videos and list every result",
		Long: `Search videos matching the query and fetch every result page. Results are
shown with the subscriber count of their channel. When a page fails the
results collected so far are still shown and saved.`,
		Example: `  ytfinder search "golang generics" --duration medium --since month
  ytfinder search cats --save find.txt --thumbs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, v, strings.Join(args, " "), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.duration, "duration", client.FilterAny, "video length: any, short (<4m), medium (4-20m), long (>20m)")
	f.StringVar(&opts.definition, "definition", client.FilterAny, "video definition: any, standard, high")
	f.StringVar(&opts.since, "since", client.FilterAny, "published within: any, hour, today, week, month, year")
	f.StringVar(&opts.lang, "lang", "", "relevance language (ISO 639-1, e.g. en)")
	f.StringVar(&opts.save, "save", "", "append result links to this file")
	f.BoolVar(&opts.thumbs, "thumbs", false, "download thumbnails of all results")
	f.StringVar(&opts.thumbsDir, "thumbs-dir", "thumbnails", "thumbnail directory")

	return cmd
}

func runSearch(cmd *cobra.Command, v *viper.Viper, query string, opts searchOptions) error {
	publishedAfter, err := client.PublishedWithin(opts.since, time.Now())
	if err != nil {
		return err
	}

	filters := client.SearchFilters{
		Duration:       opts.duration,
		Definition:     opts.definition,
		PublishedAfter: publishedAfter,
		Language:       opts.lang,
	}
	if err := filters.Validate(); err != nil {
		return err
	}

	a, err := newApp(cmd, v)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	res := a.client.SearchAll(ctx, query, filters)
	fmt.Fprintln(a.out, output.ResultSummary(res))
	if len(res.Items) == 0 {
		fmt.Fprintln(a.out, "No results.")
		return nil
	}

	stats, err := a.client.ChannelStats(ctx, client.ChannelIDs(res.Items))
	if err != nil {
		a.logger.Warn().Err(err).Msg("Channel statistics unavailable")
	}
	fmt.Fprintln(a.out, output.SearchTable(res.Items, stats, 0))

	ids := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		ids = append(ids, it.ID)
	}

	if opts.save != "" {
		n, err := export.AppendLinks(opts.save, query, ids, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %d link(s) → %s\n", n, opts.save)
	}

	a.pushLinks(ctx, ids)

	if opts.thumbs {
		items := make([]export.Thumbnail, 0, len(res.Items))
		for _, it := range res.Items {
			items = append(items, export.Thumbnail{VideoID: it.ID, Title: it.Title})
		}
		if err := a.downloadThumbnails(cmd, opts.thumbsDir, items); err != nil {
			return err
		}
	}

	return nil
}
