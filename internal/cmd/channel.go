package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/yt-finder/internal/output"
	"github.com/Sternrassler/yt-finder/pkg/duration"
	"github.com/Sternrassler/yt-finder/pkg/export"
)

type channelOptions struct {
	outDir    string
	threshold int
	thumbs    bool
	thumbsDir string
}

func newChannelCmd(v *viper.Viper) *cobra.Command {
	var opts channelOptions

	cmd := &cobra.Command{
		Use:   "channel <url|@handle|name>",
		Short: "Split a channel's uploads into long videos and shorts",
		Long: `Resolve a channel from its URL, @handle or name, list every upload and write
the links of long videos and shorts to <out-dir>/<channel>_long.txt and
<out-dir>/<channel>_shorts.txt.`,
		Example: `  ytfinder channel @GoogleDevelopers
  ytfinder channel https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw --thumbs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChannel(cmd, v, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.outDir, "out-dir", "parsed", "directory for the link files")
	f.IntVar(&opts.threshold, "threshold", duration.DefaultThreshold, "videos longer than this many seconds are long")
	f.BoolVar(&opts.thumbs, "thumbs", false, "download thumbnails of all uploads instead of splitting")
	f.StringVar(&opts.thumbsDir, "thumbs-dir", "thumbnails", "thumbnail directory")

	return cmd
}

func runChannel(cmd *cobra.Command, v *viper.Viper, input string, opts channelOptions) error {
	a, err := newApp(cmd, v)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	ch, err := a.client.ResolveChannel(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Channel: %s (%s)\n", ch.Title, ch.ID)

	res := a.client.ChannelVideos(ctx, ch.ID)
	fmt.Fprintln(a.out, output.ResultSummary(res))
	if len(res.Items) == 0 {
		fmt.Fprintln(a.out, "No videos found.")
		return nil
	}

	if opts.thumbs {
		items := make([]export.Thumbnail, 0, len(res.Items))
		for _, it := range res.Items {
			items = append(items, export.Thumbnail{VideoID: it.ID, Title: it.Title})
		}
		return a.downloadThumbnails(cmd, opts.thumbsDir, items)
	}

	entries, err := a.client.VideoDurations(ctx, res.Items, opts.threshold)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Some video durations could not be fetched")
	}

	long, short := duration.Classify(entries, opts.threshold)
	fmt.Fprintln(a.out, output.ChannelTable(ch.Title, long, short, opts.threshold))

	paths, err := export.WriteSplit(opts.outDir, ch.Title, long, short)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved → %s\nSaved → %s\n", paths.Long, paths.Short)

	ids := make([]string, 0, len(long))
	for _, e := range long {
		ids = append(ids, e.VideoID)
	}
	a.pushLinks(ctx, ids)

	return nil
}
