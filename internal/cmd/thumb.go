package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/yt-finder/pkg/client"
	"github.com/Sternrassler/yt-finder/pkg/export"
)

func newThumbCmd(v *viper.Viper) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "thumb <video-url>",
		Short:   "Download the thumbnail of one video",
		Example: `  ytfinder thumb https://youtu.be/dQw4w9WgXcQ`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := client.ExtractVideoID(args[0])
			if id == "" {
				return fmt.Errorf("could not extract a video ID from %q", args[0])
			}

			a, err := newApp(cmd, v)
			if err != nil {
				return err
			}
			defer a.Close()

			title := a.client.VideoTitle(cmd.Context(), id)
			fmt.Fprintf(a.out, "Downloading thumbnail for: %s\n", title)

			return a.downloadThumbnails(cmd, dir, []export.Thumbnail{{VideoID: id, Title: title}})
		},
	}

	cmd.Flags().StringVar(&dir, "thumbs-dir", "thumbnails", "thumbnail directory")
	return cmd
}

// downloadThumbnails fetches items into dir and prints a summary. Failed
// images are reported; the command fails only when none could be written.
func (a *app) downloadThumbnails(cmd *cobra.Command, dir string, items []export.Thumbnail) error {
	th, err := a.thumbnails(dir)
	if err != nil {
		return err
	}

	n, err := th.FetchAll(cmd.Context(), items)
	fmt.Fprintf(a.out, "Downloaded %d thumbnail(s) → %s\n", n, dir)
	if err != nil {
		if n == 0 {
			return fmt.Errorf("no thumbnail downloaded: %w", err)
		}
		a.logger.Warn().Err(err).Int("failed", len(items)-n).Msg("Some thumbnails failed")
	}
	return nil
}
