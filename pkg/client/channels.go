package client

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sternrassler/yt-finder/pkg/duration"
	"google.golang.org/api/youtube/v3"
)

var (
	channelURLPattern = regexp.MustCompile(`youtube\.com/channel/(UC[\w-]+)`)
	handlePattern     = regexp.MustCompile(`@([\w.\-]+)`)
	videoIDPattern    = regexp.MustCompile(`(?:v=|youtu\.be/|/shorts/)([\w-]{11})`)
)

// Channel identifies a resolved channel.
type Channel struct {
	ID    string
	Title string
}

// ChannelStats holds the public statistics of a channel.
type ChannelStats struct {
	Title             string
	Subscribers       uint64
	Videos            uint64
	Views             uint64
	HiddenSubscribers bool
}

// ResolveChannel turns user input into a channel. Accepted forms:
//
//	https://www.youtube.com/channel/UC...
//	https://www.youtube.com/@handle or @handle
//	any free text, matched by channel search
//
// A /channel/ URL always resolves; its title falls back to the ID when the
// lookup fails. ErrChannelNotFound is returned when nothing matches.
func (c *Client) ResolveChannel(ctx context.Context, input string) (Channel, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Channel{}, ErrChannelNotFound
	}

	if m := channelURLPattern.FindStringSubmatch(input); m != nil {
		id := m[1]
		resp, err := Execute(ctx, c, "channels.list", func(ctx context.Context, svc *youtube.Service) (*youtube.ChannelListResponse, error) {
			return svc.Channels.List([]string{"snippet"}).Id(id).Context(ctx).Do()
		})
		if err == nil && len(resp.Items) > 0 && resp.Items[0].Snippet != nil {
			return Channel{ID: id, Title: resp.Items[0].Snippet.Title}, nil
		}
		return Channel{ID: id, Title: id}, nil
	}

	if m := handlePattern.FindStringSubmatch(input); m != nil {
		handle := m[1]
		resp, err := Execute(ctx, c, "channels.list", func(ctx context.Context, svc *youtube.Service) (*youtube.ChannelListResponse, error) {
			return svc.Channels.List([]string{"snippet"}).ForHandle(handle).Context(ctx).Do()
		})
		if err == nil && len(resp.Items) > 0 {
			it := resp.Items[0]
			ch := Channel{ID: it.Id}
			if it.Snippet != nil {
				ch.Title = it.Snippet.Title
			}
			return ch, nil
		}

		if ch, ok := c.searchChannel(ctx, "@"+handle); ok {
			return ch, nil
		}
	}

	if ch, ok := c.searchChannel(ctx, input); ok {
		return ch, nil
	}

	return Channel{}, fmt.Errorf("%w: %q", ErrChannelNotFound, input)
}

// searchChannel returns the best channel search hit for q.
func (c *Client) searchChannel(ctx context.Context, q string) (Channel, bool) {
	resp, err := Execute(ctx, c, "search.list", func(ctx context.Context, svc *youtube.Service) (*youtube.SearchListResponse, error) {
		return svc.Search.List([]string{"snippet"}).
			Q(q).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
	})
	if err != nil || len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return Channel{}, false
	}

	sn := resp.Items[0].Snippet
	return Channel{ID: sn.ChannelId, Title: sn.Title}, true
}

// ChannelStats fetches statistics for up to MaxPageSize distinct channel
// IDs; further IDs are ignored. Empty IDs are skipped.
func (c *Client) ChannelStats(ctx context.Context, ids []string) (map[string]ChannelStats, error) {
	unique := uniqueNonEmpty(ids)
	if len(unique) == 0 {
		return map[string]ChannelStats{}, nil
	}
	if len(unique) > MaxPageSize {
		unique = unique[:MaxPageSize]
	}

	resp, err := Execute(ctx, c, "channels.list", func(ctx context.Context, svc *youtube.Service) (*youtube.ChannelListResponse, error) {
		return svc.Channels.List([]string{"snippet", "statistics"}).Id(unique...).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("channel stats: %w", err)
	}

	out := make(map[string]ChannelStats, len(resp.Items))
	for _, it := range resp.Items {
		var st ChannelStats
		if it.Snippet != nil {
			st.Title = it.Snippet.Title
		}
		if s := it.Statistics; s != nil {
			st.Subscribers = s.SubscriberCount
			st.Videos = s.VideoCount
			st.Views = s.ViewCount
			st.HiddenSubscribers = s.HiddenSubscriberCount
		}
		out[it.Id] = st
	}
	return out, nil
}

// ChannelIDs returns the distinct channel IDs of videos in first-seen order.
func ChannelIDs(videos []Video) []string {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ChannelID)
	}
	return uniqueNonEmpty(ids)
}

// VideoDurations looks up the duration of every video in chunks of
// MaxPageSize IDs and classifies them against threshold. A failed chunk is
// skipped and reported in the returned error; entries from the other
// chunks are still returned.
func (c *Client) VideoDurations(ctx context.Context, videos []Video, threshold int) ([]duration.Entry, error) {
	var (
		entries []duration.Entry
		errs    []error
	)

	for start := 0; start < len(videos); start += MaxPageSize {
		end := min(start+MaxPageSize, len(videos))

		ids := make([]string, 0, end-start)
		for _, v := range videos[start:end] {
			ids = append(ids, v.ID)
		}

		resp, err := Execute(ctx, c, "videos.list", func(ctx context.Context, svc *youtube.Service) (*youtube.VideoListResponse, error) {
			return svc.Videos.List([]string{"contentDetails", "snippet"}).Id(ids...).Context(ctx).Do()
		})
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("chunk_start", start).
				Int("chunk_size", len(ids)).
				Msg("Skipping video chunk")
			errs = append(errs, fmt.Errorf("videos %d-%d: %w", start, end-1, err))
			continue
		}

		for _, it := range resp.Items {
			encoded := "PT0S"
			if it.ContentDetails != nil && it.ContentDetails.Duration != "" {
				encoded = it.ContentDetails.Duration
			}
			var title string
			if it.Snippet != nil {
				title = it.Snippet.Title
			}
			entries = append(entries, duration.NewEntry(it.Id, title, encoded, threshold))
		}
	}

	return entries, errors.Join(errs...)
}

// VideoTitle returns the title of a single video, or its ID when the
// lookup fails or the video does not exist.
func (c *Client) VideoTitle(ctx context.Context, id string) string {
	resp, err := Execute(ctx, c, "videos.list", func(ctx context.Context, svc *youtube.Service) (*youtube.VideoListResponse, error) {
		return svc.Videos.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	})
	if err != nil || len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return id
	}
	return resp.Items[0].Snippet.Title
}

// ExtractVideoID returns the 11-character video ID in a watch, short-link
// or Shorts URL, or "" when there is none.
func ExtractVideoID(rawURL string) string {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
