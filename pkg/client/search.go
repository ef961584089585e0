package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/yt-finder/pkg/pagination"
	"google.golang.org/api/youtube/v3"
)

// Video is a search hit or channel upload.
type Video struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	PublishedAt  string
}

// Filter values accepted by the search endpoint. "any" leaves a filter unset.
const (
	FilterAny = "any"

	DurationShort  = "short"  // < 4 minutes
	DurationMedium = "medium" // 4 - 20 minutes
	DurationLong   = "long"   // > 20 minutes

	DefinitionStandard = "standard"
	DefinitionHigh     = "high"
)

// SearchFilters narrows a video search. Zero values disable a filter.
type SearchFilters struct {
	Duration       string
	Definition     string
	PublishedAfter time.Time
	Language       string
}

// Validate checks the enumerated filter values.
func (f SearchFilters) Validate() error {
	switch f.Duration {
	case "", FilterAny, DurationShort, DurationMedium, DurationLong:
	default:
		return fmt.Errorf("invalid duration filter %q", f.Duration)
	}

	switch f.Definition {
	case "", FilterAny, DefinitionStandard, DefinitionHigh:
	default:
		return fmt.Errorf("invalid definition filter %q", f.Definition)
	}

	return nil
}

func (f SearchFilters) apply(call *youtube.SearchListCall) *youtube.SearchListCall {
	if f.Duration != "" && f.Duration != FilterAny {
		call = call.VideoDuration(f.Duration)
	}
	if f.Definition != "" && f.Definition != FilterAny {
		call = call.VideoDefinition(f.Definition)
	}
	if !f.PublishedAfter.IsZero() {
		call = call.PublishedAfter(f.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if f.Language != "" {
		call = call.RelevanceLanguage(f.Language)
	}
	return call
}

// PublishedWithin converts a named window (hour, today, week, month, year)
// to the earliest publish time relative to now. An empty window or "any"
// returns the zero time.
func PublishedWithin(window string, now time.Time) (time.Time, error) {
	now = now.UTC()

	switch window {
	case "", FilterAny:
		return time.Time{}, nil
	case "hour":
		return now.Add(-time.Hour), nil
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, 0, -30), nil
	case "year":
		return now.AddDate(0, 0, -365), nil
	default:
		return time.Time{}, fmt.Errorf("unknown publish window %q", window)
	}
}

// SearchAll fetches every page of a video search. A failed page ends the
// search; Result.Err is set and Result.Items keeps the earlier pages.
func (c *Client) SearchAll(ctx context.Context, query string, filters SearchFilters) pagination.Result[Video] {
	if err := filters.Validate(); err != nil {
		return pagination.Result[Video]{Err: err}
	}

	return c.drainSearch(ctx, "search", func(svc *youtube.Service) *youtube.SearchListCall {
		call := svc.Search.List([]string{"snippet"}).Q(query).Type("video")
		return filters.apply(call)
	}, false)
}

// ChannelVideos fetches every upload of a channel, newest first. Results
// without a video ID are dropped.
func (c *Client) ChannelVideos(ctx context.Context, channelID string) pagination.Result[Video] {
	return c.drainSearch(ctx, "channel_videos", func(svc *youtube.Service) *youtube.SearchListCall {
		return svc.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Type("video").
			Order("date")
	}, true)
}

// drainSearch paginates a search.list call built by build. Each attempt
// rebuilds the call against the current key and binds the page token.
func (c *Client) drainSearch(ctx context.Context, kind string, build func(*youtube.Service) *youtube.SearchListCall, videosOnly bool) pagination.Result[Video] {
	fetch := func(ctx context.Context, token string) (pagination.Page[Video], error) {
		resp, err := Execute(ctx, c, "search.list", func(ctx context.Context, svc *youtube.Service) (*youtube.SearchListResponse, error) {
			call := build(svc).MaxResults(c.config.PageSize)
			if token != "" {
				call = call.PageToken(token)
			}
			return call.Context(ctx).Do()
		})
		if err != nil {
			return pagination.Page[Video]{}, err
		}

		page := pagination.Page[Video]{NextPageToken: resp.NextPageToken}
		if resp.PageInfo != nil {
			page.TotalResults = resp.PageInfo.TotalResults
			page.HasTotal = true
		}
		for _, item := range resp.Items {
			v := videoFromSearchResult(item)
			if videosOnly && v.ID == "" {
				continue
			}
			page.Items = append(page.Items, v)
		}
		return page, nil
	}

	return pagination.Drain(ctx, c.paginator, kind, fetch)
}

func videoFromSearchResult(item *youtube.SearchResult) Video {
	var v Video
	if item == nil {
		return v
	}
	if item.Id != nil {
		v.ID = item.Id.VideoId
	}
	if sn := item.Snippet; sn != nil {
		v.Title = sn.Title
		v.ChannelID = sn.ChannelId
		v.ChannelTitle = sn.ChannelTitle
		v.PublishedAt = sn.PublishedAt
	}
	return v
}
