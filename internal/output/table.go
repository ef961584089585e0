// Package output renders command results as tables.
package output

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sternrassler/yt-finder/pkg/client"
	"github.com/Sternrassler/yt-finder/pkg/duration"
	"github.com/Sternrassler/yt-finder/pkg/export"
	"github.com/Sternrassler/yt-finder/pkg/pagination"
)

const maxTitleWidth = 60

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// ProbeTable renders one row per probed key.
func ProbeTable(report client.ProbeReport) string {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Key", "Status", "HTTP", "Note"})

	for _, r := range report.Results {
		code := ""
		if r.StatusCode != 0 {
			code = fmt.Sprintf("%d", r.StatusCode)
		}
		note := r.Status.Label()
		if r.Index == report.Selected {
			note += " (selected)"
		}
		t.AppendRow(table.Row{r.Index + 1, r.Key, string(r.Status), code, note})
	}

	summary := "no active key"
	if report.HasActive() {
		summary = fmt.Sprintf("starting with key #%d", report.Selected+1)
	}
	t.AppendFooter(table.Row{"", "", "", "", summary})

	return t.Render()
}

// SearchTable renders search hits with their channel statistics. offset is
// the zero-based position of the first video in the full result list.
func SearchTable(videos []client.Video, stats map[string]client.ChannelStats, offset int) string {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Title", "Channel", "Subscribers", "Published", "URL"})

	for i, v := range videos {
		subs := "-"
		if st, ok := stats[v.ChannelID]; ok {
			subs = FormatCount(st.Subscribers)
			if st.HiddenSubscribers {
				subs = "hidden"
			}
		}
		t.AppendRow(table.Row{
			offset + i + 1,
			truncate(v.Title, maxTitleWidth),
			v.ChannelTitle,
			subs,
			publishedDate(v.PublishedAt),
			export.WatchURL(v.ID),
		})
	}

	return t.Render()
}

// ResultSummary describes how a pagination ended.
func ResultSummary[T any](res pagination.Result[T]) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d result(s) in %d page(s)", len(res.Items), res.Pages)
	if res.HasEstimate {
		fmt.Fprintf(&b, ", API estimate %s", FormatCount(uint64(max(res.TotalEstimate, 0))))
	}
	if res.Partial() {
		fmt.Fprintf(&b, " (partial: %v)", res.Err)
	}
	return b.String()
}

// ChannelTable renders the long/short split of a channel.
func ChannelTable(title string, long, short []duration.Entry, threshold int) string {
	t := newTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Kind", "Rule", "Videos"})
	t.AppendRow(table.Row{"Long", fmt.Sprintf("> %d s", threshold), len(long)})
	t.AppendRow(table.Row{"Shorts", fmt.Sprintf("<= %d s", threshold), len(short)})
	t.AppendFooter(table.Row{"", "Total", len(long) + len(short)})
	return t.Render()
}

// FormatCount renders n with thousands separators.
func FormatCount(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func publishedDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}
