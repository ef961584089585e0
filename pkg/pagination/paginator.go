package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytfinder_pages_fetched_total",
		Help: "Total result pages fetched by query kind",
	}, []string{"query_kind"})

	itemsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytfinder_items_fetched_total",
		Help: "Total result items fetched by query kind",
	}, []string{"query_kind"})

	paginationAbortedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytfinder_pagination_aborted_total",
		Help: "Paginations that stopped before the last page by query kind and reason",
	}, []string{"query_kind", "reason"})
)

// ErrMaxPagesReached is recorded when the page bound stops a pagination.
var ErrMaxPagesReached = errors.New("maximum page count reached")

// Config holds paginator configuration.
type Config struct {
	// MaxPages bounds the number of pages fetched for one query.
	// The remote normally stops issuing tokens long before this.
	MaxPages int
}

// DefaultConfig returns the default paginator configuration.
func DefaultConfig() Config {
	return Config{
		MaxPages: 1000,
	}
}

// Page is one remote reply.
type Page[T any] struct {
	Items []T

	// TotalResults is the remote's estimate of the full result count.
	// It is informational only and may disagree with the items returned.
	TotalResults int64
	HasTotal     bool

	// NextPageToken is empty on the last page.
	NextPageToken string
}

// FetchFunc fetches the page addressed by token. The first call receives
// an empty token.
type FetchFunc[T any] func(ctx context.Context, token string) (Page[T], error)

// Result is the accumulated outcome of one pagination.
type Result[T any] struct {
	// Items holds every item from every successful page, in order.
	Items []T

	// TotalEstimate is the total reported on the first page.
	TotalEstimate int64
	HasEstimate   bool

	// Pages is the number of pages fetched successfully.
	Pages int

	// Err explains why pagination stopped early. It is nil when the
	// remote ran out of pages.
	Err error
}

// Partial reports whether the result stopped before the last page.
func (r Result[T]) Partial() bool {
	return r.Err != nil
}

// Paginator drains paginated listings.
type Paginator struct {
	config Config
	logger zerolog.Logger
}

// New creates a paginator.
func New(config Config, logger zerolog.Logger) *Paginator {
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultConfig().MaxPages
	}

	return &Paginator{
		config: config,
		logger: logger,
	}
}

// Drain calls fetch until the remote stops returning a continuation token,
// a page request fails, or the page bound is hit. A failed page ends the
// pagination but everything fetched before it is kept.
func Drain[T any](ctx context.Context, p *Paginator, kind string, fetch FetchFunc[T]) Result[T] {
	start := time.Now()

	var res Result[T]
	token := ""

	for {
		if res.Pages >= p.config.MaxPages {
			res.Err = fmt.Errorf("%w (%d)", ErrMaxPagesReached, p.config.MaxPages)
			paginationAbortedTotal.WithLabelValues(kind, "max_pages").Inc()
			p.logger.Warn().
				Str("query_kind", kind).
				Int("pages", res.Pages).
				Int("items", len(res.Items)).
				Msg("Page limit reached - returning partial results")
			return res
		}

		page, err := fetch(ctx, token)
		if err != nil {
			res.Err = err
			paginationAbortedTotal.WithLabelValues(kind, "fetch_failed").Inc()
			p.logger.Warn().
				Err(err).
				Str("query_kind", kind).
				Int("pages", res.Pages).
				Int("items", len(res.Items)).
				Msg("Page fetch failed - returning partial results")
			return res
		}

		if res.Pages == 0 && page.HasTotal {
			res.TotalEstimate = page.TotalResults
			res.HasEstimate = true
			p.logger.Info().
				Str("query_kind", kind).
				Int64("total_estimate", page.TotalResults).
				Msg("API reports total results")
		}

		res.Pages++
		res.Items = append(res.Items, page.Items...)
		pagesFetchedTotal.WithLabelValues(kind).Inc()
		itemsFetchedTotal.WithLabelValues(kind).Add(float64(len(page.Items)))

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken

		p.logger.Info().
			Str("query_kind", kind).
			Int("fetched", len(res.Items)).
			Int("pages", res.Pages).
			Msg("Fetch progress")
	}

	p.logger.Info().
		Str("query_kind", kind).
		Int("pages", res.Pages).
		Int("items", len(res.Items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return res
}
