package client

import (
	"context"
	"errors"

	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/api/googleapi"
)

var probeResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ytfinder_probe_results_total",
	Help: "Quota probe results by key status",
}, []string{"status"})

// ProbeResult is the observed health of one key.
type ProbeResult struct {
	// Index is the zero-based position of the key in the pool.
	Index int

	// Key is the masked key.
	Key string

	Status     keypool.Status
	StatusCode int
	Err        error
}

// ProbeReport is the outcome of a quota probe.
type ProbeReport struct {
	Results []ProbeResult

	// Selected is the index of the first active key, or -1 when none is.
	Selected int
}

// HasActive reports whether at least one key answered successfully.
func (r ProbeReport) HasActive() bool {
	return r.Selected >= 0
}

// Probe issues one cheap search (part=id, maxResults=1) with every key in
// load order and classifies each. When at least one key is active the pool
// cursor is moved to the first active key. When none is, the cursor is left
// untouched and a warning is logged; later calls are expected to fail but
// nothing stops the caller from issuing them.
func (c *Client) Probe(ctx context.Context) ProbeReport {
	report := ProbeReport{Selected: -1}

	for i, key := range c.pool.Keys() {
		res := c.probeKey(ctx, i, key)
		report.Results = append(report.Results, res)
		probeResultsTotal.WithLabelValues(string(res.Status)).Inc()

		event := c.logger.Info()
		if res.Status != keypool.StatusActive {
			event = c.logger.Warn().Err(res.Err)
		}
		event.
			Int("key_number", i+1).
			Str("key", res.Key).
			Str("status", string(res.Status)).
			Int("status_code", res.StatusCode).
			Msg(res.Status.Label())

		if res.Status == keypool.StatusActive && report.Selected < 0 {
			report.Selected = i
		}
	}

	if !report.HasActive() {
		c.logger.Error().
			Int("keys", len(report.Results)).
			Msg("No active API keys found, API calls will fail")
		return report
	}

	if err := c.pool.SetIndex(report.Selected); err != nil {
		// unreachable: Selected comes from the pool's own key list
		c.logger.Error().Err(err).Msg("Failed to select starting key")
		return report
	}

	c.logger.Info().
		Int("key_number", report.Selected+1).
		Msg("Using starting API key")

	return report
}

func (c *Client) probeKey(ctx context.Context, index int, key string) ProbeResult {
	res := ProbeResult{Index: index, Key: keypool.Mask(key)}

	if err := c.limiter.Wait(ctx); err != nil {
		res.Status = keypool.StatusIndeterminate
		res.Err = err
		return res
	}

	svc, err := c.service(ctx, key)
	if err == nil {
		_, err = svc.Search.List([]string{"id"}).
			Q(c.config.ProbeQuery).
			MaxResults(1).
			Context(ctx).
			Do()
	}

	if err == nil {
		res.Status = keypool.StatusActive
		res.StatusCode = 200
		return res
	}

	res.Err = err
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		res.StatusCode = gerr.Code
		res.Status = keypool.StatusForCode(gerr.Code)
		return res
	}

	res.Status = keypool.StatusIndeterminate
	return res
}
