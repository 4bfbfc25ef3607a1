package notices

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/campuswatch/campus-hazard-aggregation/internal/cache"
	"github.com/campuswatch/campus-hazard-aggregation/internal/config"
	"github.com/campuswatch/campus-hazard-aggregation/internal/fetch"
	"github.com/campuswatch/campus-hazard-aggregation/internal/observability"
)

const alertsCacheKey = "alerts_cache"

// Articles older than this are dropped; the emergency banner is exempt.
const recencyWindow = 3 * 24 * time.Hour

// dateFormats are tried in order when filtering articles by recency.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// Adapter fetches and parses the campus notice feed. It is best effort:
// callers always get a list, possibly empty, never an error.
type Adapter struct {
	baseURL  string
	store    cache.Cache
	cacheTTL time.Duration

	httpCfg fetch.Config
	circuit *gobreaker.CircuitBreaker

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewAdapter(
	cfg *config.AppConfig,
	client *http.Client,
	store cache.Cache,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Adapter {
	return &Adapter{
		baseURL:  cfg.NoticesBaseURL,
		store:    store,
		cacheTTL: cfg.CacheTTL,
		httpCfg: fetch.Config{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("notices"),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchAlerts returns current campus alerts, newest emergency banner
// first. Any failure is logged and reported as an empty list so the
// aggregate never degrades over a notice outage.
func (a *Adapter) FetchAlerts(ctx context.Context) []Alert {
	alerts, err := a.fetchAlerts(ctx)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrParse) {
			outcome = "parse_error"
		}
		a.metrics.SourceFetches.WithLabelValues("notices", outcome).Inc()
		a.logger.Error("notice feed unavailable, serving empty alert list", "error", err)
		return []Alert{}
	}
	a.metrics.SourceFetches.WithLabelValues("notices", "success").Inc()
	return alerts
}

func (a *Adapter) fetchAlerts(ctx context.Context) ([]Alert, error) {
	if cached, err := a.store.Get(ctx, alertsCacheKey); err == nil {
		var alerts []Alert
		if jErr := json.Unmarshal(cached, &alerts); jErr == nil {
			a.metrics.CacheLookups.WithLabelValues(alertsCacheKey, "hit").Inc()
			return alerts, nil
		}
		a.logger.Warn("discarding undecodable cache entry", "key", alertsCacheKey)
		a.metrics.CacheLookups.WithLabelValues(alertsCacheKey, "error").Inc()
	} else if errors.Is(err, cache.ErrMiss) {
		a.metrics.CacheLookups.WithLabelValues(alertsCacheKey, "miss").Inc()
	} else {
		a.logger.Warn("cache lookup failed", "key", alertsCacheKey, "error", err)
		a.metrics.CacheLookups.WithLabelValues(alertsCacheKey, "error").Inc()
	}

	start := time.Now()
	alerts, err := a.scrape(ctx)
	a.metrics.FetchDuration.WithLabelValues("notices").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if payload, mErr := json.Marshal(alerts); mErr == nil {
		if sErr := a.store.Set(ctx, alertsCacheKey, payload, a.cacheTTL); sErr != nil {
			a.logger.Warn("cache write failed", "key", alertsCacheKey, "error", sErr)
		}
	}

	return alerts, nil
}

func (a *Adapter) scrape(ctx context.Context) ([]Alert, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, a.baseURL, nil)
	}

	resp, err := fetch.Do(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	now := a.clock.Now()
	parsed, err := ParseDocument(resp.Body, a.baseURL, now)
	if err != nil {
		return nil, err
	}

	return a.filterRecent(parsed, now), nil
}

// filterRecent drops articles older than the recency window. The banner
// alert always passes; articles with unreadable dates are dropped and
// counted rather than guessed at.
func (a *Adapter) filterRecent(alerts []Alert, now time.Time) []Alert {
	cutoff := now.Add(-recencyWindow)

	kept := make([]Alert, 0, len(alerts))
	for _, alert := range alerts {
		if alert.ID == emergencyBannerID {
			kept = append(kept, alert)
			continue
		}

		published, err := parseDate(alert.Date)
		if err != nil {
			a.metrics.NoticesDropped.Inc()
			a.logger.Warn("dropping notice with unreadable date", "link", alert.Link, "date", alert.Date)
			continue
		}
		if !published.Before(cutoff) {
			kept = append(kept, alert)
		}
	}
	return kept
}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
