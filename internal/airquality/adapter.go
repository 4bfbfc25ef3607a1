package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/campuswatch/campus-hazard-aggregation/internal/cache"
	"github.com/campuswatch/campus-hazard-aggregation/internal/config"
	"github.com/campuswatch/campus-hazard-aggregation/internal/fetch"
	"github.com/campuswatch/campus-hazard-aggregation/internal/observability"
)

// ErrSourceUnavailable is returned when the sensor API cannot produce a
// usable observation set.
var ErrSourceUnavailable = errors.New("sensor source unavailable")

const readingCacheKey = "reading_cache"

// Observation times are interpreted in the monitoring region's timezone.
const referenceTimezone = "America/Los_Angeles"

// Adapter fetches current observations from the AirNow API, classifies
// them, and serves repeat calls from the cache.
type Adapter struct {
	apiKey   string
	baseURL  string
	lat      float64
	lon      float64
	distance int

	store    cache.Cache
	cacheTTL time.Duration

	httpCfg fetch.Config
	circuit *gobreaker.CircuitBreaker

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	loc     *time.Location

	// rng drives history jitter; guarded because readings may be
	// requested from the poller and HTTP handlers at once.
	randMu sync.Mutex
	rng    *rand.Rand
}

func NewAdapter(
	cfg *config.AppConfig,
	client *http.Client,
	store cache.Cache,
	clock clockwork.Clock,
	rng *rand.Rand,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Adapter {
	loc, err := time.LoadLocation(referenceTimezone)
	if err != nil {
		logger.Warn("reference timezone unavailable, falling back to UTC", "error", err)
		loc = time.UTC
	}

	return &Adapter{
		apiKey:   cfg.AirNowAPIKey,
		baseURL:  cfg.AirNowBaseURL,
		lat:      cfg.Latitude,
		lon:      cfg.Longitude,
		distance: cfg.DistanceMiles,
		store:    store,
		cacheTTL: cfg.CacheTTL,
		httpCfg: fetch.Config{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("airnow"),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		loc:     loc,
		rng:     rng,
	}
}

// FetchReading returns the current classified reading plus its 24-hour
// trend, serving from cache when a fresh entry exists. Cache failures are
// logged and treated as misses.
func (a *Adapter) FetchReading(ctx context.Context) (Report, error) {
	if cached, err := a.store.Get(ctx, readingCacheKey); err == nil {
		var report Report
		if jErr := json.Unmarshal(cached, &report); jErr == nil {
			a.metrics.CacheLookups.WithLabelValues(readingCacheKey, "hit").Inc()
			return report, nil
		}
		a.logger.Warn("discarding undecodable cache entry", "key", readingCacheKey)
		a.metrics.CacheLookups.WithLabelValues(readingCacheKey, "error").Inc()
	} else if errors.Is(err, cache.ErrMiss) {
		a.metrics.CacheLookups.WithLabelValues(readingCacheKey, "miss").Inc()
	} else {
		a.logger.Warn("cache lookup failed", "key", readingCacheKey, "error", err)
		a.metrics.CacheLookups.WithLabelValues(readingCacheKey, "error").Inc()
	}

	start := time.Now()
	report, err := a.fetchFresh(ctx)
	a.metrics.FetchDuration.WithLabelValues("sensor").Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.SourceFetches.WithLabelValues("sensor", "error").Inc()
		return Report{}, err
	}
	a.metrics.SourceFetches.WithLabelValues("sensor", "success").Inc()

	if payload, mErr := json.Marshal(report); mErr == nil {
		if sErr := a.store.Set(ctx, readingCacheKey, payload, a.cacheTTL); sErr != nil {
			a.logger.Warn("cache write failed", "key", readingCacheKey, "error", sErr)
		}
	}

	return report, nil
}

func (a *Adapter) fetchFresh(ctx context.Context) (Report, error) {
	if a.apiKey == "" {
		return Report{}, fmt.Errorf("airnow api key is not configured")
	}

	now := a.clock.Now().In(a.loc)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "application/json")
		values.Set("latitude", strconv.FormatFloat(a.lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(a.lon, 'f', -1, 64))
		values.Set("distance", strconv.Itoa(a.distance))
		values.Set("date", now.Format("2006-01-02"))
		values.Set("hour", strconv.Itoa(now.Hour()))
		values.Set("API_KEY", a.apiKey)

		u := fmt.Sprintf("%s?%s", a.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := fetch.Do(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	var records []struct {
		ParameterName string `json:"ParameterName"`
		AQI           int    `json:"AQI"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return Report{}, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	if len(records) == 0 {
		return Report{}, fmt.Errorf("%w: empty observation set", ErrSourceUnavailable)
	}

	// Only the tracked sub-indices participate; anything else the
	// station reports (NO2, SO2, CO) is ignored.
	var pollutants Pollutants
	for _, rec := range records {
		switch rec.ParameterName {
		case "PM2.5":
			pollutants.PM25 = rec.AQI
		case "PM10":
			pollutants.PM10 = rec.AQI
		case "O3":
			pollutants.O3 = rec.AQI
		}
	}
	value := max(pollutants.PM25, pollutants.PM10, pollutants.O3)

	category, color := Classify(value)
	current := Reading{
		Value:      value,
		Category:   category,
		Color:      color,
		Timestamp:  now,
		Pollutants: pollutants,
	}

	a.randMu.Lock()
	historical := synthesizeHistory(current, a.rng)
	a.randMu.Unlock()

	return Report{Current: current, Historical: historical}, nil
}
