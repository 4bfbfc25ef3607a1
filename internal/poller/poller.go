// Package poller keeps a client-side view of the snapshot endpoint fresh,
// the way a dashboard client would.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator/v10"

	"github.com/campuswatch/campus-hazard-aggregation/internal/airquality"
	"github.com/campuswatch/campus-hazard-aggregation/internal/notices"
	"github.com/campuswatch/campus-hazard-aggregation/internal/observability"
)

var validate = validator.New()

// Clients render this exact string when a refresh fails.
const errLoadFailed = "Failed to load data"

// State is the poller's current view. On refresh failure the previous
// data is kept and only Error changes.
type State struct {
	Alerts     []notices.Alert
	Reading    *airquality.Reading
	Historical []airquality.Reading
	IsLoading  bool
	Error      string
}

// snapshotPayload mirrors the snapshot endpoint's envelope. A payload
// missing the campusAlerts key, or an airQuality object without a current
// reading, fails shape validation and is discarded.
type snapshotPayload struct {
	AirQuality   *reportPayload   `json:"airQuality"`
	CampusAlerts *[]notices.Alert `json:"campusAlerts" validate:"required"`
}

type reportPayload struct {
	Current    *airquality.Reading  `json:"current" validate:"required"`
	Historical []airquality.Reading `json:"historical"`
}

// Poller periodically fetches the snapshot endpoint and swaps its state
// atomically.
type Poller struct {
	scheduler *gocron.Scheduler
	client    *http.Client
	targetURL string
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu    sync.RWMutex
	state State
}

// New creates a Poller against the given snapshot URL.
func New(targetURL string, interval time.Duration, client *http.Client, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	return &Poller{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		targetURL: targetURL,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
		state: State{
			Alerts:    []notices.Alert{},
			IsLoading: true,
		},
	}
}

// Start runs the first refresh immediately and then polls on the
// configured interval.
func (p *Poller) Start() error {
	_, err := p.scheduler.Every(normalizeInterval(p.interval)).StartImmediately().Do(p.poll)
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// normalizeInterval keeps sub-minute intervals intact and only falls
// back to the default when no usable interval is configured.
func normalizeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// Stop stops the scheduler and cancels any future refreshes.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// State returns the poller's current view. Slices are shared and must be
// treated as read-only.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload, err := p.fetchSnapshot(ctx)
	if err != nil {
		p.metrics.PollCycles.WithLabelValues("error").Inc()
		p.logger.Error("snapshot refresh failed, keeping previous data", "error", err)

		p.mu.Lock()
		p.state.IsLoading = false
		p.state.Error = errLoadFailed
		p.mu.Unlock()
		return
	}
	p.metrics.PollCycles.WithLabelValues("success").Inc()

	next := State{
		Alerts:    *payload.CampusAlerts,
		IsLoading: false,
	}
	if next.Alerts == nil {
		next.Alerts = []notices.Alert{}
	}
	if payload.AirQuality != nil {
		next.Reading = payload.AirQuality.Current
		next.Historical = payload.AirQuality.Historical
	}

	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
}

func (p *Poller) fetchSnapshot(ctx context.Context) (snapshotPayload, error) {
	var payload snapshotPayload

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.targetURL, nil)
	if err != nil {
		return payload, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return payload, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return payload, fmt.Errorf("snapshot shape: %w", err)
	}

	return payload, nil
}
