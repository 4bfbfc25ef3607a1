// Package aggregate joins the hazard sources into one snapshot.
package aggregate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/campuswatch/campus-hazard-aggregation/internal/airquality"
	"github.com/campuswatch/campus-hazard-aggregation/internal/notices"
)

// SensorSource produces classified air-quality reports.
type SensorSource interface {
	FetchReading(ctx context.Context) (airquality.Report, error)
}

// NoticeSource produces campus alerts, best effort.
type NoticeSource interface {
	FetchAlerts(ctx context.Context) []notices.Alert
}

// Snapshot is the combined view served to clients. AirQuality is nil only
// in degraded responses.
type Snapshot struct {
	AirQuality   *airquality.Report `json:"airQuality"`
	CampusAlerts []notices.Alert    `json:"campusAlerts"`
}

// Service fans out to both sources concurrently and joins the results.
// The sensor source is mandatory; the notice source never fails the
// snapshot.
type Service struct {
	sensor     SensorSource
	noticeFeed NoticeSource
	logger     *slog.Logger
}

func NewService(sensor SensorSource, noticeFeed NoticeSource, logger *slog.Logger) *Service {
	return &Service{
		sensor:     sensor,
		noticeFeed: noticeFeed,
		logger:     logger,
	}
}

// Snapshot fetches both sources in parallel. On sensor failure it returns
// the error along with an empty snapshot shell for the degraded response.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		wg        sync.WaitGroup
		report    airquality.Report
		sensorErr error
		alerts    []notices.Alert
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		report, sensorErr = s.sensor.FetchReading(ctx)
	}()
	go func() {
		defer wg.Done()
		alerts = s.noticeFeed.FetchAlerts(ctx)
	}()
	wg.Wait()

	if sensorErr != nil {
		s.logger.Error("snapshot degraded, sensor fetch failed", "error", sensorErr)
		return Snapshot{CampusAlerts: []notices.Alert{}}, sensorErr
	}

	if alerts == nil {
		alerts = []notices.Alert{}
	}
	return Snapshot{AirQuality: &report, CampusAlerts: alerts}, nil
}

// AirQuality serves the sensor source alone.
func (s *Service) AirQuality(ctx context.Context) (airquality.Report, error) {
	return s.sensor.FetchReading(ctx)
}

// Alerts serves the notice source alone.
func (s *Service) Alerts(ctx context.Context) []notices.Alert {
	return s.noticeFeed.FetchAlerts(ctx)
}
