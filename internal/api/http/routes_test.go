package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswatch/campus-hazard-aggregation/internal/aggregate"
	"github.com/campuswatch/campus-hazard-aggregation/internal/airquality"
	"github.com/campuswatch/campus-hazard-aggregation/internal/notices"
)

type stubService struct {
	snapshot    aggregate.Snapshot
	snapshotErr error
	report      airquality.Report
	reportErr   error
	alerts      []notices.Alert
}

func (s *stubService) Snapshot(ctx context.Context) (aggregate.Snapshot, error) {
	return s.snapshot, s.snapshotErr
}

func (s *stubService) AirQuality(ctx context.Context) (airquality.Report, error) {
	return s.report, s.reportErr
}

func (s *stubService) Alerts(ctx context.Context) []notices.Alert {
	return s.alerts
}

func newTestApp(svc Service) *fiber.App {
	app := fiber.New()
	board := NewAdvisoryBoard(clockwork.NewFakeClock())
	layers := map[string]bool{"activeFires": true, "firePerimeters": false}
	RegisterRoutes(app, svc, board, layers)
	return app
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestSnapshotEndpoint(t *testing.T) {
	report := airquality.Report{Current: airquality.Reading{Value: 87, Category: "Moderate", Color: "#FFFF00"}}
	svc := &stubService{
		snapshot: aggregate.Snapshot{
			AirQuality:   &report,
			CampusAlerts: []notices.Alert{{ID: "a", Title: "Notice", Type: notices.TypeInfo}},
		},
	}

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AirQuality   *airquality.Report `json:"airQuality"`
		CampusAlerts []notices.Alert    `json:"campusAlerts"`
	}
	decodeBody(t, resp, &body)
	require.NotNil(t, body.AirQuality)
	assert.Equal(t, 87, body.AirQuality.Current.Value)
	require.Len(t, body.CampusAlerts, 1)
	assert.Equal(t, "a", body.CampusAlerts[0].ID)
}

func TestSnapshotEndpointDegraded(t *testing.T) {
	svc := &stubService{
		snapshot:    aggregate.Snapshot{CampusAlerts: []notices.Alert{}},
		snapshotErr: errors.New("sensor down"),
	}

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// The degraded payload keeps the success shape.
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.JSONEq(t, `"Failed to fetch data"`, string(envelope["error"]))
	assert.JSONEq(t, `null`, string(envelope["airQuality"]))
	assert.JSONEq(t, `[]`, string(envelope["campusAlerts"]))
}

func TestAirQualityEndpoint(t *testing.T) {
	svc := &stubService{report: airquality.Report{Current: airquality.Reading{Value: 12, Category: "Good"}}}

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/v1/air-quality", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report airquality.Report
	decodeBody(t, resp, &report)
	assert.Equal(t, "Good", report.Current.Category)
}

func TestAirQualityEndpointError(t *testing.T) {
	svc := &stubService{reportErr: errors.New("sensor down")}

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/v1/air-quality", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCampusAlertsEndpoint(t *testing.T) {
	svc := &stubService{alerts: []notices.Alert{{ID: "x", Type: notices.TypeWarning}}}

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/v1/campus-alerts", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts []notices.Alert
	decodeBody(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, notices.TypeWarning, alerts[0].Type)
}

func TestMapLayersEndpoint(t *testing.T) {
	resp, err := newTestApp(&stubService{}).Test(httptest.NewRequest(http.MethodGet, "/api/v1/map-layers", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var layers map[string]bool
	decodeBody(t, resp, &layers)
	assert.Equal(t, map[string]bool{"activeFires": true, "firePerimeters": false}, layers)
}

func TestAdvisoryPostAndList(t *testing.T) {
	app := newTestApp(&stubService{})

	post := httptest.NewRequest(http.MethodPost, "/api/v1/advisories",
		strings.NewReader(`{"type":"warning","message":"Road closure on campus drive"}`))
	post.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(post)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Advisory
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "warning", created.Type)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/advisories", nil))
	require.NoError(t, err)

	var listed []Advisory
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestAdvisoryPostValidation(t *testing.T) {
	app := newTestApp(&stubService{})

	cases := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"panic","message":"hello"}`},
		{"missing message", `{"type":"info"}`},
		{"missing type", `{"message":"hello"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/advisories", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
