package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/campuswatch/campus-hazard-aggregation/internal/aggregate"
	"github.com/campuswatch/campus-hazard-aggregation/internal/airquality"
	"github.com/campuswatch/campus-hazard-aggregation/internal/notices"
)

var validate = validator.New()

// Clients key off this exact string when the snapshot is degraded.
const snapshotErrMessage = "Failed to fetch data"

// Service is the aggregation surface the handlers sit on.
type Service interface {
	Snapshot(ctx context.Context) (aggregate.Snapshot, error)
	AirQuality(ctx context.Context) (airquality.Report, error)
	Alerts(ctx context.Context) []notices.Alert
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Service, board *AdvisoryBoard, mapLayers map[string]bool) {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	v1 := app.Group("/api/v1")

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		snapshot, err := service.Snapshot(c.Context())
		if err != nil {
			// Degraded envelope: success-shaped JSON so clients can
			// keep rendering while the sensor source is down.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":        snapshotErrMessage,
				"airQuality":   nil,
				"campusAlerts": snapshot.CampusAlerts,
			})
		}
		return c.JSON(snapshot)
	})

	v1.Get("/air-quality", func(c *fiber.Ctx) error {
		report, err := service.AirQuality(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch air quality data")
		}
		return c.JSON(report)
	})

	v1.Get("/campus-alerts", func(c *fiber.Ctx) error {
		return c.JSON(service.Alerts(c.Context()))
	})

	v1.Get("/map-layers", func(c *fiber.Ctx) error {
		return c.JSON(mapLayers)
	})

	v1.Get("/advisories", func(c *fiber.Ctx) error {
		return c.JSON(board.List())
	})

	v1.Post("/advisories", func(c *fiber.Ctx) error {
		var req advisoryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		adv := board.Post(req.Type, req.Message)
		return c.Status(fiber.StatusCreated).JSON(adv)
	})
}
