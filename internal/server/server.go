// Package server assembles the fiber application of the dashboard gateway.
package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/metrics"
)

// RequestIDHeader carries the per-request id, echoed back when the caller sent one.
const RequestIDHeader = "X-Request-ID"

type Config struct {
	// JWTSecret enables the bearer token guard on /api/v1 when set.
	JWTSecret   string
	CORSOrigins string
}

// RouteRegistrar is implemented by every resource handler.
type RouteRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

// New builds the app: request logging, CORS, /health and /metrics, the
// optional JWT guard, then the given handlers.
func New(cfg Config, handlers ...RouteRegistrar) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "inventory-dashboard",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestLogger)
	setupCORS(app, cfg.CORSOrigins)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if cfg.JWTSecret != "" {
		app.Use("/api/v1", jwtware.New(jwtware.Config{
			SigningKey: []byte(cfg.JWTSecret),
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
			},
		}))
	}

	for _, h := range handlers {
		h.RegisterRoutes(app)
	}
	return app
}

func setupCORS(app *fiber.App, origins string) {
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,HEAD,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + RequestIDHeader,
		ExposeHeaders: "Content-Disposition, " + RequestIDHeader,
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)

	err := c.Next()
	if err != nil {
		// let the error handler write the response before reading the status
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	elapsed := time.Since(start)
	route := c.Route().Path
	metrics.ObserveHTTP(c.Method(), route, strconv.Itoa(status), elapsed)

	event := logging.Info()
	if status >= fiber.StatusInternalServerError {
		event = logging.Warn()
	}
	event.
		Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.OriginalURL()).
		Str("route", route).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("request")
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
