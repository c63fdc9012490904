package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/observability"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// Observability records request metrics for /api/v1 routes and logs each
// request. Admin traffic and failures are logged at info or above, the rest
// at debug.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		area, ok := requestArea(c.Path())
		if !ok {
			return err
		}

		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)

		observability.APIRequests().WithLabelValues(area, method, route, statusLabel).Inc()
		observability.APILatency().WithLabelValues(area, method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.APIErrors().WithLabelValues(area, method, route, statusLabel).Inc()
		}

		requestLogger := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("area", area).
			Str("route", route).
			Str("method", method).
			Interface("user_id", c.Locals(LocalUserID)).
			Int("status", status).
			Float64("latency_ms", float64(duration)/float64(time.Millisecond)).
			Str("latency_bucket", latencyBucket(duration)).
			Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("request completed with client error")
		case area == "admin":
			requestLogger.Info().Msg("admin request completed")
		default:
			requestLogger.Debug().Msg("request completed")
		}

		return err
	}
}

// requestArea maps a path to the first segment under /api/v1. Scholar
// self-service routes and activity submission share the "scholar" area.
func requestArea(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, APIPrefix)
	if !ok {
		return "", false
	}
	segment := strings.Trim(rest, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}

	switch segment {
	case "admin", "auth":
		return segment, true
	case "scholar", "activities":
		return "scholar", true
	case "categories":
		return "catalog", true
	case "metrics":
		return "", false
	default:
		return "public", true
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 25*time.Millisecond:
		return "<=25ms"
	case duration <= 100*time.Millisecond:
		return "<=100ms"
	case duration <= 500*time.Millisecond:
		return "<=500ms"
	default:
		return ">500ms"
	}
}
