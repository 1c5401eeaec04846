package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = echo.HeaderXRequestID

// requestID propagates a caller supplied X-Request-ID or mints one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set("request_id", id)
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

// requestLog writes one structured line per request and records metrics.
func requestLog(logger *slog.Logger, m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}
			elapsed := time.Since(start)
			req := c.Request()
			status := c.Response().Status
			route := c.Path()

			m.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(route).Observe(elapsed.Seconds())

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", float64(elapsed.Microseconds()) / 1000,
				"request_id", c.Get("request_id"),
			}
			if status >= 400 {
				if msg, ok := c.Get("error_message").(string); ok {
					attrs = append(attrs, "error", msg)
				}
				logger.Error("http request", attrs...)
			} else {
				logger.Info("http request", attrs...)
			}
			return nil
		}
	}
}
