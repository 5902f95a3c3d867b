package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/metrics"
)

const (
	TraceIDHeader     = "X-Trace-ID"
	TraceParentHeader = "traceparent"
)

// TraceID extracts the trace id from W3C traceparent, then X-Trace-ID, and
// generates one when neither is present.
func TraceID(c echo.Context) string {
	if tp := c.Request().Header.Get(TraceParentHeader); tp != "" {
		// version-trace_id-parent_id-flags
		if parts := strings.Split(tp, "-"); len(parts) >= 2 && parts[1] != "" {
			return parts[1]
		}
	}
	if id := c.Request().Header.Get(TraceIDHeader); id != "" {
		return id
	}
	return generateTraceID()
}

func generateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestLogger attaches a trace-scoped zerolog logger to the request
// context, logs one line per request and records HTTP metrics.
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		traceID := TraceID(c)
		c.Set("trace_id", traceID)
		c.Response().Header().Set(TraceIDHeader, traceID)

		logger := log.With().Str("trace_id", traceID).Logger()
		req := c.Request()
		c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), logger)))

		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

		ev := logging.FromContext(c.Request().Context()).Info()
		if status >= 500 {
			ev = logging.FromContext(c.Request().Context()).Error()
		} else if status >= 400 {
			ev = logging.FromContext(c.Request().Context()).Warn()
		}
		ev.Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("remote_ip", c.RealIP()).
			Msg("request")
		return nil
	}
}
