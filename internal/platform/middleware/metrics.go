package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medico/hospital/internal/platform/metrics"
)

// Metrics records request counts and latency by route template.
func Metrics(m *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			m.InFlight.Inc()
			defer m.InFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = 500
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
