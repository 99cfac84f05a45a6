package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger writes one line per request. Failed requests log at error level,
// 4xx responses at warn.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid, _ := c.Get("request_id").(string)
			reqLogger := logger.With().Str("request_id", rid).Logger()
			c.SetRequest(c.Request().WithContext(reqLogger.WithContext(c.Request().Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			evt := reqLogger.Info()
			switch {
			case err != nil && status >= 500:
				evt = reqLogger.Error().Err(err)
			case status >= 400:
				evt = reqLogger.Warn()
			}

			req := c.Request()
			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return nil
		}
	}
}
