package ratelimit

import (
	xhttp "StockPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests over the per-IP budget with 429.
// Paths listed in skip (e.g. /healthz, /metrics) are never limited.
func Middleware(l *Limiter, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Path()]; ok {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}
