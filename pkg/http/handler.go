package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HealthCheck reports the readiness of one dependency.
type HealthCheck struct {
	Name  string
	Check func(c echo.Context) error
}
