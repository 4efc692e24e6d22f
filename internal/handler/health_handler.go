package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurantservice/internal/service"
)

// HealthHandler reports application health.
type HealthHandler struct {
	health service.HealthService
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(health service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check godoc
// @Summary Health check
// @Tags health
// @Success 200
// @Failure 503
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	if err := h.health.IsAppHealthy(c.Request().Context()); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
