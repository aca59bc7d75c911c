package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/repository"
)

// StatsHandler serves the dashboard counters.
type StatsHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewStatsHandler(repo *repository.VehicleRepo) *StatsHandler {
	return &StatsHandler{Vehicles: repo}
}

// Get returns the aggregate counters in a single payload.
func (h *StatsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Vehicles.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
