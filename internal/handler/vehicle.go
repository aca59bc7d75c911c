package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
	"github.com/iliyamo/vehicle-yard/internal/service"
	"github.com/iliyamo/vehicle-yard/internal/vehicle"
)

// VehicleHandler exposes the vehicle CRUD and lifecycle endpoints.
// Mutations go through the service so every one is paired with an
// audit entry; reads hit the repository directly.
type VehicleHandler struct {
	Svc  *service.VehicleService
	Repo *repository.VehicleRepo
}

func NewVehicleHandler(svc *service.VehicleService, repo *repository.VehicleRepo) *VehicleHandler {
	return &VehicleHandler{Svc: svc, Repo: repo}
}

// vehicleErr maps the service sentinels onto HTTP statuses.
func vehicleErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, vehicle.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPlacaEmUso):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operação falhou"})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 10*time.Second)
}

// Create registers a new vehicle.
func (h *VehicleHandler) Create(c echo.Context) error {
	var in service.VehicleInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Svc.Create(ctx, actorFrom(c), &in)
	if err != nil {
		return vehicleErr(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// GetByID returns one vehicle or 404.
func (h *VehicleHandler) GetByID(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, v)
}

// Update edits a vehicle; only the supplied fields change.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var in service.VehicleInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Svc.Update(ctx, actorFrom(c), id, &in)
	if err != nil {
		return vehicleErr(c, err)
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a vehicle.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Svc.Delete(ctx, actorFrom(c), id)
	if err != nil {
		return vehicleErr(c, err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAsReturned releases a vehicle back to its owner.
func (h *VehicleHandler) MarkAsReturned(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Svc.MarkAsReturned(ctx, actorFrom(c), id)
	if err != nil {
		return vehicleErr(c, err)
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}

// UndoReturn clears the returned state.
func (h *VehicleHandler) UndoReturn(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Svc.UndoReturn(ctx, actorFrom(c), id)
	if err != nil {
		return vehicleErr(c, err)
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}

type periciaReq struct {
	StatusPericia model.StatusPericia `json:"statusPericia"`
}

// UpdatePericiaStatus sets the inspection status directly.
func (h *VehicleHandler) UpdatePericiaStatus(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var req periciaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Svc.UpdateInspectionStatus(ctx, actorFrom(c), id, req.StatusPericia)
	if err != nil {
		return vehicleErr(c, err)
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "veículo não encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}

// listResp is the paginated listing envelope.
type listResp struct {
	Vehicles []*model.Vehicle `json:"vehicles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// List returns a filtered, sorted page of vehicles.
func (h *VehicleHandler) List(c echo.Context) error {
	q := repository.VehicleListQuery{
		Filters:   filtersFromQuery(c),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	vehicles, total, err := h.Repo.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, listResp{
		Vehicles: vehicles,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
}

// filtersFromQuery translates the query string into repository filters.
// Unknown enum values are passed through; they simply match nothing.
func filtersFromQuery(c echo.Context) repository.VehicleFilters {
	f := repository.VehicleFilters{
		Search:        c.QueryParam("search"),
		StatusPericia: model.StatusPericia(c.QueryParam("statusPericia")),
		Devolvido:     model.SimNao(c.QueryParam("devolvido")),
	}
	f.DataInicio = queryTime(c, "dataInicio", false)
	f.DataFim = queryTime(c, "dataFim", true)
	f.DataDevolucaoInicio = queryTime(c, "dataDevolucaoInicio", false)
	f.DataDevolucaoFim = queryTime(c, "dataDevolucaoFim", true)
	return f
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// queryTime parses a date or RFC3339 query parameter. A bare date used
// as an upper bound is pushed to the end of that day so the range is
// inclusive.
func queryTime(c echo.Context, name string, endOfDay bool) *time.Time {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return &t
	}
	return nil
}
