package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/audit"
	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
)

// AuditHandler exposes the activity log: listing entries and reverting
// a recorded operation.
type AuditHandler struct {
	Logs   *repository.AuditLogRepo
	Engine *audit.Engine
}

func NewAuditHandler(logs *repository.AuditLogRepo, engine *audit.Engine) *AuditHandler {
	return &AuditHandler{Logs: logs, Engine: engine}
}

type auditListResp struct {
	Logs     []*model.AuditLog `json:"logs"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// List returns a page of audit entries, newest first.
func (h *AuditHandler) List(c echo.Context) error {
	q := repository.AuditLogQuery{
		UserID:     uint64(queryInt(c, "userId", 0)),
		Action:     model.Action(c.QueryParam("action")),
		EntityType: model.EntityType(c.QueryParam("entityType")),
		EntityID:   uint64(queryInt(c, "entityId", 0)),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 20),
	}
	q.DataInicio = queryTime(c, "dataInicio", false)
	q.DataFim = queryTime(c, "dataFim", true)

	ctx, cancel := reqCtx(c)
	defer cancel()

	logs, total, err := h.Logs.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, auditListResp{Logs: logs, Total: total, Page: q.Page, PageSize: q.PageSize})
}

// Revert undoes the operation recorded in one log entry.
func (h *AuditHandler) Revert(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	entry, err := h.Engine.Revert(ctx, actorFrom(c), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLogNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrAlreadyReverted):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, audit.ErrNotRevertible), errors.Is(err, audit.ErrMissingSnapshot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operação falhou"})
	}
	return c.JSON(http.StatusOK, entry)
}
