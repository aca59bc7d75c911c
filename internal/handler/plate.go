package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/platelookup"
)

// PlateHandler proxies lookups against the external plate database so
// the registration form can be pre-filled from a plate.
type PlateHandler struct {
	Client *platelookup.Client
}

func NewPlateHandler(client *platelookup.Client) *PlateHandler {
	return &PlateHandler{Client: client}
}

// Search queries the external API for one plate. Failures come back as
// 200 with success=false and a user-facing message, matching how the
// form consumes the result.
func (h *PlateHandler) Search(c echo.Context) error {
	placa := c.Param("placa")

	data, err := h.Client.Lookup(c.Request().Context(), placa)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"data":    nil,
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
		"error":   nil,
	})
}
