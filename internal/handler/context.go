package handler

// context.go holds small helpers shared by the handlers for reading the
// authenticated identity and path parameters out of the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/audit"
)

// actorFrom reads the identity placed in context by the JWT middleware.
// The sub claim decodes as a JSON number (float64); string values are
// parsed as a fallback.
func actorFrom(c echo.Context) audit.Actor {
	var a audit.Actor
	switch v := c.Get("user_id").(type) {
	case float64:
		a.ID = uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			a.ID = n
		}
	}
	if u, ok := c.Get("username").(string); ok {
		a.Username = u
	}
	return a
}

// paramID parses the :id path parameter. Zero with ok=false means the
// parameter was missing or not a positive integer.
func paramID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
