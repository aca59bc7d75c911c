package middleware

// identity.go holds helpers shared across the middleware files for reading
// the authenticated identity out of the Echo context.  JWTAuth stores the
// raw claim values, which arrive as whatever type encoding/json produced,
// so the helpers here normalize them to strings.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or "anon"
// when the request is unauthenticated.  The sub claim decodes as a JSON
// number (float64), so numeric values are formatted rather than asserted.
func currentUserID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "anon"
    }
    switch t := v.(type) {
    case string:
        if t != "" {
            return t
        }
    case float64:
        return fmt.Sprintf("%.0f", t)
    case int64:
        return fmt.Sprintf("%d", t)
    case uint64:
        return fmt.Sprintf("%d", t)
    }
    return "anon"
}
