package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/schedule-builder/internal/session"
)

// SessionHeader carries the session token in both directions.
const SessionHeader = "X-Session-Token"

// Session attaches an anonymous session to every request.  A request
// without a token gets a fresh one, returned in the SessionHeader
// response header; a request with a token that fails verification is
// rejected with 401 so a client never silently loses its schedule.
// Handlers read the id with SessionID(c).
func Session(tokens *session.Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(SessionHeader))
			if raw == "" {
				tok, err := tokens.Issue()
				if err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
				}
				c.Response().Header().Set(SessionHeader, tok.Raw)
				c.Set(sessionKey, tok.SessionID)
				return next(c)
			}
			sid, err := tokens.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session token"})
			}
			c.Set(sessionKey, sid)
			return next(c)
		}
	}
}
