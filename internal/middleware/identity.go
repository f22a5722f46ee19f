package middleware

// identity.go holds the context key shared by the session and rate-limit
// middleware and the accessor handlers use to read it.

import "github.com/labstack/echo/v4"

const sessionKey = "session_id"

// SessionID returns the id set by the Session middleware, or "anon" when
// the middleware did not run.
func SessionID(c echo.Context) string {
	if v, ok := c.Get(sessionKey).(string); ok && v != "" {
		return v
	}
	return "anon"
}
