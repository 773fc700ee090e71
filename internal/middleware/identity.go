package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier string for bucket keys. JWTAuth
// stores the raw "sub" claim, which arrives as a float64 after JSON
// parsing, so both that and a plain string are handled. Returns
// "guest" when no user is authenticated, so unauthenticated traffic
// shares one bucket per IP.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return "guest"
}
