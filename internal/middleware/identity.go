package middleware

// identity.go holds the identity helpers shared by the cache and rate
// limit middleware.  The actor id comes from the claims JWTAuth put in
// the context; unauthenticated requests are keyed as "anon".

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentActorID returns a stable string identity for rate limit and
// cache keys.  JWT numeric claims decode as float64, so the value is
// normalized through fmt.
func currentActorID(c echo.Context) string {
	v := c.Get("actor_id")
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
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
