package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/restock/internal/actorcontext"
)

const actorHeader = "X-Actor-Id"

// ActorMiddleware lifts the caller identity from the X-Actor-Id header
// into the request context so services can stamp audit columns. Requests
// without the header fall back to the system actor at write time.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(actorHeader))
		if actor != "" {
			ctx := actorcontext.WithActor(c.Request.Context(), actor)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
