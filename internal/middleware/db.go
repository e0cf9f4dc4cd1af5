package middleware

import (
	"aptitude_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
)

// ReadyChecker establishes the store connection on demand.
type ReadyChecker interface {
	EnsureReady(ctx context.Context) error
}

// DBReady makes sure the store is reachable before a data route runs. An
// outage answers 500 instead of reaching the handler.
func DBReady(db ReadyChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.EnsureReady(c.Request.Context()); err != nil {
			util.Fail(c, err, "Database")
			c.Abort()
			return
		}
		c.Next()
	}
}
