package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DatabaseChecker reports database status and pool statistics.
type DatabaseChecker interface {
	Health(ctx context.Context) map[string]string
}

type RedisChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db    DatabaseChecker
	redis RedisChecker
}

func NewHealthHandler(db DatabaseChecker, redis RedisChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Live answers as long as the process serves HTTP.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 unless both the database and Redis respond.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK

	db := h.db.Health(ctx)
	if db["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	redis := gin.H{"status": "up"}
	if err := h.redis.Health(ctx); err != nil {
		redis = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"database": db, "redis": redis})
}
