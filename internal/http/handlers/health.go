package handlers

import (
	"context"
	"net/http"
	"time"

	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 3 * time.Second

// Liveness answers as long as the process serves HTTP.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings the task store. A failure is logged and summarized, never echoed.
func (h *Handler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.Tasks.Ping(ctx); err != nil {
		logger.WithContext(c.Request.Context()).Warn("store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"store":   "up",
		"version": h.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
