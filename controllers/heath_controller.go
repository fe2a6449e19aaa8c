package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger kiểm tra kết nối tới storage chính (postgres hoặc mongo)
type Pinger func(ctx context.Context) error

type StatsProvider interface {
	Stats() map[string]int
}

type HealthController struct {
	ping Pinger
	hub  StatsProvider
}

func NewHealthController(ping Pinger, hub StatsProvider) *HealthController {
	return &HealthController{ping: ping, hub: hub}
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
		"websocket": gin.H{
			"enabled": hc.hub != nil,
		},
	}
	if hc.hub != nil {
		response["websocket"] = gin.H{"enabled": true, "stats": hc.hub.Stats()}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := hc.ping(ctx); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
