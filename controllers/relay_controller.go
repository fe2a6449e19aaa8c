package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-storybook-backend/services"
)

type RelayController struct {
	relay *services.Relay
}

func NewRelayController(relay *services.Relay) *RelayController {
	return &RelayController{relay: relay}
}

// POST /suna-proxy, body {action, ...params}
func (rc *RelayController) Forward(c *gin.Context) {
	header := c.GetHeader("Authorization")
	// Header được kiểm tra trước cả body
	if _, err := services.BearerToken(header); err != nil {
		_ = c.Error(err)
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	action, _ := body["action"].(string)
	delete(body, "action")

	data, err := rc.relay.Forward(c.Request.Context(), header, action, body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GET /suna-proxy?taskId=
func (rc *RelayController) TaskStatus(c *gin.Context) {
	data, err := rc.relay.TaskStatus(c.Request.Context(), c.GetHeader("Authorization"), c.Query("taskId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
