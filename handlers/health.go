package handlers

import (
	"net/http"

	"bloodlink/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last dependency check.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Hi, I'm BloodLink",
		"dependencies": utils.GetHealthStatus(),
	})
}
