package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "1.0.0"

// Root reports that the engine is up.
//
// Route: GET /
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "AI Engine Operational"})
}

// Health is the liveness probe.
//
// Route: GET /healthz
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "leadforge",
		"version": serviceVersion,
	})
}
