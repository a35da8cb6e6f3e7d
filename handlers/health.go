package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonflow/utils"
)

// Health reports the latest external-service health snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
