package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCalendar returns the approved reservations as calendar events.
func (h *Handler) GetCalendar(c *gin.Context) {
	c.JSON(http.StatusOK, h.palette.Events(h.svc.List(c.Request.Context())))
}
