package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/masterfoodbrokers/crm-backend/internal/requestdata"
	"github.com/masterfoodbrokers/crm-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// GET /api/events
// Streams layout publishes, preference saves and binding updates to the
// authenticated user until the connection closes.
func (h *SSEHandler) Stream(c *gin.Context) {
	client := h.hub.Register(requestdata.UserID(c.Request.Context()))
	defer h.hub.Unregister(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
