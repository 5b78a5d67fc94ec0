package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /healthcheck
func (h *HealthHandler) Check(c *gin.Context) {
	out := gin.H{"status": "ok", "time": time.Now().UTC()}

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			out["status"] = "degraded"
			out["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, out)
			return
		}
		out["database"] = "ok"
	}
	c.JSON(http.StatusOK, out)
}
