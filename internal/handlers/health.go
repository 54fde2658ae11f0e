package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check verifies database connectivity with a trivial query.
func (h *HealthHandler) Check(c *gin.Context) {
	var one int
	if err := h.db.WithContext(c.Request.Context()).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		respondError(c, http.StatusInternalServerError, "Error connecting to the database")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
