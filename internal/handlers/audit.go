package handlers

import (
	"net/http"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	var logs []models.AuditLog
	if err := database.DB.Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки журнала аудита"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
