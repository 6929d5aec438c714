package handlers

import (
	"net/http"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// Угрозы проекта вместе с оценками рисков
func ListThreats(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	levelStr := c.Query("min_level")

	var threats []models.Threat
	q := database.DB.Preload("Asset").Preload("Risk").
		Where("project_id = ?", projectID).
		Order("id asc")
	if err := q.Find(&threats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки угроз"})
		return
	}

	// фильтр по минимальному уровню риска поверх выборки:
	// Risk лежит в отдельной таблице
	if levelStr != "" {
		min := 0
		switch levelStr {
		case "low":
			min = 1
		case "medium":
			min = 2
		case "high":
			min = 3
		case "critical":
			min = 4
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный уровень риска"})
			return
		}
		filtered := threats[:0]
		for _, t := range threats {
			if t.Risk != nil && t.Risk.Level >= min {
				filtered = append(filtered, t)
			}
		}
		threats = filtered
	}

	c.JSON(http.StatusOK, gin.H{"threats": threats})
}

// Каталог мер защиты
func ListMeasures(c *gin.Context) {
	category := c.Query("threat_category")

	q := database.DB.Order("code asc")
	if category != "" {
		q = q.Where("threat_category = ?", category)
	}

	var measures []models.ControlMeasure
	if err := q.Find(&measures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки каталога мер"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"measures": measures})
}
