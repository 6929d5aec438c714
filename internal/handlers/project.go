package handlers

import (
	"net/http"
	"strings"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

//
// СПИСОК ПРОЕКТОВ
//

// Список проектов + фильтры
func ListProjects(c *gin.Context) {
	statusStr := c.Query("status")
	search := strings.TrimSpace(c.Query("q"))

	dbq := database.DB.Order("created_at desc")

	if statusStr != "" {
		dbq = dbq.Where("status = ?", statusStr)
	}
	if search != "" {
		dbq = dbq.Where("name ILIKE ?", "%"+search+"%")
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки проектов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

//
// СОЗДАНИЕ ПРОЕКТА
//

type projectForm struct {
	Name         string `json:"name"`
	VehicleModel string `json:"vehicle_model"`
	ItemScope    string `json:"item_scope"`
}

func CreateProject(c *gin.Context) {
	var form projectForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	if len(form.Name) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название проекта должно быть не короче 3 символов"})
		return
	}

	uid, _ := currentUser(c)
	p := models.Project{
		Name:         form.Name,
		VehicleModel: strings.TrimSpace(form.VehicleModel),
		ItemScope:    strings.TrimSpace(form.ItemScope),
		Status:       models.ProjectDraft,
		OwnerID:      uid,
	}

	if err := database.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения проекта"})
		return
	}

	database.CreateAuditLog(uid, "project", p.ID, "create", "Создан проект "+p.Name)

	c.JSON(http.StatusCreated, p)
}

//
// КАРТОЧКА ПРОЕКТА
//

func GetProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var p models.Project
	if err := database.DB.Preload("Documents").First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Проект не найден"})
		return
	}

	var assetCount, threatCount int64
	database.DB.Model(&models.Asset{}).Where("project_id = ?", p.ID).Count(&assetCount)
	database.DB.Model(&models.Threat{}).Where("project_id = ?", p.ID).Count(&threatCount)

	c.JSON(http.StatusOK, gin.H{
		"project":      p,
		"asset_count":  assetCount,
		"threat_count": threatCount,
	})
}

//
// СМЕНА СТАТУСА
//

type statusForm struct {
	Status string `json:"status"`
}

func UpdateProjectStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var form statusForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	status := models.ProjectStatus(form.Status)
	switch status {
	case models.ProjectDraft, models.ProjectAnalyzing, models.ProjectDone, models.ProjectArchived:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный статус проекта"})
		return
	}

	var p models.Project
	if err := database.DB.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Проект не найден"})
		return
	}

	if err := database.DB.Model(&p).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка смены статуса"})
		return
	}

	uid, _ := currentUser(c)
	database.CreateAuditLog(uid, "project", p.ID, "status_change", "Статус: "+string(status))

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}
