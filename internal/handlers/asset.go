package handlers

import (
	"net/http"
	"strings"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"
	"github.com/chenlehua/tara-sub000/internal/tara"

	"github.com/gin-gonic/gin"
)

func ListAssets(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var assets []models.Asset
	if err := database.DB.Where("project_id = ?", projectID).
		Order("id asc").Find(&assets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки активов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

type assetForm struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Interfaces []string `json:"interfaces"`

	Confidentiality bool `json:"confidentiality"`
	Integrity       bool `json:"integrity"`
	Availability    bool `json:"availability"`
	Authenticity    bool `json:"authenticity"`
	Authorization   bool `json:"authorization"`
	NonRepudiation  bool `json:"non_repudiation"`
}

// Ручное добавление актива аналитиком (в дополнение к выявленным
// конвейером)
func CreateAsset(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var p models.Project
	if err := database.DB.First(&p, projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Проект не найден"})
		return
	}

	var form assetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	if len(form.Name) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название актива должно быть не короче 2 символов"})
		return
	}

	switch tara.AssetCategory(form.Category) {
	case tara.AssetECU, tara.AssetGateway, tara.AssetBus, tara.AssetSensor,
		tara.AssetExternal, tara.AssetBackend, tara.AssetFirmware, tara.AssetDataStore:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректная категория актива"})
		return
	}

	a := models.Asset{
		ProjectID:       p.ID,
		Name:            form.Name,
		Category:        form.Category,
		Interfaces:      strings.Join(form.Interfaces, ","),
		Source:          models.AssetManual,
		Confidentiality: form.Confidentiality,
		Integrity:       form.Integrity,
		Availability:    form.Availability,
		Authenticity:    form.Authenticity,
		Authorization:   form.Authorization,
		NonRepudiation:  form.NonRepudiation,
	}

	if err := database.DB.Create(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения актива"})
		return
	}

	uid, _ := currentUser(c)
	database.CreateAuditLog(uid, "asset", a.ID, "create", "Добавлен актив "+a.Name)

	c.JSON(http.StatusCreated, a)
}
