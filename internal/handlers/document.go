package handlers

import (
	"net/http"
	"strings"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

type documentForm struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Kind     string `json:"kind"`
}

// Регистрация загруженного документа проекта (метаданные;
// байты живут во внешнем хранилище)
func AddDocument(c *gin.Context) {
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

	var form documentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	form.Filename = strings.TrimSpace(form.Filename)
	if form.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Имя файла обязательно"})
		return
	}

	doc := models.Document{
		ProjectID: p.ID,
		Filename:  form.Filename,
		Size:      form.Size,
		Kind:      strings.TrimSpace(form.Kind),
	}
	if err := database.DB.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения документа"})
		return
	}

	uid, _ := currentUser(c)
	database.CreateAuditLog(uid, "document", doc.ID, "create", "Загружен документ "+doc.Filename)

	c.JSON(http.StatusCreated, doc)
}

func ListDocuments(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var docs []models.Document
	if err := database.DB.Where("project_id = ?", projectID).
		Order("created_at asc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки документов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
