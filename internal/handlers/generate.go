package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/models"
	"github.com/chenlehua/tara-sub000/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// координатор конвейера генерации; инициализируется при старте сервера
var generator *pipeline.Coordinator

func InitGenerator(c *pipeline.Coordinator) {
	generator = c
}

// Запуск генерации отчёта в один клик: все документы проекта
// уходят в конвейер, клиент опрашивает задачу по идентификатору
func StartGeneration(c *gin.Context) {
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

	var docs []models.Document
	if err := database.DB.Where("project_id = ?", p.ID).
		Order("created_at asc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка загрузки документов"})
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "В проекте нет загруженных документов"})
		return
	}

	files := make([]pipeline.UploadedFile, 0, len(docs))
	for _, d := range docs {
		files = append(files, pipeline.UploadedFile{
			Name: d.Filename,
			Size: d.Size,
			Kind: d.Kind,
		})
	}

	taskID, err := generator.Submit(p.ID, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось запустить генерацию"})
		return
	}

	database.DB.Model(&p).Update("status", models.ProjectAnalyzing)

	uid, _ := currentUser(c)
	database.CreateAuditLog(uid, "task", p.ID, "generate", "Запущена генерация, задача "+taskID)

	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

// Опрос прогресса задачи. Проценты всегда из фиксированного набора
// {0,10,30,50,75,90,100}, интерполяции между этапами нет.
func TaskProgress(c *gin.Context) {
	taskID := c.Param("task_id")

	task, ok := generator.Progress(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Задача не найдена или устарела"})
		return
	}

	resp := gin.H{
		"task_id":     task.ID,
		"status":      task.Status,
		"stage":       task.Stage.Name(),
		"stage_label": task.Stage.Label(),
		"percent":     task.Percent,
		"terminal":    task.Terminal(),
	}
	if len(task.Degraded) > 0 {
		resp["degraded"] = task.Degraded
	}
	if task.Result != nil {
		resp["result"] = task.Result
	}
	if task.Error != "" {
		resp["error"] = task.Error
	}

	c.JSON(http.StatusOK, resp)
}

// Последний собранный отчёт проекта
func GetReport(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID проекта"})
		return
	}

	var report models.Report
	if err := database.DB.Where("project_id = ?", projectID).
		Order("generated_at desc").First(&report).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Отчёт ещё не сформирован"})
		return
	}

	var payload pipeline.ReportPayload
	if err := json.Unmarshal([]byte(report.Payload), &payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Повреждённый отчёт"})
		return
	}

	c.JSON(http.StatusOK, payload)
}
