package models

import (
	"time"

	"gorm.io/gorm"
)

// Сохранённый отчёт генерации: агрегат конвейера как JSON.
// Рендер в конечный формат документа — внешний сервис.
type Report struct {
	gorm.Model
	ReportID  string `gorm:"size:36;uniqueIndex;not null"`
	ProjectID uint

	Payload     string `gorm:"type:text;not null"` // pipeline.ReportPayload
	AssetCount  int
	ThreatCount int
	RiskCount   int
	Degraded    string `gorm:"size:512"` // аннотации деградации через ;

	GeneratedAt time.Time
}
