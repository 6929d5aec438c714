package models

import "gorm.io/gorm"

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectAnalyzing ProjectStatus = "analyzing"
	ProjectDone      ProjectStatus = "done"
	ProjectArchived  ProjectStatus = "archived"
)

// Проект TARA: один анализируемый элемент (ТС / платформа / ЭБУ)
type Project struct {
	gorm.Model
	Name         string        `gorm:"size:255;not null"`
	VehicleModel string        `gorm:"size:128"` // модель ТС или платформа
	ItemScope    string        `gorm:"type:text"` // границы анализируемого элемента
	Status       ProjectStatus `gorm:"type:varchar(20);not null"`
	OwnerID      uint          // User.ID создателя

	Documents []Document
	Assets    []Asset
}
