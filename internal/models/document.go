package models

import "gorm.io/gorm"

// Загруженный технический документ проекта. Храним только метаданные,
// извлечением содержимого занимается внешний сервис разбора.
type Document struct {
	gorm.Model
	ProjectID uint
	Project   Project

	Filename string `gorm:"size:255;not null"`
	Size     int64
	Kind     string `gorm:"size:32"` // pdf, word, excel, can_matrix, autosar
}
