package models

import "gorm.io/gorm"

// Каталог мер защиты (ISO/SAE 21434, UNECE R155 и т.п.)
type ControlMeasure struct {
	gorm.Model
	Code        string `gorm:"size:32;uniqueIndex"`
	Name        string `gorm:"size:255;not null"`
	Standard    string `gorm:"size:128"` // ссылка на стандарт
	Description string `gorm:"type:text"`

	// категория угрозы STRIDE, против которой рекомендуется мера
	ThreatCategory string `gorm:"size:64;index"`
}
