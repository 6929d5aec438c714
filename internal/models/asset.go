package models

import "gorm.io/gorm"

type AssetSource string

const (
	AssetManual    AssetSource = "manual"    // создан аналитиком
	AssetGenerated AssetSource = "generated" // выявлен конвейером
)

// Актив анализируемого элемента
type Asset struct {
	gorm.Model
	ProjectID uint
	Project   Project

	Name       string      `gorm:"size:255;not null"`
	Category   string      `gorm:"size:50;not null"` // ecu, gateway, bus, sensor и т.п.
	Interfaces string      `gorm:"size:255"`         // список через запятую: can,ethernet
	Source     AssetSource `gorm:"type:varchar(20);not null"`

	// защищаемые свойства
	Confidentiality bool
	Integrity       bool
	Availability    bool
	Authenticity    bool
	Authorization   bool
	NonRepudiation  bool

	Threats []Threat
}
