package models

import "gorm.io/gorm"

// Угроза конкретного актива (категория по STRIDE)
type Threat struct {
	gorm.Model
	ProjectID uint
	AssetID   uint
	Asset     Asset

	Category     string `gorm:"size:64;not null"` // spoofing, tampering и т.д.
	Description  string `gorm:"type:text"`
	AttackVector string `gorm:"size:128"`

	Risk *RiskRecord
}

// Оценка риска угрозы: тяжесть по категориям воздействия,
// осуществимость и итоговый уровень из матрицы
type RiskRecord struct {
	gorm.Model
	ThreatID uint

	SafetyImpact      int `gorm:"not null"`
	FinancialImpact   int `gorm:"not null"`
	OperationalImpact int `gorm:"not null"`
	PrivacyImpact     int `gorm:"not null"`

	Feasibility string `gorm:"size:16;not null"` // very_low .. very_high
	Level       int    `gorm:"not null"`         // 1=low .. 4=critical
	Treatment   string `gorm:"size:32"`          // reduce / share / retain
}
