package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/chenlehua/tara-sub000/internal/models"
	"github.com/chenlehua/tara-sub000/internal/pipeline"
	"github.com/chenlehua/tara-sub000/internal/tara"
)

// ReportSink сохраняет результаты завершённой генерации:
// активы, угрозы, оценки рисков и сам отчёт. Реализует
// pipeline.ResultSink.
type ReportSink struct {
	db *gorm.DB
}

func NewReportSink(db *gorm.DB) *ReportSink {
	return &ReportSink{db: db}
}

func (s *ReportSink) SaveResults(payload pipeline.ReportPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// повторная генерация заменяет прежние сгенерированные записи
		var old []models.Asset
		if err := tx.Where("project_id = ? AND source = ?",
			payload.ProjectID, models.AssetGenerated).Find(&old).Error; err != nil {
			return err
		}
		for _, a := range old {
			var threats []models.Threat
			if err := tx.Where("asset_id = ?", a.ID).Find(&threats).Error; err != nil {
				return err
			}
			for _, t := range threats {
				if err := tx.Where("threat_id = ?", t.ID).
					Delete(&models.RiskRecord{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("asset_id = ?", a.ID).
				Delete(&models.Threat{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Asset{}, a.ID).Error; err != nil {
				return err
			}
		}

		assetIDs := make(map[string]uint, len(payload.Assets))
		for _, a := range payload.Assets {
			row := models.Asset{
				ProjectID:       payload.ProjectID,
				Name:            a.Name,
				Category:        string(a.Category),
				Interfaces:      strings.Join(a.Interfaces, ","),
				Source:          models.AssetGenerated,
				Confidentiality: a.Attributes.Confidentiality,
				Integrity:       a.Attributes.Integrity,
				Availability:    a.Attributes.Availability,
				Authenticity:    a.Attributes.Authenticity,
				Authorization:   a.Attributes.Authorization,
				NonRepudiation:  a.Attributes.NonRepudiation,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			assetIDs[a.Name] = row.ID
		}

		// оценки рисков индексируем по угрозе, чтобы привязать к строкам
		riskByThreat := make(map[tara.ThreatCandidate]tara.RiskAssessment, len(payload.Risks))
		for _, r := range payload.Risks {
			riskByThreat[r.Threat] = r
		}

		for _, t := range payload.Threats {
			row := models.Threat{
				ProjectID:    payload.ProjectID,
				AssetID:      assetIDs[t.AssetName],
				Category:     string(t.Category),
				Description:  t.Description,
				AttackVector: t.AttackVector,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			if r, ok := riskByThreat[t]; ok {
				risk := models.RiskRecord{
					ThreatID:          row.ID,
					SafetyImpact:      int(r.Impact.Safety),
					FinancialImpact:   int(r.Impact.Financial),
					OperationalImpact: int(r.Impact.Operational),
					PrivacyImpact:     int(r.Impact.Privacy),
					Feasibility:       string(r.Feasibility),
					Level:             int(r.Level),
					Treatment:         r.Treatment,
				}
				if err := tx.Create(&risk).Error; err != nil {
					return err
				}
			}
		}

		report := models.Report{
			ReportID:    payload.ReportID,
			ProjectID:   payload.ProjectID,
			Payload:     string(raw),
			AssetCount:  payload.Summary.AssetCount,
			ThreatCount: payload.Summary.ThreatCount,
			RiskCount:   payload.Summary.RiskCount,
			Degraded:    strings.Join(payload.Degraded, ";"),
			GeneratedAt: payload.GeneratedAt,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", payload.ProjectID).
			Update("status", models.ProjectDone).Error
	})
}

// CatalogReader рекомендует меры защиты из каталога БД по категориям
// угроз. Реализует pipeline.MeasureCatalog.
type CatalogReader struct {
	db *gorm.DB
}

func NewCatalogReader(db *gorm.DB) *CatalogReader {
	return &CatalogReader{db: db}
}

func (c *CatalogReader) Recommend(ctx context.Context, threats []tara.ThreatCandidate) ([]pipeline.Recommendation, error) {
	categories := make([]string, 0, 6)
	seen := map[string]bool{}
	for _, t := range threats {
		if !seen[string(t.Category)] {
			seen[string(t.Category)] = true
			categories = append(categories, string(t.Category))
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}

	var measures []models.ControlMeasure
	if err := c.db.WithContext(ctx).
		Where("threat_category IN ?", categories).
		Order("code asc").
		Find(&measures).Error; err != nil {
		return nil, err
	}

	out := make([]pipeline.Recommendation, 0, len(measures))
	for _, m := range measures {
		out = append(out, pipeline.Recommendation{
			ThreatCategory: tara.StrideCategory(m.ThreatCategory),
			Measure:        m.Name,
			Standard:       m.Standard,
		})
	}
	return out, nil
}
