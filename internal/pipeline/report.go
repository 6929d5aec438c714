package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// ReportPayload — агрегат для рендера отчёта TARA. Чистая сборка
// данных; превращение в конкретный формат документа — отдельный
// внешний сервис.
type ReportPayload struct {
	ReportID        string                  `json:"report_id"`
	ProjectID       uint                    `json:"project_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	Assets          []tara.AssetDescriptor  `json:"assets"`
	Threats         []tara.ThreatCandidate  `json:"threats"`
	Risks           []tara.RiskAssessment   `json:"risks"`
	Recommendations []Recommendation        `json:"recommendations"`
	Diagrams        []DiagramRef            `json:"diagrams,omitempty"`
	Degraded        []string                `json:"degraded,omitempty"`
	Summary         ReportSummary           `json:"summary"`
}

type ReportSummary struct {
	AssetCount    int `json:"asset_count"`
	ThreatCount   int `json:"threat_count"`
	RiskCount     int `json:"risk_count"`
	HighRiskCount int `json:"high_risk_count"` // high + critical
}

// assembleReport собирает итоговый агрегат. Чтения независимых
// коллабораторов (каталог мер, диаграммы) идут параллельно; отказ
// одного чтения деградирует только свой раздел отчёта, не этап.
func (e *StageExecutor) assembleReport(ctx context.Context, reportID string, projectID uint,
	assets []tara.AssetDescriptor, threats []tara.ThreatCandidate, risks []tara.RiskAssessment) (ReportPayload, []string) {

	var (
		recs     []Recommendation
		diagrams []DiagramRef
		degraded []string
	)

	recDegraded := false
	diagDegraded := false

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if e.collab.Measures != nil {
			cctx, cancel := context.WithTimeout(gctx, e.timeout)
			r, err := e.collab.Measures.Recommend(cctx, threats)
			cancel()
			if err == nil {
				recs = r
				return nil
			}
			log.Printf("report: measure catalog unavailable, using baseline: %v", err)
		}
		recs = e.fallback.Recommend(threats)
		recDegraded = true
		return nil
	})

	g.Go(func() error {
		if e.collab.Diagrams == nil {
			return nil
		}
		cctx, cancel := context.WithTimeout(gctx, e.timeout)
		d, err := e.collab.Diagrams.Render(cctx, assets)
		cancel()
		if err != nil {
			// диаграммы опциональны, локальной замены нет
			log.Printf("report: diagram renderer unavailable, section skipped: %v", err)
			diagDegraded = true
			return nil
		}
		diagrams = d
		return nil
	})

	_ = g.Wait()

	if recDegraded {
		degraded = append(degraded, "measures: degraded")
	}
	if diagDegraded {
		degraded = append(degraded, "diagrams: degraded")
	}

	high := 0
	for _, r := range risks {
		if r.Level >= tara.RiskHigh {
			high++
		}
	}

	return ReportPayload{
		ReportID:        reportID,
		ProjectID:       projectID,
		GeneratedAt:     time.Now().UTC(),
		Assets:          assets,
		Threats:         threats,
		Risks:           risks,
		Recommendations: recs,
		Diagrams:        diagrams,
		Summary: ReportSummary{
			AssetCount:    len(assets),
			ThreatCount:   len(threats),
			RiskCount:     len(risks),
			HighRiskCount: high,
		},
	}, degraded
}
