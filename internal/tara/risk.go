package tara

import "fmt"

// Уровень тяжести ущерба по категории воздействия
type Severity int

const (
	SeverityNegligible Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNegligible:
		return "negligible"
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeverityMajor:
		return "major"
	case SeveritySevere:
		return "severe"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ImpactSet — тяжесть ущерба по четырём категориям воздействия
type ImpactSet struct {
	Safety      Severity `json:"safety"`
	Financial   Severity `json:"financial"`
	Operational Severity `json:"operational"`
	Privacy     Severity `json:"privacy"`
}

// OverallImpact — худшая категория доминирует (принцип безопасности
// в автомобильном контексте: сумма категорий занижала бы safety)
func OverallImpact(i ImpactSet) Severity {
	max := i.Safety
	for _, s := range []Severity{i.Financial, i.Operational, i.Privacy} {
		if s > max {
			max = s
		}
	}
	return max
}

// Итоговый уровень риска (4 уровня, CAL1..CAL4)
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	}
	return fmt.Sprintf("risk(%d)", int(r))
}

var feasibilityIndex = map[FeasibilityRating]int{
	FeasibilityVeryLow:  0,
	FeasibilityLow:      1,
	FeasibilityMedium:   2,
	FeasibilityHigh:     3,
	FeasibilityVeryHigh: 4,
}

// RiskMatrix — фиксированная матрица (тяжесть × осуществимость).
// На границах округление в сторону более тяжёлого уровня.
// Строки: negligible..severe, столбцы: very_low..very_high.
var RiskMatrix = [5][5]RiskLevel{
	{RiskLow, RiskLow, RiskLow, RiskMedium, RiskMedium},
	{RiskLow, RiskLow, RiskMedium, RiskMedium, RiskHigh},
	{RiskMedium, RiskMedium, RiskHigh, RiskHigh, RiskHigh},
	{RiskMedium, RiskHigh, RiskHigh, RiskCritical, RiskCritical},
	{RiskHigh, RiskHigh, RiskCritical, RiskCritical, RiskCritical},
}

// ScoreRisk — чистая функция (тяжесть, осуществимость) → уровень риска.
// Повторный вызов с теми же входами всегда даёт тот же уровень.
func ScoreRisk(impact Severity, feasibility FeasibilityRating) (RiskLevel, error) {
	if impact < SeverityNegligible || impact > SeveritySevere {
		return 0, fmt.Errorf("impact=%d: %w", int(impact), ErrValidation)
	}
	fi, ok := feasibilityIndex[feasibility]
	if !ok {
		return 0, fmt.Errorf("feasibility=%q: %w", feasibility, ErrValidation)
	}
	return RiskMatrix[impact][fi], nil
}

// RiskAssessment — оценка риска одной угрозы.
// Level вычисляется один раз и далее не меняется.
type RiskAssessment struct {
	Threat      ThreatCandidate   `json:"threat"`
	Impact      ImpactSet         `json:"impact"`
	Feasibility FeasibilityRating `json:"feasibility"`
	Level       RiskLevel         `json:"level"`
	Treatment   string            `json:"treatment"`
}

// AssessThreat собирает оценку риска: осуществимость из факторов
// трудоёмкости, уровень из матрицы
func AssessThreat(t ThreatCandidate, impact ImpactSet, effort AttackPathEffort) (RiskAssessment, error) {
	feas, err := Feasibility(effort)
	if err != nil {
		return RiskAssessment{}, err
	}
	level, err := ScoreRisk(OverallImpact(impact), feas)
	if err != nil {
		return RiskAssessment{}, err
	}
	return RiskAssessment{
		Threat:      t,
		Impact:      impact,
		Feasibility: feas,
		Level:       level,
		Treatment:   defaultTreatment(level),
	}, nil
}

// заглушка рекомендации по обработке риска, уточняется инженером в отчёте
func defaultTreatment(level RiskLevel) string {
	switch level {
	case RiskCritical, RiskHigh:
		return "reduce"
	case RiskMedium:
		return "share"
	default:
		return "retain"
	}
}
