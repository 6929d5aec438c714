package tara

import (
	"errors"
	"fmt"
)

// ErrValidation — фактор атаки вне допустимого диапазона.
// Ошибка касается только одной угрозы, задача целиком не прерывается.
var ErrValidation = errors.New("effort factor out of range")

// Ординальные шкалы факторов атакующего потенциала.
// Значения — индексы в таблицах весов ниже.
type (
	ElapsedTime int
	Expertise   int
	Knowledge   int
	Window      int
	Equipment   int
)

const (
	TimeOneDay    ElapsedTime = iota // <= 1 день
	TimeOneWeek                      // <= 1 неделя
	TimeOneMonth                     // <= 1 месяц
	TimeSixMonths                    // <= 6 месяцев
	TimeOverSix                      // > 6 месяцев
)

const (
	ExpertiseLayperson Expertise = iota
	ExpertiseProficient
	ExpertiseExpert
	ExpertiseMultiple
)

const (
	KnowledgePublic Knowledge = iota
	KnowledgeRestricted
	KnowledgeConfidential
	KnowledgeStrict
)

const (
	WindowUnlimited Window = iota
	WindowEasy
	WindowModerate
	WindowDifficult
)

const (
	EquipmentStandard Equipment = iota
	EquipmentSpecialized
	EquipmentBespoke
	EquipmentMultiBespoke
)

// AttackPathEffort — пять факторов трудоёмкости пути атаки
type AttackPathEffort struct {
	ElapsedTime ElapsedTime `json:"elapsed_time"`
	Expertise   Expertise   `json:"expertise"`
	Knowledge   Knowledge   `json:"knowledge"`
	Window      Window      `json:"window"`
	Equipment   Equipment   `json:"equipment"`
}

// Веса факторов по таблице атакующего потенциала ISO/SAE 21434 (Annex G)
var (
	elapsedTimeWeights = [...]int{0, 1, 4, 17, 19}
	expertiseWeights   = [...]int{0, 3, 6, 8}
	knowledgeWeights   = [...]int{0, 3, 7, 11}
	windowWeights      = [...]int{0, 1, 4, 10}
	equipmentWeights   = [...]int{0, 4, 7, 9}
)

// Рейтинг осуществимости атаки
type FeasibilityRating string

const (
	FeasibilityVeryHigh FeasibilityRating = "very_high"
	FeasibilityHigh     FeasibilityRating = "high"
	FeasibilityMedium   FeasibilityRating = "medium"
	FeasibilityLow      FeasibilityRating = "low"
	FeasibilityVeryLow  FeasibilityRating = "very_low"
)

// FeasibilityThreshold — верхняя граница суммы потенциала (не включительно)
// для соответствующего рейтинга
type FeasibilityThreshold struct {
	Below  int
	Rating FeasibilityRating
}

// FeasibilityThresholds — чем меньше сумма, тем проще атака и выше
// осуществимость. Таблица возрастающая, константа модели.
var FeasibilityThresholds = []FeasibilityThreshold{
	{Below: 10, Rating: FeasibilityVeryHigh},
	{Below: 14, Rating: FeasibilityHigh},
	{Below: 20, Rating: FeasibilityMedium},
	{Below: 25, Rating: FeasibilityLow},
}

// AttackPotential считает суммарный потенциал атаки по весам факторов.
// Фактор вне своей шкалы — ErrValidation.
func AttackPotential(e AttackPathEffort) (int, error) {
	if e.ElapsedTime < 0 || int(e.ElapsedTime) >= len(elapsedTimeWeights) {
		return 0, fmt.Errorf("elapsed_time=%d: %w", e.ElapsedTime, ErrValidation)
	}
	if e.Expertise < 0 || int(e.Expertise) >= len(expertiseWeights) {
		return 0, fmt.Errorf("expertise=%d: %w", e.Expertise, ErrValidation)
	}
	if e.Knowledge < 0 || int(e.Knowledge) >= len(knowledgeWeights) {
		return 0, fmt.Errorf("knowledge=%d: %w", e.Knowledge, ErrValidation)
	}
	if e.Window < 0 || int(e.Window) >= len(windowWeights) {
		return 0, fmt.Errorf("window=%d: %w", e.Window, ErrValidation)
	}
	if e.Equipment < 0 || int(e.Equipment) >= len(equipmentWeights) {
		return 0, fmt.Errorf("equipment=%d: %w", e.Equipment, ErrValidation)
	}

	sum := elapsedTimeWeights[e.ElapsedTime] +
		expertiseWeights[e.Expertise] +
		knowledgeWeights[e.Knowledge] +
		windowWeights[e.Window] +
		equipmentWeights[e.Equipment]
	return sum, nil
}

// Feasibility переводит факторы трудоёмкости в рейтинг осуществимости
func Feasibility(e AttackPathEffort) (FeasibilityRating, error) {
	sum, err := AttackPotential(e)
	if err != nil {
		return "", err
	}
	for _, t := range FeasibilityThresholds {
		if sum < t.Below {
			return t.Rating, nil
		}
	}
	return FeasibilityVeryLow, nil
}

// DefaultEffort — профиль по умолчанию, когда детали пути атаки
// не заданы: умеренно сложная атака (эксперт, ограниченные сведения)
var DefaultEffort = AttackPathEffort{
	ElapsedTime: TimeOneMonth,
	Expertise:   ExpertiseExpert,
	Knowledge:   KnowledgeRestricted,
	Window:      WindowModerate,
	Equipment:   EquipmentSpecialized,
}
