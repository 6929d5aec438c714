package pipeline

import (
	"context"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// UploadedFile — метаданные загруженного документа; байты файлов
// конвейеру не нужны, извлечением занимается внешний сервис
type UploadedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Kind string `json:"kind"`
}

type ParsedFile struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Sections []string `json:"sections,omitempty"`
	Tables   int      `json:"tables"`
}

// ParsedContent — результат этапа разбора
type ParsedContent struct {
	Files []ParsedFile `json:"files"`
}

// DiagramRef — ссылка на отрисованную диаграмму (внешний сервис)
type DiagramRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Recommendation — рекомендованная мера защиты для категории угрозы
type Recommendation struct {
	ThreatCategory tara.StrideCategory `json:"threat_category"`
	Measure        string              `json:"measure"`
	Standard       string              `json:"standard,omitempty"`
}

// Интерфейсы внешних сервисов анализа. Реализации — вне ядра
// конвейера (HTTP-сервис извлечения, LLM-анализаторы, БД каталога,
// сервис диаграмм). nil-коллаборатор означает "сервис не настроен",
// этап сразу уходит в локальную реализацию.

type DocumentParser interface {
	Parse(ctx context.Context, files []UploadedFile) (ParsedContent, error)
}

type AssetIdentifier interface {
	Identify(ctx context.Context, content ParsedContent) ([]tara.AssetDescriptor, error)
}

type ThreatAnalyzer interface {
	Analyze(ctx context.Context, assets []tara.AssetDescriptor) ([]tara.ThreatCandidate, error)
}

type RiskAssessor interface {
	Assess(ctx context.Context, threats []tara.ThreatCandidate) ([]tara.RiskAssessment, error)
}

// MeasureCatalog — каталог мер защиты (читается при сборке отчёта)
type MeasureCatalog interface {
	Recommend(ctx context.Context, threats []tara.ThreatCandidate) ([]Recommendation, error)
}

// DiagramRenderer — сервис отрисовки диаграмм архитектуры
type DiagramRenderer interface {
	Render(ctx context.Context, assets []tara.AssetDescriptor) ([]DiagramRef, error)
}

// Collaborators — набор внешних сервисов конвейера; любое поле
// может быть nil
type Collaborators struct {
	Parser   DocumentParser
	Assets   AssetIdentifier
	Threats  ThreatAnalyzer
	Risks    RiskAssessor
	Measures MeasureCatalog
	Diagrams DiagramRenderer
}
