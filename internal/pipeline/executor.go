package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// StageExecutor выполняет ровно один этап конвейера: сначала вызов
// внешнего сервиса с таймаутом, при неудаче или некорректном ответе —
// локальная реализация. Ошибка коллаборатора наружу не выходит,
// результат помечается как деградированный (degraded=true).
// Состояние задачи исполнитель не трогает — это делает координатор.
type StageExecutor struct {
	collab   Collaborators
	fallback *FallbackEngine
	timeout  time.Duration
}

func NewStageExecutor(collab Collaborators, fb *FallbackEngine, timeout time.Duration) *StageExecutor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StageExecutor{collab: collab, fallback: fb, timeout: timeout}
}

// Parse — этап разбора документов.
// Пустой список файлов — фатальная ошибка входа, подменять нечем.
func (e *StageExecutor) Parse(ctx context.Context, files []UploadedFile) (ParsedContent, bool, error) {
	if len(files) == 0 {
		return ParsedContent{}, false, fmt.Errorf("no input files to parse")
	}
	for _, f := range files {
		if f.Name == "" {
			return ParsedContent{}, false, fmt.Errorf("input file without name")
		}
	}

	if e.collab.Parser != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		content, err := e.collab.Parser.Parse(cctx, files)
		cancel()
		if err == nil && len(content.Files) > 0 {
			return content, false, nil
		}
		logStageFallback(StageParse, err)
	}
	return e.fallback.Parse(files), true, nil
}

// IdentifyAssets — этап идентификации активов
func (e *StageExecutor) IdentifyAssets(ctx context.Context, content ParsedContent) ([]tara.AssetDescriptor, bool, error) {
	if e.collab.Assets != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		assets, err := e.collab.Assets.Identify(cctx, content)
		cancel()
		if err == nil && validAssets(assets) {
			return assets, false, nil
		}
		logStageFallback(StageIdentifyAssets, err)
	}
	return e.fallback.IdentifyAssets(content), true, nil
}

// AnalyzeThreats — этап анализа угроз
func (e *StageExecutor) AnalyzeThreats(ctx context.Context, assets []tara.AssetDescriptor) ([]tara.ThreatCandidate, bool, error) {
	if e.collab.Threats != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		threats, err := e.collab.Threats.Analyze(cctx, assets)
		cancel()
		if err == nil && validThreats(threats) {
			return threats, false, nil
		}
		logStageFallback(StageAnalyzeThreats, err)
	}
	return e.fallback.AnalyzeThreats(assets), true, nil
}

// AssessRisks — этап оценки рисков
func (e *StageExecutor) AssessRisks(ctx context.Context, threats []tara.ThreatCandidate) ([]tara.RiskAssessment, bool, error) {
	if e.collab.Risks != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		risks, err := e.collab.Risks.Assess(cctx, threats)
		cancel()
		if err == nil && validRisks(risks, len(threats)) {
			return risks, false, nil
		}
		logStageFallback(StageAssessRisk, err)
	}
	return e.fallback.AssessRisks(threats), true, nil
}

// проверки формы ответа внешнего сервиса: пустой или некорректный
// ответ равнозначен отказу сервиса

func validAssets(assets []tara.AssetDescriptor) bool {
	if len(assets) == 0 {
		return false
	}
	for _, a := range assets {
		if a.Name == "" || a.Category == "" {
			return false
		}
	}
	return true
}

func validThreats(threats []tara.ThreatCandidate) bool {
	if len(threats) == 0 {
		return false
	}
	for _, t := range threats {
		if t.AssetName == "" || t.Category == "" {
			return false
		}
	}
	return true
}

func validRisks(risks []tara.RiskAssessment, threats int) bool {
	if len(risks) == 0 || len(risks) > threats {
		return false
	}
	for _, r := range risks {
		if r.Level < tara.RiskLow || r.Level > tara.RiskCritical {
			return false
		}
	}
	return true
}

func logStageFallback(s Stage, err error) {
	if err != nil {
		log.Printf("stage %s: collaborator failed, using local fallback: %v", s.Name(), err)
		return
	}
	log.Printf("stage %s: collaborator returned malformed result, using local fallback", s.Name())
}
