package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResultSink — приёмник результатов завершённой генерации
// (сохранение активов/угроз/рисков и отчёта в БД)
type ResultSink interface {
	SaveResults(payload ReportPayload) error
}

// Coordinator владеет жизненным циклом задач генерации: создаёт
// запись задачи, запускает фоновую работу, последовательно гонит
// этапы через исполнителя и публикует прогресс в хранилище.
// Прогресс этапа записывается в хранилище до внешнего вызова
// следующего этапа. Задача из терминального статуса не выходит.
type Coordinator struct {
	store TaskStore
	exec  *StageExecutor
	sink  ResultSink

	mu   sync.Mutex
	done map[string]chan struct{}
}

func NewCoordinator(store TaskStore, exec *StageExecutor, sink ResultSink) *Coordinator {
	return &Coordinator{
		store: store,
		exec:  exec,
		sink:  sink,
		done:  make(map[string]chan struct{}),
	}
}

// Submit регистрирует задачу и запускает фоновую генерацию.
// Возвращает идентификатор для опроса прогресса.
func (c *Coordinator) Submit(projectID uint, files []UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("submit: at least one file is required")
	}

	task := GenerationTask{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Status:    StatusRunning,
		Stage:     StageParse,
		Percent:   0,
		CreatedAt: time.Now().UTC(),
	}
	c.store.Put(task)

	ch := make(chan struct{})
	c.mu.Lock()
	c.done[task.ID] = ch
	c.mu.Unlock()

	go func() {
		defer close(ch)
		defer func() {
			c.mu.Lock()
			delete(c.done, task.ID)
			c.mu.Unlock()
		}()
		c.run(task, files)
	}()

	return task.ID, nil
}

// Progress — снимок задачи для опроса
func (c *Coordinator) Progress(id string) (GenerationTask, bool) {
	return c.store.Get(id)
}

// Wait блокирует до завершения фоновой работы задачи; нужен для
// синхронных тестов конвейера. Для неизвестной или уже завершённой
// задачи возвращается сразу.
func (c *Coordinator) Wait(id string) {
	c.mu.Lock()
	ch, ok := c.done[id]
	c.mu.Unlock()
	if ok {
		<-ch
	}
}

// run — единственный писатель записи задачи
func (c *Coordinator) run(task GenerationTask, files []UploadedFile) {
	ctx := context.Background()
	log.Printf("task %s: generation started (project=%d, files=%d)", task.ID, task.ProjectID, len(files))

	advance := func(s Stage, degraded bool) {
		task.StageDone[s] = true
		task.Percent = s.Progress()
		if degraded {
			task.Degraded = append(task.Degraded, s.Name()+": degraded")
		}
		if s < StageAssembleReport {
			task.Stage = s + 1
		}
		c.store.Put(task)
	}

	fail := func(s Stage, err error) {
		task.Status = StatusFailed
		task.Error = fmt.Sprintf("%s: %v", s.Label(), err)
		c.store.Put(task)
		log.Printf("task %s: failed at stage %s: %v", task.ID, s.Name(), err)
	}

	// 1. разбор документов
	content, degraded, err := c.exec.Parse(ctx, files)
	if err != nil {
		fail(StageParse, err)
		return
	}
	advance(StageParse, degraded)

	// 2. идентификация активов
	assets, degraded, err := c.exec.IdentifyAssets(ctx, content)
	if err != nil {
		fail(StageIdentifyAssets, err)
		return
	}
	advance(StageIdentifyAssets, degraded)

	// 3. анализ угроз
	threats, degraded, err := c.exec.AnalyzeThreats(ctx, assets)
	if err != nil {
		fail(StageAnalyzeThreats, err)
		return
	}
	advance(StageAnalyzeThreats, degraded)

	// 4. оценка рисков
	risks, degraded, err := c.exec.AssessRisks(ctx, threats)
	if err != nil {
		fail(StageAssessRisk, err)
		return
	}
	advance(StageAssessRisk, degraded)

	// 5. сборка отчёта
	reportID := uuid.NewString()
	payload, sectionDegraded := c.exec.assembleReport(ctx, reportID, task.ProjectID, assets, threats, risks)
	payload.Degraded = append(append([]string(nil), task.Degraded...), sectionDegraded...)
	task.Degraded = payload.Degraded
	advance(StageAssembleReport, false)

	if c.sink != nil {
		if err := c.sink.SaveResults(payload); err != nil {
			fail(StageAssembleReport, fmt.Errorf("save results: %w", err))
			return
		}
	}

	task.Status = StatusCompleted
	task.Percent = ProgressDone
	task.Result = &TaskResult{
		ProjectID:     task.ProjectID,
		ReportID:      reportID,
		AssetCount:    payload.Summary.AssetCount,
		ThreatCount:   payload.Summary.ThreatCount,
		RiskCount:     payload.Summary.RiskCount,
		HighRiskCount: payload.Summary.HighRiskCount,
	}
	c.store.Put(task)
	log.Printf("task %s: completed (assets=%d, threats=%d, risks=%d, degraded=%d)",
		task.ID, payload.Summary.AssetCount, payload.Summary.ThreatCount,
		payload.Summary.RiskCount, len(task.Degraded))
}
