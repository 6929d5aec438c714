package pipeline

import (
	"sync"
	"time"
)

type TaskStatus string

const (
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// TaskResult — агрегат завершённой задачи: счётчики и ссылки,
// необходимые для сборки отчёта
type TaskResult struct {
	ProjectID    uint   `json:"project_id"`
	ReportID     string `json:"report_id"`
	AssetCount   int    `json:"asset_count"`
	ThreatCount  int    `json:"threat_count"`
	RiskCount    int    `json:"risk_count"`
	HighRiskCount int   `json:"high_risk_count"`
}

// GenerationTask — запись о фоновой задаче генерации.
// Пишет только владеющая фоновая горутина, опрос читает снимки.
// После перехода в терминальный статус запись не меняется.
type GenerationTask struct {
	ID        string      `json:"id"`
	ProjectID uint        `json:"project_id"`
	Status    TaskStatus  `json:"status"`
	Stage     Stage       `json:"stage"`
	Percent   int         `json:"percent"`
	StageDone [5]bool     `json:"stage_done"`
	Degraded  []string    `json:"degraded,omitempty"`
	Result    *TaskResult `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (t GenerationTask) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// TaskStore — хранилище прогресса задач. Запись по ключу ведёт
// ровно одна горутина (single writer per key), запись заменяется
// целиком, чтобы читатели не видели полуобновлённую запись.
type TaskStore interface {
	Put(t GenerationTask)
	Get(id string) (GenerationTask, bool)
}

// MemoryStore — таблица задач в памяти с ограниченным временем
// жизни записей. Не является системой учёта: записи вычищаются.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]storedTask
	ttl   time.Duration
}

type storedTask struct {
	task      GenerationTask
	updatedAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		tasks: make(map[string]storedTask),
		ttl:   ttl,
	}
}

// Put кладёт снимок задачи целиком (атомарная замена записи).
// Запись в терминальном статусе менять нельзя — повторная попытка
// молча отбрасывается.
func (s *MemoryStore) Put(t GenerationTask) {
	cp := snapshot(t)

	s.mu.Lock()
	if prev, ok := s.tasks[t.ID]; ok && prev.task.Terminal() {
		s.mu.Unlock()
		return
	}
	s.tasks[t.ID] = storedTask{task: cp, updatedAt: time.Now()}
	s.sweepLocked()
	s.mu.Unlock()
}

func (s *MemoryStore) Get(id string) (GenerationTask, bool) {
	s.mu.RLock()
	st, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return GenerationTask{}, false
	}
	if time.Since(st.updatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
		return GenerationTask{}, false
	}
	return snapshot(st.task), true
}

// глубокая копия записи: ни писатель, ни читатели не делят слайсы
func snapshot(t GenerationTask) GenerationTask {
	cp := t
	cp.Degraded = append([]string(nil), t.Degraded...)
	if t.Result != nil {
		r := *t.Result
		cp.Result = &r
	}
	return cp
}

// вычистка просроченных записей; вызывается под блокировкой записи
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for id, st := range s.tasks {
		if now.Sub(st.updatedAt) > s.ttl {
			delete(s.tasks, id)
		}
	}
}
