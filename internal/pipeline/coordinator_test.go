package pipeline

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// хранилище, записывающее каждый снимок — для проверки
// монотонности прогресса
type recordingStore struct {
	mu    sync.Mutex
	inner *MemoryStore
	puts  []GenerationTask
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: NewMemoryStore(time.Hour)}
}

func (r *recordingStore) Put(t GenerationTask) {
	r.mu.Lock()
	r.puts = append(r.puts, snapshot(t))
	r.mu.Unlock()
	r.inner.Put(t)
}

func (r *recordingStore) Get(id string) (GenerationTask, bool) {
	return r.inner.Get(id)
}

func (r *recordingStore) history() []GenerationTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GenerationTask(nil), r.puts...)
}

type fakeSink struct {
	mu       sync.Mutex
	payloads []ReportPayload
	err      error
}

func (f *fakeSink) SaveResults(p ReportPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func newTestCoordinator(t *testing.T, collab Collaborators, store TaskStore, sink ResultSink) *Coordinator {
	t.Helper()
	rules, err := tara.NewRuleEngine()
	require.NoError(t, err)
	exec := NewStageExecutor(collab, NewFallbackEngine(rules), 50*time.Millisecond)
	return NewCoordinator(store, exec, sink)
}

// все внешние сервисы недоступны — задача всё равно доходит
// до completed на локальных реализациях
func TestPipelineAllFallbacks(t *testing.T) {
	store := newRecordingStore()
	sink := &fakeSink{}
	coord := newTestCoordinator(t, Collaborators{}, store, sink)

	id, err := coord.Submit(7, []UploadedFile{{Name: "engine_ecu.docx", Size: 1024}})
	require.NoError(t, err)
	coord.Wait(id)

	task, ok := coord.Progress(id)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, ProgressDone, task.Percent)
	assert.Empty(t, task.Error)
	require.NotNil(t, task.Result)
	assert.Equal(t, uint(7), task.Result.ProjectID)
	assert.Greater(t, task.Result.ThreatCount, 0)

	// каждый этап анализа отмечен как деградированный
	assert.Contains(t, task.Degraded, "parse: degraded")
	assert.Contains(t, task.Degraded, "assets: degraded")
	assert.Contains(t, task.Degraded, "threats: degraded")
	assert.Contains(t, task.Degraded, "risks: degraded")

	// документ про ЭБУ с CAN даёт Tampering и Spoofing
	require.Len(t, sink.payloads, 1)
	payload := sink.payloads[0]
	got := map[tara.StrideCategory]bool{}
	for _, th := range payload.Threats {
		got[th.Category] = true
	}
	assert.True(t, got[tara.StrideTampering])
	assert.True(t, got[tara.StrideSpoofing])
	assert.Len(t, payload.Risks, len(payload.Threats))
}

func TestPipelineProgressMonotonic(t *testing.T) {
	store := newRecordingStore()
	coord := newTestCoordinator(t, Collaborators{}, store, &fakeSink{})

	id, err := coord.Submit(1, []UploadedFile{{Name: "gateway.pdf"}})
	require.NoError(t, err)
	coord.Wait(id)

	var percents []int
	for _, snap := range store.history() {
		percents = append(percents, snap.Percent)
	}
	require.NotEmpty(t, percents)

	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1],
			"прогресс не должен убывать: %v", percents)
	}
	assert.Equal(t, []int{0, 10, 30, 50, 75, 90, 100}, percents)
}

// отказ одного анализатора двигает этап дальше с аннотацией
// деградации, задача не падает
func TestPipelinePartialRemoteFailure(t *testing.T) {
	collab := Collaborators{
		Parser: &fakeParser{content: ParsedContent{
			Files: []ParsedFile{{Name: "spec.pdf", Kind: "pdf"}},
		}},
		Assets: &fakeIdentifier{assets: []tara.AssetDescriptor{{
			Name:       "central gateway",
			Category:   tara.AssetGateway,
			Interfaces: []string{"can"},
		}}},
		Threats: &fakeAnalyzer{err: errors.New("timeout")},
	}

	store := newRecordingStore()
	coord := newTestCoordinator(t, collab, store, &fakeSink{})

	id, err := coord.Submit(2, []UploadedFile{{Name: "spec.pdf"}})
	require.NoError(t, err)
	coord.Wait(id)

	task, ok := coord.Progress(id)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotContains(t, task.Degraded, "parse: degraded")
	assert.NotContains(t, task.Degraded, "assets: degraded")
	assert.Contains(t, task.Degraded, "threats: degraded")

	// этап угроз прошёл и прогресс дошёл до 75 и дальше
	reached := false
	for _, snap := range store.history() {
		if snap.Percent == 75 {
			reached = true
		}
	}
	assert.True(t, reached)
}

func TestPipelineFatalInput(t *testing.T) {
	coord := newTestCoordinator(t, Collaborators{}, newRecordingStore(), &fakeSink{})

	// файл без имени — фатальная ошибка этапа разбора
	id, err := coord.Submit(3, []UploadedFile{{Name: ""}})
	require.NoError(t, err)
	coord.Wait(id)

	task, ok := coord.Progress(id)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Less(t, task.Percent, ProgressDone)
	assert.NotEmpty(t, task.Error)
	assert.Nil(t, task.Result)
}

func TestSubmitRequiresFiles(t *testing.T) {
	coord := newTestCoordinator(t, Collaborators{}, newRecordingStore(), &fakeSink{})

	_, err := coord.Submit(4, nil)
	assert.Error(t, err)
}

func TestPipelineSinkFailure(t *testing.T) {
	coord := newTestCoordinator(t, Collaborators{}, newRecordingStore(),
		&fakeSink{err: errors.New("db down")})

	id, err := coord.Submit(5, []UploadedFile{{Name: "ecu.pdf"}})
	require.NoError(t, err)
	coord.Wait(id)

	task, ok := coord.Progress(id)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Contains(t, task.Error, "save results")
}

func TestPipelineConcurrentTasks(t *testing.T) {
	coord := newTestCoordinator(t, Collaborators{}, newRecordingStore(), &fakeSink{})

	var ids []string
	for i := 0; i < 8; i++ {
		id, err := coord.Submit(uint(i+1), []UploadedFile{{Name: "engine_ecu.docx"}})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		coord.Wait(id)
	}

	for i, id := range ids {
		task, ok := coord.Progress(id)
		require.True(t, ok)
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, uint(i+1), task.ProjectID)
	}
}
