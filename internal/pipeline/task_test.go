package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	task := GenerationTask{
		ID:        "t1",
		Status:    StatusRunning,
		Stage:     StageParse,
		Percent:   10,
		Degraded:  []string{"parse: degraded"},
		CreatedAt: time.Now(),
	}
	s.Put(task)

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, 10, got.Percent)
	assert.Equal(t, []string{"parse: degraded"}, got.Degraded)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	task := GenerationTask{ID: "t1", Status: StatusRunning, Degraded: []string{"a"}}
	s.Put(task)

	// мутация исходника после Put не должна портить запись
	task.Degraded[0] = "mutated"
	task.Percent = 99

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got.Degraded)
	assert.Equal(t, 0, got.Percent)

	// и мутация прочитанного снимка не должна портить хранилище
	got.Degraded[0] = "reader"
	again, _ := s.Get("t1")
	assert.Equal(t, []string{"a"}, again.Degraded)
}

func TestMemoryStoreTerminalImmutable(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	s.Put(GenerationTask{ID: "t1", Status: StatusCompleted, Percent: 100})

	// попытка мутировать терминальную запись отбрасывается
	s.Put(GenerationTask{ID: "t1", Status: StatusRunning, Percent: 10})

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Percent)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)

	s.Put(GenerationTask{ID: "t1", Status: StatusCompleted})
	time.Sleep(30 * time.Millisecond)

	_, ok := s.Get("t1")
	assert.False(t, ok)
}
