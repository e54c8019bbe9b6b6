package dispatch_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
)

func TestQueue_FlushIncludesNestedTasks(t *testing.T) {
	q := dispatch.NewQueue()
	var got []int

	q.Schedule(func() {
		got = append(got, 1)
		q.Schedule(func() { got = append(got, 3) })
	})
	q.Schedule(func() { got = append(got, 2) })

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 3, q.Flush())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Zero(t, q.Len())
	assert.Zero(t, q.Flush())
}

func TestSchedulerFunc(t *testing.T) {
	ran := false
	s := dispatch.SchedulerFunc(func(task func()) { task() })
	s.Schedule(func() { ran = true })
	assert.True(t, ran)
}

func TestWorker_RunsInOrder(t *testing.T) {
	w := dispatch.NewWorker(nil)
	defer w.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		w.Schedule(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestWorker_DeferredRegistry(t *testing.T) {
	w := dispatch.NewWorker(nil)
	defer w.Close()

	reg := dispatch.New[string](dispatch.WithScheduler(w))
	done := make(chan string, 1)

	_, err := reg.On("x", func(p string) { done <- p }, dispatch.Deferred())
	require.NoError(t, err)

	reg.Dispatch("x", "hello")

	select {
	case got := <-done:
		assert.Equal(t, "hello", got)
	case <-time.After(2 * time.Second):
		t.Fatal("deferred delivery never ran")
	}
}

func TestWorker_PanicIsLoggedAndSurvived(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	w := dispatch.NewWorker(logger)
	defer w.Close()

	ran := false
	w.Schedule(func() { panic("bad task") })
	w.Schedule(func() { ran = true })
	w.Wait()

	assert.True(t, ran)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "deferred delivery panicked")
	assert.Contains(t, buf.String(), "bad task")
}

func TestWorker_WaitAndCloseFromTask(t *testing.T) {
	w := dispatch.NewWorker(nil)
	finished := make(chan struct{})

	w.Schedule(func() {
		w.Wait()
		w.Close()
		close(finished)
	})

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("re-entrant Wait/Close deadlocked")
	}
	w.Close()
}

func TestWorker_ScheduleAfterCloseRunsInline(t *testing.T) {
	w := dispatch.NewWorker(nil)
	w.Close()
	w.Close()

	ran := false
	w.Schedule(func() { ran = true })
	assert.True(t, ran)
}

func TestDefaultScheduler(t *testing.T) {
	assert.Same(t, dispatch.DefaultScheduler(), dispatch.DefaultScheduler())
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
