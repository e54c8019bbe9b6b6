package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
	"github.com/randalmurphal/facets/pkg/facets/hook"
)

// State is the payload used by the dispatch and hook benchmarks.
type State struct {
	Counter int
}

func newRegistry(n int) *dispatch.Registry[State] {
	r := dispatch.New[State](dispatch.WithScheduler(dispatch.NewQueue()))
	buckets := []dispatch.Bucket{dispatch.Early, dispatch.Main, dispatch.Late}
	for i := 0; i < n; i++ {
		_, _ = r.On("tick", func(State) {}, dispatch.InBucket(buckets[i%len(buckets)]))
	}
	return r
}

// BenchmarkDispatch_1 delivers to a single callback.
func BenchmarkDispatch_1(b *testing.B) {
	r := newRegistry(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Dispatch("tick", State{Counter: i})
	}
}

// BenchmarkDispatch_10 delivers to 10 callbacks across all buckets.
func BenchmarkDispatch_10(b *testing.B) {
	r := newRegistry(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Dispatch("tick", State{Counter: i})
	}
}

// BenchmarkDispatch_100 delivers to 100 callbacks across all buckets.
func BenchmarkDispatch_100(b *testing.B) {
	r := newRegistry(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Dispatch("tick", State{Counter: i})
	}
}

// BenchmarkDispatch_Deferred queues a deferred delivery and flushes it.
func BenchmarkDispatch_Deferred(b *testing.B) {
	q := dispatch.NewQueue()
	r := dispatch.New[State](dispatch.WithScheduler(q))
	_, _ = r.On("tick", func(State) {}, dispatch.Deferred())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Dispatch("tick", State{Counter: i})
		q.Flush()
	}
}

// BenchmarkRegister_Once registers a single-use callback and consumes it.
func BenchmarkRegister_Once(b *testing.B) {
	r := dispatch.New[State]()
	for i := 0; i < b.N; i++ {
		_, _ = r.On("tick", func(State) {}, dispatch.Once())
		r.Dispatch("tick", State{})
	}
}

func newPipeline(n int) *hook.Pipeline[State] {
	p := hook.New[State]()
	for i := 0; i < n; i++ {
		_, _ = p.At("step", hook.Step(func(s *State) { s.Counter++ }))
	}
	return p
}

// BenchmarkHook_5 runs a 5-callback hook.
func BenchmarkHook_5(b *testing.B) {
	p := newPipeline(5)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Hook(ctx, "step", State{})
	}
}

// BenchmarkHook_50 runs a 50-callback hook.
func BenchmarkHook_50(b *testing.B) {
	p := newPipeline(50)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Hook(ctx, "step", State{})
	}
}

// BenchmarkHook_Repeat runs a hook that repeats 10 times.
func BenchmarkHook_Repeat(b *testing.B) {
	p := hook.New[State]()
	_, _ = p.At("loop", func(_ context.Context, _ *hook.Invocation, s *State) (hook.Result, error) {
		s.Counter++
		if s.Counter < 10 {
			return hook.Repeat, nil
		}
		return hook.Continue, nil
	})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Hook(ctx, "loop", State{})
	}
}
