package facets_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/facets/pkg/facets"
	"github.com/randalmurphal/facets/pkg/facets/config"
	"github.com/randalmurphal/facets/pkg/facets/dispatch"
	"github.com/randalmurphal/facets/pkg/facets/hook"
	"github.com/randalmurphal/facets/pkg/facets/trace"
)

func TestIdentifiable(t *testing.T) {
	type app struct{ facets.Identifiable }
	a, b := &app{}, &app{}

	canonical := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-1[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	assert.Regexp(t, canonical, a.ID())
	assert.Regexp(t, canonical, b.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.ID(), "stable")
}

func TestIdentifiable_InitID(t *testing.T) {
	type app struct{ facets.Identifiable }
	newApp := func() *app {
		a := &app{}
		a.InitID()
		return a
	}
	first, second := newApp(), newApp()

	later := uuid.MustParse(second.ID())
	earlier := uuid.MustParse(first.ID())
	assert.Less(t, int64(earlier.Time()), int64(later.Time()), "creation order, not first use")

	id := first.ID()
	first.InitID()
	assert.Equal(t, id, first.ID())
}

func TestConfigurable(t *testing.T) {
	type app struct{ facets.Configurable }

	t.Run("merge into base", func(t *testing.T) {
		a := &app{}
		a.SetConfiguration(map[string]any{
			"foo": 42,
			"bar": "bar",
			"baz": map[string]any{"quux": true},
		})
		assert.True(t, a.Configuration().Bool("baz.quux", false))

		require.NoError(t, a.Configure(map[string]any{
			"foo": 7,
			"baz": map[string]any{"quux": false},
		}))

		assert.False(t, a.Configuration().Bool("baz.quux", true))
		assert.Equal(t, map[string]any{
			"foo": 7,
			"bar": "bar",
			"baz": map[string]any{"quux": false},
		}, a.Configuration().Raw())
	})

	t.Run("no base configuration", func(t *testing.T) {
		a := &app{}
		err := a.Configure(map[string]any{"foo": 1})
		assert.ErrorIs(t, err, config.ErrNotConfigured)
	})
}

type bound struct {
	facets.Bindable
	foo *facets.Property[int]
	bar *facets.Property[string]
}

func newBound() *bound {
	b := &bound{}
	b.foo = facets.NewProperty(&b.Bindable, "foo", 42)
	b.bar = facets.NewProperty(&b.Bindable, "bar", "baz")
	return b
}

func (b *bound) raise() {
	b.foo.Update(func(v int) int { return v + 1 })
}

func TestBindable(t *testing.T) {
	app := newBound()

	var calls []string
	_, err := facets.BindTo(&app.Bindable, "foo", func(val, old int) {
		calls = append(calls, fmt.Sprintf("foo1:%d:%d", val, old))
	}, dispatch.WithLimit(1))
	require.NoError(t, err)
	_, err = facets.BindTo(&app.Bindable, "foo", func(val, old int) {
		calls = append(calls, fmt.Sprintf("foo2:%d:%d", val, old))
	}, dispatch.Prepend())
	require.NoError(t, err)
	_, err = app.Bind("bar", func(val, old any) {
		calls = append(calls, fmt.Sprintf("bar:%v:%v", val, old))
	})
	require.NoError(t, err)

	app.raise()
	app.raise()
	app.bar.Set(app.bar.Get() + "x")
	app.bar.Set(app.bar.Get() + "y")
	app.bar.Set(app.bar.Get() + "z")

	assert.Equal(t, []string{
		"foo2:43:42", "foo1:43:42",
		"foo2:44:43",
		"bar:bazx:baz",
		"bar:bazxy:bazx",
		"bar:bazxyz:bazxy",
	}, calls)
	assert.Equal(t, 44, app.foo.Get())
	assert.Equal(t, "foo", app.foo.Name())
}

func TestBindable_Unbind(t *testing.T) {
	app := newBound()
	calls := 0
	h, err := app.Bind("foo", func(_, _ any) { calls++ })
	require.NoError(t, err)

	app.foo.Set(1)
	require.NoError(t, app.Unbind("foo", h))
	app.foo.Set(2)
	assert.Equal(t, 1, calls)

	assert.ErrorIs(t, app.Unbind("foo", h), dispatch.ErrNotFound)
	_, err = app.Bind("foo", nil)
	assert.ErrorIs(t, err, dispatch.ErrNilCallback)
}

func TestBindTo_SkipsOtherTypes(t *testing.T) {
	var b facets.Bindable
	calls := 0
	_, err := facets.BindTo(&b, "p", func(_, _ string) { calls++ })
	require.NoError(t, err)

	b.Changed("p", 1, 0)
	b.Changed("p", "a", "")
	assert.Equal(t, 1, calls)
}

type events struct {
	facets.Subscribable[any]
}

func (e *events) raise() {
	e.Emit("foo", 42)
	e.Emit("bar", "quux")
}

func TestSubscribable(t *testing.T) {
	app := &events{}

	var calls []string
	_, err := app.Subscribe("foo", func(v any) { calls = append(calls, fmt.Sprintf("foo1:%v", v)) }, dispatch.WithLimit(1))
	require.NoError(t, err)
	_, err = app.Subscribe("foo", func(v any) { calls = append(calls, fmt.Sprintf("foo2:%v", v)) }, dispatch.Prepend())
	require.NoError(t, err)
	_, err = app.On("bar", func(v any) { calls = append(calls, fmt.Sprintf("bar:%v", v)) })
	require.NoError(t, err)

	app.raise()
	app.raise()
	app.raise()

	assert.Equal(t, []string{
		"foo2:42", "foo1:42",
		"bar:quux",
		"foo2:42",
		"bar:quux",
		"foo2:42",
		"bar:quux",
	}, calls)
}

func TestSubscribable_OrderedDelivery(t *testing.T) {
	var s facets.Subscribable[int]

	var calls []string
	_, err := s.On("x", func(v int) { calls = append(calls, fmt.Sprintf("A(%d)", v)) },
		dispatch.InBucket(dispatch.Early), dispatch.WithLimit(1))
	require.NoError(t, err)
	_, err = s.On("x", func(v int) { calls = append(calls, fmt.Sprintf("B(%d)", v)) })
	require.NoError(t, err)

	s.Emit("x", 1)
	s.Emit("x", 2)

	assert.Equal(t, []string{"A(1)", "B(1)", "B(2)"}, calls)
	assert.Equal(t, 1, s.Events().Len("x"))
}

func TestSubscribable_UseEvents(t *testing.T) {
	var s facets.Subscribable[string]
	q := dispatch.NewQueue()
	s.UseEvents(dispatch.WithScheduler(q))

	var got []string
	h, err := s.On("e", func(v string) { got = append(got, v) }, dispatch.Deferred())
	require.NoError(t, err)

	s.Emit("e", "later")
	assert.Empty(t, got)
	q.Flush()
	assert.Equal(t, []string{"later"}, got)

	require.NoError(t, s.Unsubscribe("e", h))
	s.Emit("e", "gone")
	q.Flush()
	assert.Equal(t, []string{"later"}, got)
}

type payload struct {
	Value string
	Seen  []string
}

func TestHookable(t *testing.T) {
	type app struct{ facets.Hookable[payload] }
	a := &app{}
	ctx := context.Background()

	fooCalls := 0
	_, err := a.Latch("foo", dispatch.Options{Bucket: dispatch.Main, Limit: 2},
		func(_ context.Context, _ *hook.Invocation, d *payload) (hook.Result, error) {
			fooCalls++
			d.Seen = append(d.Seen, "foo:"+d.Value)
			return hook.Continue, nil
		})
	require.NoError(t, err)

	var seen [][]string
	for _, v := range []string{"aha", "soso", "hmm"} {
		out, err := a.Hook(ctx, "foo", payload{Value: v})
		require.NoError(t, err)
		seen = append(seen, out.Seen)
	}
	assert.Equal(t, [][]string{{"foo:aha"}, {"foo:soso"}, nil}, seen)
	assert.Equal(t, 2, fooCalls)

	lateCalls := 0
	_, err = a.At("bar", func(_ context.Context, _ *hook.Invocation, d *payload) (hook.Result, error) {
		d.Seen = append(d.Seen, "bar")
		return hook.Finish, nil
	})
	require.NoError(t, err)
	_, err = a.At("bar", hook.Step(func(*payload) { lateCalls++ }), dispatch.InBucket(dispatch.Late))
	require.NoError(t, err)

	out, err := a.Hook(ctx, "bar", payload{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar"}, out.Seen)
	assert.Equal(t, 0, lateCalls, "finish in main skips late")
}

func TestHookable_UseHooksAndUnlatch(t *testing.T) {
	var h facets.Hookable[int]
	h.UseHooks(hook.WithMetrics(false), hook.WithTracing(false))

	handle, err := h.At("inc", hook.Step(func(n *int) { *n++ }))
	require.NoError(t, err)

	n, err := h.Hook(context.Background(), "inc", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, h.Unlatch("inc", handle))
	n, err = h.Hook(context.Background(), "inc", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, h.Hooks().Has("inc"))
}

func TestTraceable_WithSubscribable(t *testing.T) {
	type sample struct {
		facets.Traceable
		facets.Subscribable[string]
	}
	s := &sample{}
	s.UseTracer(trace.New(
		trace.WithLevels(trace.Error, trace.Warning, trace.Info),
		trace.WithLevel(trace.Info),
		trace.WithSink(func(line string) { s.Emit("log", line) }),
	))

	var lines []string
	_, err := s.On("log", func(line string) { lines = append(lines, line) })
	require.NoError(t, err)

	s.Log(trace.Info, "test", map[string]any{"foo": "bar"})
	s.Log(trace.Debug, "not a level", nil)

	require.Len(t, lines, 1)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\]: \[INFO\] test \(foo: "bar"\)$`, lines[0])

	var zero facets.Traceable
	assert.Equal(t, trace.Info, zero.Tracer().Level())
}
