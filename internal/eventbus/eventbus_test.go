package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/voxel-arena/internal/game"
	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEnvelope(t *testing.T, ch <-chan *Envelope) *Envelope {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("событие не доставлено")
		return nil
	}
}

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	got := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{"victory"}}, func(ctx context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)

	skip, err := NewEnvelope("test", "entity_hit", PriorityLow, map[string]int{"n": 1})
	require.NoError(t, err)
	win, err := NewEnvelope("test", "victory", PriorityCritical, map[string]int{"n": 2})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), skip))
	require.NoError(t, bus.Publish(context.Background(), win))

	ev := waitEnvelope(t, got)
	assert.Equal(t, "victory", ev.EventType)
	assert.Equal(t, win.ID, ev.ID)

	var payload map[string]int
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, 2, payload["n"])

	select {
	case extra := <-got:
		t.Fatalf("фильтр пропустил %s", extra.EventType)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	got := make(chan *Envelope, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) { got <- ev })
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope("test", "defeat", PriorityCritical, nil)
	require.NoError(t, bus.Publish(context.Background(), ev))

	select {
	case <-got:
		t.Fatal("отписанный обработчик получил событие")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_BackpressureDropsLowPriority(t *testing.T) {
	// Шина без dispatchLoop: буфер никто не разбирает
	mb := &memoryBus{subscribers: make(map[int]subscriber), buffer: make(chan *Envelope, 1), capacity: 1}
	ctx := context.Background()

	first, _ := NewEnvelope("test", "entity_hit", PriorityLow, nil)
	second, _ := NewEnvelope("test", "entity_hit", PriorityLow, nil)
	require.NoError(t, mb.Publish(ctx, first))
	require.NoError(t, mb.Publish(ctx, second))

	stats := mb.Metrics()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.InFlight)

	// Высокий приоритет ждёт места до отмены контекста
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	urgent, _ := NewEnvelope("test", "victory", PriorityCritical, nil)
	assert.ErrorIs(t, mb.Publish(cctx, urgent), context.Canceled)
}

func TestMemoryBus_Close(t *testing.T) {
	bus := NewMemoryBus(4)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, _ := NewEnvelope("test", "victory", PriorityCritical, nil)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestFromGameEvent(t *testing.T) {
	src := game.Event{
		Type:     game.EventEntityDied,
		Tick:     42,
		EntityID: 7,
		Kind:     "fire_dragon",
		Position: vec.Vec3Float{X: 1, Y: 2, Z: 3},
	}
	env, err := FromGameEvent(src)
	require.NoError(t, err)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, SourceSimulation, env.Source)
	assert.Equal(t, "entity_died", env.EventType)
	assert.Equal(t, PriorityHigh, env.Priority)
	assert.Equal(t, "tick-42", env.CorrelationID)
	assert.Equal(t, "fire_dragon", env.Metadata["kind"])

	var back game.Event
	require.NoError(t, env.Decode(&back))
	assert.Equal(t, src, back)
}

func TestPriorityOf(t *testing.T) {
	assert.Equal(t, PriorityCritical, PriorityOf(game.EventVictory))
	assert.Equal(t, PriorityCritical, PriorityOf(game.EventDefeat))
	assert.Equal(t, PriorityNormal, PriorityOf(game.EventPlayerDamaged))
	assert.Equal(t, PriorityLow, PriorityOf(game.EventEntityHit))
}

func TestPublishGameEvents(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	got := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Sources: []string{SourceSimulation}}, func(ctx context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)

	events := []game.Event{
		{Type: game.EventPlayerDamaged, Tick: 1, Source: "zombie", Amount: 10, Health: 90},
		{Type: game.EventDefeat, Tick: 1},
	}
	require.NoError(t, PublishGameEvents(context.Background(), bus, events))

	seen := map[string]bool{}
	seen[waitEnvelope(t, got).EventType] = true
	seen[waitEnvelope(t, got).EventType] = true
	assert.True(t, seen["player_damaged"])
	assert.True(t, seen["defeat"])
}

func TestMetricsExporter_Collect(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	ev, _ := NewEnvelope("test", "victory", PriorityCritical, nil)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Publish(context.Background(), ev))

	me.Collect()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published))

	me.Collect()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published), "повторный сбор не удваивает счётчик")
}

func TestGlobalPublish(t *testing.T) {
	Init(nil)
	ev, _ := NewEnvelope("test", "victory", PriorityCritical, nil)
	assert.NoError(t, Publish(context.Background(), ev), "без шины публикация молча пропускается")

	bus := NewMemoryBus(4)
	defer bus.Close()
	Init(bus)
	defer Init(nil)
	require.NoError(t, Publish(context.Background(), ev))
	assert.Equal(t, uint64(1), bus.Metrics().Published)
}
