package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/voxel-arena/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedBus задерживает каждую публикацию до открытия gate
type gatedBus struct {
	gate chan struct{}

	mu   sync.Mutex
	seen []string
}

func (b *gatedBus) Publish(ctx context.Context, ev *Envelope) error {
	<-b.gate
	b.mu.Lock()
	b.seen = append(b.seen, ev.EventType)
	b.mu.Unlock()
	return nil
}

func (b *gatedBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	return nil, nil
}

func (b *gatedBus) Metrics() Stats { return Stats{} }
func (b *gatedBus) Close() error   { return nil }

func (b *gatedBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seen...)
}

func TestAsyncPublisher_SlowBusDoesNotBlock(t *testing.T) {
	bus := &gatedBus{gate: make(chan struct{})}
	p := NewAsyncPublisher(bus, 2)
	sink := p.Sink()

	tick := []game.Event{{Type: game.EventEntityHit, Tick: 1}}
	done := make(chan struct{})
	go func() {
		// Первый пакет занимает горутину публикации, следующие ложатся в очередь
		for i := 0; i < 6; i++ {
			sink(context.Background(), tick)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("приёмник заблокирован медленной шиной")
	}
	assert.GreaterOrEqual(t, p.Dropped(), uint64(3))

	close(bus.gate)
	p.Close()
	assert.Equal(t, uint64(6), uint64(len(bus.published()))+p.Dropped())
}

func TestAsyncPublisher_CloseDrainsQueue(t *testing.T) {
	bus := &gatedBus{gate: make(chan struct{})}
	close(bus.gate)
	p := NewAsyncPublisher(bus, 8)

	require.True(t, p.Enqueue([]game.Event{{Type: game.EventEntityDied}, {Type: game.EventVictory}}))
	assert.True(t, p.Enqueue(nil), "пустой пакет не считается потерей")
	p.Close()

	assert.Equal(t, []string{"entity_died", "victory"}, bus.published())
	assert.False(t, p.Enqueue([]game.Event{{Type: game.EventDefeat}}), "после закрытия пакеты не принимаются")
	assert.Equal(t, uint64(1), p.Dropped())
	p.Close()
}
