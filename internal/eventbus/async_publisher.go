package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-arena/internal/game"
	"github.com/annel0/voxel-arena/internal/logging"
)

// AsyncPublisher переносит публикацию событий тика в отдельную горутину.
// Enqueue никогда не блокирует цикл симуляции: при заполненной очереди
// пакет событий отбрасывается и учитывается в Dropped.
type AsyncPublisher struct {
	bus   EventBus
	queue chan []game.Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped uint64
}

// NewAsyncPublisher запускает горутину публикации с очередью на capacity пакетов
func NewAsyncPublisher(bus EventBus, capacity int) *AsyncPublisher {
	if capacity <= 0 {
		capacity = 64
	}
	p := &AsyncPublisher{
		bus:   bus,
		queue: make(chan []game.Event, capacity),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// Enqueue ставит события тика в очередь. Возвращает false, если пакет отброшен.
func (p *AsyncPublisher) Enqueue(events []game.Event) bool {
	if len(events) == 0 {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		atomic.AddUint64(&p.dropped, 1)
		return false
	}
	select {
	case p.queue <- events:
		return true
	default:
		atomic.AddUint64(&p.dropped, 1)
		return false
	}
}

// Sink возвращает приёмник событий для game.Runner
func (p *AsyncPublisher) Sink() game.EventSink {
	return func(_ context.Context, events []game.Event) {
		if !p.Enqueue(events) {
			logging.Debug("📭 Очередь публикации заполнена, пакет из %d событий отброшен", len(events))
		}
	}
}

// Dropped возвращает количество отброшенных пакетов
func (p *AsyncPublisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Pending возвращает количество пакетов в очереди
func (p *AsyncPublisher) Pending() int {
	return len(p.queue)
}

// Close перестаёт принимать события и дожидается публикации очереди
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *AsyncPublisher) loop() {
	defer p.wg.Done()
	for events := range p.queue {
		err := PublishGameEvents(context.Background(), p.bus, events)
		if err != nil && !errors.Is(err, ErrClosed) {
			logging.Warn("Ошибка публикации событий: %v", err)
		}
	}
}
