package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"
)

// SubjectPrefix - префикс subject'ов игровых событий в JetStream
const SubjectPrefix = "arena.events"

// Лимиты асинхронной публикации
const (
	maxPendingAcks = 256
	drainTimeout   = 5 * time.Second
)

// Subject возвращает subject для типа события
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// JetStreamBus реализует EventBus поверх NATS JetStream.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к кластеру NATS и гарантирует наличие стрима.
// url: nats://127.0.0.1:4222, stream: "GAME_EVENTS".
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = "GAME_EVENTS"
	}

	nc, err := nats.Connect(url, nats.Name("voxel-arena"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	jb := &JetStreamBus{nc: nc, stream: stream}
	js, err := nc.JetStream(
		nats.PublishAsyncMaxPending(maxPendingAcks),
		nats.PublishAsyncErrHandler(func(_ nats.JetStream, _ *nats.Msg, _ error) {
			atomic.AddUint64(&jb.dropped, 1)
		}),
	)
	if err != nil {
		nc.Drain()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err = js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{SubjectPrefix + ".*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Drain()
			return nil, fmt.Errorf("add stream: %w", err)
		}
	}

	jb.js = js
	return jb, nil
}

// Publish сериализует Envelope в JSON и публикует в subject arena.events.<type>.
// Подтверждение сервера не ожидается: отказы подсчитываются в Dropped.
// Когда неподтверждённых сообщений больше maxPendingAcks, вызов ждёт освобождения места.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	if _, err = jb.js.PublishAsync(Subject(ev.EventType), data); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт durable consumer и вызывает handler асинхронно.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := SubjectPrefix + ".*"
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	durable := nats.Durable(fmt.Sprintf("sub_%d", time.Now().UnixNano()))

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			atomic.AddUint64(&jb.dropped, 1)
			_ = msg.Term()
			return
		}
		if matchFilter(&ev, f) {
			h(ctx, &ev)
			atomic.AddUint64(&jb.consumed, 1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), durable, nats.AckWait(30*time.Second))
	if err != nil {
		return nil, err
	}

	return &jetSub{natSub}, nil
}

// jetSub обёртка вокруг *nats.Subscription чтобы удовлетворить наш интерфейс.
type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
		InFlight:  jb.js.PublishAsyncPending(),
	}
}

// Close дожидается подтверждений отправленных сообщений и закрывает соединение
func (jb *JetStreamBus) Close() error {
	select {
	case <-jb.js.PublishAsyncComplete():
	case <-time.After(drainTimeout):
	}
	return jb.nc.Drain()
}
