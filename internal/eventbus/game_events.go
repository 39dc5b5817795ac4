package eventbus

import (
	"context"
	"errors"
	"strconv"

	"github.com/annel0/voxel-arena/internal/game"
)

// SourceSimulation - источник событий игрового цикла
const SourceSimulation = "simulation"

// Приоритеты игровых событий. Исход партии и смерти не дропаются при переполнении.
const (
	PriorityLow      = 2
	PriorityNormal   = 4
	PriorityHigh     = 7
	PriorityCritical = 9
)

// PriorityOf возвращает приоритет доставки для типа события
func PriorityOf(t game.EventType) int {
	switch t {
	case game.EventVictory, game.EventDefeat:
		return PriorityCritical
	case game.EventEntityDied:
		return PriorityHigh
	case game.EventPlayerDamaged, game.EventPlayerHealed:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// FromGameEvent оборачивает событие симуляции в конверт.
// CorrelationID связывает все события одного тика.
func FromGameEvent(ev game.Event) (*Envelope, error) {
	env, err := NewEnvelope(SourceSimulation, string(ev.Type), PriorityOf(ev.Type), ev)
	if err != nil {
		return nil, err
	}
	env.CorrelationID = "tick-" + strconv.FormatUint(ev.Tick, 10)
	if ev.Kind != "" {
		env.Metadata = map[string]string{"kind": ev.Kind}
	}
	return env, nil
}

// PublishGameEvents публикует события тика по порядку.
// Ошибки не прерывают публикацию остальных событий.
func PublishGameEvents(ctx context.Context, bus EventBus, events []game.Event) error {
	var errs []error
	for _, ev := range events {
		env, err := FromGameEvent(ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := bus.Publish(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
