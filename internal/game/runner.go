package game

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-arena/internal/logging"
)

// EventSink получает события тика. Вызывается из горутины симуляции.
type EventSink func(ctx context.Context, events []Event)

// Frame - опубликованный результат тика
type Frame struct {
	Snapshot *Snapshot              `json:"snapshot"`
	Entities map[string]interface{} `json:"entities"`
}

// Runner крутит Simulation по таймеру и публикует кадры для внешних читателей.
// Симуляция трогается только из Run/Tick.
type Runner struct {
	sim      *Simulation
	input    *InputBuffer
	blocks   *BlockMirror
	sink     EventSink
	logger   *logging.Logger
	period   time.Duration
	maxDelta float64

	frame atomic.Pointer[Frame]
}

// NewRunner создаёт цикл с частотой tickRate. maxDelta ≤ 0 оставляет шаг неограниченным.
func NewRunner(sim *Simulation, input *InputBuffer, tickRate int, maxDelta float64) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	r := &Runner{
		sim:      sim,
		input:    input,
		blocks:   NewBlockMirror(defaultJournalSize),
		logger:   sim.logger,
		period:   time.Second / time.Duration(tickRate),
		maxDelta: maxDelta,
	}
	r.publish()
	return r
}

// SetSink задаёт получателя событий. Вызывать до Run.
func (r *Runner) SetSink(sink EventSink) {
	r.sink = sink
}

// Input возвращает буфер ввода
func (r *Runner) Input() *InputBuffer { return r.input }

// Blocks возвращает зеркало вокселей
func (r *Runner) Blocks() *BlockMirror { return r.blocks }

// Frame возвращает последний опубликованный кадр
func (r *Runner) Frame() *Frame { return r.frame.Load() }

// Tick выполняет один кадр: запрос паузы, ввод, шаг симуляции, публикация.
func (r *Runner) Tick(ctx context.Context, delta float64) []Event {
	if r.maxDelta > 0 && delta > r.maxDelta {
		delta = r.maxDelta
	}
	if paused, ok := r.input.TakePause(); ok {
		r.sim.SetPaused(paused)
	}

	// На паузе импульсы и смещения взгляда копятся до возобновления
	var events []Event
	if r.sim.State() == StatePlaying {
		events = r.sim.Step(ctx, r.input.Consume(), delta)
	}
	r.publish()

	if len(events) > 0 && r.sink != nil {
		r.sink(ctx, events)
	}
	return events
}

// Run крутит цикл до отмены ctx. Шаг равен реально прошедшему времени.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	r.logger.Info("⏱️ Цикл симуляции запущен: период %s", r.period)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("⏹️ Цикл симуляции остановлен на тике %d", r.sim.Tick())
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			r.Tick(ctx, delta)
		}
	}
}

// publish переносит изменения вокселей в зеркало и сохраняет снимок
func (r *Runner) publish() {
	r.blocks.Apply(r.sim.Store().DrainDeltas())
	r.frame.Store(&Frame{
		Snapshot: r.sim.Snapshot(),
		Entities: r.sim.Entities().GetStats(),
	})
}
