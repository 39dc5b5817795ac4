package game

import (
	"sync"

	"github.com/annel0/voxel-arena/internal/physics"
)

// InputState - ввод игрока за один тик
type InputState struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Jump    bool `json:"jump"` // Импульс: учитывается один раз
	Fire    bool `json:"fire"` // Импульс: учитывается один раз

	LookYaw   float64 `json:"look_yaw"`   // Смещение рыскания, рад
	LookPitch float64 `json:"look_pitch"` // Смещение тангажа, рад
}

// Move возвращает флаги движения для интегратора
func (in InputState) Move() physics.MoveInput {
	return physics.MoveInput{Forward: in.Forward, Back: in.Back, Left: in.Left, Right: in.Right}
}

// InputBuffer накапливает ввод между тиками. Флаги движения удерживаются,
// импульсы и смещения взгляда расходуются в Consume.
type InputBuffer struct {
	mu      sync.Mutex
	pending InputState
	pause   *bool
}

// NewInputBuffer создаёт пустой буфер ввода
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{}
}

// Apply принимает очередное состояние от слоя ввода
func (b *InputBuffer) Apply(in InputState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending.Forward = in.Forward
	b.pending.Back = in.Back
	b.pending.Left = in.Left
	b.pending.Right = in.Right
	b.pending.Jump = b.pending.Jump || in.Jump
	b.pending.Fire = b.pending.Fire || in.Fire
	b.pending.LookYaw += in.LookYaw
	b.pending.LookPitch += in.LookPitch
}

// Consume возвращает ввод для тика и сбрасывает импульсы
func (b *InputBuffer) Consume() InputState {
	b.mu.Lock()
	defer b.mu.Unlock()

	in := b.pending
	b.pending.Jump = false
	b.pending.Fire = false
	b.pending.LookYaw = 0
	b.pending.LookPitch = 0
	return in
}

// RequestPause ставит запрос паузы, применяемый циклом симуляции
func (b *InputBuffer) RequestPause(paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pause = &paused
}

// TakePause возвращает и сбрасывает последний запрос паузы
func (b *InputBuffer) TakePause() (paused bool, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pause == nil {
		return false, false
	}
	paused = *b.pause
	b.pause = nil
	return paused, true
}
