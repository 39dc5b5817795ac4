package entity

import (
	fsm "github.com/annel0/voxel-arena/internal/entity"
	"github.com/annel0/voxel-arena/internal/vec"
)

// Entity представляет сущность мира. Вариант определяется полем Kind,
// поведение выбирается в UpdateEntity.
type Entity struct {
	ID       uint64        // Уникальный идентификатор сущности
	Kind     Kind          // Вариант сущности
	Position vec.Vec3Float // Позиция (ноги для наземных, центр для летающих)
	Home     vec.Vec3Float // Точка появления, центр патруля

	preset Preset
	brain  *fsm.Machine // nil для статических сущностей

	health int
	alive  bool
	opened bool // Сундук открыт или предмет подобран

	removed bool // Помечена к удалению при следующем сжатии
	reaped  bool // Обработка смерти уже выполнена
}

// NewEntity создаёт сущность с параметрами preset.
// Автомат поведения получает rng и центр патруля home.
func NewEntity(id uint64, preset Preset, home vec.Vec3Float, rng fsm.RandSource) *Entity {
	e := &Entity{
		ID:       id,
		Kind:     preset.Kind,
		Position: home,
		Home:     home,
		preset:   preset,
		health:   preset.MaxHealth,
		alive:    true,
	}

	if !preset.Kind.IsStatic() {
		e.brain = fsm.NewMachine(preset.Brain, rng, home)
		if preset.Brain.Mode == fsm.ModePatrol {
			// Патрульные появляются сразу на орбите
			e.Position = home.Add(vec.Vec3Float{X: preset.Brain.OrbitRadius, Y: preset.Brain.Altitude})
		}
	}
	return e
}

// Preset возвращает параметры вида
func (e *Entity) Preset() Preset {
	return e.preset
}

// Health возвращает текущее здоровье
func (e *Entity) Health() int {
	return e.health
}

// MaxHealth возвращает максимальное здоровье
func (e *Entity) MaxHealth() int {
	return e.preset.MaxHealth
}

// Alive сообщает, жива ли сущность
func (e *Entity) Alive() bool {
	return e.alive
}

// SetHealth устанавливает здоровье в пределах [0, MaxHealth].
// Достижение нуля переводит сущность в мёртвое состояние один раз и навсегда.
func (e *Entity) SetHealth(hp int) {
	if !e.alive {
		return
	}
	if hp < 0 {
		hp = 0
	}
	if hp > e.preset.MaxHealth {
		hp = e.preset.MaxHealth
	}
	e.health = hp
	if hp == 0 {
		e.alive = false
	}
}

// Damageable сообщает, может ли сущность получать урон
func (e *Entity) Damageable() bool {
	return e.brain != nil
}

// Center возвращает точку, по которой считаются попадания
func (e *Entity) Center() vec.Vec3Float {
	if e.brain != nil && e.preset.Brain.Mode == fsm.ModePatrol {
		return e.Position
	}
	return e.Position.Add(vec.Vec3Float{Y: e.preset.Height / 2})
}

// Opened сообщает, что сундук открыт или предмет подобран
func (e *Entity) Opened() bool {
	return e.opened
}

// Removed сообщает, что сущность помечена к удалению
func (e *Entity) Removed() bool {
	return e.removed
}

// markRemoved помечает сущность к удалению при следующем сжатии
func (e *Entity) markRemoved() {
	e.removed = true
}

// Brain возвращает автомат поведения или nil
func (e *Entity) Brain() *fsm.Machine {
	return e.brain
}

// StateName возвращает имя текущего состояния для снимков
func (e *Entity) StateName() string {
	switch {
	case e.brain != nil && !e.alive:
		return "dead"
	case e.brain != nil:
		return e.brain.State().String()
	case e.opened:
		return "opened"
	default:
		return "closed"
	}
}
