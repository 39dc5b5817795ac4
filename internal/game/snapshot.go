package game

import (
	"github.com/annel0/voxel-arena/internal/combat"
	"github.com/annel0/voxel-arena/internal/vec"
)

// GameState - глобальное состояние партии
type GameState uint8

const (
	StatePlaying GameState = iota
	StatePaused
	StateVictory
	StateDefeat
)

// String возвращает строковое представление состояния
func (s GameState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Terminal сообщает, что партия окончена
func (s GameState) Terminal() bool {
	return s == StateVictory || s == StateDefeat
}

// PlayerView - состояние игрока в снимке
type PlayerView struct {
	Position  vec.Vec3Float `json:"position"`
	Health    int           `json:"health"`
	MaxHealth int           `json:"max_health"`
	Grounded  bool          `json:"grounded"`
	Yaw       float64       `json:"yaw"`
	Pitch     float64       `json:"pitch"`
	Cooldown  float64       `json:"cooldown"`
}

// EntityView - состояние сущности в снимке
type EntityView struct {
	ID        uint64        `json:"id"`
	Kind      string        `json:"kind"`
	Position  vec.Vec3Float `json:"position"`
	Health    int           `json:"health"`
	MaxHealth int           `json:"max_health"`
	Alive     bool          `json:"alive"`
	State     string        `json:"state"`
}

// Snapshot - неизменяемый снимок мира после тика.
// Публикуется для HTTP и шины событий; ядро его больше не трогает.
type Snapshot struct {
	Tick        uint64                  `json:"tick"`
	State       string                  `json:"state"`
	Player      PlayerView              `json:"player"`
	Entities    []EntityView            `json:"entities"`
	Projectiles []combat.ProjectileView `json:"projectiles"`
	Blocks      int                     `json:"blocks"`
	BossesAlive int                     `json:"bosses_alive"`
}
