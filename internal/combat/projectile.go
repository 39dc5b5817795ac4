package combat

import "github.com/annel0/voxel-arena/internal/vec"

// Owner определяет, чей снаряд
type Owner uint8

const (
	OwnerPlayer Owner = iota
	OwnerMonster
)

// String возвращает строковое представление владельца
func (o Owner) String() string {
	if o == OwnerMonster {
		return "monster"
	}
	return "player"
}

// Projectile - снаряд, летящий по прямой с постоянной скоростью
type Projectile struct {
	ID       uint64
	Owner    Owner
	Origin   vec.Vec3Float
	Position vec.Vec3Float
	Velocity vec.Vec3Float
	Damage   int

	removed bool
}

// Travelled возвращает расстояние от точки выпуска
func (p *Projectile) Travelled() float64 {
	return p.Position.DistanceTo(p.Origin)
}

// ProjectileView - неизменяемая копия снаряда для снимков
type ProjectileView struct {
	ID       uint64        `json:"id"`
	Owner    string        `json:"owner"`
	Position vec.Vec3Float `json:"position"`
	Velocity vec.Vec3Float `json:"velocity"`
}
