package physics

import (
	"math"

	"github.com/annel0/voxel-arena/internal/vec"
)

// Integrator продвигает управляемое тело: гравитация + поосевое разрешение коллизий
type Integrator struct {
	Gravity   float64 // Ускорение свободного падения, блоков/с²
	MoveSpeed float64 // Горизонтальная скорость, блоков/с
	JumpSpeed float64 // Начальная скорость прыжка, блоков/с
}

// StepResult описывает, что произошло с телом за шаг
type StepResult struct {
	BlockedX bool // Движение по X отклонено
	BlockedZ bool // Движение по Z отклонено
	BlockedY bool // Движение по Y отклонено
	Landed   bool // Тело приземлилось в этом шаге
}

// NewIntegrator создаёт интегратор с указанными параметрами
func NewIntegrator(gravity, moveSpeed, jumpSpeed float64) *Integrator {
	return &Integrator{
		Gravity:   gravity,
		MoveSpeed: moveSpeed,
		JumpSpeed: jumpSpeed,
	}
}

// Jump задаёт скорость прыжка, только если тело стоит на земле.
// Возвращает true, если прыжок выполнен.
func (in *Integrator) Jump(body *Body) bool {
	if !body.Grounded {
		return false
	}
	body.VelocityY = in.JumpSpeed
	return true
}

// Integrate продвигает тело на delta секунд.
// wish - желаемое горизонтальное направление (вертикальная компонента отбрасывается).
//
// Оси разрешаются по отдельности в порядке X, Z, Y: это даёт скольжение вдоль стен,
// но при больших delta тело может пройти сквозь тонкую (в один блок) стену.
func (in *Integrator) Integrate(body *Body, occ Occupancy, wish vec.Vec3Float, delta float64) StepResult {
	var res StepResult

	// 1. Гравитация
	body.VelocityY -= in.Gravity * delta

	// 2. Горизонтальное смещение; нулевой ввод - нет движения
	move := wish.Flat().Normalized().Mul(in.MoveSpeed * delta)

	// 3. Кандидат новой позиции
	pos := body.Position
	candidate := pos.Add(move)
	candidate.Y = pos.Y + body.VelocityY*delta

	c := body.Collider

	// 4. X, затем Z, затем Y; остальные оси берутся уже обновлёнными
	if move.X != 0 {
		if c.Collides(occ, candidate.X, pos.Y, pos.Z) {
			res.BlockedX = true
		} else {
			pos.X = candidate.X
		}
	}
	if move.Z != 0 {
		if c.Collides(occ, pos.X, pos.Y, candidate.Z) {
			res.BlockedZ = true
		} else {
			pos.Z = candidate.Z
		}
	}

	// 5. Вертикаль
	if c.Collides(occ, pos.X, candidate.Y, pos.Z) {
		res.BlockedY = true
		if body.VelocityY < 0 {
			if !body.Grounded {
				res.Landed = true
			}
			body.Grounded = true
			body.VelocityY = 0
			// Прижимаем к целой высоте, чтобы тело не утопало в блоке
			pos.Y = math.Floor(pos.Y)
		} else {
			// Удар головой о потолок
			body.VelocityY = 0
		}
	} else {
		pos.Y = candidate.Y
		body.Grounded = false
	}

	body.Position = pos
	return res
}
