package physics

import (
	"github.com/annel0/voxel-arena/internal/vec"
)

// Body - физическое тело, проверяемое на столкновения с миром
type Body struct {
	Position  vec.Vec3Float // Основание тела (центр нижней грани)
	VelocityY float64       // Вертикальная скорость
	Grounded  bool          // Следующее движение вниз заблокировано
	Collider  BoxCollider
}

// NewBody создаёт тело в указанной позиции
func NewBody(pos vec.Vec3Float, width, height float64) *Body {
	return &Body{
		Position: pos,
		Collider: NewBoxCollider(width, height),
	}
}

// Eye возвращает точку глаз на высоте eyeRatio от роста тела
func (b *Body) Eye(eyeRatio float64) vec.Vec3Float {
	return vec.Vec3Float{X: b.Position.X, Y: b.Position.Y + b.Collider.Height*eyeRatio, Z: b.Position.Z}
}

// Center возвращает центр коробки тела
func (b *Body) Center() vec.Vec3Float {
	return b.Eye(0.5)
}
