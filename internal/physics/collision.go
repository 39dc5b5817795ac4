package physics

import (
	"math"

	"github.com/annel0/voxel-arena/internal/vec"
)

// Occupancy - минимальный интерфейс воксельного хранилища, нужный для коллизий
type Occupancy interface {
	Occupied(x, y, z int) bool
}

// BoxCollider представляет прямоугольный коллайдер тела.
// Коробка центрирована по горизонтали относительно позиции и растёт вверх от position.y.
type BoxCollider struct {
	Width  float64 // Ширина по X и Z в блоках
	Height float64 // Высота в блоках
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(width, height float64) BoxCollider {
	return BoxCollider{
		Width:  width,
		Height: height,
	}
}

// CellRange возвращает включительный диапазон ячеек, покрываемых коробкой в позиции (x, y, z)
func (bc BoxCollider) CellRange(x, y, z float64) (min, max vec.Vec3) {
	half := bc.Width / 2
	min = vec.Vec3{
		X: int(math.Floor(x - half)),
		Y: int(math.Floor(y)),
		Z: int(math.Floor(z - half)),
	}
	max = vec.Vec3{
		X: int(math.Floor(x + half)),
		Y: int(math.Floor(y + bc.Height)),
		Z: int(math.Floor(z + half)),
	}
	return min, max
}

// CheckCollision проверяет, пересекает ли коробка width x height в позиции (x, y, z) хотя бы одну занятую ячейку.
// Полный перебор диапазона: объём проверки мал (несколько ячеек).
func CheckCollision(occ Occupancy, x, y, z, width, height float64) bool {
	return NewBoxCollider(width, height).Collides(occ, x, y, z)
}

// Collides проверяет коллизию коллайдера в указанной позиции
func (bc BoxCollider) Collides(occ Occupancy, x, y, z float64) bool {
	min, max := bc.CellRange(x, y, z)
	for cx := min.X; cx <= max.X; cx++ {
		for cy := min.Y; cy <= max.Y; cy++ {
			for cz := min.Z; cz <= max.Z; cz++ {
				if occ.Occupied(cx, cy, cz) {
					return true
				}
			}
		}
	}
	return false
}
