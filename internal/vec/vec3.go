package vec

import "math"

// Vec3 представляет целочисленные координаты ячейки воксельной решётки
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// CellOf возвращает ячейку, содержащую точку (округление к минус бесконечности)
func CellOf(x, y, z float64) Vec3 {
	return Vec3{
		X: int(math.Floor(x)),
		Y: int(math.Floor(y)),
		Z: int(math.Floor(z)),
	}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Center возвращает центр ячейки в мировых координатах
func (v Vec3) Center() Vec3Float {
	return Vec3Float{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5, Z: float64(v.Z) + 0.5}
}
