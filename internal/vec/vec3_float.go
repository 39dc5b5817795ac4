package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized возвращает нормализованный вектор.
// Для нулевого вектора возвращается нулевой вектор, а не NaN.
func (v Vec3Float) Normalized() Vec3Float {
	length := v.Length()
	if length == 0 {
		return Vec3Float{}
	}
	return Vec3Float{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// IsZero проверяет, является ли вектор нулевым
func (v Vec3Float) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}

// Flat возвращает вектор с обнулённой вертикальной компонентой
func (v Vec3Float) Flat() Vec3Float {
	return Vec3Float{X: v.X, Z: v.Z}
}

// Cell возвращает ячейку, в которой находится точка
func (v Vec3Float) Cell() Vec3 {
	return CellOf(v.X, v.Y, v.Z)
}
