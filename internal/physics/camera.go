package physics

import (
	"math"

	"github.com/annel0/voxel-arena/internal/vec"
)

// maxPitch ограничивает наклон камеры, чтобы не переворачиваться через зенит
const maxPitch = math.Pi/2 - 0.01

// Camera хранит ориентацию взгляда игрока (в радианах).
// При Yaw = 0 и Pitch = 0 взгляд направлен вдоль -Z.
type Camera struct {
	Yaw   float64
	Pitch float64
}

// MoveInput - четыре флага движения от слоя ввода
type MoveInput struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
}

// ApplyLook поворачивает камеру на смещение взгляда
func (c *Camera) ApplyLook(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch += dPitch
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	} else if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Forward возвращает единичный вектор взгляда (используется как направление выстрела)
func (c Camera) Forward() vec.Vec3Float {
	cp := math.Cos(c.Pitch)
	return vec.Vec3Float{
		X: -math.Sin(c.Yaw) * cp,
		Y: math.Sin(c.Pitch),
		Z: -math.Cos(c.Yaw) * cp,
	}
}

// FlatForward возвращает направление взгляда в горизонтальной плоскости
func (c Camera) FlatForward() vec.Vec3Float {
	return c.Forward().Flat().Normalized()
}

// Right возвращает горизонтальный вектор "вправо"
func (c Camera) Right() vec.Vec3Float {
	return vec.Vec3Float{X: math.Cos(c.Yaw), Z: -math.Sin(c.Yaw)}
}

// WishDir переводит флаги ввода в желаемое горизонтальное направление (не нормализовано)
func (c Camera) WishDir(in MoveInput) vec.Vec3Float {
	dir := vec.Vec3Float{}
	forward := c.FlatForward()
	right := c.Right()

	if in.Forward {
		dir = dir.Add(forward)
	}
	if in.Back {
		dir = dir.Sub(forward)
	}
	if in.Right {
		dir = dir.Add(right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	return dir
}
