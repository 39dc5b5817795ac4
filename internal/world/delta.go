package world

import (
	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/annel0/voxel-arena/internal/world/block"
)

// ChangeType описывает вид изменения ячейки
type ChangeType uint8

const (
	ChangeAdd ChangeType = iota + 1
	ChangeRemove
)

// String возвращает строковое представление изменения
func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Delta содержит одно изменение занятости ячейки для внешнего рендерера
type Delta struct {
	Cell   vec.Vec3        `json:"cell"`
	Type   block.BlockType `json:"type"`
	Change ChangeType      `json:"change"`
}
