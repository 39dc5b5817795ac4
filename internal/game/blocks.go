package game

import (
	"sort"
	"sync"

	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/annel0/voxel-arena/internal/world"
	"github.com/annel0/voxel-arena/internal/world/block"
)

// defaultJournalSize - сколько последних изменений хранит зеркало
const defaultJournalSize = 4096

// BlockView - занятая ячейка для внешнего рендерера
type BlockView struct {
	Cell vec.Vec3        `json:"cell"`
	Type block.BlockType `json:"type"`
}

// BlockChanges - ответ на запрос изменений с номера since
type BlockChanges struct {
	Seq    uint64        `json:"seq"`    // Номер последнего изменения
	Resync bool          `json:"resync"` // Журнал обрезан, нужна полная выгрузка
	Deltas []world.Delta `json:"deltas"`
}

// BlockMirror - потокобезопасная копия хранилища для читателей вне цикла симуляции.
// Наполняется изменениями из DrainDeltas после каждого тика.
type BlockMirror struct {
	mu      sync.RWMutex
	cells   map[vec.Vec3]block.BlockType
	journal []world.Delta
	seq     uint64 // Номер последнего изменения в journal
	limit   int
}

// NewBlockMirror создаёт пустое зеркало с журналом на limit изменений
func NewBlockMirror(limit int) *BlockMirror {
	if limit <= 0 {
		limit = defaultJournalSize
	}
	return &BlockMirror{cells: make(map[vec.Vec3]block.BlockType), limit: limit}
}

// Apply применяет изменения тика в порядке их появления
func (m *BlockMirror) Apply(deltas []world.Delta) {
	if len(deltas) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range deltas {
		switch d.Change {
		case world.ChangeAdd:
			m.cells[d.Cell] = d.Type
		case world.ChangeRemove:
			delete(m.cells, d.Cell)
		}
	}
	m.journal = append(m.journal, deltas...)
	m.seq += uint64(len(deltas))
	if over := len(m.journal) - m.limit; over > 0 {
		m.journal = append(m.journal[:0:0], m.journal[over:]...)
	}
}

// Seq возвращает номер последнего изменения
func (m *BlockMirror) Seq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Len возвращает число занятых ячеек
func (m *BlockMirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cells)
}

// All возвращает все занятые ячейки в стабильном порядке (y, z, x) и номер изменения
func (m *BlockMirror) All() ([]BlockView, uint64) {
	m.mu.RLock()
	out := make([]BlockView, 0, len(m.cells))
	for cell, t := range m.cells {
		out = append(out, BlockView{Cell: cell, Type: t})
	}
	seq := m.seq
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Cell, out[j].Cell
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out, seq
}

// Since возвращает изменения после номера since.
// Если часть из них уже вытеснена из журнала, выставляется Resync.
func (m *BlockMirror) Since(since uint64) BlockChanges {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := BlockChanges{Seq: m.seq}
	if since >= m.seq {
		return res
	}
	oldest := m.seq - uint64(len(m.journal))
	if since < oldest {
		res.Resync = true
		return res
	}
	tail := m.journal[since-oldest:]
	res.Deltas = make([]world.Delta, len(tail))
	copy(res.Deltas, tail)
	return res
}
