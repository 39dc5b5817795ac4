package world

import (
	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/annel0/voxel-arena/internal/world/block"
)

// VoxelStore хранит разреженное множество занятых ячеек мира.
// Доступ только из горутины игрового цикла: блокировки не нужны.
type VoxelStore struct {
	cells   map[vec.Vec3]block.BlockType
	journal []Delta // Изменения с момента последнего DrainDeltas
}

// NewVoxelStore создаёт пустое хранилище
func NewVoxelStore() *VoxelStore {
	return &VoxelStore{
		cells: make(map[vec.Vec3]block.BlockType, 4096),
	}
}

// Insert записывает блок в ячейку. Если ячейка уже занята, ничего не делает (первая запись побеждает).
// Возвращает true, если ячейка действительно изменилась.
func (s *VoxelStore) Insert(x, y, z int, t block.BlockType) bool {
	if t == block.Air {
		return false
	}
	key := vec.Vec3{X: x, Y: y, Z: z}
	if _, exists := s.cells[key]; exists {
		return false
	}
	s.cells[key] = t
	s.journal = append(s.journal, Delta{Cell: key, Type: t, Change: ChangeAdd})
	return true
}

// Remove освобождает ячейку. Отсутствующая ячейка - не ошибка.
func (s *VoxelStore) Remove(x, y, z int) bool {
	key := vec.Vec3{X: x, Y: y, Z: z}
	t, exists := s.cells[key]
	if !exists {
		return false
	}
	delete(s.cells, key)
	s.journal = append(s.journal, Delta{Cell: key, Type: t, Change: ChangeRemove})
	return true
}

// Get возвращает тип блока в ячейке
func (s *VoxelStore) Get(x, y, z int) (block.BlockType, bool) {
	t, exists := s.cells[vec.Vec3{X: x, Y: y, Z: z}]
	return t, exists
}

// GetAt возвращает тип блока в ячейке, содержащей точку
func (s *VoxelStore) GetAt(x, y, z float64) (block.BlockType, bool) {
	t, exists := s.cells[vec.CellOf(x, y, z)]
	return t, exists
}

// Occupied проверяет, занята ли ячейка
func (s *VoxelStore) Occupied(x, y, z int) bool {
	_, exists := s.cells[vec.Vec3{X: x, Y: y, Z: z}]
	return exists
}

// OccupiedAt проверяет, занята ли ячейка, содержащая точку
func (s *VoxelStore) OccupiedAt(x, y, z float64) bool {
	_, exists := s.cells[vec.CellOf(x, y, z)]
	return exists
}

// Len возвращает количество занятых ячеек
func (s *VoxelStore) Len() int {
	return len(s.cells)
}

// CountInBox возвращает количество занятых ячеек в диапазоне [min, max] включительно
func (s *VoxelStore) CountInBox(min, max vec.Vec3) int {
	count := 0
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				if s.Occupied(x, y, z) {
					count++
				}
			}
		}
	}
	return count
}

// Each вызывает fn для каждой занятой ячейки.
// Итерация идёт по копии, поэтому fn может безопасно менять хранилище.
func (s *VoxelStore) Each(fn func(cell vec.Vec3, t block.BlockType)) {
	snapshot := make(map[vec.Vec3]block.BlockType, len(s.cells))
	for k, v := range s.cells {
		snapshot[k] = v
	}
	for k, v := range snapshot {
		fn(k, v)
	}
}

// DrainDeltas возвращает накопленные изменения в порядке их появления и очищает журнал
func (s *VoxelStore) DrainDeltas() []Delta {
	if len(s.journal) == 0 {
		return nil
	}
	out := s.journal
	s.journal = nil
	return out
}
