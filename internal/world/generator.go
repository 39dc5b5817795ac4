package world

import (
	"math"
	"math/rand"

	"github.com/annel0/voxel-arena/internal/util"
	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/annel0/voxel-arena/internal/world/block"
)

// BiomeType представляет тип биома
type BiomeType int

const (
	BiomePlains BiomeType = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
)

// VoidY - высота, ниже которой тело считается упавшим в пустоту
const VoidY = -32.0

// WorldGenerator заполняет VoxelStore ландшафтом.
// Для ядра симуляции это внешний "наполнитель мира": он только вызывает Insert/Remove.
type WorldGenerator struct {
	Seed          int64   // Сид для генерации шума
	Radius        int     // Половина стороны квадрата генерации в блоках
	BaseHeight    int     // Минимальная высота поверхности
	HeightRange   int     // Разброс высоты поверхности
	NoiseScale    float64 // Масштаб основного шума (высота)
	BiomeScale    float64 // Масштаб шума биомов
	ForestDensity float64 // Плотность деревьев на равнинах (от 0 до 1)

	height *util.Noise
	biome  *util.Noise
}

// PopulateResult описывает результат генерации
type PopulateResult struct {
	Blocks int           // Количество вставленных блоков
	Spawn  vec.Vec3Float // Точка появления игрока
}

// NewWorldGenerator создаёт новый генератор мира
func NewWorldGenerator(seed int64, radius int) *WorldGenerator {
	if radius <= 0 {
		radius = 32
	}
	return &WorldGenerator{
		Seed:          seed,
		Radius:        radius,
		BaseHeight:    2,
		HeightRange:   8,
		NoiseScale:    0.05, // Настройка сглаженности ландшафта
		BiomeScale:    0.02, // Настройка размера биомов
		ForestDensity: 0.02,
		height:        util.NewNoise(seed),
		biome:         util.NewNoise(seed + 42),
	}
}

// SurfaceHeight возвращает высоту верхнего блока колонны (x, z)
func (wg *WorldGenerator) SurfaceHeight(x, z int) int {
	h := wg.height.Noise2D(float64(x)*wg.NoiseScale, float64(z)*wg.NoiseScale)
	return wg.BaseHeight + int(h*float64(wg.HeightRange))
}

// Populate генерирует ландшафт и расчищает площадку радиусом clearRadius вокруг точки появления
func (wg *WorldGenerator) Populate(store *VoxelStore, clearRadius int) PopulateResult {
	rng := rand.New(rand.NewSource(wg.Seed))
	inserted := 0

	for x := -wg.Radius; x <= wg.Radius; x++ {
		for z := -wg.Radius; z <= wg.Radius; z++ {
			top := wg.SurfaceHeight(x, z)
			biome := wg.getBiomeType(x, z, top)

			for y := 0; y <= top; y++ {
				if store.Insert(x, y, z, wg.getBlockForDepth(biome, top-y)) {
					inserted++
				}
			}

			// Деревья не ставим на краю и в зоне появления
			if abs(x) >= wg.Radius-2 || abs(z) >= wg.Radius-2 || x*x+z*z <= clearRadius*clearRadius {
				continue
			}
			chance := wg.ForestDensity
			switch biome {
			case BiomeForest:
				chance = 0.08
			case BiomeDesert, BiomeMountains:
				chance = 0
			}
			if chance > 0 && rng.Float64() < chance {
				inserted += wg.placeTree(store, x, top+1, z, rng)
			}
		}
	}

	spawnY := wg.SurfaceHeight(0, 0) + 1
	ClearArea(store, vec.Vec3{X: 0, Y: spawnY, Z: 0}, clearRadius, 8)

	return PopulateResult{
		Blocks: inserted,
		Spawn:  vec.Vec3Float{X: 0.5, Y: float64(spawnY), Z: 0.5},
	}
}

// ClearArea удаляет все блоки в цилиндре радиуса radius и высоты height над точкой floor
func ClearArea(store *VoxelStore, floor vec.Vec3, radius, height int) int {
	removed := 0
	for x := floor.X - radius; x <= floor.X+radius; x++ {
		for z := floor.Z - radius; z <= floor.Z+radius; z++ {
			dx, dz := x-floor.X, z-floor.Z
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			for y := floor.Y; y < floor.Y+height; y++ {
				if store.Remove(x, y, z) {
					removed++
				}
			}
		}
	}
	return removed
}

// placeTree ставит ствол и крону. Возвращает количество вставленных блоков.
func (wg *WorldGenerator) placeTree(store *VoxelStore, x, y, z int, rng *rand.Rand) int {
	trunk := 3 + rng.Intn(3) // Высота дерева 3-5 блоков
	placed := 0
	for i := 0; i < trunk; i++ {
		if store.Insert(x, y+i, z, block.Wood) {
			placed++
		}
	}
	crown := y + trunk
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			for dy := -1; dy <= 0; dy++ {
				if store.Insert(x+dx, crown+dy, z+dz, block.Leaves) {
					placed++
				}
			}
		}
	}
	if store.Insert(x, crown+1, z, block.Leaves) {
		placed++
	}
	return placed
}

// getBlockForDepth возвращает тип блока на глубине depth от поверхности
func (wg *WorldGenerator) getBlockForDepth(biome BiomeType, depth int) block.BlockType {
	switch biome {
	case BiomeDesert:
		if depth < 3 {
			return block.Sand
		}
		return block.Stone
	case BiomeMountains:
		return block.Stone
	}
	switch {
	case depth == 0:
		return block.Grass
	case depth < 3:
		return block.Dirt
	default:
		return block.Stone
	}
}

// getBiomeType определяет тип биома на основе значений шума
func (wg *WorldGenerator) getBiomeType(x, z, top int) BiomeType {
	if top >= wg.BaseHeight+wg.HeightRange-1 {
		return BiomeMountains
	}
	v := wg.biome.Noise2D(float64(x)*wg.BiomeScale, float64(z)*wg.BiomeScale)
	switch {
	case v < 0.3:
		return BiomeDesert
	case v > 0.7:
		return BiomeForest
	default:
		return BiomePlains
	}
}

// GroundLevel возвращает высоту первой свободной ячейки над верхним блоком колонны,
// просматривая колонну сверху вниз начиная с maxY. Стволы и кроны деревьев
// пропускаются. Если колонна пуста, возвращает VoidY.
func GroundLevel(store *VoxelStore, x, z float64, maxY int) float64 {
	cx, cz := int(math.Floor(x)), int(math.Floor(z))
	for y := maxY; y >= int(VoidY); y-- {
		if t, ok := store.Get(cx, y, cz); ok && !block.IsVegetation(t) {
			return float64(y + 1)
		}
	}
	return VoidY
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
