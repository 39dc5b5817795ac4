package block

// BlockType представляет тег типа блока, хранящийся в ячейке
type BlockType uint8

// Константы типов блоков.
// Air (0) означает пустую ячейку и в хранилище никогда не записывается.
const (
	Air BlockType = iota
	Grass
	Dirt
	Stone
	Wood
	Leaves
	Sand
)

// Info описывает свойства типа блока
type Info struct {
	Name       string // Имя для снапшотов и логов
	Vegetation bool   // Ствол или крона: не считается поверхностью для наземных сущностей
}

var registry = map[BlockType]Info{
	Air:    {Name: "air"},
	Grass:  {Name: "grass"},
	Dirt:   {Name: "dirt"},
	Stone:  {Name: "stone"},
	Wood:   {Name: "wood", Vegetation: true},
	Leaves: {Name: "leaves", Vegetation: true},
	Sand:   {Name: "sand"},
}

// Get возвращает описание для указанного типа
func Get(t BlockType) (Info, bool) {
	info, exists := registry[t]
	return info, exists
}

// IsValid проверяет, является ли тип допустимым непустым блоком
func IsValid(t BlockType) bool {
	_, exists := registry[t]
	return exists && t != Air
}

// IsVegetation сообщает, относится ли тип к деревьям
func IsVegetation(t BlockType) bool {
	return registry[t].Vegetation
}

// String возвращает имя типа блока
func (t BlockType) String() string {
	if info, ok := registry[t]; ok {
		return info.Name
	}
	return "unknown"
}
