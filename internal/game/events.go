package game

import "github.com/annel0/voxel-arena/internal/vec"

// EventType - тип события, выпущенного симуляцией
type EventType string

const (
	EventPlayerDamaged    EventType = "player_damaged"
	EventPlayerHealed     EventType = "player_healed"
	EventEntityHit        EventType = "entity_hit"
	EventEntityDied       EventType = "entity_died"
	EventPickupCollected  EventType = "pickup_collected"
	EventTreasureUnlocked EventType = "treasure_unlocked"
	EventVictory          EventType = "victory"
	EventDefeat           EventType = "defeat"
)

// Event - внешний сигнал тика. Ядро только возвращает события,
// доставкой занимается внешний слой.
type Event struct {
	Type     EventType     `json:"type"`
	Tick     uint64        `json:"tick"`
	EntityID uint64        `json:"entity_id,omitempty"`
	Kind     string        `json:"kind,omitempty"`   // Вид сущности
	Source   string        `json:"source,omitempty"` // Источник урона
	Amount   int           `json:"amount,omitempty"`
	Health   int           `json:"health"` // Здоровье после события
	Position vec.Vec3Float `json:"position"`
}
