package entity

import (
	"fmt"

	fsm "github.com/annel0/voxel-arena/internal/entity"
	"github.com/annel0/voxel-arena/internal/vec"
)

// Death описывает сущность, погибшую в текущем тике
type Death struct {
	ID       uint64
	Kind     Kind
	Position vec.Vec3Float // Позиция в момент смерти
	Loot     *Entity       // Выпавший предмет или nil
}

// respawn - ожидающее возрождение сущности
type respawn struct {
	kind      Kind
	home      vec.Vec3Float
	remaining float64
}

// EntityManager хранит сущности в арене с устойчивыми ID.
// Удаление двухфазное: пометка в течение тика и одно сжатие в конце.
// Не потокобезопасен: принадлежит циклу симуляции.
type EntityManager struct {
	entities     []*Entity // Арена в порядке вставки
	byID         map[uint64]*Entity
	presets      map[Kind]Preset
	rng          fsm.RandSource
	nextEntityID uint64
	respawnDelay float64
	pending      []respawn
	bossTotal    int
}

// NewEntityManager создаёт менеджер со стандартными параметрами видов
func NewEntityManager(rng fsm.RandSource, respawnDelay float64) *EntityManager {
	em := &EntityManager{
		byID:         make(map[uint64]*Entity),
		presets:      make(map[Kind]Preset),
		rng:          rng,
		nextEntityID: 1,
		respawnDelay: respawnDelay,
	}
	for _, k := range []Kind{KindZombie, KindFireDragon, KindFireJellyfish, KindTreasureBox, KindPickup} {
		em.presets[k] = DefaultPreset(k)
	}
	return em
}

// SetPreset переопределяет параметры вида для последующих появлений
func (em *EntityManager) SetPreset(p Preset) {
	em.presets[p.Kind] = p
}

// Preset возвращает параметры вида
func (em *EntityManager) Preset(kind Kind) Preset {
	return em.presets[kind]
}

// Spawn создаёт сущность вида kind в точке home
func (em *EntityManager) Spawn(kind Kind, home vec.Vec3Float) *Entity {
	e := NewEntity(em.nextEntityID, em.presets[kind], home, em.rng)
	em.nextEntityID++

	em.entities = append(em.entities, e)
	em.byID[e.ID] = e
	if kind.IsBoss() {
		em.bossTotal++
	}
	return e
}

// Get возвращает сущность по ID
func (em *EntityManager) Get(id uint64) (*Entity, bool) {
	e, ok := em.byID[id]
	return e, ok
}

// All возвращает арену. Срез действителен до следующего Compact.
func (em *EntityManager) All() []*Entity {
	return em.entities
}

// Len возвращает количество сущностей в арене
func (em *EntityManager) Len() int {
	return len(em.entities)
}

// Targets возвращает живые уязвимые сущности в порядке вставки
func (em *EntityManager) Targets() []*Entity {
	result := make([]*Entity, 0, len(em.entities))
	for _, e := range em.entities {
		if e.Damageable() && e.alive && !e.removed {
			result = append(result, e)
		}
	}
	return result
}

// BossesAlive возвращает количество живых боссов
func (em *EntityManager) BossesAlive() int {
	n := 0
	for _, e := range em.entities {
		if e.Kind.IsBoss() && e.alive {
			n++
		}
	}
	return n
}

// BossTotal возвращает количество когда-либо появившихся боссов
func (em *EntityManager) BossTotal() int {
	return em.bossTotal
}

// Update обновляет все сущности и возвращает их действия
func (em *EntityManager) Update(env Env, delta float64) []Action {
	var actions []Action
	// Сущности, появившиеся во время обхода, обновляются со следующего тика
	n := len(em.entities)
	for i := 0; i < n; i++ {
		if a := UpdateEntity(em.entities[i], env, delta); a.Kind != ActionNone {
			actions = append(actions, a)
		}
	}
	return actions
}

// Reap выполняет однократную обработку смерти: помечает погибших к удалению,
// планирует возрождение и выбрасывает добычу боссов. Добыча падает на
// поверхность колонны под местом гибели, если ground её находит.
func (em *EntityManager) Reap(ground GroundFunc) []Death {
	var deaths []Death
	n := len(em.entities)
	for i := 0; i < n; i++ {
		e := em.entities[i]
		if e.alive || e.reaped || !e.Damageable() {
			continue
		}
		e.reaped = true
		e.markRemoved()

		d := Death{ID: e.ID, Kind: e.Kind, Position: e.Position}
		switch {
		case e.Kind.IsBoss():
			d.Loot = em.Spawn(KindPickup, dropPoint(e.Position, ground))
		case em.respawnDelay > 0:
			em.pending = append(em.pending, respawn{kind: e.Kind, home: e.Home, remaining: em.respawnDelay})
		}
		deaths = append(deaths, d)
	}
	return deaths
}

// dropPoint опускает точку на поверхность колонны
func dropPoint(p vec.Vec3Float, ground GroundFunc) vec.Vec3Float {
	if ground == nil {
		return p
	}
	if y, ok := ground(p.X, p.Z); ok {
		p.Y = y
	}
	return p
}

// Compact удаляет помеченные сущности и возвращает их количество
func (em *EntityManager) Compact() int {
	kept := em.entities[:0]
	removed := 0
	for _, e := range em.entities {
		if e.removed {
			delete(em.byID, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Обнуляем хвост, чтобы не удерживать удалённые сущности
	for i := len(kept); i < len(em.entities); i++ {
		em.entities[i] = nil
	}
	em.entities = kept
	return removed
}

// TickRespawns отсчитывает ожидающие возрождения и создаёт новые экземпляры
func (em *EntityManager) TickRespawns(delta float64) []*Entity {
	var spawned []*Entity
	kept := em.pending[:0]
	for _, r := range em.pending {
		r.remaining -= delta
		if r.remaining <= 0 {
			spawned = append(spawned, em.Spawn(r.kind, r.home))
			continue
		}
		kept = append(kept, r)
	}
	em.pending = kept
	return spawned
}

// PendingRespawns возвращает количество ожидающих возрождений
func (em *EntityManager) PendingRespawns() int {
	return len(em.pending)
}

// GetStats возвращает статистику по сущностям
func (em *EntityManager) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})
	stats["total_entities"] = len(em.entities)

	alive := 0
	kinds := make(map[string]int)
	for _, e := range em.entities {
		if e.alive && !e.removed {
			alive++
			kinds[e.Kind.String()]++
		}
	}
	stats["active_entities"] = alive
	stats["entity_kinds"] = kinds
	stats["pending_respawns"] = len(em.pending)
	stats["bosses_alive"] = fmt.Sprintf("%d/%d", em.BossesAlive(), em.bossTotal)

	return stats
}
