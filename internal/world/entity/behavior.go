package entity

import (
	"github.com/annel0/voxel-arena/internal/vec"
)

// ActionKind - тип действия, выпущенного сущностью за тик
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMelee
	ActionFireball
	ActionShock
	ActionUnlock  // Сундук открыт
	ActionCollect // Предмет подобран
)

// String возвращает строковое представление действия
func (a ActionKind) String() string {
	switch a {
	case ActionMelee:
		return "melee"
	case ActionFireball:
		return "fireball"
	case ActionShock:
		return "shock"
	case ActionUnlock:
		return "unlock"
	case ActionCollect:
		return "collect"
	default:
		return "none"
	}
}

// Action описывает побочный эффект, который применяет драйвер кадра
type Action struct {
	Kind      ActionKind
	EntityID  uint64
	Origin    vec.Vec3Float // Точка выпуска снаряда
	Direction vec.Vec3Float // Нормализованное направление снаряда
	Speed     float64
	Damage    int
	Heal      int
}

// GroundFunc возвращает высоту поверхности в колонке (x, z).
// ok=false, если под колонкой пустота.
type GroundFunc func(x, z float64) (y float64, ok bool)

// Env - то, что сущность видит о мире в текущем тике
type Env struct {
	Player vec.Vec3Float // Позиция ног игрока
	Aim    vec.Vec3Float // Точка прицеливания по игроку
	Ground GroundFunc    // nil - высота наземных сущностей не меняется
}

// UpdateEntity продвигает сущность на delta секунд и возвращает её действие
func UpdateEntity(e *Entity, env Env, delta float64) Action {
	if e.removed || !e.alive {
		return Action{}
	}

	switch e.Kind {
	case KindZombie:
		return updateWalker(e, env, delta)
	case KindFireDragon, KindFireJellyfish:
		return updateFlyer(e, env, delta)
	case KindTreasureBox:
		return updateTreasure(e, env)
	case KindPickup:
		return updatePickup(e, env)
	}
	return Action{}
}

// updateWalker двигает наземную сущность и прижимает её к поверхности
func updateWalker(e *Entity, env Env, delta float64) Action {
	intent := e.brain.Update(e.Position, env.Player, delta)

	next := e.Position.Add(intent.Move)
	if env.Ground != nil && !intent.Move.IsZero() {
		y, ok := env.Ground(next.X, next.Z)
		if !ok {
			// Край острова: дальше не идём
			next = e.Position
		} else {
			next.Y = y
		}
	}
	e.Position = next

	if !intent.Attack {
		return Action{}
	}
	return e.attack(env)
}

// updateFlyer двигает летающую сущность без проверки коллизий
func updateFlyer(e *Entity, env Env, delta float64) Action {
	intent := e.brain.Update(e.Position, env.Player, delta)
	e.Position = e.Position.Add(intent.Move)

	if !intent.Attack {
		return Action{}
	}
	return e.attack(env)
}

// attack формирует действие атаки по параметрам вида
func (e *Entity) attack(env Env) Action {
	a := Action{EntityID: e.ID, Damage: e.preset.Damage}
	switch e.preset.Attack {
	case AttackMelee:
		a.Kind = ActionMelee
	case AttackShock:
		a.Kind = ActionShock
	case AttackFireball:
		origin := e.Center()
		dir := env.Aim.Sub(origin).Normalized()
		if dir.IsZero() {
			return Action{}
		}
		a.Kind = ActionFireball
		a.Origin = origin
		a.Direction = dir
		a.Speed = e.preset.ProjectileSpeed
	default:
		return Action{}
	}
	return a
}

// updateTreasure открывает сундук, когда игрок рядом
func updateTreasure(e *Entity, env Env) Action {
	if e.opened || e.Position.DistanceTo(env.Player) > e.preset.InteractRadius {
		return Action{}
	}
	e.opened = true
	return Action{Kind: ActionUnlock, EntityID: e.ID, Heal: e.preset.Heal}
}

// updatePickup подбирает предмет, когда игрок рядом
func updatePickup(e *Entity, env Env) Action {
	if e.opened || e.Position.DistanceTo(env.Player) > e.preset.InteractRadius {
		return Action{}
	}
	e.opened = true
	e.markRemoved()
	return Action{Kind: ActionCollect, EntityID: e.ID, Heal: e.preset.Heal}
}
