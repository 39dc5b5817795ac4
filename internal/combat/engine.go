// Package combat разрешает атаки игрока и монстров: перезарядку, полёт снарядов,
// попадания и изменение здоровья.
package combat

import (
	"github.com/annel0/voxel-arena/internal/vec"
)

// Target - уязвимая цель для снарядов игрока
type Target interface {
	Center() vec.Vec3Float
	Alive() bool
	Health() int
	SetHealth(hp int)
}

// Config содержит параметры боя игрока
type Config struct {
	AttackRate       float64 // Перезарядка атаки, с
	AttackRange      float64 // Снаряд удаляется дальше 2*AttackRange от точки выпуска
	ProjectileSpeed  float64
	ProjectileDamage int
	HitRadius        float64
	PlayerMaxHealth  int
}

// DefaultConfig возвращает стандартные параметры боя
func DefaultConfig() Config {
	return Config{
		AttackRate:       0.5,
		AttackRange:      20,
		ProjectileSpeed:  30,
		ProjectileDamage: 25,
		HitRadius:        1.5,
		PlayerMaxHealth:  100,
	}
}

// AttackResult - результат попытки атаки
type AttackResult struct {
	Fired        bool
	ProjectileID uint64
}

// DamageResult - результат нанесения урона
type DamageResult struct {
	Dealt  int  // Фактически снятое здоровье
	Killed bool // Цель погибла именно этим ударом
}

// HitEvent описывает попадание снаряда
type HitEvent struct {
	ProjectileID uint64
	Owner        Owner
	TargetIndex  int // Индекс цели в переданном списке; -1 для игрока
	Position     vec.Vec3Float
	Result       DamageResult
}

// Engine - единственный владелец здоровья игрока и живых снарядов.
// Не потокобезопасен: принадлежит циклу симуляции.
type Engine struct {
	cfg          Config
	playerHealth int
	cooldown     float64
	projectiles  []*Projectile
	nextID       uint64
}

// NewEngine создаёт движок боя с полным здоровьем игрока
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:          cfg,
		playerHealth: cfg.PlayerMaxHealth,
		nextID:       1,
	}
}

// Config возвращает параметры боя
func (e *Engine) Config() Config {
	return e.cfg
}

// Cooldown возвращает оставшееся время перезарядки
func (e *Engine) Cooldown() float64 {
	return e.cooldown
}

// TryAttack выпускает снаряд игрока, если перезарядка прошла.
// Нулевое направление отклоняется без расхода перезарядки.
func (e *Engine) TryAttack(origin, forward vec.Vec3Float) AttackResult {
	if e.cooldown > 0 {
		return AttackResult{}
	}
	dir := forward.Normalized()
	if dir.IsZero() {
		return AttackResult{}
	}

	e.cooldown = e.cfg.AttackRate
	id := e.spawn(OwnerPlayer, origin, dir.Mul(e.cfg.ProjectileSpeed), e.cfg.ProjectileDamage)
	return AttackResult{Fired: true, ProjectileID: id}
}

// SpawnMonsterProjectile выпускает снаряд монстра и возвращает его ID
func (e *Engine) SpawnMonsterProjectile(origin, dir vec.Vec3Float, speed float64, damage int) uint64 {
	return e.spawn(OwnerMonster, origin, dir.Normalized().Mul(speed), damage)
}

func (e *Engine) spawn(owner Owner, origin, velocity vec.Vec3Float, damage int) uint64 {
	p := &Projectile{
		ID:       e.nextID,
		Owner:    owner,
		Origin:   origin,
		Position: origin,
		Velocity: velocity,
		Damage:   damage,
	}
	e.nextID++
	e.projectiles = append(e.projectiles, p)
	return p.ID
}

// Advance продвигает перезарядку и снаряды на delta секунд.
// Улетевшие дальше 2*AttackRange помечаются; сжатие выполняется один раз в конце.
// Возвращает количество удалённых снарядов.
func (e *Engine) Advance(delta float64) int {
	e.cooldown -= delta
	if e.cooldown < 0 {
		e.cooldown = 0
	}

	maxDistance := 2 * e.cfg.AttackRange
	for _, p := range e.projectiles {
		if p.removed {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Mul(delta))
		if p.Travelled() > maxDistance {
			p.removed = true
		}
	}
	return e.compact()
}

// compact удаляет помеченные снаряды с сохранением порядка
func (e *Engine) compact() int {
	kept := e.projectiles[:0]
	for _, p := range e.projectiles {
		if !p.removed {
			kept = append(kept, p)
		}
	}
	removed := len(e.projectiles) - len(kept)
	for i := len(kept); i < len(e.projectiles); i++ {
		e.projectiles[i] = nil
	}
	e.projectiles = kept
	return removed
}

// ResolveHits проверяет снаряды игрока против целей. Для каждого снаряда цели
// перебираются по порядку; первая живая цель в HitRadius получает урон,
// снаряд помечается к удалению. Не более одного попадания на снаряд.
func (e *Engine) ResolveHits(targets []Target) []HitEvent {
	var hits []HitEvent
	for _, p := range e.projectiles {
		if p.removed || p.Owner != OwnerPlayer {
			continue
		}
		for i, t := range targets {
			if !t.Alive() || p.Position.DistanceTo(t.Center()) > e.cfg.HitRadius {
				continue
			}
			p.removed = true
			hits = append(hits, HitEvent{
				ProjectileID: p.ID,
				Owner:        p.Owner,
				TargetIndex:  i,
				Position:     p.Position,
				Result:       e.ApplyDamage(t, p.Damage),
			})
			break
		}
	}
	return hits
}

// ResolvePlayerHits наносит игроку урон снарядами монстров в HitRadius
func (e *Engine) ResolvePlayerHits(playerCenter vec.Vec3Float) []HitEvent {
	var hits []HitEvent
	for _, p := range e.projectiles {
		if p.removed || p.Owner != OwnerMonster {
			continue
		}
		if p.Position.DistanceTo(playerCenter) > e.cfg.HitRadius {
			continue
		}
		p.removed = true
		hits = append(hits, HitEvent{
			ProjectileID: p.ID,
			Owner:        p.Owner,
			TargetIndex:  -1,
			Position:     p.Position,
			Result:       e.DamagePlayer(p.Damage),
		})
	}
	return hits
}

// ApplyDamage вычитает урон из здоровья цели с ограничением снизу нулём.
// Неположительный урон и мёртвые цели игнорируются.
func (e *Engine) ApplyDamage(t Target, amount int) DamageResult {
	if amount <= 0 || !t.Alive() {
		return DamageResult{}
	}
	before := t.Health()
	after := before - amount
	if after < 0 {
		after = 0
	}
	t.SetHealth(after)
	return DamageResult{Dealt: before - after, Killed: !t.Alive()}
}

// DamagePlayer уменьшает здоровье игрока в пределах [0, PlayerMaxHealth]
func (e *Engine) DamagePlayer(amount int) DamageResult {
	if amount <= 0 || e.playerHealth <= 0 {
		return DamageResult{}
	}
	before := e.playerHealth
	e.playerHealth -= amount
	if e.playerHealth < 0 {
		e.playerHealth = 0
	}
	return DamageResult{Dealt: before - e.playerHealth, Killed: e.playerHealth == 0}
}

// HealPlayer восстанавливает здоровье живого игрока и возвращает фактическое лечение
func (e *Engine) HealPlayer(amount int) int {
	if amount <= 0 || e.playerHealth <= 0 {
		return 0
	}
	before := e.playerHealth
	e.playerHealth += amount
	if e.playerHealth > e.cfg.PlayerMaxHealth {
		e.playerHealth = e.cfg.PlayerMaxHealth
	}
	return e.playerHealth - before
}

// PlayerHealth возвращает здоровье игрока
func (e *Engine) PlayerHealth() int {
	return e.playerHealth
}

// PlayerMaxHealth возвращает максимальное здоровье игрока
func (e *Engine) PlayerMaxHealth() int {
	return e.cfg.PlayerMaxHealth
}

// PlayerAlive сообщает, жив ли игрок
func (e *Engine) PlayerAlive() bool {
	return e.playerHealth > 0
}

// ProjectileCount возвращает количество летящих снарядов
func (e *Engine) ProjectileCount() int {
	n := 0
	for _, p := range e.projectiles {
		if !p.removed {
			n++
		}
	}
	return n
}

// Projectiles возвращает копии летящих снарядов
func (e *Engine) Projectiles() []ProjectileView {
	views := make([]ProjectileView, 0, len(e.projectiles))
	for _, p := range e.projectiles {
		if p.removed {
			continue
		}
		views = append(views, ProjectileView{
			ID:       p.ID,
			Owner:    p.Owner.String(),
			Position: p.Position,
			Velocity: p.Velocity,
		})
	}
	return views
}
