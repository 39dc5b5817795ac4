package entity

import (
	fsm "github.com/annel0/voxel-arena/internal/entity"
)

// Kind представляет вариант сущности
type Kind uint8

const (
	KindZombie Kind = iota
	KindFireDragon
	KindFireJellyfish
	KindTreasureBox
	KindPickup
)

// String возвращает строковое представление вида
func (k Kind) String() string {
	switch k {
	case KindZombie:
		return "zombie"
	case KindFireDragon:
		return "fire_dragon"
	case KindFireJellyfish:
		return "fire_jellyfish"
	case KindTreasureBox:
		return "treasure_box"
	case KindPickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// IsBoss сообщает, участвует ли вид в условии победы
func (k Kind) IsBoss() bool {
	return k == KindFireDragon || k == KindFireJellyfish
}

// IsStatic сообщает, что у вида нет автомата поведения и здоровья
func (k Kind) IsStatic() bool {
	return k == KindTreasureBox || k == KindPickup
}

// AttackKind определяет способ атаки монстра
type AttackKind uint8

const (
	AttackNone     AttackKind = iota
	AttackMelee               // Мгновенный урон в радиусе атаки
	AttackFireball            // Снаряд монстра
	AttackShock               // Мгновенный урон разрядом
)

// Preset содержит параметры вида сущности
type Preset struct {
	Kind      Kind
	MaxHealth int
	Height    float64 // Высота хитбокса; центр для попаданий на половине
	Brain     fsm.Config

	Attack          AttackKind
	Damage          int
	ProjectileSpeed float64

	Heal           int     // Лечение для сундука и подбираемого предмета
	InteractRadius float64 // Дистанция взаимодействия с игроком
}

// DefaultPreset возвращает стандартные параметры вида
func DefaultPreset(kind Kind) Preset {
	p := Preset{Kind: kind, Height: 1.0}

	// Настройка в зависимости от вида
	switch kind {
	case KindZombie:
		p.MaxHealth = 60
		p.Height = 1.8
		p.Brain = fsm.Config{
			Mode:         fsm.ModeRoamer,
			Style:        fsm.ChaseGround,
			WanderSpeed:  1.5,
			ChaseSpeed:   3.5,
			WanderRadius: 8,
			ArriveRadius: 0.5,
			IdleTime:     [2]float64{2, 5},
			WanderTime:   [2]float64{3, 8},
			AggroRange:   12,
			AggroChance:  0.02,
			AttackRange:  1.5,
			AttackRate:   1.0,
		}
		p.Attack = AttackMelee
		p.Damage = 10
	case KindFireDragon:
		p.MaxHealth = 200
		p.Height = 3.0
		p.Brain = fsm.Config{
			Mode:           fsm.ModePatrol,
			Style:          fsm.ChaseFlight,
			ChaseSpeed:     6,
			OrbitRadius:    20,
			OrbitSpeed:     0.3,
			Altitude:       15,
			AltitudeOffset: 8,
			AggroRange:     35,
			AggroChance:    0.05,
			AttackRange:    30,
			AttackRate:     2.0,
		}
		p.Attack = AttackFireball
		p.Damage = 15
		p.ProjectileSpeed = 15
	case KindFireJellyfish:
		p.MaxHealth = 120
		p.Height = 2.0
		p.Brain = fsm.Config{
			Mode:           fsm.ModePatrol,
			Style:          fsm.ChaseFloat,
			ChaseSpeed:     3,
			OrbitRadius:    10,
			OrbitSpeed:     0.5,
			Altitude:       6,
			AltitudeOffset: 2,
			BobAmplitude:   1.5,
			BobFrequency:   2,
			AggroRange:     20,
			AggroChance:    0.05,
			AttackRange:    6,
			AttackRate:     1.5,
		}
		p.Attack = AttackShock
		p.Damage = 8
	case KindTreasureBox:
		p.Heal = 25
		p.InteractRadius = 2.0
	case KindPickup:
		p.Height = 0.5
		p.Heal = 25
		p.InteractRadius = 1.5
	}

	return p
}
