package entity

import (
	"math"

	"github.com/annel0/voxel-arena/internal/vec"
)

// State представляет состояние конечного автомата поведения
type State uint8

const (
	StateIdle State = iota
	StateWander
	StateChase
	StatePatrol
)

// String возвращает строковое представление состояния
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWander:
		return "wander"
	case StateChase:
		return "chase"
	case StatePatrol:
		return "patrol"
	default:
		return "unknown"
	}
}

// Mode определяет набор пассивных состояний автомата
type Mode uint8

const (
	ModeRoamer Mode = iota // Idle <-> Wander, погоня при агро
	ModePatrol             // Облёт по орбите, погоня при агро
)

// ChaseStyle определяет манеру преследования цели
type ChaseStyle uint8

const (
	ChaseGround ChaseStyle = iota // Прямое преследование в горизонтальной плоскости
	ChaseFlight                   // Зависание над целью на высоте AltitudeOffset
	ChaseFloat                    // Преследование с синусоидальным покачиванием
)

// RandSource - источник случайных чисел; *rand.Rand подходит
type RandSource interface {
	Float64() float64
}

// Config содержит параметры поведения конкретного вида сущности
type Config struct {
	Mode  Mode
	Style ChaseStyle

	WanderSpeed  float64    // Скорость блуждания, блоков/с
	ChaseSpeed   float64    // Скорость погони, блоков/с
	WanderRadius float64    // Радиус выбора случайной точки
	ArriveRadius float64    // Расстояние, на котором точка считается достигнутой
	IdleTime     [2]float64 // Мин/макс время простоя
	WanderTime   [2]float64 // Мин/макс время блуждания

	AggroRange  float64 // Дальность обнаружения цели
	AggroChance float64 // Вероятность перехода в погоню за один тик

	OrbitRadius float64 // Радиус патрульной орбиты
	OrbitSpeed  float64 // Угловая скорость, рад/с
	Altitude    float64 // Высота орбиты над центром

	AltitudeOffset float64 // Высота над целью при погоне
	BobAmplitude   float64 // Амплитуда покачивания
	BobFrequency   float64 // Частота покачивания, рад/с

	AttackRange float64 // Максимальная дистанция атаки
	AttackRate  float64 // Перезарядка атаки, с; 0 - атаки нет
}

// Intent - результат одного тика автомата: желаемое смещение и попытка атаки
type Intent struct {
	Move   vec.Vec3Float // Смещение за тик
	Attack bool          // Атака выпущена в этом тике
}

// Machine - конечный автомат поведения одной сущности.
// Не проверяет коллизии: сущности летают или уже стоят на допустимых позициях.
type Machine struct {
	cfg   Config
	rng   RandSource
	state State

	timer          float64       // Оставшееся время в Idle/Wander
	wanderTarget   vec.Vec3Float // Текущая точка блуждания
	center         vec.Vec3Float // Центр орбиты патруля
	angle          float64       // Накопитель угла орбиты
	bobTime        float64       // Время для покачивания
	attackCooldown float64
}

// NewMachine создаёт автомат. anchor - центр патруля для ModePatrol.
func NewMachine(cfg Config, rng RandSource, anchor vec.Vec3Float) *Machine {
	m := &Machine{
		cfg:    cfg,
		rng:    rng,
		center: anchor,
	}
	if cfg.Mode == ModePatrol {
		m.state = StatePatrol
	} else {
		m.enterIdle()
	}
	return m
}

// State возвращает текущее состояние
func (m *Machine) State() State {
	return m.state
}

// Timer возвращает оставшееся время пребывания в Idle/Wander
func (m *Machine) Timer() float64 {
	return m.timer
}

// AttackCooldown возвращает оставшееся время перезарядки атаки
func (m *Machine) AttackCooldown() float64 {
	return m.attackCooldown
}

// Config возвращает параметры автомата
func (m *Machine) Config() Config {
	return m.cfg
}

// Update продвигает автомат на delta секунд.
// pos - позиция сущности, target - позиция отслеживаемой цели.
func (m *Machine) Update(pos, target vec.Vec3Float, delta float64) Intent {
	var intent Intent

	// Перезарядка идёт в любом состоянии
	if m.attackCooldown > 0 {
		m.attackCooldown = math.Max(0, m.attackCooldown-delta)
	}

	dist := pos.DistanceTo(target)

	// Вероятностное обнаружение: независимая попытка каждый тик
	if m.state != StateChase && dist <= m.cfg.AggroRange && m.rng.Float64() < m.cfg.AggroChance {
		m.state = StateChase
	}

	switch m.state {
	case StateIdle:
		if m.timer <= 0 {
			m.enterWander(pos)
		}
	case StateWander:
		if m.timer <= 0 || pos.Flat().DistanceTo(m.wanderTarget.Flat()) <= m.cfg.ArriveRadius {
			m.enterIdle()
			break
		}
		intent.Move = stepToward(pos.Flat(), m.wanderTarget.Flat(), m.cfg.WanderSpeed*delta)
	case StatePatrol:
		intent.Move = m.patrol(pos, delta)
	case StateChase:
		// Гистерезис: выход из погони дальше, чем вход
		if dist > m.cfg.AggroRange*1.5 {
			m.leaveChase(pos)
			break
		}
		intent.Move = m.chase(pos, target, delta)
		if m.cfg.AttackRate > 0 && m.attackCooldown <= 0 && dist <= m.cfg.AttackRange {
			intent.Attack = true
			m.attackCooldown = m.cfg.AttackRate
		}
	}

	if m.state == StateIdle || m.state == StateWander {
		m.timer -= delta
	}
	return intent
}

// enterIdle переводит автомат в простой с новым временем ожидания
func (m *Machine) enterIdle() {
	m.state = StateIdle
	m.timer = m.randomInRange(m.cfg.IdleTime)
}

// enterWander выбирает случайную точку в радиусе блуждания и новое время
func (m *Machine) enterWander(pos vec.Vec3Float) {
	m.state = StateWander
	m.timer = m.randomInRange(m.cfg.WanderTime)

	angle := m.rng.Float64() * 2 * math.Pi
	// Корень для равномерного распределения по площади
	distance := m.cfg.WanderRadius * math.Sqrt(m.rng.Float64())
	m.wanderTarget = vec.Vec3Float{
		X: pos.X + distance*math.Cos(angle),
		Y: pos.Y,
		Z: pos.Z + distance*math.Sin(angle),
	}
}

// leaveChase возвращает автомат в пассивное состояние
func (m *Machine) leaveChase(pos vec.Vec3Float) {
	if m.cfg.Mode == ModePatrol {
		m.state = StatePatrol
		m.angle = math.Atan2(pos.Z-m.center.Z, pos.X-m.center.X)
		return
	}
	m.enterIdle()
}

// patrol двигает сущность по орбите вокруг центра
func (m *Machine) patrol(pos vec.Vec3Float, delta float64) vec.Vec3Float {
	m.angle = math.Mod(m.angle+m.cfg.OrbitSpeed*delta, 2*math.Pi)
	orbit := vec.Vec3Float{
		X: m.center.X + math.Cos(m.angle)*m.cfg.OrbitRadius,
		Y: m.center.Y + m.cfg.Altitude,
		Z: m.center.Z + math.Sin(m.angle)*m.cfg.OrbitRadius,
	}
	// После погони возвращаемся на орбиту не быстрее скорости погони
	return stepToward(pos, orbit, m.cfg.ChaseSpeed*delta)
}

// chase вычисляет смещение преследования в зависимости от стиля
func (m *Machine) chase(pos, target vec.Vec3Float, delta float64) vec.Vec3Float {
	step := m.cfg.ChaseSpeed * delta
	switch m.cfg.Style {
	case ChaseFlight:
		goal := target.Add(vec.Vec3Float{Y: m.cfg.AltitudeOffset})
		return stepToward(pos, goal, step)
	case ChaseFloat:
		goal := target.Add(vec.Vec3Float{Y: m.cfg.AltitudeOffset})
		move := stepToward(pos, goal, step)
		prev := math.Sin(m.bobTime * m.cfg.BobFrequency)
		m.bobTime += delta
		move.Y += m.cfg.BobAmplitude * (math.Sin(m.bobTime*m.cfg.BobFrequency) - prev)
		return move
	default:
		return stepToward(pos.Flat(), target.Flat(), step)
	}
}

// randomInRange возвращает случайное число в указанном диапазоне
func (m *Machine) randomInRange(r [2]float64) float64 {
	return r[0] + m.rng.Float64()*(r[1]-r[0])
}

// stepToward возвращает смещение от from к to длиной не более step.
// Если точки совпадают, смещение нулевое.
func stepToward(from, to vec.Vec3Float, step float64) vec.Vec3Float {
	diff := to.Sub(from)
	length := diff.Length()
	if length == 0 || step <= 0 {
		return vec.Vec3Float{}
	}
	if length <= step {
		return diff
	}
	return diff.Mul(step / length)
}
