package entity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand всегда возвращает одно и то же значение
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func roamerConfig() Config {
	return Config{
		Mode:         ModeRoamer,
		Style:        ChaseGround,
		WanderSpeed:  1.5,
		ChaseSpeed:   3.5,
		WanderRadius: 8,
		ArriveRadius: 0.5,
		IdleTime:     [2]float64{2, 5},
		WanderTime:   [2]float64{3, 8},
		AggroRange:   10,
		AggroChance:  0.02,
		AttackRange:  1.5,
		AttackRate:   1.0,
	}
}

func TestMachine_IdleToWander(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.5), vec.Vec3Float{})
	require.Equal(t, StateIdle, m.State())
	assert.Equal(t, 3.5, m.Timer())

	far := vec.Vec3Float{X: 100}
	for i := 0; i < 7; i++ {
		m.Update(vec.Vec3Float{}, far, 0.5)
	}
	assert.Equal(t, StateIdle, m.State(), "3.5 с ещё не истекли")

	m.Update(vec.Vec3Float{}, far, 0.5)
	assert.Equal(t, StateWander, m.State())
	assert.Equal(t, 5.5, m.Timer()+0.5, "новое время блуждания выбрано при входе")
}

func TestMachine_WanderTimerExpiryTransitionsNextUpdate(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.9), vec.Vec3Float{})
	pos := vec.Vec3Float{}
	far := vec.Vec3Float{X: 500}

	m.enterWander(pos)
	m.wanderTarget = vec.Vec3Float{X: -50}
	m.timer = 0.5

	m.Update(pos, far, 0.5)
	require.Equal(t, StateWander, m.State())
	require.Equal(t, 0.0, m.Timer(), "таймер ровно ноль")

	m.Update(pos, far, 0.016)
	assert.Equal(t, StateIdle, m.State(), "переход в Idle на следующем вызове")
}

func TestMachine_WanderArrival(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.9), vec.Vec3Float{})
	pos := vec.Vec3Float{}
	far := vec.Vec3Float{X: 500}

	m.enterWander(pos)
	m.wanderTarget = vec.Vec3Float{X: 1}
	m.timer = 100

	steps := 0
	for m.State() == StateWander && steps < 100 {
		intent := m.Update(pos, far, 0.1)
		pos = pos.Add(intent.Move)
		steps++
	}
	assert.Equal(t, StateIdle, m.State())
	assert.InDelta(t, 1.0, pos.X, 0.5)
}

func TestMachine_AggroIsProbabilistic(t *testing.T) {
	cfg := roamerConfig()
	near := vec.Vec3Float{X: 5}

	// Бросок выше вероятности: погони нет
	m := NewMachine(cfg, fixedRand(0.5), vec.Vec3Float{})
	for i := 0; i < 50; i++ {
		m.Update(vec.Vec3Float{}, near, 0.01)
		require.NotEqual(t, StateChase, m.State())
	}

	// Бросок ниже вероятности: погоня в первом же тике
	m = NewMachine(cfg, fixedRand(0.01), vec.Vec3Float{})
	m.Update(vec.Vec3Float{}, near, 0.01)
	assert.Equal(t, StateChase, m.State())

	// Цель вне дальности: погони нет даже при удачном броске
	m = NewMachine(cfg, fixedRand(0.0), vec.Vec3Float{})
	m.Update(vec.Vec3Float{}, vec.Vec3Float{X: 10.5}, 0.01)
	assert.NotEqual(t, StateChase, m.State())
}

func TestMachine_AggroRateWithSeededSource(t *testing.T) {
	cfg := roamerConfig()
	cfg.IdleTime = [2]float64{1000, 1000}
	rng := rand.New(rand.NewSource(1))

	ticks := 0
	m := NewMachine(cfg, rng, vec.Vec3Float{})
	for m.State() != StateChase && ticks < 10000 {
		m.Update(vec.Vec3Float{}, vec.Vec3Float{X: 3}, 1.0/60.0)
		ticks++
	}
	assert.Equal(t, StateChase, m.State())
	assert.Greater(t, ticks, 1, "обнаружение не мгновенное")
}

func TestMachine_ChaseHysteresis(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.0), vec.Vec3Float{})
	m.Update(vec.Vec3Float{}, vec.Vec3Float{X: 5}, 0.01)
	require.Equal(t, StateChase, m.State())

	// Между AggroRange и AggroRange*1.5 погоня продолжается
	intent := m.Update(vec.Vec3Float{}, vec.Vec3Float{X: 14}, 0.1)
	assert.Equal(t, StateChase, m.State())
	assert.InDelta(t, 0.35, intent.Move.X, 1e-9)

	intent = m.Update(vec.Vec3Float{}, vec.Vec3Float{X: 15.1}, 0.1)
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, intent.Move.IsZero())
}

func TestMachine_ChaseZeroDistanceNoNaN(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.0), vec.Vec3Float{})
	p := vec.Vec3Float{X: 2, Y: 1, Z: 2}

	intent := m.Update(p, p, 0.1)
	require.Equal(t, StateChase, m.State())
	assert.True(t, intent.Move.IsZero())
	assert.False(t, math.IsNaN(intent.Move.X))
}

func TestMachine_AttackCooldown(t *testing.T) {
	m := NewMachine(roamerConfig(), fixedRand(0.0), vec.Vec3Float{})
	pos := vec.Vec3Float{}
	target := vec.Vec3Float{X: 1}

	first := m.Update(pos, target, 0.1)
	assert.True(t, first.Attack)
	assert.Equal(t, 1.0, m.AttackCooldown())

	fired := 0
	for i := 0; i < 3; i++ {
		if m.Update(pos, target, 0.25).Attack {
			fired++
		}
	}
	assert.Equal(t, 0, fired, "перезарядка ещё идёт")

	assert.True(t, m.Update(pos, target, 0.25).Attack)

	// Вне дальности атаки не стреляем, даже если перезарядка прошла
	m.attackCooldown = 0
	assert.False(t, m.Update(pos, vec.Vec3Float{X: 5}, 0.1).Attack)
}

func TestMachine_PatrolOrbit(t *testing.T) {
	cfg := Config{
		Mode:        ModePatrol,
		Style:       ChaseFlight,
		ChaseSpeed:  1000,
		OrbitRadius: 10,
		OrbitSpeed:  math.Pi / 2,
		Altitude:    5,
		AggroRange:  20,
		AggroChance: 0,
	}
	center := vec.Vec3Float{X: 1, Y: 2, Z: 3}
	m := NewMachine(cfg, fixedRand(0.5), center)
	require.Equal(t, StatePatrol, m.State())

	pos := vec.Vec3Float{X: 11, Y: 7, Z: 3}
	far := vec.Vec3Float{X: 500}
	pos = pos.Add(m.Update(pos, far, 1.0).Move)

	// Через секунду четверть оборота
	assert.InDelta(t, 1.0, pos.X, 1e-9)
	assert.InDelta(t, 7.0, pos.Y, 1e-9)
	assert.InDelta(t, 13.0, pos.Z, 1e-9)
}

func TestMachine_FlightHoldsAboveTarget(t *testing.T) {
	cfg := Config{
		Mode:           ModePatrol,
		Style:          ChaseFlight,
		ChaseSpeed:     6,
		AggroRange:     30,
		AggroChance:    1,
		AltitudeOffset: 8,
	}
	m := NewMachine(cfg, fixedRand(0.0), vec.Vec3Float{})
	pos := vec.Vec3Float{X: 10, Y: 20}
	target := vec.Vec3Float{X: 0, Y: 1}

	for i := 0; i < 200; i++ {
		pos = pos.Add(m.Update(pos, target, 0.1).Move)
	}
	assert.Equal(t, StateChase, m.State())
	assert.InDelta(t, 0.0, pos.X, 1e-9)
	assert.InDelta(t, 9.0, pos.Y, 1e-9)
}

func TestMachine_FloatBobs(t *testing.T) {
	cfg := Config{
		Mode:         ModePatrol,
		Style:        ChaseFloat,
		ChaseSpeed:   0,
		AggroRange:   30,
		AggroChance:  1,
		BobAmplitude: 1.5,
		BobFrequency: 2,
	}
	m := NewMachine(cfg, fixedRand(0.0), vec.Vec3Float{})
	pos := vec.Vec3Float{X: 5}

	minY, maxY := 0.0, 0.0
	for i := 0; i < 100; i++ {
		pos = pos.Add(m.Update(pos, vec.Vec3Float{}, 0.05).Move)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}
	assert.InDelta(t, 1.5, maxY, 0.05)
	assert.InDelta(t, -1.5, minY, 0.05)
	assert.Equal(t, 5.0, pos.X, "без скорости погони сущность только покачивается")
}

func TestMachine_PatrolReturnAfterChase(t *testing.T) {
	cfg := Config{
		Mode:        ModePatrol,
		Style:       ChaseFlight,
		ChaseSpeed:  2,
		OrbitRadius: 5,
		AggroRange:  10,
		AggroChance: 1,
	}
	m := NewMachine(cfg, fixedRand(0.0), vec.Vec3Float{})
	m.Update(vec.Vec3Float{X: 5}, vec.Vec3Float{X: 8}, 0.1)
	require.Equal(t, StateChase, m.State())

	m.Update(vec.Vec3Float{X: 5}, vec.Vec3Float{X: 30}, 0.1)
	assert.Equal(t, StatePatrol, m.State())
	assert.Equal(t, "patrol", m.State().String())
}
