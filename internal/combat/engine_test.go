package combat

import (
	"testing"

	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummy struct {
	center vec.Vec3Float
	health int
	max    int
	alive  bool
	deaths int
}

func newDummy(center vec.Vec3Float, hp int) *dummy {
	return &dummy{center: center, health: hp, max: hp, alive: true}
}

func (d *dummy) Center() vec.Vec3Float { return d.center }
func (d *dummy) Alive() bool           { return d.alive }
func (d *dummy) Health() int           { return d.health }
func (d *dummy) SetHealth(hp int) {
	if !d.alive {
		return
	}
	d.health = hp
	if hp == 0 {
		d.alive = false
		d.deaths++
	}
}

var forward = vec.Vec3Float{Z: -1}

func TestTryAttack_CooldownGating(t *testing.T) {
	e := NewEngine(DefaultConfig())

	first := e.TryAttack(vec.Vec3Float{}, forward)
	require.True(t, first.Fired)
	assert.Equal(t, 0.5, e.Cooldown())

	e.Advance(0.25)
	assert.False(t, e.TryAttack(vec.Vec3Float{}, forward).Fired)

	e.Advance(0.25)
	second := e.TryAttack(vec.Vec3Float{}, forward)
	assert.True(t, second.Fired)
	assert.NotEqual(t, first.ProjectileID, second.ProjectileID)
	assert.Equal(t, 2, e.ProjectileCount())
}

func TestTryAttack_ZeroForwardKeepsCooldown(t *testing.T) {
	e := NewEngine(DefaultConfig())

	assert.False(t, e.TryAttack(vec.Vec3Float{}, vec.Vec3Float{}).Fired)
	assert.Equal(t, 0.0, e.Cooldown())
	assert.Equal(t, 0, e.ProjectileCount())

	assert.True(t, e.TryAttack(vec.Vec3Float{}, forward).Fired)
}

func TestTryAttack_NormalizesDirection(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.TryAttack(vec.Vec3Float{}, vec.Vec3Float{X: 3, Z: -4})

	views := e.Projectiles()
	require.Len(t, views, 1)
	assert.InDelta(t, 30.0, views[0].Velocity.Length(), 1e-9)
	assert.Equal(t, "player", views[0].Owner)
}

func TestAdvance_ExpiresBeyondTwiceRange(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.TryAttack(vec.Vec3Float{}, forward)

	assert.Equal(t, 0, e.Advance(1.0), "30 блоков не дальше 40")
	assert.Equal(t, 1, e.ProjectileCount())

	assert.Equal(t, 1, e.Advance(0.5))
	assert.Equal(t, 0, e.ProjectileCount())
	assert.Empty(t, e.Projectiles())
}

func TestResolveHits_DamagesBoss(t *testing.T) {
	e := NewEngine(DefaultConfig())
	boss := newDummy(vec.Vec3Float{Z: -10}, 200)

	require.True(t, e.TryAttack(vec.Vec3Float{}, forward).Fired)
	e.Advance(0.3)

	hits := e.ResolveHits([]Target{boss})
	require.Len(t, hits, 1)
	assert.Equal(t, 175, boss.Health())
	assert.Equal(t, 25, hits[0].Result.Dealt)
	assert.False(t, hits[0].Result.Killed)
	assert.Equal(t, 0, hits[0].TargetIndex)
	assert.Equal(t, 0, e.ProjectileCount())
}

func TestResolveHits_SingleHitFirstInOrder(t *testing.T) {
	e := NewEngine(DefaultConfig())
	a := newDummy(vec.Vec3Float{Z: -1}, 100)
	b := newDummy(vec.Vec3Float{Z: -1}, 100)

	e.TryAttack(vec.Vec3Float{}, forward)

	hits := e.ResolveHits([]Target{a, b})
	require.Len(t, hits, 1)
	assert.Equal(t, 75, a.Health())
	assert.Equal(t, 100, b.Health())

	// Снаряд уже помечен и второй раз не попадает
	assert.Empty(t, e.ResolveHits([]Target{a, b}))
}

func TestResolveHits_SkipsDeadAndMonsterProjectiles(t *testing.T) {
	e := NewEngine(DefaultConfig())
	dead := newDummy(vec.Vec3Float{Z: -1}, 100)
	dead.SetHealth(0)
	live := newDummy(vec.Vec3Float{Z: -1}, 100)

	e.SpawnMonsterProjectile(vec.Vec3Float{Z: -1}, forward, 10, 50)
	assert.Empty(t, e.ResolveHits([]Target{live}), "снаряды монстров не бьют монстров")

	e.TryAttack(vec.Vec3Float{}, forward)
	hits := e.ResolveHits([]Target{dead, live})
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].TargetIndex)
}

func TestApplyDamage_KillsExactlyOnce(t *testing.T) {
	e := NewEngine(DefaultConfig())
	boss := newDummy(vec.Vec3Float{}, 200)

	res := e.ApplyDamage(boss, 200)
	assert.Equal(t, DamageResult{Dealt: 200, Killed: true}, res)
	assert.Equal(t, 0, boss.Health())
	assert.False(t, boss.Alive())

	res = e.ApplyDamage(boss, 50)
	assert.Equal(t, DamageResult{}, res)
	assert.Equal(t, 1, boss.deaths)
}

func TestApplyDamage_ClampsAndIgnoresNonPositive(t *testing.T) {
	e := NewEngine(DefaultConfig())
	d := newDummy(vec.Vec3Float{}, 30)

	assert.Equal(t, DamageResult{}, e.ApplyDamage(d, 0))
	assert.Equal(t, DamageResult{}, e.ApplyDamage(d, -5))
	assert.Equal(t, 30, d.Health())

	res := e.ApplyDamage(d, 45)
	assert.Equal(t, 30, res.Dealt)
	assert.True(t, res.Killed)
	assert.Equal(t, 0, d.Health())
}

func TestPlayerHealth_ClampedMutators(t *testing.T) {
	e := NewEngine(DefaultConfig())
	require.Equal(t, 100, e.PlayerHealth())

	assert.Equal(t, 0, e.HealPlayer(10), "здоровье уже полное")

	res := e.DamagePlayer(30)
	assert.Equal(t, 30, res.Dealt)
	assert.Equal(t, 70, e.PlayerHealth())

	assert.Equal(t, 30, e.HealPlayer(50))
	assert.Equal(t, 100, e.PlayerHealth())

	res = e.DamagePlayer(150)
	assert.Equal(t, 100, res.Dealt)
	assert.True(t, res.Killed)
	assert.False(t, e.PlayerAlive())

	assert.Equal(t, DamageResult{}, e.DamagePlayer(10))
	assert.Equal(t, 0, e.HealPlayer(10), "мёртвого не лечим")
}

func TestResolvePlayerHits_Fireball(t *testing.T) {
	e := NewEngine(DefaultConfig())
	player := vec.Vec3Float{Y: 1}

	id := e.SpawnMonsterProjectile(vec.Vec3Float{Y: 11}, vec.Vec3Float{Y: -5}, 10, 15)
	e.Advance(0.5)
	assert.Empty(t, e.ResolvePlayerHits(player))

	e.Advance(0.5)
	hits := e.ResolvePlayerHits(player)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ProjectileID)
	assert.Equal(t, OwnerMonster, hits[0].Owner)
	assert.Equal(t, -1, hits[0].TargetIndex)
	assert.Equal(t, 85, e.PlayerHealth())
	assert.Equal(t, 0, e.ProjectileCount())
}
