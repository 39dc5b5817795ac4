package entity

import (
	"math/rand"
	"testing"

	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(respawnDelay float64) *EntityManager {
	return NewEntityManager(rand.New(rand.NewSource(42)), respawnDelay)
}

// eager делает вид агрессивным с первого тика
func eager(em *EntityManager, kind Kind) {
	p := em.Preset(kind)
	p.Brain.AggroChance = 1
	em.SetPreset(p)
}

func TestEntity_SetHealthClampsAndKillsOnce(t *testing.T) {
	em := newTestManager(0)
	e := em.Spawn(KindFireDragon, vec.Vec3Float{})
	require.Equal(t, 200, e.Health())

	e.SetHealth(e.Health() - 25)
	assert.Equal(t, 175, e.Health())
	assert.True(t, e.Alive())

	e.SetHealth(500)
	assert.Equal(t, 200, e.Health())

	e.SetHealth(-10)
	assert.Equal(t, 0, e.Health())
	assert.False(t, e.Alive())

	// Смерть окончательна
	e.SetHealth(100)
	assert.Equal(t, 0, e.Health())
	assert.False(t, e.Alive())
	assert.Equal(t, "dead", e.StateName())
}

func TestManager_TargetsSkipStaticAndDead(t *testing.T) {
	em := newTestManager(0)
	z := em.Spawn(KindZombie, vec.Vec3Float{})
	em.Spawn(KindTreasureBox, vec.Vec3Float{X: 5})
	d := em.Spawn(KindFireDragon, vec.Vec3Float{})
	em.Spawn(KindPickup, vec.Vec3Float{X: 8})

	targets := em.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, z.ID, targets[0].ID)
	assert.Equal(t, d.ID, targets[1].ID)

	z.SetHealth(0)
	targets = em.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, d.ID, targets[0].ID)
}

func TestManager_ReapZombieSchedulesRespawn(t *testing.T) {
	em := newTestManager(5)
	home := vec.Vec3Float{X: 3, Y: 4, Z: 5}
	z := em.Spawn(KindZombie, home)
	z.Position = vec.Vec3Float{X: 7, Y: 4, Z: 5}
	z.SetHealth(0)

	deaths := em.Reap(nil)
	require.Len(t, deaths, 1)
	assert.Equal(t, z.ID, deaths[0].ID)
	assert.Equal(t, vec.Vec3Float{X: 7, Y: 4, Z: 5}, deaths[0].Position)
	assert.Nil(t, deaths[0].Loot)
	assert.Equal(t, 1, em.PendingRespawns())

	// Повторная обработка смерти не происходит
	assert.Empty(t, em.Reap(nil))

	assert.Equal(t, 1, em.Compact())
	assert.Equal(t, 0, em.Len())
	_, ok := em.Get(z.ID)
	assert.False(t, ok)

	assert.Empty(t, em.TickRespawns(4))
	spawned := em.TickRespawns(1)
	require.Len(t, spawned, 1)
	assert.NotEqual(t, z.ID, spawned[0].ID, "возрождение - новый экземпляр")
	assert.Equal(t, home, spawned[0].Position)
	assert.Equal(t, 60, spawned[0].Health())
	assert.Equal(t, 0, em.PendingRespawns())
}

func TestManager_BossDropsLoot(t *testing.T) {
	em := newTestManager(5)
	d := em.Spawn(KindFireDragon, vec.Vec3Float{})
	j := em.Spawn(KindFireJellyfish, vec.Vec3Float{X: 50})
	assert.Equal(t, 2, em.BossesAlive())
	assert.Equal(t, 2, em.BossTotal())

	d.SetHealth(0)
	deaths := em.Reap(nil)
	require.Len(t, deaths, 1)
	require.NotNil(t, deaths[0].Loot)
	assert.Equal(t, KindPickup, deaths[0].Loot.Kind)
	assert.Equal(t, d.Position, deaths[0].Loot.Position)
	assert.Equal(t, 0, em.PendingRespawns(), "боссы не возрождаются")

	em.Compact()
	assert.Equal(t, 1, em.BossesAlive())
	assert.Equal(t, 2, em.Len())

	j.SetHealth(0)
	em.Reap(nil)
	em.Compact()
	assert.Equal(t, 0, em.BossesAlive())
}

func TestManager_BossLootFallsToGround(t *testing.T) {
	em := newTestManager(5)
	d := em.Spawn(KindFireDragon, vec.Vec3Float{X: 2, Y: 15, Z: -3})
	em.Spawn(KindFireJellyfish, vec.Vec3Float{X: 50})
	ground := func(x, z float64) (float64, bool) { return 4, true }

	d.SetHealth(0)
	deaths := em.Reap(ground)
	require.Len(t, deaths, 1)
	require.NotNil(t, deaths[0].Loot)
	assert.Equal(t, vec.Vec3Float{X: 2, Y: 15, Z: -3}, deaths[0].Position)
	assert.Equal(t, vec.Vec3Float{X: 2, Y: 4, Z: -3}, deaths[0].Loot.Position)

	// Над пустотой добыча остаётся в точке гибели
	j, _ := em.Get(d.ID + 1)
	j.SetHealth(0)
	deaths = em.Reap(func(x, z float64) (float64, bool) { return 0, false })
	require.Len(t, deaths, 1)
	assert.Equal(t, j.Position, deaths[0].Loot.Position)
}

func TestUpdate_PickupCollectedOnce(t *testing.T) {
	em := newTestManager(0)
	p := em.Spawn(KindPickup, vec.Vec3Float{X: 10})

	assert.Empty(t, em.Update(Env{Player: vec.Vec3Float{}}, 0.1))

	actions := em.Update(Env{Player: vec.Vec3Float{X: 9}}, 0.1)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionCollect, actions[0].Kind)
	assert.Equal(t, 25, actions[0].Heal)
	assert.True(t, p.Removed())

	assert.Empty(t, em.Update(Env{Player: vec.Vec3Float{X: 9}}, 0.1))
	assert.Equal(t, 1, em.Compact())
}

func TestUpdate_TreasureUnlocksOnce(t *testing.T) {
	em := newTestManager(0)
	box := em.Spawn(KindTreasureBox, vec.Vec3Float{X: 1})
	env := Env{Player: vec.Vec3Float{}}

	actions := em.Update(env, 0.1)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionUnlock, actions[0].Kind)
	assert.Equal(t, box.ID, actions[0].EntityID)
	assert.Equal(t, "opened", box.StateName())

	assert.Empty(t, em.Update(env, 0.1))
	assert.False(t, box.Removed(), "открытый сундук остаётся в мире")
}

func TestUpdate_ZombieBites(t *testing.T) {
	em := newTestManager(0)
	eager(em, KindZombie)
	z := em.Spawn(KindZombie, vec.Vec3Float{})

	actions := em.Update(Env{Player: vec.Vec3Float{X: 1}}, 0.1)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionMelee, actions[0].Kind)
	assert.Equal(t, 10, actions[0].Damage)
	assert.Equal(t, "chase", z.StateName())
	assert.InDelta(t, 0.35, z.Position.X, 1e-9)
}

func TestUpdate_ZombieStaysOnIsland(t *testing.T) {
	em := newTestManager(0)
	eager(em, KindZombie)
	z := em.Spawn(KindZombie, vec.Vec3Float{Y: 3})

	void := func(x, z float64) (float64, bool) { return 0, false }
	em.Update(Env{Player: vec.Vec3Float{X: 5, Y: 3}, Ground: void}, 0.1)
	assert.Equal(t, vec.Vec3Float{Y: 3}, z.Position)

	step := func(x, z float64) (float64, bool) { return 4, true }
	em.Update(Env{Player: vec.Vec3Float{X: 5, Y: 3}, Ground: step}, 0.1)
	assert.InDelta(t, 0.35, z.Position.X, 1e-9)
	assert.Equal(t, 4.0, z.Position.Y)
}

func TestUpdate_DragonShootsFireball(t *testing.T) {
	em := newTestManager(0)
	eager(em, KindFireDragon)
	d := em.Spawn(KindFireDragon, vec.Vec3Float{})
	require.Equal(t, vec.Vec3Float{X: 20, Y: 15}, d.Position)

	player := vec.Vec3Float{X: 20}
	actions := em.Update(Env{Player: player, Aim: player.Add(vec.Vec3Float{Y: 0.9})}, 0.1)
	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, ActionFireball, a.Kind)
	assert.Equal(t, 15, a.Damage)
	assert.Equal(t, 15.0, a.Speed)
	assert.InDelta(t, 14.4, a.Origin.Y, 1e-9)
	assert.InDelta(t, -1.0, a.Direction.Y, 1e-9)
	assert.InDelta(t, 0.0, a.Direction.X, 1e-9)
}

func TestUpdate_JellyfishShocks(t *testing.T) {
	em := newTestManager(0)
	eager(em, KindFireJellyfish)
	j := em.Spawn(KindFireJellyfish, vec.Vec3Float{})

	actions := em.Update(Env{Player: j.Position.Add(vec.Vec3Float{Y: -3})}, 0.1)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionShock, actions[0].Kind)
	assert.Equal(t, 8, actions[0].Damage)
}

func TestUpdate_DeadEntitiesDoNothing(t *testing.T) {
	em := newTestManager(0)
	eager(em, KindZombie)
	z := em.Spawn(KindZombie, vec.Vec3Float{})
	z.SetHealth(0)

	assert.Empty(t, em.Update(Env{Player: vec.Vec3Float{X: 1}}, 0.1))
	assert.Equal(t, vec.Vec3Float{}, z.Position)
}

func TestManager_GetStats(t *testing.T) {
	em := newTestManager(0)
	em.Spawn(KindZombie, vec.Vec3Float{})
	em.Spawn(KindZombie, vec.Vec3Float{X: 3})
	em.Spawn(KindFireDragon, vec.Vec3Float{})

	stats := em.GetStats()
	assert.Equal(t, 3, stats["total_entities"])
	assert.Equal(t, map[string]int{"zombie": 2, "fire_dragon": 1}, stats["entity_kinds"])
	assert.Equal(t, "1/1", stats["bosses_alive"])
}
