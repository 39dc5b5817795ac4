// Package game связывает хранилище вокселей, физику, поведение сущностей и бой
// в один детерминированный тик симуляции.
package game

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/annel0/voxel-arena/internal/combat"
	"github.com/annel0/voxel-arena/internal/config"
	"github.com/annel0/voxel-arena/internal/logging"
	"github.com/annel0/voxel-arena/internal/observability"
	"github.com/annel0/voxel-arena/internal/physics"
	"github.com/annel0/voxel-arena/internal/vec"
	"github.com/annel0/voxel-arena/internal/world"
	"github.com/annel0/voxel-arena/internal/world/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// eyeRatio - высота глаз относительно роста игрока
const eyeRatio = 0.9

// Simulation - драйвер кадра. Владеет миром и вызывается из одной горутины.
type Simulation struct {
	cfg *config.Config

	store      *world.VoxelStore
	generator  *world.WorldGenerator
	body       *physics.Body
	camera     physics.Camera
	integrator *physics.Integrator
	combat     *combat.Engine
	entities   *entity.EntityManager

	state  GameState
	tick   uint64
	spawn  vec.Vec3Float
	events []Event

	rng     *rand.Rand
	logger  *logging.Logger
	metrics *observability.SimMetrics
	tracer  trace.Tracer
}

// Option настраивает Simulation
type Option func(*Simulation)

// WithLogger задаёт логгер симуляции
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithMetrics включает Prometheus-метрики тика
func WithMetrics(m *observability.SimMetrics) Option {
	return func(s *Simulation) { s.metrics = m }
}

// WithRand задаёт источник случайных чисел для поведения и расстановки сущностей
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// NewSimulation создаёт пустой мир с игроком в начале координат.
// Ландшафт и сущности появляются после Populate.
func NewSimulation(cfg *config.Config, opts ...Option) *Simulation {
	s := &Simulation{
		cfg:       cfg,
		store:     world.NewVoxelStore(),
		generator: world.NewWorldGenerator(cfg.World.Seed, cfg.World.Radius),
		integrator: physics.NewIntegrator(
			cfg.Physics.Gravity, cfg.Physics.MoveSpeed, cfg.Physics.JumpSpeed),
		combat: combat.NewEngine(combat.Config{
			AttackRate:       cfg.Combat.AttackRate,
			AttackRange:      cfg.Combat.AttackRange,
			ProjectileSpeed:  cfg.Combat.ProjectileSpeed,
			ProjectileDamage: cfg.Combat.ProjectileDamage,
			HitRadius:        cfg.Combat.HitRadius,
			PlayerMaxHealth:  cfg.Combat.PlayerMaxHealth,
		}),
		state:  StatePlaying,
		tracer: observability.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.World.Seed))
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}

	s.body = physics.NewBody(vec.Vec3Float{}, cfg.Physics.PlayerWidth, cfg.Physics.PlayerHeight)
	s.entities = entity.NewEntityManager(s.rng, cfg.Entities.RespawnDelay)
	if cfg.Server.StartPaused {
		s.state = StatePaused
	}
	return s
}

// Populate генерирует ландшафт, ставит игрока в точку появления и расставляет сущности
func (s *Simulation) Populate(ctx context.Context) world.PopulateResult {
	_, span := s.tracer.Start(ctx, "sim.populate")
	defer span.End()

	start := time.Now()
	res := s.generator.Populate(s.store, s.cfg.World.ClearRadius)
	s.spawn = res.Spawn
	s.body.Position = res.Spawn
	s.spawnRoster()

	span.SetAttributes(
		attribute.Int("world.blocks", res.Blocks),
		attribute.Int("world.entities", s.entities.Len()),
	)
	s.logger.Info("🌍 Мир сгенерирован: %d блоков, %d сущностей за %v (seed=%d)",
		res.Blocks, s.entities.Len(), time.Since(start), s.cfg.World.Seed)
	return res
}

// spawnRoster расставляет сущности вокруг точки появления
func (s *Simulation) spawnRoster() {
	ec := s.cfg.Entities
	for i := 0; i < ec.Zombies; i++ {
		s.entities.Spawn(entity.KindZombie, s.placeOnGround(8))
	}
	for i := 0; i < ec.Treasures; i++ {
		s.entities.Spawn(entity.KindTreasureBox, s.placeOnGround(4))
	}
	for i := 0; i < ec.Dragons; i++ {
		s.entities.Spawn(entity.KindFireDragon, s.placeOnGround(6))
	}
	for i := 0; i < ec.Jellyfish; i++ {
		s.entities.Spawn(entity.KindFireJellyfish, s.placeOnGround(6))
	}
}

// placeOnGround выбирает случайную точку на поверхности не ближе minDist к точке появления
func (s *Simulation) placeOnGround(minDist float64) vec.Vec3Float {
	maxDist := math.Max(s.cfg.Entities.SpawnRadius, minDist)
	for attempt := 0; attempt < 32; attempt++ {
		angle := s.rng.Float64() * 2 * math.Pi
		dist := minDist + s.rng.Float64()*(maxDist-minDist)
		x := s.spawn.X + math.Cos(angle)*dist
		z := s.spawn.Z + math.Sin(angle)*dist
		if y, ok := s.groundAt(x, z); ok {
			return vec.Vec3Float{X: x, Y: y, Z: z}
		}
	}
	return s.spawn
}

// groundAt возвращает высоту поверхности колонки без учёта кроны деревьев
func (s *Simulation) groundAt(x, z float64) (float64, bool) {
	maxY := s.generator.BaseHeight + s.generator.HeightRange
	y := world.GroundLevel(s.store, x, z, maxY)
	return y, y > world.VoidY
}

// SetPaused переключает паузу. Завершённую партию поставить на паузу нельзя.
func (s *Simulation) SetPaused(paused bool) bool {
	switch {
	case paused && s.state == StatePlaying:
		s.state = StatePaused
	case !paused && s.state == StatePaused:
		s.state = StatePlaying
	default:
		return false
	}
	s.logger.Info("⏯️ Состояние партии: %s", s.state)
	return true
}

// Step продвигает мир на delta секунд и возвращает события тика.
// Вне состояния Playing тик полностью пропускается.
func (s *Simulation) Step(ctx context.Context, in InputState, delta float64) []Event {
	if s.state != StatePlaying {
		return nil
	}

	_, span := s.tracer.Start(ctx, "sim.tick")
	defer span.End()

	start := time.Now()
	s.tick++
	s.events = s.events[:0]

	s.stepPlayer(in, delta)
	s.stepEntities(delta)

	// Бой: полёт снарядов, затем попадания
	s.combat.Advance(delta)
	s.resolveHits()

	// Очистка: обработка смерти, сжатие арены, возрождение
	s.reap()
	s.entities.Compact()
	for _, e := range s.entities.TickRespawns(delta) {
		s.logger.Debug("🧟 %s #%d возродился в (%.1f, %.1f, %.1f)", e.Kind, e.ID, e.Position.X, e.Position.Y, e.Position.Z)
	}

	s.checkOutcome()

	span.SetAttributes(
		attribute.Int64("sim.tick", int64(s.tick)),
		attribute.Int("sim.events", len(s.events)),
	)
	if s.metrics != nil {
		s.metrics.ObserveTick(time.Since(start), s.entities.Len(), s.combat.ProjectileCount(), s.combat.PlayerHealth())
	}

	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

// stepPlayer применяет взгляд, прыжок, движение и выстрел игрока
func (s *Simulation) stepPlayer(in InputState, delta float64) {
	s.camera.ApplyLook(in.LookYaw, in.LookPitch)
	if in.Jump {
		s.integrator.Jump(s.body)
	}
	s.integrator.Integrate(s.body, s.store, s.camera.WishDir(in.Move()), delta)

	if s.body.Position.Y < world.VoidY && s.combat.PlayerAlive() {
		s.damagePlayer(s.combat.PlayerHealth(), "void", 0)
	}

	if in.Fire {
		if res := s.combat.TryAttack(s.body.Eye(eyeRatio), s.camera.Forward()); res.Fired {
			s.logger.Trace("🔫 Выстрел #%d", res.ProjectileID)
		}
	}
}

// stepEntities обновляет сущности и применяет их действия
func (s *Simulation) stepEntities(delta float64) {
	env := entity.Env{
		Player: s.body.Position,
		Aim:    s.body.Center(),
		Ground: s.groundAt,
	}

	for _, a := range s.entities.Update(env, delta) {
		e, _ := s.entities.Get(a.EntityID)
		switch a.Kind {
		case entity.ActionMelee, entity.ActionShock:
			s.damagePlayer(a.Damage, e.Kind.String(), e.ID)
		case entity.ActionFireball:
			s.combat.SpawnMonsterProjectile(a.Origin, a.Direction, a.Speed, a.Damage)
		case entity.ActionUnlock:
			s.emit(Event{Type: EventTreasureUnlocked, EntityID: e.ID, Kind: e.Kind.String(), Position: e.Position})
			s.healPlayer(a.Heal, e.Kind.String())
		case entity.ActionCollect:
			s.emit(Event{Type: EventPickupCollected, EntityID: e.ID, Kind: e.Kind.String(), Position: e.Position})
			s.healPlayer(a.Heal, e.Kind.String())
		}
	}
}

// resolveHits применяет попадания снарядов игрока и монстров
func (s *Simulation) resolveHits() {
	targets := s.entities.Targets()
	list := make([]combat.Target, len(targets))
	for i, e := range targets {
		list[i] = e
	}

	for _, hit := range s.combat.ResolveHits(list) {
		e := targets[hit.TargetIndex]
		s.emit(Event{
			Type:     EventEntityHit,
			EntityID: e.ID,
			Kind:     e.Kind.String(),
			Source:   hit.Owner.String(),
			Amount:   hit.Result.Dealt,
			Health:   e.Health(),
			Position: hit.Position,
		})
		if s.metrics != nil {
			s.metrics.Hit(hit.Owner.String())
		}
	}

	for _, hit := range s.combat.ResolvePlayerHits(s.body.Center()) {
		s.emitPlayerDamage(hit.Result, "fireball", 0)
		if s.metrics != nil {
			s.metrics.Hit(hit.Owner.String())
		}
	}
}

// reap выполняет однократную обработку погибших сущностей
func (s *Simulation) reap() {
	for _, d := range s.entities.Reap(s.groundAt) {
		s.emit(Event{Type: EventEntityDied, EntityID: d.ID, Kind: d.Kind.String(), Position: d.Position})
		if s.metrics != nil {
			s.metrics.Death(d.Kind.String())
		}
		if d.Loot != nil {
			s.logger.Info("💀 %s #%d повержен, выпал предмет #%d", d.Kind, d.ID, d.Loot.ID)
			continue
		}
		s.logger.Debug("💀 %s #%d погиб в (%.1f, %.1f, %.1f)", d.Kind, d.ID, d.Position.X, d.Position.Y, d.Position.Z)
	}
}

// checkOutcome фиксирует поражение или победу. Переход однократный:
// после него состояние не Playing и тики больше не выполняются.
func (s *Simulation) checkOutcome() {
	switch {
	case !s.combat.PlayerAlive():
		s.state = StateDefeat
		s.emit(Event{Type: EventDefeat, Position: s.body.Position})
		s.logger.Info("☠️ Поражение на тике %d", s.tick)
	case s.entities.BossTotal() > 0 && s.entities.BossesAlive() == 0:
		s.state = StateVictory
		s.emit(Event{Type: EventVictory, Health: s.combat.PlayerHealth(), Position: s.body.Position})
		s.logger.Info("🏆 Победа на тике %d", s.tick)
	}
}

func (s *Simulation) damagePlayer(amount int, source string, entityID uint64) {
	s.emitPlayerDamage(s.combat.DamagePlayer(amount), source, entityID)
}

func (s *Simulation) emitPlayerDamage(res combat.DamageResult, source string, entityID uint64) {
	if res.Dealt == 0 {
		return
	}
	s.emit(Event{
		Type:     EventPlayerDamaged,
		EntityID: entityID,
		Source:   source,
		Amount:   res.Dealt,
		Health:   s.combat.PlayerHealth(),
		Position: s.body.Position,
	})
}

func (s *Simulation) healPlayer(amount int, source string) {
	healed := s.combat.HealPlayer(amount)
	if healed == 0 {
		return
	}
	s.emit(Event{
		Type:     EventPlayerHealed,
		Source:   source,
		Amount:   healed,
		Health:   s.combat.PlayerHealth(),
		Position: s.body.Position,
	})
}

func (s *Simulation) emit(e Event) {
	e.Tick = s.tick
	s.events = append(s.events, e)
}

// Snapshot строит неизменяемый снимок текущего состояния
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:  s.tick,
		State: s.state.String(),
		Player: PlayerView{
			Position:  s.body.Position,
			Health:    s.combat.PlayerHealth(),
			MaxHealth: s.combat.PlayerMaxHealth(),
			Grounded:  s.body.Grounded,
			Yaw:       s.camera.Yaw,
			Pitch:     s.camera.Pitch,
			Cooldown:  s.combat.Cooldown(),
		},
		Projectiles: s.combat.Projectiles(),
		Blocks:      s.store.Len(),
		BossesAlive: s.entities.BossesAlive(),
	}

	all := s.entities.All()
	snap.Entities = make([]EntityView, 0, len(all))
	for _, e := range all {
		if e.Removed() {
			continue
		}
		snap.Entities = append(snap.Entities, EntityView{
			ID:        e.ID,
			Kind:      e.Kind.String(),
			Position:  e.Position,
			Health:    e.Health(),
			MaxHealth: e.MaxHealth(),
			Alive:     e.Alive(),
			State:     e.StateName(),
		})
	}
	return snap
}

// State возвращает состояние партии
func (s *Simulation) State() GameState { return s.state }

// Tick возвращает номер последнего выполненного тика
func (s *Simulation) Tick() uint64 { return s.tick }

// Store возвращает хранилище вокселей
func (s *Simulation) Store() *world.VoxelStore { return s.store }

// Body возвращает тело игрока
func (s *Simulation) Body() *physics.Body { return s.body }

// Camera возвращает камеру игрока
func (s *Simulation) Camera() *physics.Camera { return &s.camera }

// Combat возвращает движок боя
func (s *Simulation) Combat() *combat.Engine { return s.combat }

// Entities возвращает менеджер сущностей
func (s *Simulation) Entities() *entity.EntityManager { return s.entities }

// Spawn возвращает точку появления игрока
func (s *Simulation) Spawn() vec.Vec3Float { return s.spawn }
