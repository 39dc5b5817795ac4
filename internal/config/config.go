package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Combat    CombatConfig    `yaml:"combat"`
	Entities  EntitiesConfig  `yaml:"entities"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	HTTPPort    int     `yaml:"http_port"`
	MetricsPort int     `yaml:"metrics_port"`
	TickRate    int     `yaml:"tick_rate"` // Тиков в секунду
	MaxDelta    float64 `yaml:"max_delta"` // 0 - шаг не ограничивается
	StartPaused bool    `yaml:"start_paused"`
}

type WorldConfig struct {
	Seed        int64 `yaml:"seed"`
	Radius      int   `yaml:"radius"`
	ClearRadius int   `yaml:"clear_radius"` // Радиус расчистки вокруг точки появления
}

type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	MoveSpeed    float64 `yaml:"move_speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	PlayerWidth  float64 `yaml:"player_width"`
	PlayerHeight float64 `yaml:"player_height"`
}

type CombatConfig struct {
	AttackRate       float64 `yaml:"attack_rate"`
	AttackRange      float64 `yaml:"attack_range"`
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
	ProjectileDamage int     `yaml:"projectile_damage"`
	HitRadius        float64 `yaml:"hit_radius"`
	PlayerMaxHealth  int     `yaml:"player_max_health"`
}

type EntitiesConfig struct {
	Zombies      int     `yaml:"zombies"`
	Dragons      int     `yaml:"dragons"`
	Jellyfish    int     `yaml:"jellyfish"`
	Treasures    int     `yaml:"treasures"`
	RespawnDelay float64 `yaml:"respawn_delay"`
	SpawnRadius  float64 `yaml:"spawn_radius"` // Радиус размещения сущностей вокруг центра мира
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // Пусто - шина в памяти
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TickRate: 60,
		},
		World: WorldConfig{
			Seed:        1337,
			Radius:      32,
			ClearRadius: 2,
		},
		Physics: PhysicsConfig{
			Gravity:      20,
			MoveSpeed:    5,
			JumpSpeed:    8,
			PlayerWidth:  0.6,
			PlayerHeight: 1.8,
		},
		Combat: CombatConfig{
			AttackRate:       0.5,
			AttackRange:      20,
			ProjectileSpeed:  30,
			ProjectileDamage: 25,
			HitRadius:        1.5,
			PlayerMaxHealth:  100,
		},
		Entities: EntitiesConfig{
			Zombies:      6,
			Dragons:      1,
			Jellyfish:    1,
			Treasures:    3,
			RespawnDelay: 10,
			SpawnRadius:  24,
		},
		EventBus: EventBusConfig{
			Stream:    "GAME_EVENTS",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-arena",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetHTTPPort возвращает порт HTTP API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "GAME_HTTP_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан - используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых симуляция не имеет смысла
func (c *Config) Validate() error {
	var errs []error
	if c.Server.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate должен быть > 0, получено %d", c.Server.TickRate))
	}
	if c.Server.MaxDelta < 0 {
		errs = append(errs, fmt.Errorf("server.max_delta не может быть отрицательным"))
	}
	if c.World.Radius <= 0 {
		errs = append(errs, fmt.Errorf("world.radius должен быть > 0"))
	}
	if c.Physics.Gravity <= 0 {
		errs = append(errs, fmt.Errorf("physics.gravity должна быть > 0"))
	}
	if c.Physics.MoveSpeed <= 0 || c.Physics.JumpSpeed <= 0 {
		errs = append(errs, fmt.Errorf("physics.move_speed и physics.jump_speed должны быть > 0"))
	}
	if c.Physics.PlayerWidth <= 0 || c.Physics.PlayerHeight <= 0 {
		errs = append(errs, fmt.Errorf("размеры игрока должны быть > 0"))
	}
	if c.Combat.AttackRate < 0 || c.Combat.ProjectileSpeed <= 0 || c.Combat.AttackRange <= 0 {
		errs = append(errs, fmt.Errorf("combat: некорректные параметры атаки"))
	}
	if c.Combat.PlayerMaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("combat.player_max_health должен быть > 0"))
	}
	if c.Entities.RespawnDelay < 0 {
		errs = append(errs, fmt.Errorf("entities.respawn_delay не может быть отрицательным"))
	}
	return errors.Join(errs...)
}
