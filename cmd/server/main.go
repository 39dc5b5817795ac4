package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-arena/internal/api"
	"github.com/annel0/voxel-arena/internal/config"
	"github.com/annel0/voxel-arena/internal/eventbus"
	"github.com/annel0/voxel-arena/internal/game"
	"github.com/annel0/voxel-arena/internal/logging"
	"github.com/annel0/voxel-arena/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (по умолчанию $GAME_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	if err := run(*configPath); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.DefaultLogger().SetLevels(level, logging.TRACE)
	logging.Info("🎮 Запуск Voxel Arena: seed=%d, радиус=%d, %d тиков/с", cfg.World.Seed, cfg.World.Radius, cfg.Server.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("инициализация трассировки: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logging.Warn("Ошибка остановки трассировки: %v", err)
			}
		}()
		logging.Info("🔭 Трассировка включена: %s", cfg.Telemetry.Endpoint)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	process := observability.NewProcessMetrics()
	reg.MustRegister(process)
	simMetrics := observability.NewSimMetrics(reg)

	// === ШИНА СОБЫТИЙ ===
	bus, err := newBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	eventbus.Init(bus)
	if _, err := eventbus.StartLoggingListener(bus, nil); err != nil {
		return fmt.Errorf("подписка логгера событий: %w", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	if port := cfg.Server.GetMetricsPort(); port != cfg.Server.GetHTTPPort() {
		exporter.StartHTTP(fmt.Sprintf(":%d", port), reg)
	} else {
		exporter.Start()
	}
	defer exporter.Stop()

	// === СИМУЛЯЦИЯ ===
	sim := game.NewSimulation(cfg,
		game.WithLogger(logging.GetSimLogger()),
		game.WithMetrics(simMetrics),
	)
	res := sim.Populate(ctx)
	logging.Info("🌍 Мир готов: %d блоков, %d сущностей, точка появления (%.1f, %.1f, %.1f)",
		sim.Store().Len(), sim.Entities().Len(), res.Spawn.X, res.Spawn.Y, res.Spawn.Z)

	runner := game.NewRunner(sim, game.NewInputBuffer(), cfg.Server.TickRate, cfg.Server.MaxDelta)
	// Публикация уходит в отдельную горутину, чтобы медленная шина не растягивала тик
	publisher := eventbus.NewAsyncPublisher(bus, 256)
	defer publisher.Close()
	runner.SetSink(publisher.Sink())

	// === REST API ===
	server := api.NewRestServer(api.Config{
		Port:     fmt.Sprintf(":%d", cfg.Server.GetHTTPPort()),
		Runner:   runner,
		Process:  process,
		Bus:      bus,
		Registry: reg,
	})
	server.Start()

	logging.Info("✅ Все сервисы запущены")
	err = runner.Run(ctx)
	logging.Info("📡 Получен сигнал завершения, остановка...")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := server.Stop(sctx); serr != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", serr)
	}

	logging.Info("👋 Сервер остановлен на тике %d (%s)", sim.Tick(), sim.State())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newBus выбирает JetStream, если задан URL, иначе шину в памяти
func newBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий: в памяти")
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("подключение к JetStream: %w", err)
	}
	logging.Info("📨 Шина событий: JetStream %s, стрим %s", cfg.URL, cfg.Stream)
	return bus, nil
}
