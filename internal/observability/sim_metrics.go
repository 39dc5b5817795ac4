package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimMetrics - метрики цикла симуляции.
//
// Метрики:
// * sim_tick_duration_seconds - histogram
// * sim_ticks_total - counter
// * sim_entities / sim_projectiles - gauge
// * sim_hits_total{owner} - counter
// * sim_deaths_total{kind} - counter
// * sim_player_health - gauge
type SimMetrics struct {
	tickDuration prometheus.Histogram
	ticks        prometheus.Counter
	entities     prometheus.Gauge
	projectiles  prometheus.Gauge
	hits         *prometheus.CounterVec
	deaths       *prometheus.CounterVec
	playerHealth prometheus.Gauge
}

// NewSimMetrics создаёт метрики и регистрирует их в reg
func NewSimMetrics(reg prometheus.Registerer) *SimMetrics {
	m := &SimMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.016, 0.033, 0.1},
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "ticks_total",
			Help:      "Количество выполненных тиков.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sim",
			Name:      "entities",
			Help:      "Количество сущностей в мире.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sim",
			Name:      "projectiles",
			Help:      "Количество летящих снарядов.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "hits_total",
			Help:      "Попадания снарядов по владельцу.",
		}, []string{"owner"}),
		deaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "deaths_total",
			Help:      "Погибшие сущности по виду.",
		}, []string{"kind"}),
		playerHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sim",
			Name:      "player_health",
			Help:      "Текущее здоровье игрока.",
		}),
	}

	reg.MustRegister(m.tickDuration, m.ticks, m.entities, m.projectiles, m.hits, m.deaths, m.playerHealth)
	return m
}

// ObserveTick записывает итог тика
func (m *SimMetrics) ObserveTick(d time.Duration, entities, projectiles, playerHealth int) {
	m.tickDuration.Observe(d.Seconds())
	m.ticks.Inc()
	m.entities.Set(float64(entities))
	m.projectiles.Set(float64(projectiles))
	m.playerHealth.Set(float64(playerHealth))
}

// Hit учитывает попадание снаряда
func (m *SimMetrics) Hit(owner string) {
	m.hits.WithLabelValues(owner).Inc()
}

// Death учитывает гибель сущности
func (m *SimMetrics) Death(kind string) {
	m.deaths.WithLabelValues(kind).Inc()
}
