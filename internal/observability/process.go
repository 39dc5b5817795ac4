package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessMetrics собирает метрики процесса сервера
type ProcessMetrics struct {
	StartTime time.Time

	cpuDesc    *prometheus.Desc
	memDesc    *prometheus.Desc
	uptimeDesc *prometheus.Desc
}

// NewProcessMetrics создает новый экземпляр метрик
func NewProcessMetrics() *ProcessMetrics {
	return &ProcessMetrics{
		StartTime:  time.Now(),
		cpuDesc:    prometheus.NewDesc("sim_process_cpu_percent", "Загрузка CPU процессом.", nil, nil),
		memDesc:    prometheus.NewDesc("sim_process_alloc_mb", "Выделенная память кучи, MB.", nil, nil),
		uptimeDesc: prometheus.NewDesc("sim_process_uptime_seconds", "Время работы процесса.", nil, nil),
	}
}

// Describe реализует prometheus.Collector
func (pm *ProcessMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- pm.cpuDesc
	ch <- pm.memDesc
	ch <- pm.uptimeDesc
}

// Collect реализует prometheus.Collector
func (pm *ProcessMetrics) Collect(ch chan<- prometheus.Metric) {
	if cpuPercent, err := pm.GetCPUUsage(); err == nil {
		ch <- prometheus.MustNewConstMetric(pm.cpuDesc, prometheus.GaugeValue, cpuPercent)
	}
	ch <- prometheus.MustNewConstMetric(pm.memDesc, prometheus.GaugeValue, pm.GetMemoryUsage())
	ch <- prometheus.MustNewConstMetric(pm.uptimeDesc, prometheus.GaugeValue, time.Since(pm.StartTime).Seconds())
}

// GetUptime возвращает время работы сервера
func (pm *ProcessMetrics) GetUptime() string {
	uptime := time.Since(pm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetMemoryUsage возвращает использование памяти в MB
func (pm *ProcessMetrics) GetMemoryUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}

// GetCPUUsage возвращает использование CPU процессом в процентах
func (pm *ProcessMetrics) GetCPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, попробуем системную
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// Stats возвращает сводку для HTTP API
func (pm *ProcessMetrics) Stats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := map[string]interface{}{
		"uptime":        pm.GetUptime(),
		"alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"sys_mb":        float64(m.Sys) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
	if cpuPercent, err := pm.GetCPUUsage(); err == nil {
		stats["cpu_percent"] = cpuPercent
	}
	return stats
}
