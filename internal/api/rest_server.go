// Package api - HTTP-сервер состояния партии для UI и слоя ввода.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-arena/internal/eventbus"
	"github.com/annel0/voxel-arena/internal/game"
	"github.com/annel0/voxel-arena/internal/logging"
	"github.com/annel0/voxel-arena/internal/middleware"
	"github.com/annel0/voxel-arena/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API сервер
type RestServer struct {
	router     *gin.Engine
	handler    http.Handler
	runner     *game.Runner
	process    *observability.ProcessMetrics
	bus        eventbus.EventBus
	port       string
	logger     *logging.Logger
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                        // адрес для запуска сервера, например ":8088"
	Runner   *game.Runner                  // источник кадров и буфер ввода
	Process  *observability.ProcessMetrics // метрики процесса, может быть nil
	Bus      eventbus.EventBus             // шина событий, может быть nil
	Registry *prometheus.Registry          // реестр для /metrics и HTTP-метрик
	Logger   *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PauseRequest - запрос на паузу или продолжение партии
type PauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("arena_api"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())
	promMw := middleware.NewPrometheusMiddleware("arena_api", config.Registry)
	router.Use(promMw.Handler())

	rs := &RestServer{
		router:  router,
		runner:  config.Runner,
		process: config.Process,
		bus:     config.Bus,
		port:    config.Port,
		logger:  config.Logger,
	}
	rs.setupRoutes(config.Registry)
	rs.handler = gzhttp.GzipHandler(router)

	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes(gatherer prometheus.Gatherer) {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/state", rs.handleState)
		api.GET("/stats", rs.handleStats)
		api.GET("/blocks", rs.handleBlocks)
		api.POST("/input", rs.handleInput)
		api.POST("/pause", rs.handlePause)
	}

	rs.router.GET("/health", rs.handleHealth)
	rs.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Handler возвращает корневой обработчик со сжатием ответов
func (rs *RestServer) Handler() http.Handler {
	return rs.handler
}

// handleState отдаёт последний опубликованный снимок
func (rs *RestServer) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, rs.runner.Frame().Snapshot)
}

// handleStats собирает статистику сущностей, процесса и шины
func (rs *RestServer) handleStats(c *gin.Context) {
	frame := rs.runner.Frame()
	stats := map[string]interface{}{
		"tick":     frame.Snapshot.Tick,
		"state":    frame.Snapshot.State,
		"entities": frame.Entities,
		"blocks":   rs.runner.Blocks().Len(),
	}
	if rs.process != nil {
		stats["server"] = rs.process.Stats()
	}
	if rs.bus != nil {
		stats["eventbus"] = rs.bus.Metrics()
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleBlocks отдаёт все блоки или изменения после ?since=N
func (rs *RestServer) handleBlocks(c *gin.Context) {
	raw, ok := c.GetQuery("since")
	if !ok {
		blocks, seq := rs.runner.Blocks().All()
		c.JSON(http.StatusOK, gin.H{"seq": seq, "blocks": blocks})
		return
	}

	since, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметр since должен быть неотрицательным числом",
		})
		return
	}
	c.JSON(http.StatusOK, rs.runner.Blocks().Since(since))
}

// handleInput принимает ввод игрока до следующего тика
func (rs *RestServer) handleInput(c *gin.Context) {
	var in game.InputState
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	rs.runner.Input().Apply(in)
	c.JSON(http.StatusAccepted, GenericResponse{Success: true, Message: "Ввод принят"})
}

// handlePause ставит запрос паузы; применяется на ближайшем тике
func (rs *RestServer) handlePause(c *gin.Context) {
	var req PauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Ожидается поле paused",
		})
		return
	}

	rs.runner.Input().RequestPause(*req.Paused)
	c.JSON(http.StatusAccepted, GenericResponse{Success: true, Message: "Запрос паузы принят"})
}

// handleHealth - проверка живости
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   rs.runner.Frame().Snapshot.Tick,
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP сервер в отдельной горутине
func (rs *RestServer) Start() {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.logger.Info("✅ REST API сервер запущен на http://localhost%s", rs.port)
	rs.logger.Info("📋 Доступные эндпоинты:")
	rs.logger.Info("   GET  /health       - Проверка состояния")
	rs.logger.Info("   GET  /api/state    - Снимок партии")
	rs.logger.Info("   GET  /api/stats    - Статистика сервера")
	rs.logger.Info("   GET  /api/blocks   - Блоки мира (?since=N - изменения)")
	rs.logger.Info("   POST /api/input    - Ввод игрока")
	rs.logger.Info("   POST /api/pause    - Пауза {\"paused\": true}")
	rs.logger.Info("   GET  /metrics      - Prometheus")
}

// Stop останавливает HTTP сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	rs.logger.Info("🛑 Остановка REST API сервера...")
	return rs.httpServer.Shutdown(ctx)
}
