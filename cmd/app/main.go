package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/in/http"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/cache"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/cist"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/groups"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/logger"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/xlsx"
	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
	"github.com/suchimauz/cist-schedule-api/internal/core/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format, cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer mainLogger.Sync()
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheSize":       cfg.Cache.Size,
		"cacheTtl":        cfg.Cache.TTL.String(),
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Справочник групп обязателен, без него сервис бесполезен
	directory, err := groups.LoadFile(cfg.Groups.File)
	if err != nil {
		logger.Error("app.groups.load_failed", out.LogFields{
			"file":  cfg.Groups.File,
			"error": err.Error(),
		})
		os.Exit(1)
	}
	logger.Info("app.groups.loaded", out.LogFields{
		"file":  cfg.Groups.File,
		"count": directory.Len(),
	})

	// Инициализация адаптеров
	cistAdapter := cist.NewCistAdapter(cfg, mainLogger.WithModule("CistAdapter"))
	parser := cist.NewTimetableParser(domain.NewLessonTypeClassifier(cfg.Cist.LessonTypeMarkers))
	cacheAdapter := cache.NewCacheAdapter(cfg, mainLogger.WithModule("CacheAdapter"))

	// Инициализация сервиса
	scheduleService := services.NewScheduleService(
		directory,
		cistAdapter,
		parser,
		cacheAdapter,
		mainLogger.WithModule("ScheduleService"),
	)

	// Настройка HTTP сервера
	router := gin.New()
	router.Use(gin.Recovery(), http.RequestID(), http.AccessLogger(mainLogger.Zap()))
	controller := http.NewScheduleController(
		scheduleService,
		xlsx.NewXlsxExporter(),
		mainLogger.WithModule("HttpController"),
	)
	controller.RegisterRoutes(router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настройка RabbitMQ слушателя, nil если он выключен
	listener, err := rabbitmq.NewCacheHitListener(
		scheduleService,
		cfg,
		mainLogger.WithModule("RabbitMQListener"),
	)
	if err != nil {
		logger.Error("app.rabbitmq.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if listener != nil {
		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}

	server := &nethttp.Server{
		Addr:    cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("app.http.shutdown_failed", out.LogFields{
			"error": err.Error(),
		})
	}

	cancel()
	if err := listener.Stop(); err != nil {
		logger.Error("app.rabbitmq.stop_failed", out.LogFields{
			"error": err.Error(),
		})
	}

	logger.Info("app.shutdown.completed", out.LogFields{})
}
