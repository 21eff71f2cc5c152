package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/pdf-toolbox/api/handlers"
	"github.com/feichai0017/pdf-toolbox/api/routes"
	cfg "github.com/feichai0017/pdf-toolbox/config"
	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/internal/ocr"
	"github.com/feichai0017/pdf-toolbox/internal/pdfops"
	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
	"github.com/feichai0017/pdf-toolbox/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	appCfg, err := cfg.LoadAppConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(appCfg.Logging.Level),
		logger.WithEncoding(appCfg.Logging.Encoding),
		logger.WithOutputPaths([]string{"stdout", "logs/server.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	engine, err := ocr.NewEngine(ctx, ocr.Config{
		Backend: appCfg.OCR.Backend,
		Textract: ocr.TextractConfig{
			Region:        cfg.GetTextractConfig().Region,
			AccessKey:     cfg.GetTextractConfig().AccessKey,
			SecretKey:     cfg.GetTextractConfig().SecretKey,
			MinConfidence: 60,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to init OCR engine", logger.Error(err))
	}

	toolkit := pdfops.NewToolkit(engine, log)
	coordinator := batch.New(toolkit, log, batch.WithWorkers(appCfg.Workers))

	redisCfg := cfg.GetRedisConfig()
	q, err := queue.NewAsynqQueue(&queue.QueueConfig{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
		Concurrency:   appCfg.Queue.Concurrency,
		ResultTTL:     time.Duration(appCfg.Queue.ResultTTLHours) * time.Hour,
	})
	if err != nil {
		log.Fatal("Failed to init queue", logger.Error(err))
	}
	defer q.Close()

	var store storage.Storage
	if appCfg.Storage.Backend != "" {
		store, err = storage.NewStorage(storage.StorageType(appCfg.Storage.Backend), log)
		if err != nil {
			log.Fatal("Failed to init storage", logger.Error(err))
		}
	}

	batchService := svc.NewService(coordinator, q, store, log, nil)

	h := handlers.NewHandlers(batchService, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    appCfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", appCfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
