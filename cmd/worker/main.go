package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/feichai0017/pdf-toolbox/config"
	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/internal/ocr"
	"github.com/feichai0017/pdf-toolbox/internal/pdfops"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
	"github.com/feichai0017/pdf-toolbox/pkg/worker"
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
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		log.Error("Failed to init OCR engine", logger.Error(err))
		os.Exit(1)
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
		log.Error("Failed to init queue", logger.Error(err))
		os.Exit(1)
	}
	defer q.Close()

	workerCfg := &worker.Config{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
		Concurrency:   appCfg.Queue.Concurrency,
		Queues:        worker.DefaultQueues(),
	}

	batchWorker, err := worker.NewBatchWorker(workerCfg, coordinator, q, log)
	if err != nil {
		log.Error("Failed to create batch worker", logger.Error(err))
		os.Exit(1)
	}

	if err := batchWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Batch worker started",
		logger.Int("concurrency", appCfg.Queue.Concurrency),
		logger.String("redis", redisCfg.Addr),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	batchWorker.Stop()
	log.Info("Worker stopped")
}
