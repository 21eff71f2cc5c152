package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cfg "github.com/feichai0017/pdf-toolbox/config"
	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/internal/ocr"
	"github.com/feichai0017/pdf-toolbox/internal/pdfops"
	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
)

var (
	configPath string
	outputDir  string
	workers    int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfbatch",
	Short: "Batch PDF processing from the command line",
	Long: `pdfbatch applies one PDF operation to many files at once:
convert, merge, split, watermark, ocr, page-numbers, compress,
encrypt and decrypt. Files are processed on a bounded worker pool
and every file's outcome is reported individually.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Worker pool size (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}

// newEnv assembles everything the commands share: config, logger, and
// the batch service with a fully wired toolkit.
type env struct {
	cfg     *cfg.AppConfig
	log     logger.Logger
	service *svc.BatchService
}

func newEnv(ctx context.Context, withQueue bool) (*env, error) {
	appCfg, err := cfg.LoadAppConfig(configPath)
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		appCfg.Workers = workers
	}

	level := appCfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(
		logger.WithLevel(level),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

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
		return nil, fmt.Errorf("init ocr engine: %w", err)
	}

	toolkit := pdfops.NewToolkit(engine, log)
	coordinator := batch.New(toolkit, log, batch.WithWorkers(appCfg.Workers))

	var q queue.Queue
	if withQueue {
		redisCfg := cfg.GetRedisConfig()
		q, err = queue.NewAsynqQueue(&queue.QueueConfig{
			RedisAddr:     redisCfg.Addr,
			RedisPassword: redisCfg.Password,
			RedisDB:       redisCfg.DB,
			Concurrency:   appCfg.Queue.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("init queue: %w", err)
		}
	}

	service := svc.NewService(coordinator, q, nil, log, &svc.ServiceConfig{
		MaxInputs:     500,
		AllowedTypes:  []string{".pdf"},
		DefaultOutput: appCfg.OutputDir,
	})

	return &env{cfg: appCfg, log: log, service: service}, nil
}
