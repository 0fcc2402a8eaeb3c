package main

import (
	"context"
	"os"

	"cluster-pricing/config"
	"cluster-pricing/models"
	"cluster-pricing/notify"
	"cluster-pricing/services"
	"cluster-pricing/storage"
	"cluster-pricing/utils"
)

// Exit codes reflect the worst outcome of the run
const (
	exitSuccess        = 0
	exitFailed         = 1
	exitPartialFailure = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// ================== Bootstrap ====================
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("Cluster Pricing Analysis")
	logger.Info("Input: %s | Output: %s", cfg.InputPath, cfg.OutputPath)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	s3opts := storage.S3Options{
		Region:         cfg.AWSRegion,
		Endpoint:       cfg.S3Endpoint,
		ForcePathStyle: cfg.S3ForcePathStyle,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
	}

	// =============== Record stores ===================================
	source, err := storage.Open(ctx, cfg.InputPath, s3opts, logger)
	if err != nil {
		logger.Error("Cannot open input %s: %v", cfg.InputPath, err)
		return exitFailed
	}
	defer source.Close()

	var primary storage.RecordStore = source
	if cfg.OutputPath != cfg.InputPath {
		primary, err = storage.Open(ctx, cfg.OutputPath, s3opts, logger)
		if err != nil {
			logger.Error("Cannot open output %s: %v", cfg.OutputPath, err)
			return exitFailed
		}
		defer primary.Close()
	}

	var sink storage.RecordSink = primary
	if storage.IsRemote(cfg.OutputPath) {
		sink = &storage.RetryingSink{Sink: primary, Attempts: cfg.WriteRetries, Backoff: cfg.RetryBackoff, Logger: logger}
	}

	// ========= Redis: optional mirror of output tables ============
	if cfg.RedisAddr != "" {
		mirror, err := storage.NewRedisWriter(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		}, logger)
		if err != nil {
			logger.Error("Redis mirror unavailable: %v", err)
			return exitFailed
		}
		defer mirror.Close()
		sink = storage.MultiSink{sink, &storage.RetryingSink{
			Sink: mirror, Attempts: cfg.WriteRetries, Backoff: cfg.RetryBackoff, Logger: logger,
		}}
	}

	// =========== Clustering pipeline ======================
	pipeline := services.NewPipeline(source, sink, logger)
	report, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("Run aborted: %v", err)
	}
	services.PrintRunReport(os.Stdout, report, 10)

	// ==== RabbitMQ: run-completed event ============================
	if cfg.AMQPURL != "" {
		publishRun(ctx, cfg, report, logger)
	}

	switch report.Status {
	case models.RunSuccess:
		return exitSuccess
	case models.RunPartialFailure:
		return exitPartialFailure
	default:
		return exitFailed
	}
}

// publishRun reports the run to the broker. Failures here never change the run status.
func publishRun(ctx context.Context, cfg *config.Config, report *models.RunReport, logger *utils.Logger) {
	pub, err := notify.Dial(cfg.AMQPURL, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("Run event not published: %v", err)
		return
	}
	defer pub.Close()

	if err := pub.PublishRun(ctx, report); err != nil {
		logger.Warn("Run event not published: %v", err)
	}
}
