package main

import (
	"context"
	"flag"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"callscribe/internal/config"
	"callscribe/internal/fetch"
	"callscribe/internal/gemini"
	"callscribe/internal/notify"
	"callscribe/internal/queue"
	"callscribe/internal/runner"
	"callscribe/internal/sheet"
	"callscribe/internal/storage"
	"callscribe/pkg/cache"
	"callscribe/pkg/logger"
	"callscribe/pkg/model"
	"callscribe/pkg/resilience"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "path to the input xlsx workbook")
	outputPath := flag.String("output", "", "path for the output workbook (default: <input>_transcripts.xlsx)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := logger.Init(*debug); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting callscribe transcriber")

	if *inputPath == "" {
		logger.Fatal("-input flag is required")
		return
	}
	if *outputPath == "" {
		*outputPath = defaultOutputPath(*inputPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
		return
	}

	job := model.Job{
		Language:     model.LanguageMode(cfg.Job.LanguageMode),
		MinSpeakers:  cfg.Job.MinSpeakers,
		MaxSpeakers:  cfg.Job.MaxSpeakers,
		APIKey:       cfg.Gemini.APIKey,
		FetchTimeout: cfg.Job.FetchTimeout,
		CallTimeout:  cfg.Job.CallTimeout,
	}
	if err := job.Validate(); err != nil {
		logger.Fatal("Invalid job configuration", zap.Error(err))
		return
	}

	wb, rows, err := sheet.Load(*inputPath)
	if err != nil {
		logger.Fatal("Failed to load workbook", zap.Error(err))
		return
	}
	defer wb.Close()

	// Optional collaborators are wired only when configured.
	var s3Downloader fetch.S3Downloader
	if cfg.S3.Endpoint != "" {
		s3Client, err := storage.NewS3Client(
			cfg.S3.Endpoint,
			cfg.S3.AccessKey,
			cfg.S3.SecretKey,
			cfg.S3.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize S3 client", zap.Error(err))
			return
		}
		s3Downloader = s3Client
	}

	var transcriptCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			24*time.Hour,
		)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
			return
		}
		defer redisCache.Close()
		transcriptCache = redisCache
	}

	var archive *storage.Archive
	if cfg.Postgres.DSN != "" {
		archive, err = storage.NewArchive(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
			return
		}
		defer archive.Close()
	}

	var publisher *queue.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = queue.NewPublisher(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
			return
		}
		defer publisher.Close()
	}

	var notifier *notify.TelegramNotifier
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
			return
		}
	}

	// One run ID up front so published row events and the archived run agree.
	runID := uuid.New()

	limiter := resilience.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)
	client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, job.CallTimeout, limiter)
	fetcher := fetch.NewFetcher(job.FetchTimeout, s3Downloader)

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
	retryCfg.InitialInterval = cfg.Retry.InitialInterval
	retryCfg.MaxInterval = cfg.Retry.MaxInterval

	run := runner.NewRunner(fetcher, client)
	run.Retry = retryCfg
	run.Cache = transcriptCache
	run.Concurrency = cfg.Worker.Concurrency
	run.OnProgress = func(completed, total int, label string) {
		logger.Info("Progress",
			zap.Int("completed", completed),
			zap.Int("total", total),
			zap.String("label", label))
	}
	if publisher != nil {
		run.OnResult = func(row model.Row, outcome model.Outcome) {
			event := &queue.RowResultEvent{
				RunID:        runID.String(),
				RowIndex:     row.Index,
				Label:        row.DisplayLabel(),
				RecordingURL: row.RecordingURL,
				Status:       outcome.Status(),
				Detail:       outcome.Detail(),
				Transcript:   outcome.Text,
				CompletedAt:  time.Now().UTC(),
			}
			if err := publisher.PublishRowResult(event); err != nil {
				logger.Warn("Failed to publish row result",
					zap.Int("row", row.Index),
					zap.Error(err))
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now().UTC()
	report, err := run.Run(ctx, job, rows)
	if err != nil {
		logger.Fatal("Batch run failed", zap.Error(err))
		return
	}
	finishedAt := time.Now().UTC()

	printReport(report, run.FirstSuccess())

	if err := wb.WriteTranscripts(rows); err != nil {
		logger.Fatal("Failed to write transcripts", zap.Error(err))
		return
	}
	if err := wb.Save(*outputPath); err != nil {
		logger.Fatal("Failed to save workbook", zap.Error(err))
		return
	}

	if archive != nil {
		if err := archive.SaveRun(ctx, runID, job, report, rows, startedAt, finishedAt); err != nil {
			logger.Warn("Failed to archive run", zap.Error(err))
		}
	}

	if notifier != nil {
		if err := notifier.NotifyRunCompleted(report); err != nil {
			logger.Warn("Failed to send completion notification", zap.Error(err))
		}
	}

	logger.Info("Transcriber finished", zap.String("output", *outputPath))
}

// defaultOutputPath derives the output workbook name from the input name.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if ext == "" {
		ext = ".xlsx"
	}
	return base + "_transcripts" + ext
}

// printReport logs the per-row summary table and the overall counts.
func printReport(report *model.BatchReport, firstSuccess *model.ReportEntry) {
	for i, entry := range report.Entries {
		logger.Info("Row result",
			zap.Int("row", i+1),
			zap.String("label", entry.Label),
			zap.String("status", entry.Outcome.Status()),
			zap.String("detail", entry.Outcome.Detail()))
	}

	succeeded, empty, failed := report.Counts()
	logger.Info("Batch summary",
		zap.Int("total", len(report.Entries)),
		zap.Int("succeeded", succeeded),
		zap.Int("empty", empty),
		zap.Int("failed", failed))

	if firstSuccess != nil {
		sample := model.Truncate(firstSuccess.Outcome.Text, 200)
		logger.Info("Sample transcript",
			zap.String("label", firstSuccess.Label),
			zap.String("text", sample))
	}
}
