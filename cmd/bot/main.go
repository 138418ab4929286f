package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spssppz/tennisOkt/internal/api"
	"github.com/spssppz/tennisOkt/internal/bot"
	"github.com/spssppz/tennisOkt/internal/config"
	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/events"
	"github.com/spssppz/tennisOkt/internal/google"
	"github.com/spssppz/tennisOkt/internal/logging"
	"github.com/spssppz/tennisOkt/internal/metrics"
	"github.com/spssppz/tennisOkt/internal/models"
	"github.com/spssppz/tennisOkt/internal/repository"
	"github.com/spssppz/tennisOkt/internal/schedule"
	"github.com/spssppz/tennisOkt/internal/service"
	"github.com/spssppz/tennisOkt/internal/store"
	"github.com/spssppz/tennisOkt/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshotStore, err := store.NewFileStore(cfg.Storage.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации хранилища")
		return err
	}

	sched, err := schedule.New(cfg.Schedule.WindowDays, cfg.Schedule.Hours)
	if err != nil {
		logger.Error().Err(err).Msg("Невалидное расписание в конфиге")
		return err
	}

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	defer func() {
		_ = repository.Close(redisClient)
	}()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	eventBus := events.NewEventBus()

	// Воркер зеркала Google Sheets; без учётных данных зеркало выключено
	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker := worker.NewSheetsWorker(snapshotStore, sheetsService, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	bookingService := service.NewBookingService(snapshotStore, sched, eventBus, syncWorker, &logger)
	botMetrics := bot.NewMetrics()

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, bookingService, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	// /metrics отдаёт API-сервер; отдельный порт нужен только без него
	if cfg.Monitoring.PrometheusEnabled && !cfg.API.Enabled {
		metricsServer := metrics.NewServer(cfg.Monitoring.PrometheusPort)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Metrics server error")
			}
		}()
		defer func() {
			_ = metricsServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled {
		backupService := store.NewBackupService(cfg.Storage.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	return startBot(ctx, cfg, stateService, eventBus, bookingService, botMetrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository()
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Info().Msg("Google Sheets не настроен, зеркало отключено")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.BookingSpreadSheetID,
		cfg.Google.BookingSheetName,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	eventBus *events.EventBus,
	bookingService *service.BookingService,
	botMetrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	notifier := bot.NewAdminNotifier(tgService, cfg.Telegram.AdminChatID, logger)
	notifier.Subscribe(eventBus)

	telegramBot, err := bot.NewBot(tgService, cfg, stateService, bookingService, botMetrics, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
