package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"volume-mapper/config"
	telegram "volume-mapper/internal/api"
	"volume-mapper/internal/container"
	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
	"volume-mapper/internal/infrastructure/opc"
	"volume-mapper/internal/infrastructure/sensor"
	"volume-mapper/internal/infrastructure/storage"
	"volume-mapper/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger.Sugar()); err != nil {
		logger.Sugar().Fatalf("Mapper error: %v", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.SugaredLogger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()

	src, err := openSensor(ctx, cfg, clk, logger)
	if err != nil {
		return err
	}

	// Соединение с контроллером светодиодов
	ledClient := opc.NewClient(opc.Options{Addr: cfg.OPCAddr, Clock: clk}, logger.Named("opc"))
	defer func() {
		err = multierr.Combine(err, ledClient.Close(), src.Close())
	}()

	// Собираем сервисы приложения
	appContainer := container.New(
		cfg.Scan,
		src,
		ledClient,
		storage.NewMemoryOperatorRepository(),
		vision.NewPNGRenderer(),
		clk,
		logger.Named("scan"),
	)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(
			cfg.TelegramToken,
			appContainer.Runner,
			appContainer.SnapshotService,
			appContainer.OperatorService,
			logger.Named("telegram"),
		)
		if err != nil {
			return err
		}
		// До запуска цикла: уведомления идут из его горутины.
		appContainer.ScanService.SetNotifier(bot)
		g.Go(func() error { return bot.Run(ctx) })
	} else {
		logger.Infof("TELEGRAM_TOKEN is not set, running without bot")
	}

	g.Go(func() error { return appContainer.Runner.Run(ctx) })

	g.Go(func() error {
		return config.Watch(ctx, cfg.SettingsPath, logger.Named("config"), func(s entity.ScanSettings) {
			if err := appContainer.Runner.Configure(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warnw("apply settings", "error", err)
			}
		})
	})

	logger.Infow("Mapper is running...",
		"sensor", cfg.Sensor,
		"opc", cfg.OPCAddr,
		"leds", cfg.Scan.NumLeds,
		"frames_per_led", cfg.Scan.FramesPerLed,
	)
	return g.Wait()
}

func openSensor(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *zap.SugaredLogger) (port.Sensor, error) {
	if cfg.Sensor == config.SensorCamera {
		cam, err := sensor.OpenCamera(ctx, sensor.CameraOptions{}, logger.Named("camera"))
		if err != nil {
			return nil, err
		}
		return cam, nil
	}
	// Шар появляется только после прогрева фона.
	return sensor.NewSynthetic(sensor.SyntheticOptions{
		WarmupFrames: max(cfg.Scan.BackgroundWarmupFrames+1, sensor.DefaultObjectDelay),
		Clock:        clk,
	}), nil
}
