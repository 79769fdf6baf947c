package internal

import (
	chromedp_adapter "bds-price-service/internal/adapters/browser/chromedp"
	playwright_adapter "bds-price-service/internal/adapters/browser/playwright"
	logger_adapter "bds-price-service/internal/adapters/logger"
	rabbitmq_adapter "bds-price-service/internal/adapters/rabbitmq"
	"bds-price-service/internal/adapters/rest"
	"bds-price-service/internal/adapters/siteprobe"
	"bds-price-service/internal/configs"
	"bds-price-service/internal/contracts"
	"bds-price-service/internal/core/extraction"
	"bds-price-service/internal/core/port"
	"bds-price-service/internal/core/usecase"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	eventProducer *rabbitmq_adapter.Publisher
	connManager   *rabbitmq_adapter.ConnectionManager
	logger        port.LoggerPort
	fluentClient  *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = logger_adapter.NewFluentClient(logger_adapter.FluentConfig{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		fluentClient: fluentClient,
	}

	// --- 2. БРАУЗЕР ---
	var launcher port.BrowserLauncherPort
	switch appConfig.Browser.Driver {
	case configs.DriverChromedp:
		launcher = chromedp_adapter.NewLauncher(appConfig.Browser)
	default:
		launcher = playwright_adapter.NewLauncher(appConfig.Browser)
	}
	appLogger.Info("Browser driver selected", port.Fields{
		"driver":          appConfig.Browser.Driver,
		"deployment_mode": appConfig.Browser.DeploymentMode,
		"max_sessions":    appConfig.Browser.MaxSessions,
	})

	searchHint, err := regexp.Compile(appConfig.Site.SearchHintPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search hint pattern %q: %w", appConfig.Site.SearchHintPattern, err)
	}

	settings := usecase.DefaultCrawlSettings()
	settings.BaseURL = appConfig.Site.BaseURL
	settings.SearchSelectors = appConfig.Site.SearchSelectors
	settings.SearchHint = searchHint
	settings.ResponseMarkers = appConfig.Site.ResponseMarkers
	settings.NavigationTimeout = appConfig.Browser.NavigationTimeout

	// --- 3. СОБЫТИЯ (необязательно) ---
	var lookupEvents port.LookupEventsPort
	if appConfig.RabbitMQ.Enabled {
		contracts.MustLoad()

		connManager, err := rabbitmq_adapter.NewConnectionManager(appConfig.RabbitMQ.URL, baseLogger)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		application.connManager = connManager

		eventProducer, err := rabbitmq_adapter.NewPublisher(rabbitmq_adapter.PublisherConfig{
			ExchangeName:             appConfig.RabbitMQ.Exchange,
			ExchangeType:             "direct",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
		}, connManager, baseLogger)
		if err != nil {
			_ = connManager.Close(context.Background())
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		application.eventProducer = eventProducer

		publisher, err := rabbitmq_adapter.NewLookupEventsPublisher(eventProducer, appConfig.RabbitMQ.RoutingKey)
		if err != nil {
			return nil, err
		}
		lookupEvents = publisher
		appLogger.Info("RabbitMQ lookup events publisher initialized", port.Fields{
			"exchange":    appConfig.RabbitMQ.Exchange,
			"routing_key": appConfig.RabbitMQ.RoutingKey,
		})
	}

	probeAdapter, err := siteprobe.NewSiteProbeAdapter(appConfig.Site.BaseURL, appConfig.Browser.PageTimeout)
	if err != nil {
		return nil, err
	}

	// --- 4. USE CASES ---
	// общий лимит сессий для поиска цены и диагностики
	sessions := usecase.NewSessionPool(launcher, int64(appConfig.Browser.MaxSessions))
	engine := extraction.NewEngine(appConfig.Site.Profile)
	lowestPriceUseCase := usecase.NewFetchLowestPriceUseCase(sessions, engine, lookupEvents, settings)
	pageTitleUseCase := usecase.NewFetchPageTitleUseCase(sessions, appConfig.Browser.NavigationTimeout)
	resolveURLsUseCase := usecase.NewResolveTabURLsUseCase(appConfig.Site.BaseURL)
	probeSiteUseCase := usecase.NewProbeSiteUseCase(probeAdapter, settings)

	appLogger.Info("All use cases initialized", nil)

	apiHandlers := rest.NewBdsHandlers(lowestPriceUseCase, pageTitleUseCase, resolveURLsUseCase, probeSiteUseCase)
	router := rest.NewRouter(apiHandlers, appConfig.Rest.CORSAllowedOrigins, baseLogger)
	application.apiServer = rest.NewServer(appConfig.Rest.PORT, router, baseLogger)

	return application, nil
}

// Run запускает сервер и ждет сигнала завершения
func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if a.apiServer != nil {
			if err := a.apiServer.Stop(ctx); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}
		if a.connManager != nil {
			if err := a.connManager.Close(ctx); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-serverErrors:
		a.logger.Error("HTTP server failed to start, shutting down", err, nil)
		return err
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
