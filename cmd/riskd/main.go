package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/internal/domain/valueobject"
	"github.com/pregcare/riskd/internal/infrastructure/artifact"
	"github.com/pregcare/riskd/internal/infrastructure/cache"
	"github.com/pregcare/riskd/internal/infrastructure/config"
	"github.com/pregcare/riskd/internal/infrastructure/kafka"
	"github.com/pregcare/riskd/internal/infrastructure/messaging"
	"github.com/pregcare/riskd/internal/infrastructure/telemetry"
	grpcpresentation "github.com/pregcare/riskd/internal/presentation/grpc"
	"github.com/pregcare/riskd/internal/presentation/rest"
	"github.com/pregcare/riskd/internal/presentation/stream"
	pkgkafka "github.com/pregcare/riskd/pkg/kafka"
	"github.com/pregcare/riskd/pkg/observability"
)

const serviceName = "riskd"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(cfg.LogConfig())

	logger.Info("starting riskd",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"decision_mode", cfg.DecisionMode,
		"model_path", cfg.ModelPath,
	)

	// Initialize tracing.
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	recorder, err := telemetry.NewRecorder(meterProvider)
	if err != nil {
		logger.Error("failed to create metrics recorder", "error", err)
		os.Exit(1)
	}

	// Load the model and build the classifier. Any failure here is fatal.
	classifier, err := buildClassifier(cfg, logger)
	if err != nil {
		logger.Error("failed to start classifier", "error", err)
		os.Exit(1)
	}
	desc := classifier.Describe()
	logger.Info("model loaded",
		"kind", desc.Kind,
		"classes", len(desc.Classes),
		"features", len(desc.FeatureNames),
		"mode", desc.Mode.String(),
	)

	// Wire the event publisher.
	var (
		publisher port.EventPublisher = messaging.NewLogPublisher(logger)
		producer  *pkgkafka.Producer
	)
	kafkaCfg := cfg.KafkaConfig()
	if kafkaCfg.Enabled() {
		producer, err = pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = producer.Close() }()
		publisher = kafka.NewPublisher(producer, cfg.KafkaVerdictTopic, logger)
	}

	// Wire use cases.
	classifyUC := usecase.NewClassifyFeatures(classifier, publisher, recorder, logger).
		WithPublishTimeout(cfg.PublishTimeout)
	describeUC := usecase.NewDescribeModel(classifier)

	// gRPC server.
	grpcHandler := grpcpresentation.NewRiskHandler(classifyUC, describeUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server.
	healthHandler := rest.NewHealthHandler(serviceName, map[string]string{
		"model": desc.Kind,
		"mode":  desc.Mode.String(),
	})
	router := rest.NewRouter(rest.RouterConfig{
		Predict:        rest.NewPredictHandler(classifyUC, describeUC, logger),
		Health:         healthHandler,
		Metrics:        metricsHandler,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimitRPS,
	})
	httpServer := rest.NewServer(cfg.HTTPAddress(), router, logger)

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.KafkaRequestTopic != "" {
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaRequestTopic,
			stream.NewRequestHandler(classifyUC, logger).Handler(), logger)
		if err != nil {
			logger.Error("failed to create kafka consumer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = consumer.Close() }()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	logger.Info("riskd started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"kafka", kafkaCfg.Enabled(),
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down riskd")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("riskd stopped")
}

// buildClassifier loads the model artifact and threshold named by cfg.
func buildClassifier(cfg *config.Config, logger *slog.Logger) (*service.RiskClassifier, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, model.NewStartupFailure(err)
	}

	m, err := artifact.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	if cfg.PredictionCacheSize > 0 {
		memo, err := cache.NewMemoizedModel(m, cfg.PredictionCacheSize)
		if err != nil {
			return nil, model.NewStartupFailure(err)
		}
		m = memo
	}

	classifierCfg := service.ClassifierConfig{Mode: mode}

	if mode.UsesThreshold() {
		if cfg.ThresholdPath != "" {
			if classifierCfg.Threshold, err = artifact.LoadThreshold(cfg.ThresholdPath); err != nil {
				return nil, err
			}
		} else if classifierCfg.Threshold, err = artifact.ParseThreshold(cfg.Threshold); err != nil {
			return nil, model.NewStartupFailure(err)
		}
	}

	if cfg.HighRiskClass != "" {
		if classifierCfg.HighRiskClass, err = valueobject.ParseClassLabel(cfg.HighRiskClass); err != nil {
			return nil, model.NewStartupFailure(fmt.Errorf("invalid HIGH_RISK_CLASS: %w", err))
		}
	}
	if cfg.NoRiskLabel != "" {
		if classifierCfg.NoRiskLabel, err = valueobject.ParseClassLabel(cfg.NoRiskLabel); err != nil {
			return nil, model.NewStartupFailure(fmt.Errorf("invalid NO_RISK_LABEL: %w", err))
		}
	}

	return service.NewRiskClassifier(model.DefaultSchema(), m, classifierCfg, logger)
}
