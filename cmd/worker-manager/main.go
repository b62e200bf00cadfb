// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"credit-decision-workers/internal/common/aws"
	"credit-decision-workers/internal/common/camunda"
	"credit-decision-workers/internal/common/config"
	apperrors "credit-decision-workers/internal/common/errors"
	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/common/observability"
	"credit-decision-workers/internal/credit/pipeline"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/pkg/registry"

	ala "credit-decision-workers/internal/workers/credit/analyze-loan-application"
	pcd "credit-decision-workers/internal/workers/credit/publish-credit-decision"
)

const shutdownTimeout = 30 * time.Second

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLog); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	pol, err := policy.Load(cfg.Credit.PolicyFile)
	if err != nil {
		return apperrors.NewPolicyInvalidError(err)
	}

	reg, err := registry.Default()
	if err != nil {
		return err
	}
	if errs := reg.Validate(); len(errs) > 0 {
		return fmt.Errorf("activity registry invalid: %w", errors.Join(errs...))
	}

	obs := observability.New(cfg.Observability.ServiceName)
	tracer, err := observability.NewTracer(observability.TracingConfig{
		ServiceName:    cfg.Observability.ServiceName,
		Environment:    cfg.App.Environment,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	client, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, zapLog)
	if err != nil {
		return err
	}
	zapLog.Info("Zeebe client connected successfully")

	workers := camunda.NewWorkerSet(client.GetClient(), zapLog)

	// --- analyze-loan-application ---
	if wcfg := workerConfig(cfg, reg, ala.TaskType); wcfg.Enabled {
		schema, err := reg.InputSchema(ala.TaskType)
		if err != nil {
			return err
		}
		handler, err := ala.NewHandler(ala.HandlerOptions{
			Config: &ala.Config{
				Timeout:           config.GetDuration(wcfg.Timeout),
				EvaluationTimeout: config.GetDuration(cfg.Credit.EvaluationTimeout),
			},
			Evaluator:     pipeline.New(pol, log),
			Schema:        schema,
			Tracer:        tracer,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			return fmt.Errorf("create %s handler: %w", ala.TaskType, err)
		}
		workers.Start(ala.TaskType, wcfg, handler.Handle)
	}

	// --- publish-credit-decision ---
	if wcfg := workerConfig(cfg, reg, pcd.TaskType); wcfg.Enabled {
		snsCfg := cfg.Integrations.AWS.SNS
		var snsClient pcd.SNSService
		if snsCfg.Enabled {
			c, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				return fmt.Errorf("load AWS config: %w", err)
			}
			snsClient = c
		}
		handler, err := pcd.NewHandler(&pcd.Config{
			Enabled:       snsCfg.Enabled,
			TopicARN:      snsCfg.DecisionTopicARN,
			RatePerSecond: snsCfg.PublishRatePerSecond,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, snsClient, log)
		if err != nil {
			return fmt.Errorf("create %s handler: %w", pcd.TaskType, err)
		}
		workers.Start(pcd.TaskType, wcfg, handler.Handle)
	}

	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.Running()))

	server := newHealthServer(cfg.Server.Address, client, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health/metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping workers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		workers.Close(shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping health server", zap.Error(err))
		}
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error flushing traces", zap.Error(err))
		}
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping meter provider", zap.Error(err))
		}
		if err := client.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// workerConfig prefers the config file and falls back to the registry's
// timeout for workers the file does not mention.
func workerConfig(cfg *config.Config, reg *registry.ActivityRegistry, taskType string) config.WorkerConfig {
	if _, ok := cfg.Workers[taskType]; ok {
		return config.GetWorkerConfig(cfg, taskType)
	}
	wcfg := config.GetWorkerConfig(cfg, taskType)
	if act, ok := reg.Find(taskType); ok {
		if d, err := act.TimeoutDuration(); err == nil && d > 0 {
			wcfg.Timeout = int(d.Milliseconds())
		}
		wcfg.MaxRetries = act.Retries
	}
	return wcfg
}
