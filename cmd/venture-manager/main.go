package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venture-builder/internal/bundle"
	"venture-builder/internal/common/auth"
	awsclients "venture-builder/internal/common/aws"
	"venture-builder/internal/common/camunda"
	"venture-builder/internal/common/config"
	"venture-builder/internal/common/database"
	"venture-builder/internal/common/github"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/observability"
	"venture-builder/internal/common/vercel"
	"venture-builder/internal/store"
	"venture-builder/internal/workers/shared"
	"venture-builder/pkg/registry"

	pn "venture-builder/internal/workers/communication/publish-notify"
	ea "venture-builder/internal/workers/export/export-archive"
	gv "venture-builder/internal/workers/generation/generate-venture"
	pd "venture-builder/internal/workers/publish/publish-deployment"
	pr "venture-builder/internal/workers/publish/publish-repository"
)

const registryPath = "configs/activity-registry.json"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pingCloser is a connection that can be verified and released.
type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// connectWithRetry opens and pings a connection with backoff. A client whose ping fails is
// closed before the next attempt.
func connectWithRetry[C pingCloser](ctx context.Context, open func() (C, error), maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) (C, error) {
	var conn C
	err := retryWithBackoff(func() error {
		c, err := open()
		if err != nil {
			return err
		}
		if err := c.Ping(ctx); err != nil {
			if cerr := c.Close(); cerr != nil {
				log.Warn("Closing failed connection", zap.String("operation", operationName), zap.Error(cerr))
			}
			return err
		}
		conn = c
		return nil
	}, maxRetries, initialDelay, log, operationName)
	return conn, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting venture manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Redis (projects, credentials) ---
	redis, err := connectWithRetry(ctx, func() (*database.RedisClient, error) {
		return database.NewRedis(cfg.Database.Redis)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	projects := store.NewProjectStore(redis.Client, time.Duration(cfg.Database.Redis.ProjectTTL)*time.Hour)
	credentials := store.NewCredentialStore(redis.Client)

	// --- PostgreSQL (publish history, optional) ---
	var history shared.HistoryRecorder
	if cfg.Database.Postgres.Enabled() {
		pg, err := connectWithRetry(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		historyStore := store.NewHistoryStore(pg.DB)
		if err := historyStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("publish history schema failed", zap.Error(err))
		}
		history = historyStore
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		zapLog.Info("PostgreSQL not configured, publish history disabled")
	}

	// --- Keycloak (optional) ---
	var authorizer shared.Authorizer
	if cfg.Auth.KeycloakEnabled() {
		authorizer = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
		zapLog.Info("Keycloak token introspection enabled")
	}

	// --- AWS (notifications, optional) ---
	var sesClient pn.SESService
	var snsClient pn.SNSService
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclients.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			sesClient = awsclients.NewSESClient(awsCfg)
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient = awsclients.NewSNSClient(awsCfg)
		}
	}

	assembler := bundle.NewAssembler(nil)
	githubAPI := github.NewClient(cfg.GitHubBaseURL(), config.GetDuration(cfg.Publishing.GitHub.Timeout))
	vercelAPI := vercel.NewClient(cfg.VercelBaseURL(), cfg.Publishing.Vercel.TeamID, config.GetDuration(cfg.Publishing.Vercel.Timeout))

	// --- Workers ---
	handlers := map[string]camunda.HandlerFunc{
		gv.TaskType: gv.NewHandler(gv.LoadConfig(cfg), projects, log).Handle,
		ea.TaskType: ea.NewHandler(ea.LoadConfig(cfg), projects, assembler, log).Handle,
		pr.TaskType: pr.NewHandler(pr.LoadConfig(cfg), pr.Dependencies{
			API:         githubAPI,
			Projects:    projects,
			Credentials: credentials,
			Authorizer:  authorizer,
			History:     history,
			Assembler:   assembler,
			Recorder:    obs,
		}, log).Handle,
		pd.TaskType: pd.NewHandler(pd.LoadConfig(cfg), pd.Dependencies{
			API:         vercelAPI,
			Projects:    projects,
			Credentials: credentials,
			Authorizer:  authorizer,
			History:     history,
			Assembler:   assembler,
			Recorder:    obs,
		}, log).Handle,
		pn.TaskType: pn.NewHandler(pn.LoadConfig(cfg), sesClient, snsClient, log).Handle,
	}

	checkRegistry(cfg, handlers, zapLog)

	var workers []*camunda.Worker
	for taskType, handle := range handlers {
		w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType),
			camunda.Observe(taskType, obs, handle), zapLog)
		if w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"zeebe": "ok", "redis": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redis.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		writeStatus(w, status, state, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Venture manager stopped gracefully")
}

// checkRegistry compares the served task types and their job timeouts with the activity
// registry. A missing registry file is not fatal.
func checkRegistry(cfg *config.Config, handlers map[string]camunda.HandlerFunc, log *zap.Logger) {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		log.Warn("Activity registry not loaded", zap.String("path", registryPath), zap.Error(err))
		return
	}

	taskTypes := make([]string, 0, len(handlers))
	for tt := range handlers {
		taskTypes = append(taskTypes, tt)

		activity, ok := reg.Find(tt)
		if !ok {
			continue
		}
		want, err := activity.TimeoutDuration()
		if err != nil {
			log.Warn("Activity registry entry has a bad timeout", zap.String("taskType", tt), zap.Error(err))
			continue
		}
		if got := config.GetDuration(config.GetWorkerConfig(cfg, tt).Timeout); want > 0 && got < want {
			log.Warn("Worker job timeout is shorter than the registered activity timeout",
				zap.String("taskType", tt),
				zap.Duration("configured", got),
				zap.Duration("registered", want),
			)
		}
	}
	if missing := reg.Missing(taskTypes); len(missing) > 0 {
		log.Warn("Task types missing from activity registry", zap.Strings("taskTypes", missing))
	}
	if extra := reg.Unimplemented(taskTypes); len(extra) > 0 {
		log.Info("Registered activities not served here", zap.Strings("taskTypes", extra))
	}
	log.Info("Activity registry loaded", zap.String("version", reg.Version), zap.Int("activities", len(reg.Activities)))
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
