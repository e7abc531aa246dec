package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"duesgate/internal/acl"
	"duesgate/internal/dues"
	duesHandler "duesgate/internal/dues/handler"
	"duesgate/internal/fhe/sim"
	jwttoken "duesgate/internal/jwt_token"
	"duesgate/internal/member"
	"duesgate/internal/oracle"
	"duesgate/internal/platform/config"
	"duesgate/internal/platform/httpserver"
	"duesgate/internal/platform/logger"
	"duesgate/internal/platform/metrics"
	"duesgate/internal/platform/middleware"
	redisplatform "duesgate/internal/platform/redis"
	"duesgate/internal/status"
	id "duesgate/pkg/domain"
	"duesgate/pkg/platform/audit"
	kafkapub "duesgate/pkg/platform/audit/publisher"
	auditmemory "duesgate/pkg/platform/audit/store/memory"
	auditpostgres "duesgate/pkg/platform/audit/store/postgres"
	auditworker "duesgate/pkg/platform/audit/worker"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.LogDebug {
		level = slog.LevelDebug
	}
	log := logger.New(level)
	slog.SetDefault(log)

	owner, err := id.ParsePrincipalID(cfg.OwnerPrincipal)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Grant store: redis when configured, in-memory otherwise.
	var grantStore acl.Store = acl.NewInMemoryStore()
	rdb, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		grantStore = acl.NewRedisStore(rdb)
		log.Info("grant store: redis")
	} else {
		log.Info("grant store: in-memory")
	}
	grants := acl.NewManager(grantStore, acl.WithMetrics(m))

	capability := sim.New(grants)

	// Audit store: postgres outbox when configured, in-memory otherwise.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := auditpostgres.Migrate(ctx, db); err != nil {
			return err
		}
		auditStore = auditpostgres.New(db)
		log.Info("audit store: postgres")
	} else {
		log.Info("audit store: in-memory")
	}
	recorder := audit.NewRecorder(auditStore, log, 256,
		audit.WithRequestIDFunc(middleware.GetRequestID),
	)

	cells := member.NewCells(member.NewInMemoryStore(), capability, grants, recorder,
		member.WithMetrics(m),
	)
	evaluator := status.NewEvaluator(cells, capability)

	svc, err := dues.NewService(cells, evaluator, grants, recorder, log,
		owner, cfg.GraceDays, cfg.OpBudget,
		dues.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "duesgate", "duesgate")

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	if cfg.OracleEnabled {
		log.Warn("development decryption oracle enabled; do not run this in production")
		oracle.New(grants, capability, log).Register(router, jwtService)
	}
	duesHandler.New(svc, log, m, jwtService).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafkapub.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		worker := auditworker.New(publisher, recorder.Queue(), log)
		group.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		log.Info("audit publisher: kafka", "topic", cfg.Kafka.Topic)
	}

	group.Go(func() error {
		log.Info("starting duesgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
