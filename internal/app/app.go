package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mealplan-service/internal/config"
	domainrepo "mealplan-service/internal/domain/repository"
	domainservice "mealplan-service/internal/domain/service"
	cronpkg "mealplan-service/internal/infrastructure/cron"
	infradb "mealplan-service/internal/infrastructure/db"
	"mealplan-service/internal/infrastructure/kafka"
	"mealplan-service/internal/infrastructure/memory"
	"mealplan-service/internal/infrastructure/postgres"
	redisstore "mealplan-service/internal/infrastructure/redis"
	"mealplan-service/internal/infrastructure/sqlite"
	"mealplan-service/internal/service"
	"mealplan-service/internal/transport/grpc"
	"mealplan-service/pkg/daterange"
	"mealplan-service/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App represents the application
type App struct {
	config      *config.Config
	log         *logger.Logger
	grpcServer  *grpc.Server
	rolloverJob *cronpkg.DayRolloverJob

	// closers run in reverse order on shutdown
	closers []func()
}

type stores struct {
	plans    domainrepo.PlanRepository
	progress domainrepo.ProgressRepository
}

// New creates a new application
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With("service", cfg.Service.Name, "env", cfg.Service.Environment)
	log.Info("configuration loaded", "database_driver", cfg.Database.Driver)

	a := &App{config: cfg, log: log}

	repos, err := a.openStores(context.Background())
	if err != nil {
		a.close()
		return nil, err
	}

	cursors, err := a.cursorStore()
	if err != nil {
		a.close()
		return nil, err
	}

	clock, err := daterange.NewSystemClock(cfg.Planning.TimeZone)
	if err != nil {
		a.close()
		return nil, err
	}

	planService := service.NewPlanService(repos.plans, cursors, clock, cfg.Planning.DefaultSpanDays, log)
	progressService := service.NewProgressService(repos.progress, a.achievementTrigger(), cfg.Planning.AchievementTimeout, log)
	log.Info("services initialized")

	if cfg.Scheduler.Enabled {
		a.rolloverJob = cronpkg.NewDayRolloverJob(planService, cfg.Scheduler.CheckInterval, log)
		log.Info("day rollover job initialized", "interval", cfg.Scheduler.CheckInterval)
	} else {
		log.Info("day rollover job is disabled in configuration")
	}

	handler := grpc.NewMealPlanServiceHandler(planService, progressService)
	a.grpcServer = grpc.NewServer(handler, &cfg.GRPC, log)

	return a, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	switch a.config.Database.Driver {
	case config.DriverSQLite:
		conn, err := infradb.OpenSQLite(a.config.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		a.onClose(func() { closeDB(a.log, conn) })
		a.log.Info("opened SQLite database", "path", a.config.Database.SQLitePath)

		return &stores{
			plans:    sqlite.NewPlanRepository(conn),
			progress: sqlite.NewProgressRepository(conn),
		}, nil

	default:
		pool, err := infradb.NewPostgresPool(ctx, &a.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.onClose(pool.Close)
		a.log.Info("connected to PostgreSQL", "host", a.config.Database.Host)

		return postgresStores(pool), nil
	}
}

func postgresStores(pool *pgxpool.Pool) *stores {
	return &stores{
		plans:    postgres.NewPlanRepository(pool),
		progress: postgres.NewProgressRepository(pool),
	}
}

func (a *App) cursorStore() (domainrepo.CursorStore, error) {
	if !a.config.Redis.Enabled {
		a.log.Info("using in-process rollover cursors")
		return memory.NewCursorStore(), nil
	}

	client, err := redisstore.NewRedisClient(&a.config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.onClose(func() { closeRedis(a.log, client) })
	a.log.Info("connected to Redis", "addr", a.config.Redis.Addr)

	return redisstore.NewCursorStore(client, a.config.Redis.CursorTTL), nil
}

func (a *App) achievementTrigger() domainservice.AchievementTrigger {
	if !a.config.Kafka.Enabled {
		return service.NewLogOnlyAchievementTrigger(a.log)
	}

	publisher := kafka.NewAchievementPublisher(&a.config.Kafka, a.log)
	a.onClose(func() {
		if err := publisher.Close(); err != nil {
			a.log.Error("failed to close achievement publisher", "error", err)
		}
	})
	a.log.Info("publishing achievement sync events to Kafka", "topic", a.config.Kafka.Topic)

	return publisher
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func closeDB(log *logger.Logger, conn *sql.DB) {
	if err := conn.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}
}

func closeRedis(log *logger.Logger, client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Error("failed to close Redis client", "error", err)
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *App) Run() error {
	defer a.log.Sync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	if a.rolloverJob != nil {
		if err := a.rolloverJob.Start(); err != nil {
			a.close()
			return fmt.Errorf("failed to start day rollover job: %w", err)
		}
	}

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Error("gRPC server error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	a.log.Info("service started", "port", a.config.GRPC.Port)

	<-quit
	a.log.Info("shutting down")

	a.grpcServer.Stop()

	if a.rolloverJob != nil {
		a.rolloverJob.Stop()
	}

	a.close()

	a.log.Info("shutdown complete")
	return nil
}
