package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medico/hospital/internal/config"
	"github.com/medico/hospital/internal/domain/billing"
	"github.com/medico/hospital/internal/domain/clinical"
	"github.com/medico/hospital/internal/domain/encounter"
	"github.com/medico/hospital/internal/domain/guard"
	"github.com/medico/hospital/internal/domain/identity"
	"github.com/medico/hospital/internal/domain/reference"
	"github.com/medico/hospital/internal/platform/auth"
	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/ident"
	"github.com/medico/hospital/internal/platform/metrics"
	"github.com/medico/hospital/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Hospital records and billing API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func poolOptions(cfg *config.Config) db.PoolOptions {
	return db.PoolOptions{
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		HealthCheckPeriod: cfg.DBHealthCheck,
		ApplicationName:   "hospital-server",
	}
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(ctx, cfg.DatabaseURL, poolOptions(cfg))
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(cfg.Level()).With().Timestamp().Logger()
	}
	return logger
}

// newServer builds the echo instance with every route registered. The pool
// is not touched until a request arrives.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger, m *metrics.Collector) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics(m))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSigningKey),
			Leeway:     30 * time.Second,
		}))
	}
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
	}))
	apiV1.Use(db.ConnMiddleware(pool))

	// Shared infrastructure
	tx := db.NewTransactor(pool)
	ids := ident.NewGenerator(pool, m)
	refs := reference.NewResolver(pool)
	policy := guard.NewPolicy(pool, m)

	// Identity domain
	identitySvc := identity.NewService(identity.NewPatientRepo(pool), identity.NewProviderRepo(pool),
		identity.NewDepartmentHeadRepo(pool), tx, ids, refs, policy)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Encounter domain
	encounterSvc := encounter.NewService(encounter.NewEncounterRepo(pool), encounter.NewDiagnosisRepo(pool),
		encounter.NewLabTestRepo(pool), tx, ids, refs, policy)
	encounter.NewHandler(encounterSvc).RegisterRoutes(apiV1)

	// Billing domain
	claims := billing.NewClaimRepo(pool)
	syncEngine := billing.NewSyncEngine(claims, claims, ids, refs, tx, m, logger)
	billingSvc := billing.NewService(billing.NewInsurerRepo(pool), claims, billing.NewDenialRepo(pool),
		syncEngine, tx, ids, refs, policy)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)

	// Clinical domain: procedure and medication writes resync the claim
	clinicalSvc := clinical.NewService(clinical.NewProcedureRepo(pool), clinical.NewMedicationRepo(pool),
		tx, ids, refs, syncEngine)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(apiV1)

	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, poolOptions(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := newServer(cfg, pool, logger, metrics.NewCollector("hospital"))
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
