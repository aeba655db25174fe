package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain/records"
	"github.com/carebook/carebook/internal/platform/filestore"
	"github.com/carebook/carebook/internal/platform/middleware"
)

const healthStatus = "Healthcare System Running"

func main() {
	rootCmd := &cobra.Command{
		Use:   "carebook-server",
		Short: "Clinic records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(storeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the records data file",
	}
	cmd.PersistentFlags().String("file", "", "data file (defaults to DATA_FILE)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the number of records in each table",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd)
			if err != nil {
				return err
			}
			counts := snap.Counts()
			for _, table := range []string{"patients", "appointments", "bmi", "symptoms"} {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", table, counts[table])
			}
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the data file parses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadSnapshot(cmd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.AddCommand(statsCmd, checkCmd)
	return cmd
}

func loadSnapshot(cmd *cobra.Command) (*records.Snapshot, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.DataFile
	}
	return filestore.New[records.Snapshot](path).Load()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if lvl, err := cfg.Level(); err == nil {
		logger = logger.Level(lvl)
	}
	return logger
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	bodyLimit, err := middleware.ParseLimit(cfg.BodyLimit)
	if err != nil {
		return fmt.Errorf("invalid BODY_LIMIT: %w", err)
	}

	// Logger
	logger := newLogger(cfg)

	// Records
	file := filestore.New[records.Snapshot](cfg.DataFile)
	store := records.NewStore(file, logger.With().Str("component", "store").Logger())
	svc := records.NewService(store, nil)
	if err := svc.SeedIDs(context.Background()); err != nil {
		return fmt.Errorf("seed ids: %w", err)
	}
	lastPatient, lastAppointment := svc.LastIDs()
	logger.Info().
		Str("file", file.Path()).
		Interface("records", store.Snapshot().Counts()).
		Int("last_patient_id", lastPatient).
		Int("last_appointment_id", lastAppointment).
		Msg("records loaded")

	e := newRouter(cfg, logger, svc, bodyLimit)

	// Graceful shutdown
	go func() {
		addr := cfg.Addr()
		logger.Info().Str("addr", addr).Msg("starting server")
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
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newRouter(cfg *config.Config, logger zerolog.Logger, svc *records.Service, bodyLimit int64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	// Static frontend
	e.GET("/", func(c echo.Context) error {
		return c.File(filepath.Join(cfg.StaticDir, "index.html"))
	})

	api := e.Group("/api",
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}),
	)

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": healthStatus})
	})

	records.NewHandler(svc).RegisterRoutes(api)

	return e
}
