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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/telecare/telecare/internal/accounts"
	"github.com/telecare/telecare/internal/appointments"
	"github.com/telecare/telecare/internal/auth"
	"github.com/telecare/telecare/internal/config"
	"github.com/telecare/telecare/internal/drugs"
	"github.com/telecare/telecare/internal/httpserver"
	"github.com/telecare/telecare/internal/metrics"
	"github.com/telecare/telecare/internal/otp"
	"github.com/telecare/telecare/internal/platform/db"
	"github.com/telecare/telecare/internal/platform/mail"
	"github.com/telecare/telecare/internal/prediction"
	"github.com/telecare/telecare/internal/prescriptions"
	"github.com/telecare/telecare/internal/signaling"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "telecare-server",
		Short: "Telehealth API and video signaling server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importDrugsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
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

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var sender mail.Sender
	if cfg.SMTPAddr != "" {
		sender = mail.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		logger.Warn().Msg("SMTP_ADDR not set, verification codes are logged instead of mailed")
		sender = mail.NewLogSender(logger)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	m := metrics.New()

	accountRepo := accounts.NewRepoPG(pool)
	otpSvc := otp.NewService(otp.NewRepoPG(pool), accountRepo, sender, logger)
	accountSvc := accounts.NewService(accountRepo, issuer, otpSvc, logger)

	apptSvc := appointments.NewService(
		appointments.NewSlotRepoPG(pool),
		appointments.NewAppointmentRepoPG(pool),
	)
	rxSvc := prescriptions.NewService(prescriptions.NewRepoPG(pool))
	drugSvc := drugs.NewService(drugs.NewRepoPG(pool))
	predictor := prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout)

	sig := signaling.NewServer(signaling.Config{
		Registry:             signaling.NewMemoryRegistry(),
		Identities:           issuer,
		Metrics:              m,
		Logger:               logger,
		MaxMessageBytes:      cfg.MaxSignalMessageBytes,
		MaxMessagesPerSecond: cfg.MaxSignalMessagesPerSecond,
	})

	srv := httpserver.New(httpserver.Deps{
		Config:        cfg,
		Logger:        logger,
		Pool:          pool,
		TokenIssuer:   issuer,
		Metrics:       m,
		Signaling:     sig,
		Accounts:      accounts.NewHandler(accountSvc),
		Appointments:  appointments.NewHandler(apptSvc),
		Prescriptions: prescriptions.NewHandler(rxSvc),
		OTP:           otp.NewHandler(otpSvc),
		Drugs:         drugs.NewHandler(drugSvc),
		Prediction:    prediction.NewHandler(predictor, logger),
	})

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
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

			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
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

			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
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

func importDrugsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-drugs",
		Short: "Import the drug reference from a CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := drugs.NewService(drugs.NewRepoPG(pool))
			parsed, inserted, err := svc.ImportCSV(context.Background(), f)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Printf("Parsed %d row(s), inserted %d new drug(s).\n", parsed, inserted)
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the drug reference CSV")
	return cmd
}

func connect() (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}
