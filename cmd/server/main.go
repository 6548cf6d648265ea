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

	"log/slog"

	"accountsvc/internal/config"
	"accountsvc/internal/domain"
	"accountsvc/internal/email"
	"accountsvc/internal/httpapi"
	"accountsvc/internal/service"
	"accountsvc/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		credsSvc *service.CredentialsService
		resetSvc *service.PasswordResetService
		dbPing   func(context.Context) error
	)

	if cfg.DBDSN != "" {
		if err := postgres.Migrate(context.Background(), cfg.DBDSN); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		tokens := postgres.NewResetTokensStore(pgPool)

		credsSvc = &service.CredentialsService{Users: users}
		resetSvc = &service.PasswordResetService{
			Store:    tokens,
			Users:    users,
			Sender:   newResetMailer(cfg),
			TokenTTL: cfg.ResetTokenTTL,
			Logger:   logger,
		}
		dbPing = pgPool.Ping

		if err := bootstrapUser(context.Background(), logger, credsSvc, cfg.BootstrapEmail, cfg.BootstrapPassword); err != nil {
			logger.Error("bootstrap user failed", "err", err)
			os.Exit(1)
		}
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         dbPing,
		Credentials:    credsSvc,
		Reset:          resetSvc,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	if resetSvc != nil {
		go runTokenReaper(reaperCtx, logger, resetSvc)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// bootstrapUser seeds one account from config when the table is empty,
// replacing a hash literal in a migration. An already-registered email
// is not an error.
func bootstrapUser(ctx context.Context, logger *slog.Logger, creds *service.CredentialsService, bootstrapEmail, bootstrapPassword string) error {
	if bootstrapPassword == "" {
		return nil
	}
	if len(bootstrapPassword) < 12 {
		return errors.New("APP_BOOTSTRAP_PASSWORD: must be at least 12 characters")
	}

	u, err := creds.Register(ctx, bootstrapEmail, bootstrapPassword)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			logger.Info("bootstrap: user already exists", "email", bootstrapEmail)
			return nil
		}
		return fmt.Errorf("bootstrap: create user: %w", err)
	}

	logger.Info("bootstrap: created user", "email", bootstrapEmail, "user_id", u.ID)
	return nil
}

// runTokenReaper periodically deletes expired reset tokens. Expired
// tokens are already rejected logically; this keeps the table small.
func runTokenReaper(ctx context.Context, logger *slog.Logger, resetSvc *service.PasswordResetService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := resetSvc.ReapExpired(reapCtx)
			cancel()
			if err != nil {
				logger.Error("reset token reap failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("reaped expired reset tokens", "count", n)
			}
		}
	}
}

func newResetMailer(cfg config.Config) service.ResetSender {
	if cfg.SMTPHost == "" || cfg.SMTPFromEmail == "" {
		return nil
	}
	return &email.ResetMailer{
		Settings: email.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLSMode:  cfg.SMTPTLSMode,
		},
		FromEmail:    cfg.SMTPFromEmail,
		FromName:     cfg.SMTPFromName,
		PublicURL:    cfg.PublicURL,
		TokenTTLText: cfg.ResetTokenTTL.String(),
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
