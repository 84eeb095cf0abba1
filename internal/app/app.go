package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/avstrong/campusnest/internal/auth"
	"github.com/avstrong/campusnest/internal/config"
	"github.com/avstrong/campusnest/internal/idgen/simple"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/migration"
	"github.com/avstrong/campusnest/internal/pricing"
	"github.com/avstrong/campusnest/internal/rental"
	"github.com/avstrong/campusnest/internal/storage/memory"
	"github.com/avstrong/campusnest/internal/transport/web"
)

// Run starts the sandbox backend and blocks until a termination signal.
func Run(l *logger.Logger, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	storage := memory.New(memory.Config{L: l})
	if err := migration.Up(ctx, l, storage, cfg.Sandbox.MessCapacity); err != nil {
		return fmt.Errorf("up seed migration: %w", err)
	}

	l.LogInfo("Seed migration has been applied")

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token issuer: %w", err)
	}

	rentalManager := rental.New(l, storage, simple.New(""), pricing.New(storage))

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      l.StdLogger(),
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  cfg.HTTP.LivenessEndpoint,
	}

	srv, err := web.New(ctx, webConf, rentalManager, issuer)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
