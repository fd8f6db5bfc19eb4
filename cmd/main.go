package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/config"
	httpController "github.com/qrstudio/qrstudio-bot/internal/adapters/controller/http"
	setupBot "github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/setup"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/validator"
	"github.com/qrstudio/qrstudio-bot/pkg/logger"
	"golang.org/x/sync/errgroup"

	_ "time/tzdata"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Get()
	b, err := bot.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	setupBot.Setup(b)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Start()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Log.Info("Bot stopping")
		b.Stop()
		return nil
	})

	if cfg.HTTP.Enabled {
		srv, errSrv := newHTTPServer(cfg)
		if errSrv != nil {
			log.Panic(errSrv)
		}

		g.Go(func() error {
			logger.Log.Infof("HTTP server listening on %s", srv.Addr)
			if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
				return errListen
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Log.Errorf("Stopped with error: %v", err)
		os.Exit(1)
	}
}

func newHTTPServer(cfg *config.Config) (*http.Server, error) {
	httpLogger, err := logger.Named("http")
	if err != nil {
		return nil, err
	}

	userService := service.NewUserService(postgres.NewUserStorage(cfg.Database), cfg.QR.Defaults, validator.MinContrast)
	qrService := service.NewQrService(
		postgres.NewQRCodeStorage(cfg.Database),
		cfg.Redis.Renders,
		logo.NewLoader(cfg.QR.LogosDir),
		userService,
		httpLogger,
		service.QrServiceOptions{
			Defaults: cfg.QR.Defaults,
			MinSize:  cfg.QR.MinSize,
			MaxSize:  cfg.QR.MaxSize,
			CacheTTL: cfg.QR.CacheTTL,
		},
	)

	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           httpController.NewHandler(qrService, httpLogger).Init(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
