package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"americano-app/internal/config"
	"americano-app/internal/export"
	"americano-app/internal/live"
	"americano-app/internal/service"
	"americano-app/internal/store"
	"americano-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := newLogger(cfg)

	appStore, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("store")
	}
	defer appStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.New(appStore, log)
	if err := svc.Load(ctx); err != nil {
		log.WithError(err).Error("snapshot load failed, serving the default tournament")
	}

	hub := live.NewHub(log, cfg.CORSOrigins)
	go hub.Run(ctx)
	svc.Subscribe(hub)

	var publisher *export.Publisher
	if cfg.Export.Enabled() {
		uploader, err := export.NewS3Uploader(ctx, cfg.Export)
		if err != nil {
			log.WithError(err).Fatal("export uploader")
		}
		publisher = export.NewPublisher(uploader, "")
	}

	auth, err := web.NewAuth(web.AuthOptions{
		PasswordHash: cfg.AdminPasswordHash,
		Password:     cfg.AdminPassword,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.JWTTTL,
		SecureCookie: cfg.Prod(),
	})
	if err != nil {
		log.WithError(err).Fatal("admin auth")
	}

	server := web.NewServer(web.Options{
		Service:     svc,
		Hub:         hub,
		Auth:        auth,
		Publisher:   publisher,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		DevMode:     !cfg.Prod(),
	})
	handler := server.Routes()

	if cfg.Lambda() {
		log.Info("starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Prod() || cfg.Lambda() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func openStore(cfg config.Config) (store.SnapshotStore, error) {
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pgStore, err := store.NewPostgresStore(dsn, store.PostgresOptions{MigrationsDir: cfg.PostgresMigrationsDir})
		if err != nil {
			return nil, err
		}
		return pgStore, nil
	}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		sqliteStore, err := store.NewSQLiteStore(path, store.SQLiteOptions{MigrationsDir: cfg.DBMigrationsDir})
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	}
	return store.NewMemoryStore(), nil
}
