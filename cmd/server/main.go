package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/Oniqq60/wiki_media/internal/cfg"
	"github.com/Oniqq60/wiki_media/internal/logging"
	"github.com/Oniqq60/wiki_media/internal/notification"
)

func main() {
	conf, err := cfg.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Init(logging.Options{
		Level:      conf.LogLevel,
		File:       conf.LogFile,
		Production: conf.IsProduction(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf); err != nil {
		log.Fatalf("media service: %v", err)
	}
	log.Info("media service stopped")
}

func run(ctx context.Context, conf cfg.Config) error {
	deps, err := connect(ctx, conf)
	if err != nil {
		return err
	}
	defer deps.Close()

	router, err := newRouter(conf, deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + conf.HTTPPort,
		Handler:      router,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		IdleTimeout:  conf.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		log.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if conf.KafkaGroupID != "" {
		consumer := notification.NewKafkaConsumer(
			conf.KafkaBrokers,
			conf.KafkaTopic,
			conf.KafkaGroupID,
			notification.NewEventHandler(notification.NewLogNotifier(nil)),
		)
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.Errorf("server error: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	return runErr
}
