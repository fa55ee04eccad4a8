// Command relmap-sim runs the in-memory Table API simulator with a seeded
// demo topology, so relmap can be tried without a real CMDB instance.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relmap/relmap/internal/sim"
)

var version = "0.3.0"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := sim.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	store := sim.NewStore()
	if err := sim.Seed(store); err != nil {
		log.WithError(err).Fatal("seeding store")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           sim.NewRouter(store, log, cfg, version),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("simulator listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
