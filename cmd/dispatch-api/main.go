// README: Entry point; loads config, wires providers and the pipeline, starts the HTTP server.
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

	"dispatch/internal/ai"
	"dispatch/internal/circuit"
	"dispatch/internal/config"
	httptransport "dispatch/internal/http"
	"dispatch/internal/infra"
	"dispatch/internal/logging"
	gmaps "dispatch/internal/maps"
	"dispatch/internal/modules/dedup"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/modules/travel"
	"dispatch/internal/service"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		if errors.Is(err, config.ErrMissingCredential) {
			return 3
		}
		return 2
	}

	logger := logging.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.NewGeminiProvider(ctx, cfg.LLM.Key, cfg.LLM.Model, cfg.LLM.MaxTokens, float32(cfg.LLM.Temperature))
	if err != nil {
		logger.Error("gemini init failed", "error", err)
		return 1
	}
	defer provider.Close()

	geocoder, err := gmaps.NewGeocoder(cfg.Geocoding.Key)
	if err != nil {
		logger.Error("geocoder init failed", "error", err)
		return 1
	}

	var traffic travel.TrafficProvider
	if cfg.Traffic.Key != "" {
		t, err := gmaps.NewTrafficService(cfg.Traffic.Key)
		if err != nil {
			logger.Error("traffic init failed", "error", err)
			return 1
		}
		traffic = t
	}

	breakers := circuit.NewRegistry(cfg.Circuit.OpenAfter, time.Duration(cfg.Circuit.ResetMS)*time.Millisecond)

	var store dedup.Store
	if cfg.Dedup.RedisAddr != "" {
		store = dedup.NewRedisStore(infra.NewRedis(cfg.Dedup.RedisAddr), time.Duration(cfg.Dedup.TTLHours)*time.Hour)
	} else {
		store = dedup.NewMemoryStore(cfg.Dedup.Capacity, time.Duration(cfg.Dedup.TTLHours)*time.Hour)
	}

	dispatcher := service.NewDispatcher(service.Deps{
		Extractor: ai.NewExtractor(provider, breakers.Get("llm"), logger),
		Resolver:  geo.NewResolver(geocoder, breakers.Get("geocoding"), logger),
		Engine:    schedule.NewEngine(travel.NewEstimator(traffic, breakers.Get("traffic"), logger)),
		Dedup:     store,
		Breakers:  breakers,
		Logger:    logger,
		Deadline:  time.Duration(cfg.Request.DeadlineMS) * time.Millisecond,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Dispatcher: dispatcher,
		Breakers:   breakers,
		Logger:     logger,
		Version:    version,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("listening", "addr", cfg.HTTP.Addr, "version", version)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return 1
		}
		return 0
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	}
}
