package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curve-gan/internal/config"
	"curve-gan/internal/dataset"
	"curve-gan/internal/display"
	"curve-gan/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (built-in defaults when empty)")
	addr := flag.String("addr", "localhost:8080", "Address serving the live chart")
	epochs := flag.Int("epochs", 0, "Number of training steps")
	seed := flag.Int64("seed", 0, "PRNG seed (0 picks one from the clock)")
	recordPath := flag.String("record", "", "Append every frame to this log file")
	plotPath := flag.String("plot", "", "Render the latest frame to this PNG")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		Epochs: *epochs,
		Seed:   *seed,
	})
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, err := trainer.New(trainer.RunConfig{
		Epochs:        cfg.Epochs,
		BatchSize:     cfg.BatchSize,
		NIdeas:        cfg.NIdeas,
		ArtComponents: cfg.ArtComponents,
		HiddenUnits:   cfg.HiddenUnits,
		LRG:           cfg.LRG,
		LRD:           cfg.LRD,
		DomainMin:     cfg.DomainMin,
		DomainMax:     cfg.DomainMax,
		RedrawEvery:   cfg.RedrawEvery,
		LogEvery:      cfg.LogEvery,
		Seed:          cfg.Seed,
	})
	if err != nil {
		log.Fatalf("failed to build trainer: %v", err)
	}

	points := tr.Points()
	upper, lower := dataset.UpperBound(points), dataset.LowerBound(points)
	live := display.NewLive(points, upper, lower)
	sinks := []display.Sink{live}

	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			log.Fatalf("create frame log: %v", err)
		}
		defer f.Close()
		sinks = append(sinks, display.NewRecorder(f))
	}
	if *plotPath != "" {
		sinks = append(sinks, &display.PlotSink{Path: *plotPath, Points: points, Upper: upper, Lower: lower})
	}

	srv := &http.Server{Addr: *addr, Handler: live.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("serve: %v", err)
			stop()
		}
	}()
	log.Printf("live chart at http://%s epochs=%d seed=%d", *addr, cfg.Epochs, cfg.Seed)

	if err := tr.Run(ctx, display.Tee(sinks...)); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("training failed: %v", err)
	} else if err == nil {
		log.Printf("training finished; serving the last frame until interrupted")
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
