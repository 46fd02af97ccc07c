package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"travel_cms/internal/adapters/cmsclient"
	"travel_cms/internal/adapters/observability"
	"travel_cms/internal/app"
	"travel_cms/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	file := flag.String("file", cfg.SeedFile, "seed YAML file")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "seed", cfg.LogLevel)

	log.Info().
		Str("base", cfg.CMSBaseURL).
		Str("file", *file).
		Int("workers", cfg.SeedWorkers).
		Msg("seed starting")

	sf, err := loadSeed(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file")
	}

	client, err := cmsclient.New(cfg.CMSBaseURL, cfg.ClientRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CMS client")
	}
	if err := client.SignIn(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("admin sign-in failed")
	}

	failed := run(ctx, seeder{cl: client, dir: filepath.Dir(*file)}.jobs(sf), cfg.SeedWorkers)
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("seed finished with failures")
		os.Exit(1)
	}
	log.Info().Msg("seed completed")
}

// run executes jobs with at most workers in flight and returns the failure count.
func run(ctx context.Context, jobs []job, workers int) int {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, j := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("seed interrupted")
			break
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer sem.Release(1)

			if err := j.run(ctx); err != nil {
				failed.Add(1)
				log.Warn().Str("item", j.name).Str("reason", app.UserMessage(err)).Err(err).Msg("seed item failed")
				return
			}
			log.Info().Str("item", j.name).Msg("seed item ok")
		}(j)
	}

	wg.Wait()
	return int(failed.Load())
}
