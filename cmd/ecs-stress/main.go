package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/snapshot"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Float64("churn", 0.01, "Share of the population removed and respawned every tick.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu or mem.")
	snapshotRedis := flag.String("snapshot-redis", "", "Redis address to save the final state to.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := ecs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.Level()).With().Timestamp().Logger()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		logger.Fatal().Str("profile", *profileMode).Msg("unknown profile mode")
	}

	logger.Info().Msg("Starting ECS stress test...")

	// 1. Setup Registry, Storage, and Scheduler
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry, ecs.WithLogger(logger), ecs.WithConfig(cfg))
	defer storage.Destroy()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	churnSystem := &ChurnSystem{Rate: *churn, rng: rng}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MoveSystem{})
	scheduler.Register(&FreezeSystem{})
	scheduler.Register(&DamageSystem{rng: rng})
	scheduler.Register(churnSystem)

	// 2. Populate Storage with initial entities
	logger.Info().Int("entities", *entityCount).Str("allocator", cfg.Allocator).Msg("Populating storage")
	for range *entityCount {
		spawn(storage, rng)
	}

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     registry.Len(),
		Systems:        scheduler.GetStats().SystemCount,
		Allocator:      cfg.Allocator,
		Churn:          *churn,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Dur("duration", *duration).Msg("Running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Churned = churnSystem.Removed
	report.Storage = storage.CollectStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := storage.Validate(); err != nil {
		logger.Error().Err(err).Msg("Storage failed validation")
		report.ValidationError = err.Error()
	}

	logger.Info().Msg("Simulation finished.")

	if *snapshotRedis != "" {
		if err := saveSnapshot(*snapshotRedis, storage, report); err != nil {
			logger.Error().Err(err).Str("addr", *snapshotRedis).Msg("Failed to save snapshot")
		}
	}

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("Failed to generate report")
	}
	fmt.Println("--- End of Report ---")

	logger.Info().Msg("Stress test complete.")
}

func saveSnapshot(addr string, storage *ecs.Storage, report *Report) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := time.Now().UTC().Format(time.RFC3339)
	store := snapshot.NewRedisStore(client, "ecs-stress")
	if err := snapshot.Save(ctx, store, key, storage); err != nil {
		return err
	}
	report.SnapshotKey = "ecs-stress:" + key
	return nil
}
