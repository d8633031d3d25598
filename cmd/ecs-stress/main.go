// Command ecs-stress runs a synthetic world through the track dispatcher and reports frame
// times, per-system timings and memory use.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/DoumanAsh/vn/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	workers := flag.Int("workers", 0, "Systems run in parallel within a stage. 0 uses GOMAXPROCS.")
	seed := flag.Int64("seed", 1, "Seed for the random entity population.")
	tick := flag.Duration("tick", 0, "Run the track on a fixed ticker instead of as fast as possible. Frame times are not sampled.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting ECS stress test...")
	rng := rand.New(rand.NewSource(*seed))

	// 1. Setup Registry, Storage, and Dispatcher
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)
	storage.AddSingleton(Census{})
	pool := ecs.NewWorkerPool(*workers)
	dispatcher, err := ecs.NewBuilder().
		WithBundle(track, stressBundle{rng: rng}).
		Build(storage, pool)
	if err != nil {
		log.Fatalf("Failed to build dispatcher: %v", err)
	}

	// 2. Populate Storage with initial entities
	log.Printf("Populating storage with %d entities...\n", *entityCount)
	for i := 0; i < *entityCount; i++ {
		// Spawn an entity with 1 to 5 random components
		storage.Spawn(randomComponents(rng, rng.Intn(componentCount)+1)...)
	}
	log.Println("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     componentCount,
		Systems:        systemCount,
		Workers:        pool.Workers(),
		Tick:           *tick,
		Stages:         dispatcher.Scheduler(track).Stages(),
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	scheduler := dispatcher.Scheduler(track)
	startTime := time.Now()
	var totalUpdates int64
	if *tick > 0 {
		scheduler.Run(ctx, *tick)
		totalUpdates = scheduler.GetStats().Systems[0].ExecutionCount
	} else {
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
				dispatcher.Dispatch(track, deltaTime.Seconds())
				updateDuration := time.Since(updateStart)

				report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
				totalUpdates++
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Scheduler = scheduler.GetStats()
	report.FinalEntities = storage.EntityCount()
	var census *Census
	if storage.ReadSingleton(&census) {
		report.Census = *census
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
