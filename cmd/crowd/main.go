// crowd is a load generator: it floods the world server with synthetic
// villagers that register, wander and sync as fast as the flags allow,
// reporting throughput once a second.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aldealabs/aldea/internal/client"
	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/platform/config"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

var positions = []world.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}

func main() {
	configPath := flag.String("config", "aldea.yaml", "path to the config file")
	count := flag.Int("n", 20, "synthetic villagers to run")
	interval := flag.Duration("interval", 250*time.Millisecond, "delay between syncs per villager")
	duration := flag.Duration("duration", 0, "stop after this long (0 = run until interrupted)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var ok, failed int64
	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runOne(ctx, cfg, log, id, *interval, &ok, &failed)
		}(i)
	}

	go report(ctx, log, &ok, &failed)
	wg.Wait()
	log.Info(fmt.Sprintf("crowd done: %d ok, %d failed", atomic.LoadInt64(&ok), atomic.LoadInt64(&failed)))
}

func runOne(ctx context.Context, cfg config.Config, log *logger.Logger, id int, interval time.Duration, ok, failed *int64) {
	name := fmt.Sprintf("crowd-%03d", id)
	rng := rand.New(rand.NewSource(int64(id) + time.Now().UnixNano()))
	c := client.New(cfg.Client, nil)
	defer c.Close()

	if err := c.Connect(ctx); err != nil {
		log.Warn(fmt.Sprintf("%s: %v", name, err))
		atomic.AddInt64(failed, 1)
		return
	}
	pos := positions[rng.Intn(len(positions))]
	if err := c.Register(ctx, snapshot(name, pos, rng)); err != nil {
		log.Warn(fmt.Sprintf("%s register: %v", name, err))
		atomic.AddInt64(failed, 1)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rng.Intn(4) == 0 {
				pos = positions[rng.Intn(len(positions))]
			}
			var err error
			if rng.Intn(3) == 0 {
				_, err = c.GetWorldState(ctx)
			} else {
				err = c.Update(ctx, snapshot(name, pos, rng))
			}
			if err != nil {
				atomic.AddInt64(failed, 1)
			} else {
				atomic.AddInt64(ok, 1)
			}
		}
	}
}

func snapshot(name string, pos world.Position, rng *rand.Rand) protocol.AgentSnapshot {
	return protocol.AgentSnapshot{
		Name:       name,
		Position:   pos,
		Online:     true,
		LastUpdate: float64(time.Now().UnixNano()) / 1e9,
		Status:     "good",
		Needs: map[string]float64{
			"energy": 50 + rng.Float64()*50,
			"hunger": 50 + rng.Float64()*50,
		},
	}
}

func report(ctx context.Context, log *logger.Logger, ok, failed *int64) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var lastOK int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := atomic.LoadInt64(ok)
			log.Info(fmt.Sprintf("crowd: %d ops/s, %d failed total", cur-lastOK, atomic.LoadInt64(failed)))
			lastOK = cur
		}
	}
}
