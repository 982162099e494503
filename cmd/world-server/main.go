// world-server is the authoritative village simulation: it owns the clock,
// the map and every character record, and serves the websocket sync
// endpoint the character processes talk to.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/engine"
	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/infra/storage"
	"github.com/aldealabs/aldea/internal/network"
	"github.com/aldealabs/aldea/internal/platform/config"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

// compositePersister writes the world snapshot to the JSON document and
// mirrors the character rows into the sqlite ledger.
type compositePersister struct {
	file   *storage.FileStore
	agents storage.AgentRepository
}

func (p *compositePersister) Persist(snap protocol.WorldStateSnapshot) error {
	if err := p.file.Persist(snap); err != nil {
		return err
	}
	for _, a := range snap.Characters {
		if err := p.agents.Upsert(a); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	configPath := flag.String("config", "aldea.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.Server.LogFile != "" {
		log = logger.NewFileLogger(cfg.Server.LogFile)
	} else {
		log = logger.NewLogger()
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error(fmt.Sprintf("fatal: %v", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.InitSQLite(filepath.Join(cfg.Server.DataDir, "ledger.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	eventRepo := storage.NewSQLiteEventRepo(db)
	agentRepo := storage.NewSQLiteAgentRepo(db)
	fileStore := storage.NewFileStore(cfg.Server.StateFile, log)

	ws := engine.NewWorldState(&compositePersister{file: fileStore, agents: agentRepo}, log)
	ws.SetHeartbeatWindow(time.Duration(cfg.Server.HeartbeatWindowS) * time.Second)
	if snap, ok := fileStore.Load(); ok {
		ws.Restore(snap)
		log.Info(fmt.Sprintf("restored world state: day %d of %s, year %d, %d characters",
			snap.Time.Day, snap.Time.Season, snap.Time.Year, len(snap.Characters)))
	} else {
		log.Info("no usable world state found, starting fresh")
	}

	smap := buildMap(cfg, log)

	eventLog := events.NewEventLog(eventRepo)
	hub := network.NewHub(log)
	eventLog.AddListener(hub.Publish)

	ticker := engine.NewTicker(
		time.Duration(cfg.Sim.TickIntervalS*float64(time.Second)),
		cfg.Sim.HoursPerTick,
		log,
	)
	eng := engine.NewEngine(ws, smap, engine.NewWeatherSystem(time.Now().UnixNano()), ticker, eventLog, log)
	eng.Start(ctx)

	go backupLoop(ctx, cfg, db, eng, log)

	server := network.NewServer(eng, hub, log)
	err = server.ListenAndServe(ctx, cfg.Server.Listen)
	log.Info("world server stopped")
	return err
}

func buildMap(cfg config.Config, log *logger.Logger) *engine.SpatialMap {
	if len(cfg.Plots) == 0 {
		return engine.DefaultVillage(log)
	}
	sm := engine.NewSpatialMap(log)
	for _, p := range cfg.Plots {
		pos := world.Position{X: p.X, Y: p.Y}
		sm.AddPlot(pos, engine.BuildingKind(p.Kind))
		if p.Owner != "" {
			if err := sm.Assign(pos, p.Owner); err != nil {
				log.Warn(fmt.Sprintf("plot %s: %v", pos, err))
			}
		}
	}
	return sm
}

// backupLoop periodically snapshots the ledger and, when the game day
// rolls over, archives the finished day's events as compressed JSONL.
func backupLoop(ctx context.Context, cfg config.Config, db *sql.DB, eng *engine.Engine, log *logger.Logger) {
	interval := time.Duration(cfg.Server.BackupIntervalS) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	backupPath := filepath.Join(cfg.Server.DataDir, "ledger.backup.db")
	archiveDir := filepath.Join(cfg.Server.DataDir, "archive")
	lastDay := eng.World().Clock().Day

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := storage.BackupSQLite(db, backupPath); err != nil {
				log.Warn(fmt.Sprintf("ledger backup: %v", err))
			}
			day := eng.World().Clock().Day
			if day != lastDay {
				evs := eng.Events().GetByDay(lastDay)
				if err := storage.ArchiveDay(archiveDir, lastDay, evs); err != nil {
					log.Warn(fmt.Sprintf("archive day %d: %v", lastDay, err))
				} else {
					log.Info(fmt.Sprintf("archived %d events for day %d", len(evs), lastDay))
				}
				lastDay = day
			}
		}
	}
}
