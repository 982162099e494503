// villager runs one autonomous character: it decays needs, runs the
// activity machine, asks the decision oracle what to do next, and syncs
// itself to the world server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aldealabs/aldea/internal/client"
	"github.com/aldealabs/aldea/internal/domain/activity"
	"github.com/aldealabs/aldea/internal/domain/needs"
	"github.com/aldealabs/aldea/internal/domain/object"
	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/infra/oracle"
	"github.com/aldealabs/aldea/internal/platform/config"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

const urgentThreshold = 30.0

func main() {
	configPath := flag.String("config", "aldea.yaml", "path to the config file")
	name := flag.String("name", "", "character name (required)")
	x := flag.Int("x", 0, "starting plot x")
	y := flag.Int("y", 0, "starting plot y")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "villager: -name is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger()
	defer log.Sync()

	if err := run(cfg, log, *name, world.Position{X: *x, Y: *y}); err != nil {
		log.Error(fmt.Sprintf("%s: %v", *name, err))
		os.Exit(1)
	}
}

type villager struct {
	name     string
	pos      world.Position
	model    *needs.Model
	mgr      *activity.Manager
	catalog  *object.Catalog
	brain    oracle.Oracle
	memory   oracle.Knowledge
	voice    oracle.Speech
	sync     *client.Client
	log      *logger.Logger
}

func run(cfg config.Config, log *logger.Logger, name string, start world.Position) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := object.DefaultCatalog()
	if cfg.Sim.CatalogPath != "" {
		loaded, err := object.Load(cfg.Sim.CatalogPath)
		if err != nil {
			return err
		}
		catalog = loaded
	}

	v := &villager{
		name:    name,
		pos:     start,
		model:   needs.NewModel(),
		mgr:     activity.NewManager(),
		catalog: catalog,
		brain:   oracle.NewWithFallback(oracle.NewRuleOracle()),
		memory:  oracle.NewMemoryKnowledge(100),
		voice:   oracle.NullSpeech{},
		sync:    client.New(cfg.Client, log),
		log:     log,
	}
	defer v.sync.Close()

	if err := v.sync.Connect(ctx); err != nil {
		return err
	}
	if err := v.sync.Register(ctx, v.snapshot()); err != nil {
		return err
	}
	log.Info(name + " joined the village at " + start.String())

	interval := time.Duration(cfg.Sim.TickIntervalS * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(name + " leaving the village")
			return nil
		case <-ticker.C:
			if err := v.tick(ctx, cfg.Sim.HoursPerTick); err != nil {
				log.Warn(fmt.Sprintf("%s tick: %v", name, err))
			}
		}
	}
}

// tick runs one life step: decay, activity, decision, sync.
func (v *villager) tick(ctx context.Context, gameHours float64) error {
	v.model.Tick(gameHours)

	vals := v.mgr.Update(v.model.Values())
	for k, val := range vals {
		v.model.Set(needs.Need(k), val)
	}
	if v.mgr.NeedsExit() {
		kind := v.mgr.Current().Kind
		v.mgr.Exit()
		v.memory.Remember(ctx, v.name, "finished "+string(kind))
	}

	snap, err := v.sync.GetWorldState(ctx)
	if err != nil {
		return err
	}

	if v.mgr.State() == activity.StateIdle {
		v.decide(ctx, snap)
	}
	return v.sync.Update(ctx, v.snapshot())
}

func (v *villager) decide(ctx context.Context, snap protocol.WorldStateSnapshot) {
	urgent := v.model.UrgentNeeds(urgentThreshold)
	names := make([]string, len(urgent))
	for i, n := range urgent {
		names[i] = string(n)
	}

	d, err := v.brain.Decide(ctx, oracle.Situation{
		Name:      v.name,
		Needs:     v.model.Values(),
		Urgent:    names,
		TimeOfDay: snap.Time.CurrentTime,
		Weather:   snap.Weather.Current,
	})
	if err != nil || d.Action != "use_object" {
		return
	}

	obj, ok := v.catalog.Get(d.Target)
	if !ok || obj.Activity == nil {
		// No timed activity for this object; apply its one-shot effects.
		if ok {
			for need, amount := range obj.NeedEffects {
				v.model.Modify(needs.Need(need), amount)
			}
		}
		return
	}
	if v.mgr.Start(obj.Activity.Kind, obj.Activity.Duration, obj.Activity.NeedChanges, nil) {
		v.memory.Remember(ctx, v.name, "started "+string(obj.Activity.Kind)+": "+d.Rationale)
		v.voice.Speak(ctx, v.name, d.Rationale)
		v.log.Info(fmt.Sprintf("%s starts %s (%s)", v.name, obj.Activity.Kind, d.Rationale))
	}
}

// snapshot builds the wire view of this villager. Status is the bucket of
// the worst need.
func (v *villager) snapshot() protocol.AgentSnapshot {
	vals := v.model.Values()
	worst := 100.0
	for _, val := range vals {
		if val < worst {
			worst = val
		}
	}
	return protocol.AgentSnapshot{
		Name:       v.name,
		Position:   v.pos,
		Online:     true,
		LastUpdate: float64(time.Now().UnixNano()) / 1e9,
		Status:     needs.Classify(worst),
		Needs:      vals,
	}
}
