// Package object holds the read-only catalog of usable game objects.
// Entries are looked up by id and never mutated at runtime, so a loaded
// catalog may be shared across goroutines without locking.
package object

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aldealabs/aldea/internal/domain/activity"
)

// Kind names an object template.
type Kind string

const (
	Bed      Kind = "bed"
	Fridge   Kind = "fridge"
	Stove    Kind = "stove"
	TV       Kind = "tv"
	Computer Kind = "computer"
	Toilet   Kind = "toilet"
	Shower   Kind = "shower"
	Couch    Kind = "couch"
	Phone    Kind = "phone"
	Door     Kind = "door"
)

// ActivityTemplate describes the timed activity an object offers.
type ActivityTemplate struct {
	Kind        activity.Kind      `yaml:"kind"`
	Duration    float64            `yaml:"duration"` // seconds
	NeedChanges map[string]float64 `yaml:"need_changes"`
}

// GameObject is an immutable catalog entry.
type GameObject struct {
	Kind        Kind               `yaml:"kind"`
	Actions     []string           `yaml:"actions"`
	NeedEffects map[string]float64 `yaml:"need_effects"`
	Description string             `yaml:"description"`
	Activity    *ActivityTemplate  `yaml:"activity,omitempty"`
}

// Catalog maps object ids to their templates.
type Catalog struct {
	items map[string]GameObject
}

// Get looks up a template by id.
func (c *Catalog) Get(id string) (GameObject, bool) {
	obj, ok := c.items[id]
	return obj, ok
}

// IDs returns all known object ids, unordered.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	return ids
}

// Load reads a YAML catalog from path. The file is a map of object id to
// template; it replaces the defaults wholesale.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	items := make(map[string]GameObject)
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &Catalog{items: items}, nil
}

// DefaultCatalog returns the built-in household objects.
func DefaultCatalog() *Catalog {
	return &Catalog{items: map[string]GameObject{
		"bed": {
			Kind:        Bed,
			Actions:     []string{"sleep"},
			NeedEffects: map[string]float64{"energy": 5},
			Description: "A bed for sleeping",
			Activity: &ActivityTemplate{
				Kind:        activity.Sleeping,
				Duration:    8 * 3600,
				NeedChanges: map[string]float64{"energy": 0.004},
			},
		},
		"fridge": {
			Kind:        Fridge,
			Actions:     []string{"open", "grab_food"},
			NeedEffects: map[string]float64{"hunger": 10},
			Description: "Keeps food fresh",
			Activity: &ActivityTemplate{
				Kind:        activity.FridgeUse,
				Duration:    60,
				NeedChanges: map[string]float64{"hunger": 0.3},
			},
		},
		"stove": {
			Kind:        Stove,
			Actions:     []string{"cook"},
			NeedEffects: map[string]float64{"hunger": 30, "fun": 5},
			Description: "For cooking proper meals",
		},
		"tv": {
			Kind:        TV,
			Actions:     []string{"watch"},
			NeedEffects: map[string]float64{"fun": 15},
			Description: "Shows whatever is on",
			Activity: &ActivityTemplate{
				Kind:        activity.TVWatching,
				Duration:    1800,
				NeedChanges: map[string]float64{"fun": 0.02, "energy": -0.002},
			},
		},
		"computer": {
			Kind:        Computer,
			Actions:     []string{"browse", "play", "write"},
			NeedEffects: map[string]float64{"fun": 20, "social": 10},
			Description: "A desktop computer",
			Activity: &ActivityTemplate{
				Kind:        activity.ComputerUse,
				Duration:    3600,
				NeedChanges: map[string]float64{"fun": 0.015, "social": 0.005},
			},
		},
		"toilet": {
			Kind:        Toilet,
			Actions:     []string{"use"},
			NeedEffects: map[string]float64{"bladder": 80},
			Description: "Standard toilet",
			Activity: &ActivityTemplate{
				Kind:        activity.ToiletUse,
				Duration:    120,
				NeedChanges: map[string]float64{"bladder": 0.7},
			},
		},
		"shower": {
			Kind:        Shower,
			Actions:     []string{"shower"},
			NeedEffects: map[string]float64{"hygiene": 60},
			Description: "Hot water most days",
			Activity: &ActivityTemplate{
				Kind:        activity.ShowerUse,
				Duration:    600,
				NeedChanges: map[string]float64{"hygiene": 0.1},
			},
		},
		"couch": {
			Kind:        Couch,
			Actions:     []string{"sit", "nap"},
			NeedEffects: map[string]float64{"energy": 5, "fun": 5},
			Description: "A comfortable couch",
		},
		"phone": {
			Kind:        Phone,
			Actions:     []string{"call"},
			NeedEffects: map[string]float64{"social": 25},
			Description: "Lets a villager call anyone",
		},
		"door": {
			Kind:        Door,
			Actions:     []string{"open", "close"},
			NeedEffects: map[string]float64{},
			Description: "The front door",
		},
	}}
}
