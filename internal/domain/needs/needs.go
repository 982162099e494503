// Package needs models the decaying vital attributes of a villager.
// This package is PURE and must NOT import any infrastructure packages.
package needs

// Need names a vital attribute.
type Need string

const (
	Energy  Need = "energy"
	Hunger  Need = "hunger"
	Hygiene Need = "hygiene"
	Fun     Need = "fun"
	Bladder Need = "bladder"
	Social  Need = "social"
)

// Status buckets. A value belongs to the first bucket whose upper bound it is
// strictly below.
const (
	StatusCritical = "critical" // value < 20
	StatusWarning  = "warning"  // value < 40
	StatusModerate = "moderate" // value < 70
	StatusGood     = "good"
)

const (
	criticalBelow    = 20.0
	warningBelow     = 40.0
	comfortableBelow = 70.0
)

// Model holds the current need values and their decay rates. Values are
// always clamped to [0,100] after any mutation.
type Model struct {
	values     map[Need]float64
	decayRates map[Need]float64 // per hour of game time
}

// NewModel creates a model with all needs full and the default decay rates.
func NewModel() *Model {
	return &Model{
		values: map[Need]float64{
			Energy:  100,
			Hunger:  100,
			Hygiene: 100,
			Fun:     100,
			Bladder: 100,
			Social:  100,
		},
		decayRates: map[Need]float64{
			Energy:  0.5,
			Hunger:  0.3,
			Hygiene: 0.2,
			Fun:     0.4,
			Bladder: 0.6,
			Social:  0.2,
		},
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Tick decays every need by rate*dt and clamps.
func (m *Model) Tick(dt float64) {
	for need, value := range m.values {
		m.values[need] = clamp(value - m.decayRates[need]*dt)
	}
}

// Modify adjusts a need by amount, clamped. Unknown needs are ignored so
// object catalogs with extra effects never fail the caller.
func (m *Model) Modify(need Need, amount float64) {
	value, ok := m.values[need]
	if !ok {
		return
	}
	m.values[need] = clamp(value + amount)
}

// Set overwrites a need value (clamped). Used when rehydrating a villager
// from a snapshot. Unknown needs are ignored.
func (m *Model) Set(need Need, value float64) {
	if _, ok := m.values[need]; !ok {
		return
	}
	m.values[need] = clamp(value)
}

// Value returns the current value of a need, or 0 for unknown needs.
func (m *Model) Value(need Need) float64 {
	return m.values[need]
}

// Values returns a copy of the current values keyed by need name, in the
// shape the wire snapshot carries.
func (m *Model) Values() map[string]float64 {
	out := make(map[string]float64, len(m.values))
	for need, value := range m.values {
		out[string(need)] = value
	}
	return out
}

// UrgentNeeds returns the needs strictly below threshold, unordered.
func (m *Model) UrgentNeeds(threshold float64) []Need {
	var urgent []Need
	for need, value := range m.values {
		if value < threshold {
			urgent = append(urgent, need)
		}
	}
	return urgent
}

// Status classifies every need into its bucket.
func (m *Model) Status() map[Need]string {
	status := make(map[Need]string, len(m.values))
	for need, value := range m.values {
		switch {
		case value < criticalBelow:
			status[need] = StatusCritical
		case value < warningBelow:
			status[need] = StatusWarning
		case value < comfortableBelow:
			status[need] = StatusModerate
		default:
			status[need] = StatusGood
		}
	}
	return status
}

// Classify buckets a single value using the shared thresholds. Used by the
// server to label agent records without holding a full model.
func Classify(value float64) string {
	switch {
	case value < criticalBelow:
		return StatusCritical
	case value < warningBelow:
		return StatusWarning
	case value < comfortableBelow:
		return StatusModerate
	default:
		return StatusGood
	}
}
