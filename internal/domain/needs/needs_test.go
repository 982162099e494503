package needs

import "testing"

func TestValuesStayClamped(t *testing.T) {
	m := NewModel()

	// Hammer the model with an arbitrary mix of mutations.
	m.Modify(Energy, -500)
	m.Modify(Hunger, 500)
	m.Tick(1000)
	m.Modify(Bladder, 50)
	m.Tick(0.5)
	m.Modify(Fun, -3)

	for need, value := range m.Values() {
		if value < 0 || value > 100 {
			t.Errorf("need %s out of range: %f", need, value)
		}
	}
}

func TestTickAppliesDecayRates(t *testing.T) {
	m := NewModel()
	m.Tick(10)

	// bladder decays fastest (0.6/h), hygiene slowest (0.2/h)
	if got := m.Value(Bladder); got != 94 {
		t.Errorf("bladder after 10h: got %f, want 94", got)
	}
	if got := m.Value(Hygiene); got != 98 {
		t.Errorf("hygiene after 10h: got %f, want 98", got)
	}
}

func TestModifyUnknownNeedIsNoOp(t *testing.T) {
	m := NewModel()
	m.Modify(Need("charisma"), 50)
	if _, ok := m.Values()["charisma"]; ok {
		t.Error("unknown need must not be created")
	}
}

func TestUrgentNeedsStrictThreshold(t *testing.T) {
	m := NewModel()
	m.Set(Energy, 29.9)
	m.Set(Hunger, 30) // exactly at threshold: not urgent

	urgent := m.UrgentNeeds(30)
	if len(urgent) != 1 || urgent[0] != Energy {
		t.Errorf("expected exactly [energy], got %v", urgent)
	}
}

func TestStatusBuckets(t *testing.T) {
	m := NewModel()
	m.Set(Energy, 19.9)
	m.Set(Hunger, 20)
	m.Set(Hygiene, 39.9)
	m.Set(Fun, 40)
	m.Set(Bladder, 69.9)
	m.Set(Social, 70)

	status := m.Status()
	want := map[Need]string{
		Energy:  StatusCritical,
		Hunger:  StatusWarning,
		Hygiene: StatusWarning,
		Fun:     StatusModerate,
		Bladder: StatusModerate,
		Social:  StatusGood,
	}
	for need, expected := range want {
		if status[need] != expected {
			t.Errorf("%s at %f: got %s, want %s", need, m.Value(need), status[need], expected)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, StatusCritical},
		{19.99, StatusCritical},
		{20, StatusWarning},
		{39.99, StatusWarning},
		{40, StatusModerate},
		{69.99, StatusModerate},
		{70, StatusGood},
		{100, StatusGood},
	}
	for _, tc := range cases {
		if got := Classify(tc.value); got != tc.want {
			t.Errorf("Classify(%f) = %s, want %s", tc.value, got, tc.want)
		}
	}
}
