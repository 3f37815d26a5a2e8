package sensor

import (
	"math"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		kind Kind
		v    float64
		want Status
	}{
		{Light, 199.9, Danger},
		{Light, 200, Warning},
		{Light, 399.9, Warning},
		{Light, 400, Normal},
		{Light, 650, Normal},
		{Light, -10, Danger},

		{Humidity, 29.9, Danger},
		{Humidity, 30, Warning},
		{Humidity, 39.9, Warning},
		{Humidity, 40, Normal},
		{Humidity, 60, Normal},
		{Humidity, 60.1, Warning},
		{Humidity, 70, Warning},
		{Humidity, 70.1, Danger},

		{Temperature, 17.9, Danger},
		{Temperature, 18, Warning},
		{Temperature, 19.9, Warning},
		{Temperature, 20, Normal},
		{Temperature, 25, Normal},
		{Temperature, 25.1, Warning},
		{Temperature, 28, Warning},
		{Temperature, 28.1, Danger},

		{Kind("pressure"), 1e9, Normal},
		{Temperature, math.NaN(), Normal},
	}
	for _, tt := range tests {
		got := Classify(tt.kind, tt.v)
		if got != tt.want {
			t.Errorf("Classify(%s, %v) = %s, want %s", tt.kind, tt.v, got, tt.want)
		}
	}
}

func TestStepClampsAndRounds(t *testing.T) {
	tests := []struct {
		prev, delta, min, max float64
		want                  float64
	}{
		{22, 0, 15, 35, 22},
		{22.04, 0, 15, 35, 22},
		{22.06, 0, 15, 35, 22.1},
		{22, 6, 15, 35, 28},
		{34, 5, 15, 35, 35},
		{16, -5, 15, 35, 15},
		{650, -1000, 0, 1000, 0},
	}
	for _, tt := range tests {
		got := Step(tt.prev, tt.delta, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("Step(%v, %v, %v, %v) = %v, want %v", tt.prev, tt.delta, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestGeneratorStaysInRange(t *testing.T) {
	g := NewGenerator(nil)
	v := 50.0
	for i := 0; i < 1000; i++ {
		v = g.Next(v, 0, 100)
		if v < 0 || v > 100 {
			t.Fatalf("step %d: %v out of range", i, v)
		}
		if math.Abs(v*10-math.Round(v*10)) > 1e-9 {
			t.Fatalf("step %d: %v not rounded to one decimal", i, v)
		}
	}
}

func TestDefaults(t *testing.T) {
	now := time.Date(2026, 2, 21, 14, 30, 0, 0, time.Local)
	readings := Defaults(now)

	if len(readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(readings))
	}
	for _, r := range readings {
		if r.History.Len() != 1 || r.History.Last() != r.Value {
			t.Errorf("%s: history %v not seeded from %v", r.ID, r.History, r.Value)
		}
		if r.Status != Normal {
			t.Errorf("%s: initial status %s, want normal", r.ID, r.Status)
		}
		if !r.Time.Equal(now) {
			t.Errorf("%s: time %v, want %v", r.ID, r.Time, now)
		}
	}
	if readings[2].ID != TemperatureID || readings[2].Min != 15 || readings[2].Max != 35 {
		t.Errorf("temperature reading: got %+v", readings[2])
	}
}

func TestObserveClamps(t *testing.T) {
	r := Defaults(time.Now())[2]
	r = r.Observe(40, time.Now())
	if r.Value != 35 || r.Status != Danger {
		t.Errorf("got value %v status %s, want 35 danger", r.Value, r.Status)
	}
	if r.History.Len() != 2 || r.History.Last() != 35 {
		t.Errorf("history: got %v", r.History)
	}
}

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{LightID, "Lighting"},
		{HumidityID, "Relative Humidity"},
		{TemperatureID, "Temperature"},
		{"co2-1", "Sensor"},
	}
	for _, tt := range tests {
		got := FriendlyName(tt.id)
		if got != tt.want {
			t.Errorf("FriendlyName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
	if KindOf(HumidityID) != Humidity || KindOf("nope") != "" {
		t.Errorf("KindOf mismatch")
	}
}
