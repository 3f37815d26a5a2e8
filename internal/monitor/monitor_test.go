package monitor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/live"
	"github.com/luki/homedash/internal/settings"
	"github.com/luki/homedash/internal/store"
)

type idleStreamer struct{}

func (idleStreamer) Run(ctx context.Context, _ string, _ func(live.Sample)) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestModel(t *testing.T) (Model, *store.Store, *settings.File) {
	t.Helper()
	st := store.New(settings.Defaults(), store.WithInterval(time.Hour), store.WithStreamer(idleStreamer{}))
	t.Cleanup(st.Close)
	f, err := settings.Open(filepath.Join(t.TempDir(), "settings.env"))
	if err != nil {
		t.Fatal(err)
	}
	m := New(Deps{Store: st, Settings: f})
	t.Cleanup(m.unsubscribe)
	return m, st, f
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewReceivesReplay(t *testing.T) {
	m, st, _ := newTestModel(t)
	if m.snap.Seq != st.Snapshot().Seq || len(m.snap.Sensors) != 3 {
		t.Errorf("model did not start from the current snapshot: %+v", m.snap)
	}
}

func TestToggleAndLevelKeys(t *testing.T) {
	m, st, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	devices := st.Devices()
	if d := devices[device.Find(devices, device.BlindsID)]; d.Status != device.On {
		t.Errorf("blinds: got %s, want on", d.Status)
	}

	m = press(t, m, runes("j"), runes("+"), runes("+"), runes("+"), runes("+"))
	devices = st.Devices()
	if d := devices[device.Find(devices, device.FanID)]; d.Level != 100 {
		t.Errorf("fan level: got %d, want 100 (capped)", d.Level)
	}
	if m.err != nil {
		t.Errorf("unexpected error: %v", m.err)
	}
}

func TestLiveKeySwitchesAndPersists(t *testing.T) {
	m, st, f := newTestModel(t)

	press(t, m, runes("l"))
	if st.Mode() != store.Live {
		t.Fatalf("mode: got %v, want live", st.Mode())
	}
	saved, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !saved.UseLive {
		t.Errorf("live flag not persisted: %+v", saved)
	}
}

func TestEditAPIBase(t *testing.T) {
	m, st, f := newTestModel(t)

	m = press(t, m, runes("e"))
	if m.mode != inputAPIBase {
		t.Fatalf("expected api base input mode")
	}
	m.input.SetValue("http://raspberrypi.local:8000")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != inputNone {
		t.Errorf("input still open")
	}
	if got := st.Snapshot().APIBase; got != "http://raspberrypi.local:8000" {
		t.Errorf("store api base: got %q", got)
	}
	saved, _ := f.Load()
	if saved.APIBase != "http://raspberrypi.local:8000" {
		t.Errorf("api base not persisted: %+v", saved)
	}

	m = press(t, m, runes("e"))
	m.input.SetValue("   ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.err == nil {
		t.Errorf("empty api base should be reported")
	}
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t)
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("view before resize: %q", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 60})
	view := next.(Model).View()
	for _, want := range []string{"HOME DASHBOARD", "SIMULATED", "Temperature", "Fan"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
