package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/history"
	"github.com/luki/homedash/internal/sensor"
)

func TestSparkline(t *testing.T) {
	var w history.Window
	for _, v := range []float64{16, 19, 22, 24, 26, 29, 33} {
		w = w.Push(v)
	}
	result := RenderSparkline(w, 20, 15, 35, sensor.Temperature)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if got := lipgloss.Width(result); got != 20 {
		t.Errorf("sparkline width: got %d, want 20", got)
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineEmpty(t *testing.T) {
	result := RenderSparkline(nil, 8, 0, 100, sensor.Humidity)
	if !strings.Contains(result, "╌") {
		t.Error("expected placeholder for empty history")
	}
	if RenderSparkline(nil, 0, 0, 1, sensor.Light) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestGaugeWidth(t *testing.T) {
	r := sensor.Defaults(time.Now())[0]
	result := RenderGauge(r, 30)
	if got := lipgloss.Width(result); got != 30 {
		t.Errorf("gauge width: got %d, want 30", got)
	}
	if !strings.Contains(result, "◆") {
		t.Error("gauge should mark the current value")
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{string(sensor.Normal), "Normal"},
		{string(sensor.Warning), "Warning"},
		{string(sensor.Danger), "Critical"},
		{string(device.On), "On"},
		{string(device.Off), "Off"},
		{string(device.Auto), "Auto"},
		{"mystery", "mystery"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.in); got != tt.want {
			t.Errorf("StatusText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if StatusColor(sensor.Danger) == colorUnknown || DeviceColor(device.Status("broken")) != colorUnknown {
		t.Error("unexpected status colour mapping")
	}
}

func TestRenderLevel(t *testing.T) {
	d := device.Defaults(time.Now())[1]
	if got := lipgloss.Width(RenderLevel(d, 10)); got != 10 {
		t.Errorf("level width: got %d, want 10", got)
	}
}
