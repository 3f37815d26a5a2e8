// Package chart provides sparkline rendering with status colour coding,
// range gauges with threshold markers, and status labels for sensors and
// devices.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/history"
	"github.com/luki/homedash/internal/sensor"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	colorNormal  = lipgloss.Color("78")  // soft green
	colorWarning = lipgloss.Color("220") // yellow
	colorDanger  = lipgloss.Color("196") // red
	colorOff     = lipgloss.Color("245")
	colorAuto    = lipgloss.Color("105")
	colorUnknown = lipgloss.Color("247")
)

// StatusColor returns the colour for a sensor status.
func StatusColor(s sensor.Status) lipgloss.Color {
	switch s {
	case sensor.Normal:
		return colorNormal
	case sensor.Warning:
		return colorWarning
	case sensor.Danger:
		return colorDanger
	default:
		return colorUnknown
	}
}

// DeviceColor returns the colour for a device status.
func DeviceColor(s device.Status) lipgloss.Color {
	switch s {
	case device.On:
		return colorNormal
	case device.Off:
		return colorOff
	case device.Auto:
		return colorAuto
	default:
		return colorUnknown
	}
}

// StatusText returns the label shown for a sensor or device status.
func StatusText(s string) string {
	switch s {
	case string(sensor.Normal):
		return "Normal"
	case string(sensor.Warning):
		return "Warning"
	case string(sensor.Danger):
		return "Critical"
	case string(device.On):
		return "On"
	case string(device.Off):
		return "Off"
	case string(device.Auto):
		return "Auto"
	default:
		return s
	}
}

// RenderSparkline renders the history window as colour-coded blocks,
// right-aligned and padded to width.
func RenderSparkline(values history.Window, width int, rangeMin, rangeMax float64, kind sensor.Kind) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	if len(values) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	for i := 0; i < width-len(values); i++ {
		sb.WriteString(dim.Render("╌"))
	}

	for _, v := range values {
		norm := (v - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		status := sensor.Classify(kind, v)
		style := lipgloss.NewStyle().Foreground(StatusColor(status))
		if status == sensor.Danger {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// RenderGauge renders a scale bar showing the current value inside the
// sensor's valid range, with a marker at every threshold.
func RenderGauge(r sensor.Reading, width int) string {
	if width <= 0 {
		return ""
	}

	span := r.Max - r.Min
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * (v - r.Min) / span)
		return max(0, min(width-1, p))
	}

	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '·'
	}
	for _, b := range sensor.Boundaries(r.Kind) {
		if b > r.Min && b < r.Max {
			bar[pos(b)] = '▪'
		}
	}
	cur := pos(r.Value)

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	marker := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var sb strings.Builder
	for i, ch := range bar {
		switch {
		case i == cur:
			style := lipgloss.NewStyle().Foreground(StatusColor(r.Status)).Bold(true)
			sb.WriteString(style.Render("◆"))
		case ch == '▪':
			sb.WriteString(marker.Render(string(ch)))
		default:
			sb.WriteString(dim.Render(string(ch)))
		}
	}
	return sb.String()
}

// RenderValue renders the reading's value and unit with colour coding.
func RenderValue(r sensor.Reading) string {
	s := fmt.Sprintf("%6.1f %s", r.Value, r.Unit)
	style := lipgloss.NewStyle().Foreground(StatusColor(r.Status))
	if r.Status == sensor.Danger {
		style = style.Bold(true)
	}
	return style.Render(s)
}

// RenderLevel renders a device level as a 0-100 bar.
func RenderLevel(d device.State, width int) string {
	if width <= 0 {
		return ""
	}
	if !d.HasLevel {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render(strings.Repeat("╌", width))
	}
	filled := int(math.Round(float64(width) * float64(max(0, min(100, d.Level))) / 100))
	on := lipgloss.NewStyle().Foreground(DeviceColor(d.Status)).Render(strings.Repeat("█", filled))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(strings.Repeat("░", width-filled))
	return on + off
}
