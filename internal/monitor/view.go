package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/homedash/internal/chart"
	"github.com/luki/homedash/internal/chat"
	"github.com/luki/homedash/internal/history"
	"github.com/luki/homedash/internal/sensor"
	"github.com/luki/homedash/internal/store"
)

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorName     = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorLive     = lipgloss.Color("78")
	colorSim      = lipgloss.Color("105")
	colorUser     = lipgloss.Color("117")
	colorBot      = lipgloss.Color("186")
	colorCrit     = lipgloss.Color("196")
	colorSelected = lipgloss.Color("236")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := max(40, m.width-2)

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v  (x to dismiss)", m.err))
		sections = append(sections, errBox)
	}

	sections = append(sections, m.renderSensorPanel(contentWidth))
	sections = append(sections, m.renderDevicePanel(contentWidth))
	if m.deps.Chat != nil {
		sections = append(sections, m.renderChatPanel(contentWidth))
	}
	if m.mode != inputNone {
		sections = append(sections, m.renderInput(contentWidth))
	}
	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := max(5, m.height)
	maxScroll := max(0, len(lines)-visibleLines)
	start := min(m.scroll, maxScroll)
	end := min(len(lines), start+visibleLines)

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("HOME DASHBOARD")

	var statusParts []string

	if m.snap.Mode == store.Live {
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorLive).Bold(true).Render("LIVE"))
	} else {
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorSim).Bold(true).Render("SIMULATED"))
	}

	dim := lipgloss.NewStyle().Foreground(colorDim)
	statusParts = append(statusParts, dim.Render(m.snap.APIBase))
	statusParts = append(statusParts, dim.Render(fmt.Sprintf("up %s", fmtDuration(m.now.Sub(m.startTime)))))
	statusParts = append(statusParts, dim.Render(m.now.Format("15:04:05")))

	sep := dim.Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := max(1, width-lipgloss.Width(logo)-lipgloss.Width(right)-4)
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderSensorPanel(totalWidth int) string {
	innerWidth := max(30, totalWidth-4)
	chartWidth := history.Capacity
	gaugeWidth := max(10, min(30, innerWidth-80))

	nameW := 20
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorName).Render("Sensors")}

	if len(m.snap.Sensors) == 0 {
		rows = append(rows, dimS.Render("Waiting for sensor data..."))
	}

	for _, r := range m.snap.Sensors {
		name := lipgloss.NewStyle().
			Foreground(colorLabel).
			Width(nameW).
			Render(truncate(r.Icon+" "+r.Name, nameW))

		value := lipgloss.NewStyle().
			Width(11).
			Align(lipgloss.Right).
			Render(chart.RenderValue(r))

		status := lipgloss.NewStyle().
			Foreground(chart.StatusColor(r.Status)).
			Width(9).
			Render(chart.StatusText(string(r.Status)))

		spark := frameL + chart.RenderSparkline(r.History, chartWidth, r.Min, r.Max, r.Kind) + frameR
		gauge := chart.RenderGauge(r, gaugeWidth)

		stats := dimS.Render(" avg") + valS.Render(fmt.Sprintf("%6.1f", r.History.Avg())) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%6.1f", r.History.Min())) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%6.1f", r.History.Peak()))

		updated := dimS.Render(" " + r.Time.Format("15:04:05"))

		rows = append(rows, name+" "+value+" "+status+" "+spark+" "+gauge+stats+updated)
	}

	return panel(totalWidth, rows)
}

func (m Model) renderDevicePanel(totalWidth int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorName).Render("Devices")}

	for i, d := range m.snap.Devices {
		cursor := "  "
		if i == m.selected {
			cursor = lipgloss.NewStyle().Foreground(colorTitleFg).Render("▸ ")
		}

		name := lipgloss.NewStyle().
			Foreground(colorLabel).
			Width(16).
			Render(d.Icon + " " + d.Name)

		status := lipgloss.NewStyle().
			Foreground(chart.DeviceColor(d.Status)).
			Bold(true).
			Width(6).
			Render(chart.StatusText(string(d.Status)))

		level := chart.RenderLevel(d, 20) + dimS.Render(fmt.Sprintf(" %3d%%", d.Level))
		updated := dimS.Render("  updated " + d.LastUpdate.Format("15:04:05"))

		row := cursor + name + " " + status + " " + level + updated
		if i == m.selected {
			row = lipgloss.NewStyle().Background(colorSelected).Render(row)
		}
		rows = append(rows, row)
	}

	return panel(totalWidth, rows)
}

func (m Model) renderChatPanel(totalWidth int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorName).Render("Assistant")}

	msgs := m.messages
	if len(msgs) > chatLines {
		msgs = msgs[len(msgs)-chatLines:]
	}
	if len(msgs) == 0 {
		rows = append(rows, dimS.Render("Press tab to ask the house something."))
	}

	textW := max(20, totalWidth-20)
	for _, msg := range msgs {
		who := lipgloss.NewStyle().Foreground(colorUser).Bold(true).Render("you")
		if msg.Sender == chat.Assistant {
			who = lipgloss.NewStyle().Foreground(colorBot).Bold(true).Render("home")
		}
		text := truncate(msg.Text, textW)
		if msg.Response != nil {
			text += dimS.Render(fmt.Sprintf("  [fan %s · blinds %s · bulbs %s]",
				onOff(msg.Response.Fan), onOff(msg.Response.Blinds), onOff(msg.Response.Bulbs)))
		}
		rows = append(rows, dimS.Render(msg.Time.Format("15:04"))+" "+lipgloss.NewStyle().Width(5).Render(who)+text)
	}
	if m.pending {
		rows = append(rows, dimS.Render("      home is thinking..."))
	}

	return panel(totalWidth, rows)
}

func (m Model) renderInput(width int) string {
	label := "Ask"
	if m.mode == inputAPIBase {
		label = "API URL"
	}
	head := lipgloss.NewStyle().Foreground(colorTitleFg).Bold(true).Render(label)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(head + " " + m.input.View())
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	swatch := func(s sensor.Status) string {
		return lipgloss.NewStyle().Foreground(chart.StatusColor(s)).Render("██")
	}
	legend := swatch(sensor.Normal) + dimS.Render(" normal ") +
		swatch(sensor.Warning) + dimS.Render(" warning ") +
		swatch(sensor.Danger) + dimS.Render(" critical")

	var keys string
	if m.mode != inputNone {
		keys = dimS.Render("enter") + keyS.Render(":send") +
			dimS.Render("  esc") + keyS.Render(":cancel")
	} else {
		keys = dimS.Render("q") + keyS.Render(":quit") +
			dimS.Render("  j/k") + keyS.Render(":select") +
			dimS.Render("  enter") + keyS.Render(":toggle") +
			dimS.Render("  +/-") + keyS.Render(":level") +
			dimS.Render("  l") + keyS.Render(":live/sim") +
			dimS.Render("  e") + keyS.Render(":api url") +
			dimS.Render("  tab") + keyS.Render(":chat")
	}

	gap := max(1, width-lipgloss.Width(legend)-lipgloss.Width(keys)-4)
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

func panel(width int, rows []string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mi := d / time.Minute
	d -= mi * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mi, s)
	}
	return fmt.Sprintf("%dm%02ds", mi, s)
}
