// Package monitor implements the terminal dashboard using BubbleTea: live
// sensor panels with sparklines and colour-coded status, device controls,
// data source switching, and a chat panel for the home assistant.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/homedash/internal/chat"
	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/settings"
	"github.com/luki/homedash/internal/store"
)

const (
	clockInterval = 1 * time.Second
	levelStep     = 10
	chatLines     = 6
)

// ── Messages ─────────────────────────────────────────────────────────

type clockMsg time.Time

type snapshotMsg store.Snapshot

type chatReplyMsg struct {
	reply chat.Message
	err   error
}

// ── Model ────────────────────────────────────────────────────────────

// Deps are the collaborators the dashboard renders and drives.
type Deps struct {
	Store      *store.Store
	Settings   *settings.File
	Chat       *chat.Session
	ChatClient *chat.Client
	Log        *slog.Logger
}

type inputMode int

const (
	inputNone inputMode = iota
	inputChat
	inputAPIBase
)

// Model is the BubbleTea model for the dashboard.
type Model struct {
	deps        Deps
	snapshots   chan store.Snapshot
	unsubscribe func()

	snap      store.Snapshot
	messages  []chat.Message
	input     textinput.Model
	mode      inputMode
	selected  int
	pending   bool
	err       error
	width     int
	height    int
	scroll    int
	now       time.Time
	startTime time.Time
}

// New creates the dashboard model and subscribes it to the store.
func New(deps Deps) Model {
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = "› "

	m := Model{
		deps:      deps,
		snapshots: make(chan store.Snapshot, 1),
		input:     ti,
		now:       time.Now(),
		startTime: time.Now(),
	}
	m.unsubscribe = deps.Store.Subscribe(m.offer)
	m.snap = <-m.snapshots
	return m
}

// offer keeps only the newest undelivered snapshot. It runs on the store's
// delivery goroutine and must never block.
func (m Model) offer(snap store.Snapshot) {
	select {
	case m.snapshots <- snap:
		return
	default:
	}
	select {
	case <-m.snapshots:
	default:
	}
	select {
	case m.snapshots <- snap:
	default:
	}
}

// Run launches the dashboard TUI.
func Run(deps Deps) error {
	m := New(deps)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Commands ─────────────────────────────────────────────────────────

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func waitForSnapshot(ch <-chan store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func sendChat(s *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.Send(context.Background(), text)
		return chatReplyMsg{reply: reply, err: err}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.snapshots), clockCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-8)

	case clockMsg:
		m.now = time.Time(msg)
		return m, clockCmd()

	case snapshotMsg:
		m.snap = store.Snapshot(msg)
		m.selected = min(m.selected, max(0, len(m.snap.Devices)-1))
		return m, waitForSnapshot(m.snapshots)

	case chatReplyMsg:
		m.pending = false
		if m.deps.Chat != nil {
			m.messages = m.deps.Chat.Messages()
		}
		if msg.err != nil {
			m.err = fmt.Errorf("chat: %w", msg.err)
		}
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.snap.Devices)-1 {
			m.selected++
		}
	case "enter", " ":
		if d, ok := m.selectedDevice(); ok {
			_, m.err = m.deps.Store.ToggleDevice(d.ID)
		}
	case "+", "=":
		m.adjustLevel(levelStep)
	case "-":
		m.adjustLevel(-levelStep)
	case "l":
		m.deps.Store.SetDataSource(m.deps.Store.Mode() != store.Live)
		m.saveSettings()
	case "e":
		m.mode = inputAPIBase
		m.input.Placeholder = settings.DefaultAPIBase
		m.input.SetValue(m.snap.APIBase)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "tab", "c":
		if m.deps.Chat == nil {
			break
		}
		m.mode = inputChat
		m.input.Placeholder = "Ask the house something..."
		m.input.SetValue("")
		return m, m.input.Focus()
	case "pgup":
		if m.scroll > 0 {
			m.scroll--
		}
	case "pgdown":
		m.scroll++
	case "home":
		m.scroll = 0
	case "x":
		m.err = nil
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.input.SetValue("")

		switch mode {
		case inputAPIBase:
			if err := m.deps.Store.SetAPIBase(value); err != nil {
				m.err = err
				return m, nil
			}
			if m.deps.ChatClient != nil {
				m.deps.ChatClient.SetBase(value)
			}
			m.saveSettings()
		case inputChat:
			if value == "" || m.pending {
				return m, nil
			}
			m.pending = true
			m.messages = append(m.messages, chat.Message{Text: value, Sender: chat.User, Time: m.now})
			return m, sendChat(m.deps.Chat, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) selectedDevice() (device.State, bool) {
	if m.selected < 0 || m.selected >= len(m.snap.Devices) {
		return device.State{}, false
	}
	return m.snap.Devices[m.selected], true
}

// adjustLevel keeps the slider inside 0-100; the store itself accepts any level.
func (m *Model) adjustLevel(delta int) {
	sel, ok := m.selectedDevice()
	if !ok {
		return
	}
	devices := m.deps.Store.Devices()
	idx := device.Find(devices, sel.ID)
	if idx < 0 {
		return
	}
	d := devices[idx]
	level := max(0, min(100, d.Level+delta))
	_, m.err = m.deps.Store.SetDeviceLevel(d.ID, level)
}

func (m *Model) saveSettings() {
	if m.deps.Settings == nil {
		return
	}
	s := settings.Settings{
		APIBase: m.deps.Store.Snapshot().APIBase,
		UseLive: m.deps.Store.Mode() == store.Live,
	}
	if err := m.deps.Settings.Save(s); err != nil {
		m.err = fmt.Errorf("save settings: %w", err)
		m.deps.Log.Warn("settings_save_failed", "path", m.deps.Settings.Path(), "error", err)
	}
}
