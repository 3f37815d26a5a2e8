// Package device models the dashboard's actuators (blinds, fan, bulbs)
// and their on/off/auto control cycle.
package device

import "time"

// Kind identifies the type of actuator.
type Kind string

const (
	Blinds Kind = "blinds"
	Fan    Kind = "fan"
	Bulbs  Kind = "bulbs"
)

// Status is the operating mode of a device.
type Status string

const (
	On   Status = "on"
	Off  Status = "off"
	Auto Status = "auto"
)

// Fixed device identifiers.
const (
	BlindsID = "blinds-1"
	FanID    = "fan-1"
	BulbsID  = "bulbs-1"
)

// cycle is the order toggling walks through.
var cycle = []Status{On, Off, Auto}

// Advance returns the status following s in the on -> off -> auto cycle.
// An unrecognised status advances to on.
func Advance(s Status) Status {
	idx := -1
	for i, c := range cycle {
		if c == s {
			idx = i
			break
		}
	}
	return cycle[(idx+1)%len(cycle)]
}

// State is the current state of one device. Level is not tied to Status:
// a device may carry a level while off.
type State struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"type"`
	Status     Status    `json:"status"`
	Icon       string    `json:"icon"`
	Level      int       `json:"level"`
	HasLevel   bool      `json:"hasLevel"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Toggled returns a copy of d advanced to the next status.
func (d State) Toggled(now time.Time) State {
	d.Status = Advance(d.Status)
	d.LastUpdate = now
	return d
}

// WithLevel returns a copy of d with its level overwritten.
func (d State) WithLevel(level int, now time.Time) State {
	d.Level = level
	d.HasLevel = true
	d.LastUpdate = now
	return d
}

// NominalLevel is the level reported for a device switched on by the
// live feed, which only carries on/off flags.
func NominalLevel(k Kind) int {
	switch k {
	case Fan:
		return 70
	default:
		return 100
	}
}

// Defaults returns the devices shown before any live data arrives.
func Defaults(now time.Time) []State {
	return []State{
		{ID: BlindsID, Name: "Blinds", Kind: Blinds, Status: Auto, Icon: "🪟", Level: 60, HasLevel: true, LastUpdate: now},
		{ID: FanID, Name: "Fan", Kind: Fan, Status: On, Icon: "🌀", Level: 70, HasLevel: true, LastUpdate: now},
	}
}

// FromFlags builds the full device list from the live feed's on/off flags.
func FromFlags(fan, blinds, bulbs bool, now time.Time) []State {
	return []State{
		fromFlag(State{ID: BlindsID, Name: "Blinds", Kind: Blinds, Icon: "🪟"}, blinds, now),
		fromFlag(State{ID: FanID, Name: "Fan", Kind: Fan, Icon: "🌀"}, fan, now),
		fromFlag(State{ID: BulbsID, Name: "Bulbs", Kind: Bulbs, Icon: "💡"}, bulbs, now),
	}
}

func fromFlag(d State, on bool, now time.Time) State {
	d.Status = Off
	d.Level = 0
	if on {
		d.Status = On
		d.Level = NominalLevel(d.Kind)
	}
	d.HasLevel = true
	d.LastUpdate = now
	return d
}

// Find returns the index of the device with the given id, or -1.
func Find(devices []State, id string) int {
	for i, d := range devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}
