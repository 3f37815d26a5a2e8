// Package sensor models the smart-home sensor readings shown on the
// dashboard: light, humidity and temperature. It classifies values
// against fixed thresholds and synthesizes demo values with a bounded
// random walk.
package sensor

import (
	"time"

	"github.com/luki/homedash/internal/history"
)

// Kind identifies what a sensor measures.
type Kind string

const (
	Light       Kind = "light"
	Humidity    Kind = "humidity"
	Temperature Kind = "temperature"
)

// Status is the threshold classification of a reading.
type Status string

const (
	Normal  Status = "normal"
	Warning Status = "warning"
	Danger  Status = "danger"
)

// Reading represents the latest value of one sensor plus its recent history.
type Reading struct {
	ID      string         `json:"id"`   // e.g. "temp-1"
	Kind    Kind           `json:"kind"` // e.g. "temperature"
	Name    string         `json:"name"`
	Icon    string         `json:"icon"`
	Value   float64        `json:"value"`
	Unit    string         `json:"unit"` // e.g. "°C"
	Time    time.Time      `json:"timestamp"`
	Status  Status         `json:"status"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	History history.Window `json:"history"`
}

// Key returns a unique identifier for this sensor.
func (r Reading) Key() string {
	return r.ID
}

// Percent returns where the value sits inside [Min, Max], from 0 to 100.
func (r Reading) Percent() float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	return (r.Value - r.Min) / span * 100
}

// Observe returns a copy of r holding value v at time t. The value is
// clamped to the valid range, classified, and appended to the history.
func (r Reading) Observe(v float64, t time.Time) Reading {
	v = Clamp(v, r.Min, r.Max)
	r.Value = v
	r.Time = t
	r.Status = Classify(r.Kind, v)
	r.History = r.History.Push(v)
	return r
}
