// Package history provides the bounded per-sensor value window used for
// sparklines, with min/peak/avg statistics.
package history

import "math"

// Capacity is the number of values a Window retains.
const Capacity = 10

// Window is an immutable sequence of the most recent values, oldest first.
// Push never modifies the receiver, so a Window can be shared freely
// between published snapshots.
type Window []float64

// Push returns a new window with v appended, keeping only the last
// Capacity values.
func (w Window) Push(v float64) Window {
	start := 0
	if len(w) >= Capacity {
		start = len(w) - Capacity + 1
	}
	out := make(Window, 0, Capacity)
	out = append(out, w[start:]...)
	return append(out, v)
}

// Len returns the number of stored values.
func (w Window) Len() int {
	return len(w)
}

// Last returns the most recent value, or 0 if empty.
func (w Window) Last() float64 {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1]
}

// Avg returns the average across all stored values.
func (w Window) Avg() float64 {
	if len(w) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// Min returns the lowest stored value, or 0 if empty.
func (w Window) Min() float64 {
	if len(w) == 0 {
		return 0
	}
	lo := math.MaxFloat64
	for _, v := range w {
		lo = math.Min(lo, v)
	}
	return lo
}

// Peak returns the highest stored value, or 0 if empty.
func (w Window) Peak() float64 {
	if len(w) == 0 {
		return 0
	}
	hi := -math.MaxFloat64
	for _, v := range w {
		hi = math.Max(hi, v)
	}
	return hi
}

// Values returns a copy of the stored values.
func (w Window) Values() []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	return out
}
