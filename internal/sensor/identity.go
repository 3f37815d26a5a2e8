package sensor

import "time"

// Fixed sensor identifiers.
const (
	LightID       = "ldr-1"
	HumidityID    = "humidity-1"
	TemperatureID = "temp-1"
)

// sensorIdentityMap holds the static description of every known sensor.
var sensorIdentityMap = []struct {
	id      string
	kind    Kind
	name    string
	icon    string
	unit    string
	min     float64
	max     float64
	initial float64
}{
	{LightID, Light, "Lighting", "💡", "lux", 0, 1000, 650},
	{HumidityID, Humidity, "Relative Humidity", "💧", "%", 0, 100, 55},
	{TemperatureID, Temperature, "Temperature", "🌡️", "°C", 15, 35, 22},
}

// KindOf returns the kind of a sensor id, or "" if the id is unknown.
func KindOf(id string) Kind {
	for _, entry := range sensorIdentityMap {
		if entry.id == id {
			return entry.kind
		}
	}
	return ""
}

// FriendlyName returns a human-readable name for a sensor id.
func FriendlyName(id string) string {
	for _, entry := range sensorIdentityMap {
		if entry.id == id {
			return entry.name
		}
	}
	return "Sensor"
}

// Defaults returns the initial readings, each with a single-element
// history seeded from its initial value.
func Defaults(now time.Time) []Reading {
	readings := make([]Reading, 0, len(sensorIdentityMap))
	for _, entry := range sensorIdentityMap {
		r := Reading{
			ID:   entry.id,
			Kind: entry.kind,
			Name: entry.name,
			Icon: entry.icon,
			Unit: entry.unit,
			Min:  entry.min,
			Max:  entry.max,
		}
		readings = append(readings, r.Observe(entry.initial, now))
	}
	return readings
}
