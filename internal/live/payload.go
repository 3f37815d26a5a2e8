// Package live consumes the server-sent sensor stream published at
// {apiBase}/api/v1/sensors/stream and hands each decoded sample to a
// callback, reconnecting with a fixed delay whenever the stream drops.
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StreamPath is appended to the API base URL to reach the sensor stream.
const StreamPath = "/api/v1/sensors/stream"

const keepaliveStatus = "keepalive"

// ErrIncompletePayload is returned for payloads missing a sensor value.
var ErrIncompletePayload = errors.New("payload missing sensor values")

// Payload is the wire format of one stream event.
type Payload struct {
	Status      string   `json:"status,omitempty"`
	Temperature *float64 `json:"temperatura,omitempty"`
	Humidity    *float64 `json:"humedad,omitempty"`
	Light       *float64 `json:"luz,omitempty"`
	Fan         bool     `json:"ventilador"`
	Blinds      bool     `json:"persianas"`
	Bulbs       bool     `json:"bulbs"`
}

// Keepalive reports whether p is a heartbeat with no data.
func (p Payload) Keepalive() bool {
	return p.Status == keepaliveStatus
}

// Sample is a validated payload.
type Sample struct {
	Temperature float64
	Humidity    float64
	Light       float64
	Fan         bool
	Blinds      bool
	Bulbs       bool
}

// Payload converts s back to its wire format.
func (s Sample) Payload() Payload {
	return Payload{
		Temperature: &s.Temperature,
		Humidity:    &s.Humidity,
		Light:       &s.Light,
		Fan:         s.Fan,
		Blinds:      s.Blinds,
		Bulbs:       s.Bulbs,
	}
}

// Decode parses one event body. ok is false for keepalive events.
func Decode(data []byte) (s Sample, ok bool, err error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Sample{}, false, fmt.Errorf("decode payload: %w", err)
	}
	if p.Keepalive() {
		return Sample{}, false, nil
	}
	if p.Temperature == nil || p.Humidity == nil || p.Light == nil {
		return Sample{}, false, ErrIncompletePayload
	}
	return Sample{
		Temperature: *p.Temperature,
		Humidity:    *p.Humidity,
		Light:       *p.Light,
		Fan:         p.Fan,
		Blinds:      p.Blinds,
		Bulbs:       p.Bulbs,
	}, true, nil
}

// Encode renders s as an event body.
func Encode(s Sample) ([]byte, error) {
	return json.Marshal(s.Payload())
}

// KeepalivePayload is the heartbeat event body.
func KeepalivePayload() []byte {
	return []byte(`{"status":"keepalive"}`)
}

// Endpoint returns the stream URL for an API base URL.
func Endpoint(apiBase string) string {
	return strings.TrimRight(apiBase, "/") + StreamPath
}
