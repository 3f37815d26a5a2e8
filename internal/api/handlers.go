package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/live"
	"github.com/luki/homedash/internal/metrics"
	"github.com/luki/homedash/internal/sensor"
	"github.com/luki/homedash/internal/store"
)

// ControlRequest is the body of POST /api/v1/devices/{id}/control.
type ControlRequest struct {
	Action string `json:"action"` // "toggle" or "level"
	Level  *int   `json:"level,omitempty"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Readings())
}

func (s *Server) listDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Devices())
}

func (s *Server) controlDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	var (
		d   device.State
		err error
	)
	switch req.Action {
	case "toggle":
		d, err = s.Store.ToggleDevice(id)
	case "level":
		if req.Level == nil {
			http.Error(w, "level missing", http.StatusBadRequest)
			return
		}
		d, err = s.Store.SetDeviceLevel(id, *req.Level)
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", req.Action), http.StatusBadRequest)
		return
	}
	if errors.Is(err, store.ErrUnknownDevice) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Log.Info("device_controlled", "id", id, "action", req.Action, "status", d.Status, "level", d.Level)
	writeJSON(w, http.StatusOK, d)
}

// streamSensors relays every store publish as one event in the live
// payload format, with keepalive events while nothing changes.
func (s *Server) streamSensors(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The subscriber shares the store's delivery goroutine; a slow client
	// drops events instead of stalling other subscribers.
	events := make(chan []byte, 16)
	unsubscribe := s.Store.Subscribe(func(snap store.Snapshot) {
		data, err := live.Encode(SampleFromSnapshot(snap))
		if err != nil {
			return
		}
		select {
		case events <- data:
		default:
		}
	})
	defer unsubscribe()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()
	s.Log.Info("stream_client_attached", "remote", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(s.Keepalive)
	defer keepalive.Stop()

	for {
		var data []byte
		select {
		case <-r.Context().Done():
			s.Log.Info("stream_client_detached", "remote", r.RemoteAddr)
			return
		case data = <-events:
		case <-keepalive.C:
			data = live.KeepalivePayload()
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

// SampleFromSnapshot converts a snapshot to a live sample. A device counts
// as on only in the on status; missing devices are off.
func SampleFromSnapshot(snap store.Snapshot) live.Sample {
	var smp live.Sample
	for _, r := range snap.Sensors {
		switch r.Kind {
		case sensor.Light:
			smp.Light = r.Value
		case sensor.Humidity:
			smp.Humidity = r.Value
		case sensor.Temperature:
			smp.Temperature = r.Value
		}
	}
	for _, d := range snap.Devices {
		on := d.Status == device.On
		switch d.Kind {
		case device.Fan:
			smp.Fan = on
		case device.Blinds:
			smp.Blinds = on
		case device.Bulbs:
			smp.Bulbs = on
		}
	}
	return smp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
