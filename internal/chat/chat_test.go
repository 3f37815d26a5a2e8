package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionSendRecordsReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Path || r.Method != http.MethodPost {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Request == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(Response{Answer: "Turning on the fan", Fan: true, Bulbs: true})
	}))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL+"/", nil))
	reply, err := s.Send(context.Background(), "it's hot in here")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Sender != Assistant || reply.Text != "Turning on the fan" {
		t.Errorf("reply: got %+v", reply)
	}
	if reply.Response == nil || !reply.Response.Fan || reply.Response.Blinds || !reply.Response.Bulbs {
		t.Errorf("device flags: got %+v", reply.Response)
	}

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Sender != User || msgs[0].Text != "it's hot in here" {
		t.Fatalf("messages: got %+v", msgs)
	}
	if msgs[0].ID == msgs[1].ID {
		t.Errorf("messages share an id")
	}
}

func TestSessionSendFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL, nil))
	reply, err := s.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if reply.Text != FallbackAnswer || reply.Response != nil {
		t.Errorf("fallback: got %+v", reply)
	}
	if len(s.Messages()) != 2 {
		t.Errorf("fallback reply not recorded")
	}
}
