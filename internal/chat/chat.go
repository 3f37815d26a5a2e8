// Package chat sends free-text requests to the smart-home assistant API
// and keeps the conversation in memory.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luki/homedash/internal/metrics"
)

// Path is appended to the API base URL to reach the assistant.
const Path = "/api/v1/chat"

// FallbackAnswer is shown when the assistant cannot be reached.
const FallbackAnswer = "Sorry, I could not reach the assistant. Please check the API URL and try again."

// Sender tells who wrote a message.
type Sender string

const (
	User      Sender = "user"
	Assistant Sender = "assistant"
)

// Request is the body sent to the assistant.
type Request struct {
	Request string `json:"request"`
}

// Response is the assistant's reply, including the device states it reports.
type Response struct {
	Answer string `json:"answer"`
	Fan    bool   `json:"ventilador"`
	Blinds bool   `json:"persianas"`
	Bulbs  bool   `json:"bulbs"`
}

// Message is one entry of the conversation.
type Message struct {
	ID       uuid.UUID
	Text     string
	Sender   Sender
	Time     time.Time
	Response *Response
}

// Client talks to the assistant endpoint.
type Client struct {
	HTTP *http.Client
	Log  *slog.Logger
	base string
	mu   sync.Mutex
}

// NewClient returns a client for the given API base URL.
func NewClient(apiBase string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{HTTP: http.DefaultClient, Log: log, base: apiBase}
}

// SetBase changes the API base URL used for later requests.
func (c *Client) SetBase(apiBase string) {
	c.mu.Lock()
	c.base = apiBase
	c.mu.Unlock()
}

func (c *Client) url() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimRight(c.base, "/") + Path
}

// Ask sends text to the assistant and decodes its reply.
func (c *Client) Ask(ctx context.Context, text string) (Response, error) {
	body, err := json.Marshal(Request{Request: text})
	if err != nil {
		return Response{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.CopyN(io.Discard, resp.Body, 512)
		return Response{}, fmt.Errorf("chat_bad_status: %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}

// Session is an in-memory conversation with the assistant.
type Session struct {
	client *Client
	now    func() time.Time

	mu       sync.Mutex
	messages []Message
}

// NewSession starts an empty conversation.
func NewSession(c *Client) *Session {
	return &Session{client: c, now: time.Now}
}

// Send records text as a user message, asks the assistant and records the
// reply. On failure the recorded reply is a fallback message and the error
// is returned alongside it.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	s.append(Message{ID: uuid.New(), Text: text, Sender: User, Time: s.now()})

	resp, err := s.client.Ask(ctx, text)
	reply := Message{ID: uuid.New(), Sender: Assistant}
	if err != nil {
		metrics.ChatRequests.WithLabelValues("fallback").Inc()
		s.client.Log.Warn("chat_failed", "error", err)
		reply.Text = FallbackAnswer
	} else {
		metrics.ChatRequests.WithLabelValues("ok").Inc()
		reply.Text = resp.Answer
		reply.Response = &resp
	}
	reply.Time = s.now()
	s.append(reply)
	return reply, err
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}
