package live

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/luki/homedash/internal/metrics"
)

// DefaultRetryDelay is the fixed wait between reconnect attempts.
const DefaultRetryDelay = 5 * time.Second

// Client holds a single long-lived connection to the sensor stream.
type Client struct {
	HTTP       *http.Client
	RetryDelay time.Duration
	Log        *slog.Logger
}

// NewClient returns a client with no request timeout, since the stream
// stays open indefinitely.
func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		HTTP:       &http.Client{},
		RetryDelay: DefaultRetryDelay,
		Log:        log,
	}
}

// Run connects to url and calls handle for every valid sample. Whenever the
// connection fails or ends, it waits RetryDelay and opens a fresh one.
// Run returns only when ctx is cancelled.
func (c *Client) Run(ctx context.Context, url string, handle func(Sample)) error {
	for {
		err := c.stream(ctx, url, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("stream_disconnected", "url", url, "error", err, "retry_in", c.RetryDelay.String())

		timer := time.NewTimer(c.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		metrics.Reconnects.Inc()
	}
}

func (c *Client) stream(ctx context.Context, url string, handle func(Sample)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream_bad_status: %d", resp.StatusCode)
	}
	c.Log.Info("stream_connected", "url", url)

	err = readEvents(resp.Body, func(data []byte) {
		c.dispatch(data, handle)
	})
	if err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

func (c *Client) dispatch(data []byte, handle func(Sample)) {
	s, ok, err := Decode(data)
	switch {
	case err != nil:
		metrics.Payloads.WithLabelValues("discarded").Inc()
		c.Log.Warn("payload_discarded", "error", err, "size", len(data))
	case !ok:
		metrics.Payloads.WithLabelValues("keepalive").Inc()
	default:
		metrics.Payloads.WithLabelValues("applied").Inc()
		handle(s)
	}
}

// readEvents splits an event stream into event bodies. Multiple data lines
// of one event are joined with newlines; comments and other fields are
// ignored. An event is emitted only once its terminating blank line
// arrives, so data cut off by the end of the stream is dropped. It returns
// nil at a clean end of stream.
func readEvents(r io.Reader, emit func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var data [][]byte
	flush := func() {
		if len(data) > 0 {
			emit(bytes.Join(data, []byte("\n")))
			data = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		switch {
		case len(line) == 0:
			flush()
		case line[0] == ':':
			// comment
		case bytes.HasPrefix(line, []byte("data:")):
			v := bytes.TrimPrefix(line, []byte("data:"))
			v = bytes.TrimPrefix(v, []byte(" "))
			data = append(data, append([]byte(nil), v...))
		}
	}
	return scanner.Err()
}
