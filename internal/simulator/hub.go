package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shandysiswandi/webotp/internal/webotp"
)

const hubBuffer = 16

// Hub is a webotp.Dispatcher that streams events to connected clients as
// server-sent events.
type Hub struct {
	heartbeat time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	subs   map[chan webotp.Event]struct{}
	closed bool
}

// NewHub returns a Hub. A positive heartbeat writes keep-alive comments.
func NewHub(heartbeat time.Duration) *Hub {
	return &Hub{
		heartbeat: heartbeat,
		log:       slog.Default().With("component", "simulator.hub"),
		subs:      map[chan webotp.Event]struct{}{},
	}
}

// Dispatch implements webotp.Dispatcher. Slow clients drop events instead of
// blocking the bridge.
func (h *Hub) Dispatch(ctx context.Context, evt webotp.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.log.WarnContext(ctx, "event dropped for slow client", "event", evt.Name)
		}
	}
	return nil
}

// Clients reports the number of connected streams.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every stream.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
	return nil
}

func (h *Hub) subscribe() (chan webotp.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan webotp.Event, hubBuffer)
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *Hub) unsubscribe(ch chan webotp.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// ServeHTTP streams events until the client disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	var tick <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			if err := writeEvent(w, evt); err != nil {
				h.log.WarnContext(r.Context(), "failed to write event", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, evt webotp.Event) error {
	data, err := json.Marshal(map[string]any{
		"detail": map[string]string{"otp": evt.OTP},
		"at":     evt.At,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, data)
	return err
}
