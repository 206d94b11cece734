// Package sse pushes dataset change notices to open search pages over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event is one notice. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	clientBuffer = 16
	retryMillis  = 3000
)

var pingFrame = []byte(": ping\n\n")

// hub is the state owned by the broker goroutine.
type hub struct {
	clients map[chan []byte]struct{}
	seq     uint64
	latest  []byte
}

// Broker keeps the set of page connections. Only its run goroutine touches
// the hub; every public method hands it a command. A page that cannot keep
// up loses frames rather than stalling the others. The latest frame is
// replayed to new subscribers so a page opened mid-reload still learns the
// dataset state.
type Broker struct {
	pingEvery time.Duration
	commands  chan func(*hub)
	done      chan struct{}
	stopped   chan struct{}
	closed    atomic.Bool
}

// NewBroker starts the broker. Every pingEvery each page receives a comment
// frame so idle proxies keep the stream open; pingEvery <= 0 means 30s.
func NewBroker(pingEvery time.Duration) *Broker {
	if pingEvery <= 0 {
		pingEvery = 30 * time.Second
	}
	b := &Broker{
		pingEvery: pingEvery,
		commands:  make(chan func(*hub), 64),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	h := &hub{clients: make(map[chan []byte]struct{})}
	ticker := time.NewTicker(b.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		case cmd := <-b.commands:
			cmd(h)
		case <-ticker.C:
			h.broadcast(pingFrame)
		}
	}
}

func (h *hub) broadcast(frame []byte) {
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// do runs cmd on the broker goroutine and waits for it. It reports false
// once the broker is closed.
func (b *Broker) do(cmd func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	ran := make(chan struct{})
	select {
	case b.commands <- func(h *hub) { cmd(h); close(ran) }:
	case <-b.stopped:
		return false
	}
	select {
	case <-ran:
		return true
	case <-b.stopped:
		// The loop closes ran before it can stop, so a command that ran
		// is still reported.
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close disconnects every page and stops the broker. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a page and returns the channel its frames arrive on.
// The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	ok := b.do(func(h *hub) {
		h.clients[ch] = struct{}{}
		if h.latest != nil {
			ch <- h.latest
		}
	})
	if !ok {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a page and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected pages.
func (b *Broker) ClientCount() int {
	n := 0
	b.do(func(h *hub) { n = len(h.clients) })
	return n
}

// Publish numbers event and sends it to every page. Events whose data
// cannot be encoded are dropped.
func (b *Broker) Publish(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	b.do(func(h *hub) {
		h.seq++
		frame := []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n",
			strconv.FormatUint(h.seq, 10), event.Type, payload))
		h.latest = frame
		h.broadcast(frame)
	})
}

// PublishDataset sends a "dataset.<kind>" event, kind being one of the
// session event kinds (loaded, reloaded, failed).
func (b *Broker) PublishDataset(kind string, data any) {
	b.Publish(Event{Type: "dataset." + kind, Data: data})
}

// ServeHTTP streams frames to one page until it goes away or the broker
// closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, open := <-ch:
			if !open {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
