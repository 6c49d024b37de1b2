package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/talgya/platesim/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is one message pushed to stream clients.
type Event struct {
	Type   string       `json:"type"` // "hello" or "phase"
	Tick   uint64       `json:"tick"`
	From   engine.Phase `json:"from"`
	Phase  engine.Phase `json:"phase"`
	Prompt string       `json:"prompt"`
}

// signal is one message read from a stream client.
type signal struct {
	Signal string `json:"signal"` // "confirm" or "reset"
}

// Hub fans phase events out to websocket clients and feeds their signals
// into the controller.
type Hub struct {
	ctrl *engine.Controller

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub creates a hub for ctrl.
func NewHub(ctrl *engine.Controller) *Hub {
	return &Hub{
		ctrl:    ctrl,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a phase transition. Suitable as an OnPhaseChange hook.
func (h *Hub) Publish(t engine.Transition) {
	h.Broadcast(Event{Type: "phase", Tick: t.Tick, From: t.From, Phase: t.To, Prompt: t.To.Prompt()})
}

// Broadcast writes msg to every client and drops the ones that fail.
func (h *Hub) Broadcast(msg any) {
	h.mu.RLock()
	var failed []*websocket.Conn
	for client, mutex := range h.clients {
		mutex.Lock()
		err := client.WriteJSON(msg)
		mutex.Unlock()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			client.Close()
			failed = append(failed, client)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, client := range failed {
			delete(h.clients, client)
		}
		h.mu.Unlock()
	}
}

// serve upgrades the request and reads signals until the client leaves.
// Signals are only honoured when control is true.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, control bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMutex
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	p := h.ctrl.Phase()
	connMutex.Lock()
	err = conn.WriteJSON(Event{Type: "hello", Tick: h.ctrl.Ticks(), From: p, Phase: p, Prompt: p.Prompt()})
	connMutex.Unlock()
	if err != nil {
		return
	}
	slog.Info("stream client connected", "remote", r.RemoteAddr, "control", control)

	for {
		var msg signal
		if err := conn.ReadJSON(&msg); err != nil {
			slog.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		}
		if !control {
			slog.Debug("stream signal ignored, no admin key", "signal", msg.Signal)
			continue
		}
		switch msg.Signal {
		case "confirm":
			h.ctrl.Confirm()
		case "reset":
			h.ctrl.Reset()
		default:
			slog.Debug("unknown stream signal", "signal", msg.Signal)
		}
	}
}
