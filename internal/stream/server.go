// Package stream broadcasts simulation frames to websocket clients and
// accepts pause/reset control messages from them.
package stream

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/engine"
)

// Message is the wire envelope around a frame.
type Message struct {
	Type   string       `json:"type"`
	Scene  string       `json:"scene"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Frame  engine.Frame `json:"frame"`
}

// Control is what clients send back.
type Control struct {
	Paused *bool `json:"paused,omitempty"`
	Reset  bool  `json:"reset,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server advances a scene on a fixed tick and streams each output
// frame to every connected client.
type Server struct {
	scene *config.Scene
	fps   int

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    Message

	ctlMu  sync.Mutex
	paused bool
	reset  bool
}

// NewServer prepares a streaming server for the scene. fps is the
// broadcast rate; zero means 30.
func NewServer(scene *config.Scene, fps int) *Server {
	if fps <= 0 {
		fps = 30
	}
	return &Server{
		scene:   scene,
		fps:     fps,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ListenAndServe runs the simulation loop and blocks serving HTTP on
// addr. The websocket endpoint is /ws.
func (s *Server) ListenAndServe(addr string) error {
	eng, err := engine.FromScene(s.scene.Clone())
	if err != nil {
		return err
	}
	s.store(s.message(eng, nil))
	go s.loop(eng)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "sphsim scene %q\nframes stream on ws://%s/ws\n", s.scene.Name, r.Host)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMu
	last := s.last
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	connMu.Lock()
	err = conn.WriteJSON(last)
	connMu.Unlock()
	if err != nil {
		return
	}

	for {
		var ctl Control
		if err := conn.ReadJSON(&ctl); err != nil {
			return
		}
		s.ctlMu.Lock()
		if ctl.Paused != nil {
			s.paused = *ctl.Paused
		}
		if ctl.Reset {
			s.reset = true
		}
		s.ctlMu.Unlock()
	}
}

// loop owns the engine. Clients never touch it directly; they flip
// flags the loop picks up on its next tick.
func (s *Server) loop(eng *engine.Engine) {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	var simErr error
	for range ticker.C {
		s.ctlMu.Lock()
		paused, reset := s.paused, s.reset
		s.reset = false
		s.ctlMu.Unlock()

		if reset {
			fresh, err := engine.FromScene(s.scene.Clone())
			if err == nil {
				eng, simErr = fresh, nil
			}
		}
		if !paused && simErr == nil && !eng.Done() {
			simErr = eng.Advance(s.scene.OutputInterval)
		}

		msg := s.message(eng, simErr)
		if paused && simErr == nil && !eng.Done() {
			msg.Status = "paused"
		}
		s.store(msg)
		s.broadcast(msg)
	}
}

func (s *Server) message(eng *engine.Engine, simErr error) Message {
	msg := Message{
		Type:   "frame",
		Scene:  s.scene.Name,
		Status: "running",
		Frame:  eng.Frame(),
	}
	switch {
	case simErr != nil:
		msg.Status = "failed"
		msg.Error = simErr.Error()
	case eng.Done():
		msg.Status = "done"
	}
	return msg
}

func (s *Server) store(msg Message) {
	s.mu.Lock()
	s.last = msg
	s.mu.Unlock()
}

func (s *Server) broadcast(msg Message) {
	s.mu.RLock()
	var dead []*websocket.Conn
	for conn, connMu := range s.clients {
		connMu.Lock()
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			conn.Close()
			dead = append(dead, conn)
		}
	}
	s.mu.RUnlock()

	if len(dead) > 0 {
		s.mu.Lock()
		for _, conn := range dead {
			delete(s.clients, conn)
		}
		s.mu.Unlock()
	}
}
