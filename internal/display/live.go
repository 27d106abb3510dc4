package display

import (
	_ "embed"
	"io"
	"log"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"
)

//go:embed static/index.html
var indexHTML []byte

type liveMessage struct {
	Type     string    `json:"type"`
	Points   []float64 `json:"points,omitempty"`
	Upper    []float64 `json:"upper,omitempty"`
	Lower    []float64 `json:"lower,omitempty"`
	Frame    *Frame    `json:"frame,omitempty"`
	Score    string    `json:"score,omitempty"`
	Accuracy string    `json:"accuracy,omitempty"`
}

// Live serves the chart page and pushes frames to connected browsers over a
// websocket. A browser that connects mid-run receives the latest frame
// immediately.
type Live struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	hello   liveMessage
	last    *liveMessage
}

// NewLive prepares a hub whose chart spans points with the given bounds.
func NewLive(points, upper, lower []float64) *Live {
	return &Live{
		clients: make(map[*websocket.Conn]struct{}),
		hello:   liveMessage{Type: "hello", Points: points, Upper: upper, Lower: lower},
	}
}

// Handler serves the page at / and the frame stream at /ws.
func (l *Live) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(indexHTML); err != nil {
			log.Printf("live: write page: %v", err)
		}
	})
	mux.Handle("/ws", websocket.Handler(l.serveWS))
	return mux
}

// Clients reports the number of connected browsers.
func (l *Live) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Publish broadcasts f. Clients that fail to receive it are dropped.
func (l *Live) Publish(f Frame) error {
	score, accuracy := f.Captions()
	msg := &liveMessage{Type: "frame", Frame: &f, Score: score, Accuracy: accuracy}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = msg
	for ws := range l.clients {
		if err := websocket.JSON.Send(ws, msg); err != nil {
			log.Printf("live: drop client=%s: %v", ws.Request().RemoteAddr, err)
			delete(l.clients, ws)
			ws.Close()
		}
	}
	return nil
}

func (l *Live) serveWS(ws *websocket.Conn) {
	defer ws.Close()
	addr := ws.Request().RemoteAddr

	l.mu.Lock()
	err := websocket.JSON.Send(ws, l.hello)
	if err == nil && l.last != nil {
		err = websocket.JSON.Send(ws, l.last)
	}
	if err == nil {
		l.clients[ws] = struct{}{}
	}
	l.mu.Unlock()
	if err != nil {
		log.Printf("live: greet client=%s: %v", addr, err)
		return
	}
	log.Printf("live: client connected=%s", addr)

	defer func() {
		l.mu.Lock()
		delete(l.clients, ws)
		l.mu.Unlock()
	}()
	for {
		var discard string
		if err := websocket.Message.Receive(ws, &discard); err != nil {
			if err != io.EOF {
				log.Printf("live: read client=%s: %v", addr, err)
			}
			return
		}
	}
}
