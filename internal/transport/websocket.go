// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// WebSocketPath is where clients connect.
const WebSocketPath = "/progress"

// WebSocketTransport broadcasts every event as JSON to all connected
// clients. Events are dropped rather than queued without bound when
// clients fall behind.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	listener  net.Listener
	server    *http.Server
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	closed    bool
	closeMu   sync.RWMutex
	drained   chan struct{}
	serving   sync.WaitGroup
}

// NewWebSocketTransport listens on addr, e.g. ":8080" or "127.0.0.1:0".
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen for websocket clients on '%s': %w", addr, err)
	}
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		listener:  listener,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		drained:   make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux}

	wst.serving.Add(1)
	go func() {
		defer wst.serving.Done()
		log.Infof("WebSocketTransport: Serving progress on ws://%s%s", listener.Addr(), WebSocketPath)
		if err := wst.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
	go wst.handleBroadcasts()
	return wst, nil
}

// Addr is the address the server listens on.
func (wst *WebSocketTransport) Addr() net.Addr { return wst.listener.Addr() }

// NumClients is the number of connected clients.
func (wst *WebSocketTransport) NumClients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Debugf("WebSocketTransport: Client connected, total: %d", n)

	// Clients never send anything; a read error means they went away.
	go func() {
		if _, _, err := conn.ReadMessage(); err != nil {
			wst.removeClient(conn)
		}
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	if wst.clients[conn] {
		delete(wst.clients, conn)
		conn.Close()
		log.Debugf("WebSocketTransport: Client disconnected, total: %d", len(wst.clients))
	}
}

func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.drained)
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(data); err != nil {
				log.Warnf("WebSocketTransport: Error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues data for broadcast. It never blocks.
func (wst *WebSocketTransport) Send(data any) error {
	wst.closeMu.RLock()
	defer wst.closeMu.RUnlock()
	if wst.closed {
		return errors.New("websocket transport is closed")
	}
	select {
	case wst.broadcast <- data:
	default:
		log.Debugf("WebSocketTransport: Broadcast queue full, dropping event")
	}
	return nil
}

// Close delivers queued events, then disconnects clients and stops the
// server.
func (wst *WebSocketTransport) Close() error {
	wst.closeMu.Lock()
	if wst.closed {
		wst.closeMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.closeMu.Unlock()
	<-wst.drained

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	err := wst.server.Close()
	wst.serving.Wait()
	log.Debugf("WebSocketTransport: Closed")
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
