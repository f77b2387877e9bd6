package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"wavewatch/world"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Feed is the realtime change-feed hub: one connection per user, profile
// updates broadcast to everyone except their author, chat to everyone.
type Feed struct {
	engine  *world.Engine
	clients map[int64]*Client
	mu      sync.RWMutex
}

type Client struct {
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

func NewFeed(engine *world.Engine) *Feed {
	return &Feed{
		engine:  engine,
		clients: make(map[int64]*Client),
	}
}

// HandleConnection registers a connection for the user, displacing any
// previous one (a rejoining tab wins).
func (f *Feed) HandleConnection(conn *websocket.Conn, userID int64) {
	client := &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
	}

	f.mu.Lock()
	if existing, ok := f.clients[userID]; ok {
		existing.conn.Close()
		close(existing.send)
	}
	f.clients[userID] = client
	f.mu.Unlock()

	go f.writePump(client)
	go f.readPump(client)
}

func (f *Feed) readPump(client *Client) {
	graceful := false
	defer func() {
		f.removeClient(client)
		client.conn.Close()
		if graceful {
			// Unclean closes intentionally leave the profile online; the
			// avatar freezes at its last position until the user returns.
			if event, err := f.engine.LeaveWorld(client.userID); err != nil {
				log.Printf("Failed to mark user %d offline: %v", client.userID, err)
			} else {
				f.Broadcast(event)
			}
		}
	}()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				graceful = true
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		f.handleMessage(client, &envelope)
	}
}

func (f *Feed) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current websocket message
			n := len(client.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage applies one client message. World writes are best-effort:
// failures are logged and the sample dropped, never retried or surfaced.
func (f *Feed) handleMessage(client *Client, envelope *Envelope) {
	switch envelope.Type {
	case MsgPosition:
		var payload PositionPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Invalid position payload from user %d: %v", client.userID, err)
			return
		}
		event, err := f.engine.UpdatePosition(client.userID, payload.X, payload.Z, payload.Room)
		if err != nil {
			log.Printf("Dropping position update for user %d: %v", client.userID, err)
			return
		}
		f.Broadcast(event)

	case MsgChat:
		var payload ChatPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Invalid chat payload from user %d: %v", client.userID, err)
			return
		}
		event, err := f.engine.PostMessage(client.userID, payload.Body)
		if err != nil {
			log.Printf("Dropping chat message from user %d: %v", client.userID, err)
			return
		}
		f.Broadcast(event)

	default:
		log.Printf("Unknown message type: %s", envelope.Type)
	}
}

// Broadcast fans an event out to connected clients. Profile updates skip the
// author (the not-equal filter: the local avatar renders from local state);
// everything else goes to all clients. Slow consumers are skipped.
func (f *Feed) Broadcast(event *world.Event) {
	data, err := json.Marshal(OutgoingMessage{Type: event.Type, Payload: event.Payload})
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for userID, client := range f.clients {
		if event.Type == world.EventProfileUpdate && userID == event.AuthorID {
			continue
		}
		select {
		case client.send <- data:
		default:
			log.Printf("Client %d send buffer full", client.userID)
		}
	}
}

func (f *Feed) removeClient(client *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Only remove if this connection is still the registered one; a rejoin
	// may already have replaced it.
	if current, ok := f.clients[client.userID]; ok && current == client {
		delete(f.clients, client.userID)
		close(client.send)
	}
}

func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}
