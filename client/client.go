package client

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"wavewatch/world"
	"wavewatch/ws"

	"github.com/gorilla/websocket"
)

// Client is a native world-feed session: it dials the feed, keeps the remote
// roster and chat log current, and publishes the local avatar's position at
// the throttled rate. The local avatar itself renders from Mover state and
// never round-trips through the feed.
type Client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	Roster    *Roster
	Chat      *ChatLog
	publisher *Publisher
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the feed endpoint. The header carries the session cookie.
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		Roster: NewRoster(),
		Chat:   NewChatLog(DefaultChatCapacity),
		done:   make(chan struct{}),
	}
	c.publisher = NewPublisher(PublishInterval, c.sendPosition)

	go c.readLoop()
	return c, nil
}

// PublishPosition feeds one sample through the throttle. Meant to be called
// from the mover's publish callback every frame; most calls are no-ops.
func (c *Client) PublishPosition(x, z float64, room string) {
	c.publisher.Publish(x, z, room)
}

func (c *Client) sendPosition(x, z float64, room string) error {
	return c.writeMessage(ws.MsgPosition, ws.PositionPayload{X: x, Z: z, Room: room})
}

// SendChat posts a message to the world channel.
func (c *Client) SendChat(body string) error {
	return c.writeMessage(ws.MsgChat, ws.ChatPayload{Body: body})
}

func (c *Client) writeMessage(msgType string, payload interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ws.OutgoingMessage{Type: msgType, Payload: payload})
}

// readLoop applies feed events to the local caches until the connection
// drops. Unknown event types are logged and skipped.
func (c *Client) readLoop() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Feed connection error: %v", err)
			}
			return
		}

		var envelope ws.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Printf("Failed to unmarshal feed event: %v", err)
			continue
		}
		c.applyEvent(&envelope)
	}
}

func (c *Client) applyEvent(envelope *ws.Envelope) {
	switch envelope.Type {
	case world.EventProfileUpdate:
		var view world.PlayerView
		if err := json.Unmarshal(envelope.Payload, &view); err != nil {
			log.Printf("Invalid profile update payload: %v", err)
			return
		}
		c.Roster.Apply(&view)

	case world.EventChatMessage:
		var msg world.ChatMessageView
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			log.Printf("Invalid chat payload: %v", err)
			return
		}
		c.Chat.Append(&msg)

	case world.EventPlayerLeft:
		var payload world.PlayerLeftPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Invalid player-left payload: %v", err)
			return
		}
		c.Roster.Remove(payload.UserID)

	default:
		log.Printf("Unknown feed event type: %s", envelope.Type)
	}
}

// Done closes when the feed connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			closeDeadline())
		c.writeMu.Unlock()
		c.conn.Close()
		close(c.done)
	})
	return nil
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
