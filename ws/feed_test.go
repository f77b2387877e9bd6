package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"wavewatch/store"
	"wavewatch/world"
	"wavewatch/ws"

	"github.com/gorilla/websocket"
)

type feedFixture struct {
	store  *store.SQLiteStore
	engine *world.Engine
	feed   *ws.Feed
	server *httptest.Server
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	engine := world.NewEngine(s)
	feed := ws.NewFeed(engine)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := strconv.ParseInt(r.URL.Query().Get("uid"), 10, 64)
		if err != nil {
			http.Error(w, "bad uid", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		feed.HandleConnection(conn, uid)
	}))
	t.Cleanup(server.Close)

	return &feedFixture{store: s, engine: engine, feed: feed, server: server}
}

func (f *feedFixture) enter(t *testing.T, username string) int64 {
	t.Helper()
	id, err := f.store.CreateUser(username, "hash")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if _, _, err := f.engine.EnterWorld(id, username); err != nil {
		t.Fatalf("EnterWorld returned error: %v", err)
	}
	return id
}

func (f *feedFixture) dial(t *testing.T, userID int64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?uid=" + strconv.FormatInt(userID, 10)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *feedFixture) waitForClients(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.feed.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clients, have %d", n, f.feed.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(ws.Envelope{Type: msgType, Payload: data}); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) *ws.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage returned error: %v", err)
	}
	// The write pump may batch queued events newline-separated; take the first.
	if i := strings.IndexByte(string(data), '\n'); i >= 0 {
		data = data[:i]
	}
	var envelope ws.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return &envelope
}

func TestPositionBroadcastSkipsAuthor(t *testing.T) {
	f := newFeedFixture(t)
	alice := f.enter(t, "alice")
	bob := f.enter(t, "bob")

	aliceConn := f.dial(t, alice)
	bobConn := f.dial(t, bob)
	f.waitForClients(t, 2)

	sendMessage(t, aliceConn, ws.MsgPosition, ws.PositionPayload{X: 5, Z: 6, Room: world.RoomStadium})

	envelope := readEnvelope(t, bobConn, 2*time.Second)
	if envelope.Type != world.EventProfileUpdate {
		t.Fatalf("event type = %q, want %q", envelope.Type, world.EventProfileUpdate)
	}
	var view world.PlayerView
	if err := json.Unmarshal(envelope.Payload, &view); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if view.UserID != alice || view.X != 5 || view.Z != 6 || view.Room != world.RoomStadium {
		t.Fatalf("unexpected payload: %+v", view)
	}

	// The author must not receive their own position update.
	aliceConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := aliceConn.ReadMessage(); err == nil {
		t.Fatal("author received an echo of their own position update")
	}
}

func TestChatBroadcastReachesEveryone(t *testing.T) {
	f := newFeedFixture(t)
	alice := f.enter(t, "alice")
	bob := f.enter(t, "bob")

	aliceConn := f.dial(t, alice)
	bobConn := f.dial(t, bob)
	f.waitForClients(t, 2)

	sendMessage(t, aliceConn, ws.MsgChat, ws.ChatPayload{Body: "hello world"})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		envelope := readEnvelope(t, conn, 2*time.Second)
		if envelope.Type != world.EventChatMessage {
			t.Fatalf("event type = %q, want %q", envelope.Type, world.EventChatMessage)
		}
		var msg world.ChatMessageView
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if msg.UserID != alice || msg.Body != "hello world" || msg.DisplayName != "alice" {
			t.Fatalf("unexpected chat payload: %+v", msg)
		}
	}
}

func TestGracefulCloseMarksOffline(t *testing.T) {
	f := newFeedFixture(t)
	alice := f.enter(t, "alice")
	bob := f.enter(t, "bob")

	aliceConn := f.dial(t, alice)
	bobConn := f.dial(t, bob)
	f.waitForClients(t, 2)

	bobConn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))

	envelope := readEnvelope(t, aliceConn, 2*time.Second)
	if envelope.Type != world.EventPlayerLeft {
		t.Fatalf("event type = %q, want %q", envelope.Type, world.EventPlayerLeft)
	}
	var payload world.PlayerLeftPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.UserID != bob {
		t.Fatalf("player left = %d, want %d", payload.UserID, bob)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		profile, err := f.store.GetProfile(bob)
		if err != nil {
			t.Fatalf("GetProfile returned error: %v", err)
		}
		if !profile.IsOnline {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("profile still online after graceful close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidMessagesAreDropped(t *testing.T) {
	f := newFeedFixture(t)
	alice := f.enter(t, "alice")
	bob := f.enter(t, "bob")

	aliceConn := f.dial(t, alice)
	bobConn := f.dial(t, bob)
	f.waitForClients(t, 2)

	// Garbage, an unknown type, and an empty chat body are all dropped
	// without tearing down the connection.
	aliceConn.WriteMessage(websocket.TextMessage, []byte("not json"))
	sendMessage(t, aliceConn, "teleport", ws.PositionPayload{X: 1})
	sendMessage(t, aliceConn, ws.MsgChat, ws.ChatPayload{Body: "   "})

	// A valid message still flows afterwards.
	sendMessage(t, aliceConn, ws.MsgPosition, ws.PositionPayload{X: 1, Z: 1})
	envelope := readEnvelope(t, bobConn, 2*time.Second)
	if envelope.Type != world.EventProfileUpdate {
		t.Fatalf("event type = %q, want %q", envelope.Type, world.EventProfileUpdate)
	}
}
