package ws

import "encoding/json"

// Envelope frames every feed message in both directions. Payloads decode
// into the typed structs below at the boundary; handlers never operate on
// untyped maps.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client -> server message types.
const (
	MsgPosition = "position"
	MsgChat     = "chat"
)

type PositionPayload struct {
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
	Room string  `json:"room"`
}

type ChatPayload struct {
	Body string `json:"body"`
}

// OutgoingMessage frames a server -> client event for encoding.
type OutgoingMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
