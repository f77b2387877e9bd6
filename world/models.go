package world

import "wavewatch/store"

// Well-known room identifiers. Rooms gate which themed sub-scene a client
// renders; the empty string is the open world.
const (
	RoomOpenWorld = ""
	RoomStadium   = "stadium"
)

// Feed event types.
const (
	EventProfileUpdate = "profile_update"
	EventChatMessage   = "chat_message"
	EventPlayerLeft    = "player_left"
)

type AppearanceView struct {
	HairStyle  string `json:"hairStyle"`
	HairColor  string `json:"hairColor"`
	SkinTone   string `json:"skinTone"`
	ShirtColor string `json:"shirtColor"`
	PantsColor string `json:"pantsColor"`
	Accessory  string `json:"accessory"`
}

// PlayerView is the wire representation of a world profile. Feed consumers
// replace their cached entry wholesale with each update; fields are never
// merged.
type PlayerView struct {
	UserID      int64          `json:"userId"`
	DisplayName string         `json:"displayName"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Z           float64        `json:"z"`
	Room        string         `json:"room"`
	IsOnline    bool           `json:"isOnline"`
	LastSeen    int64          `json:"lastSeen"`
	Appearance  AppearanceView `json:"appearance"`
}

type ChatMessageView struct {
	ID          string `json:"id"`
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	Body        string `json:"body"`
	CreatedAt   int64  `json:"createdAt"`
}

type PlayerLeftPayload struct {
	UserID int64 `json:"userId"`
}

// Event pairs a feed event type with its payload. The author id lets the
// feed apply its not-equal broadcast filter.
type Event struct {
	Type     string      `json:"type"`
	AuthorID int64       `json:"-"`
	Payload  interface{} `json:"payload"`
}

func viewFromProfile(p *store.Profile) *PlayerView {
	return &PlayerView{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		X:           p.X,
		Y:           p.Y,
		Z:           p.Z,
		Room:        p.Room,
		IsOnline:    p.IsOnline,
		LastSeen:    p.LastSeen,
		Appearance: AppearanceView{
			HairStyle:  p.Appearance.HairStyle,
			HairColor:  p.Appearance.HairColor,
			SkinTone:   p.Appearance.SkinTone,
			ShirtColor: p.Appearance.ShirtColor,
			PantsColor: p.Appearance.PantsColor,
			Accessory:  p.Appearance.Accessory,
		},
	}
}

func viewFromMessage(m *store.ChatMessage) *ChatMessageView {
	return &ChatMessageView{
		ID:          m.ID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
}
