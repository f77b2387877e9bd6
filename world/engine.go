package world

import (
	"errors"
	"time"
	"unicode/utf8"

	"wavewatch/auth"
	"wavewatch/store"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidName     = errors.New("display name is empty")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrInvalidRoom     = errors.New("invalid room name")
	ErrInvalidSchedule = errors.New("schedule end must be after start")
	ErrRoomNotFound    = errors.New("cinema room not found")
)

const (
	// MaxRosterFetch bounds the bulk player fetch on world entry.
	MaxRosterFetch = 20
	// ChatHistoryLimit bounds the recent-message fetch.
	ChatHistoryLimit = 50

	maxRoomLen = 64
	maxChatLen = 400
)

// Engine implements the world operations over a Store. Each profile row is
// written only by its owning user's session, so no row-level locking is
// needed here.
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// EnterWorld creates the caller's profile on first entry and marks it online
// on every entry. Upsert keyed by user id, so repeated calls leave one row.
func (e *Engine) EnterWorld(userID int64, displayName string) (*PlayerView, *Event, error) {
	displayName = auth.SanitizeString(displayName)
	if displayName == "" {
		return nil, nil, ErrInvalidName
	}

	now := e.now().Unix()
	if err := e.store.UpsertProfile(&store.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Y:           GroundY,
		Room:        RoomOpenWorld,
		IsOnline:    true,
		LastSeen:    now,
	}); err != nil {
		return nil, nil, err
	}

	// Read back: the upsert preserves position and appearance on re-entry.
	p, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, ErrProfileNotFound
	}

	view := viewFromProfile(p)
	return view, &Event{Type: EventProfileUpdate, AuthorID: userID, Payload: view}, nil
}

// UpdatePosition persists a throttled position sample for the caller's own
// row. The server clamps again so a client skipping its own clamp cannot
// leave the world bounds.
func (e *Engine) UpdatePosition(userID int64, x, z float64, room string) (*Event, error) {
	if len(room) > maxRoomLen {
		return nil, ErrInvalidRoom
	}

	p, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	x, z = ClampToWorld(x, z)
	now := e.now().Unix()
	if err := e.store.UpdateProfilePosition(userID, x, z, room, now); err != nil {
		return nil, err
	}

	p.X, p.Z, p.Room, p.LastSeen = x, z, room, now
	return &Event{Type: EventProfileUpdate, AuthorID: userID, Payload: viewFromProfile(p)}, nil
}

// UpdateAppearance replaces the avatar customization record wholesale.
func (e *Engine) UpdateAppearance(userID int64, a AppearanceView) (*Event, error) {
	p, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	clean := store.Appearance{
		HairStyle:  auth.SanitizeString(a.HairStyle),
		HairColor:  auth.SanitizeString(a.HairColor),
		SkinTone:   auth.SanitizeString(a.SkinTone),
		ShirtColor: auth.SanitizeString(a.ShirtColor),
		PantsColor: auth.SanitizeString(a.PantsColor),
		Accessory:  auth.SanitizeString(a.Accessory),
	}
	if err := e.store.UpdateProfileAppearance(userID, clean); err != nil {
		return nil, err
	}

	p.Appearance = clean
	return &Event{Type: EventProfileUpdate, AuthorID: userID, Payload: viewFromProfile(p)}, nil
}

// LeaveWorld is the logical destroy: the row persists, is_online goes false.
func (e *Engine) LeaveWorld(userID int64) (*Event, error) {
	if err := e.store.SetProfileOnline(userID, false, e.now().Unix()); err != nil {
		return nil, err
	}
	return &Event{Type: EventPlayerLeft, AuthorID: userID, Payload: PlayerLeftPayload{UserID: userID}}, nil
}

// ListPlayers seeds a client's remote roster: online profiles excluding the
// caller, bounded.
func (e *Engine) ListPlayers(userID int64) ([]*PlayerView, error) {
	profiles, err := e.store.ListProfilesExcluding(userID, MaxRosterFetch)
	if err != nil {
		return nil, err
	}
	views := make([]*PlayerView, len(profiles))
	for i, p := range profiles {
		views[i] = viewFromProfile(p)
	}
	return views, nil
}

// PostMessage inserts a chat message with a snapshot of the sender's current
// display name.
func (e *Engine) PostMessage(userID int64, body string) (*Event, error) {
	p, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	body = auth.SanitizeString(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > maxChatLen {
		// Back off to a rune boundary so the stored body stays valid UTF-8.
		cut := maxChatLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}

	msg := &store.ChatMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: p.DisplayName,
		Body:        body,
		CreatedAt:   e.now().Unix(),
	}
	if err := e.store.InsertChatMessage(msg); err != nil {
		return nil, err
	}

	return &Event{Type: EventChatMessage, AuthorID: userID, Payload: viewFromMessage(msg)}, nil
}

func (e *Engine) RecentMessages() ([]*ChatMessageView, error) {
	messages, err := e.store.ListRecentMessages(ChatHistoryLimit)
	if err != nil {
		return nil, err
	}
	views := make([]*ChatMessageView, len(messages))
	for i, m := range messages {
		views[i] = viewFromMessage(m)
	}
	return views, nil
}

func (e *Engine) CinemaRooms() ([]*CinemaRoomView, error) {
	rooms, err := e.store.ListCinemaRooms()
	if err != nil {
		return nil, err
	}
	views := make([]*CinemaRoomView, len(rooms))
	for i, r := range rooms {
		views[i] = &CinemaRoomView{ID: r.ID, Name: r.Name, IsOpen: r.IsOpen}
	}
	return views, nil
}

// CinemaSchedule lists sessions with their display status derived from the
// wall clock at call time.
func (e *Engine) CinemaSchedule() ([]*CinemaSessionView, error) {
	sessions, err := e.store.ListCinemaSessions()
	if err != nil {
		return nil, err
	}
	now := e.now().Unix()
	views := make([]*CinemaSessionView, len(sessions))
	for i, s := range sessions {
		views[i] = sessionView(s, now)
	}
	return views, nil
}

func (e *Engine) StadiumSchedule() ([]*StadiumMatchView, error) {
	matches, err := e.store.ListStadiumMatches()
	if err != nil {
		return nil, err
	}
	now := e.now().Unix()
	views := make([]*StadiumMatchView, len(matches))
	for i, m := range matches {
		views[i] = matchView(m, now)
	}
	return views, nil
}

// Admin operations, reached only through the admin routes.

func (e *Engine) AddCinemaRoom(name string) (int64, error) {
	name = auth.SanitizeString(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	return e.store.CreateCinemaRoom(name)
}

func (e *Engine) ScheduleCinemaSession(roomID int64, movieTitle string, tmdbID, startsAt, endsAt int64) (int64, error) {
	if endsAt <= startsAt {
		return 0, ErrInvalidSchedule
	}
	movieTitle = auth.SanitizeString(movieTitle)
	if movieTitle == "" {
		return 0, ErrInvalidName
	}

	rooms, err := e.store.ListCinemaRooms()
	if err != nil {
		return 0, err
	}
	found := false
	for _, r := range rooms {
		if r.ID == roomID {
			found = true
			break
		}
	}
	if !found {
		return 0, ErrRoomNotFound
	}

	return e.store.CreateCinemaSession(&store.CinemaSession{
		RoomID:     roomID,
		MovieTitle: movieTitle,
		TMDBID:     tmdbID,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsOpen:     true,
	})
}

func (e *Engine) ScheduleStadiumMatch(title string, startsAt, endsAt int64) (int64, error) {
	if endsAt <= startsAt {
		return 0, ErrInvalidSchedule
	}
	title = auth.SanitizeString(title)
	if title == "" {
		return 0, ErrInvalidName
	}
	return e.store.CreateStadiumMatch(&store.StadiumMatch{
		Title:    title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		IsOpen:   true,
	})
}
