package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store interface {
	CreateUser(username, passwordHash string) (int64, error)
	GetUserByUsername(username string) (*User, error)
	GetUserByID(userID int64) (*User, error)

	UpsertProfile(p *Profile) error
	GetProfile(userID int64) (*Profile, error)
	UpdateProfilePosition(userID int64, x, z float64, room string, lastSeen int64) error
	UpdateProfileAppearance(userID int64, a Appearance) error
	SetProfileOnline(userID int64, online bool, lastSeen int64) error
	ListProfilesExcluding(userID int64, limit int) ([]*Profile, error)

	InsertChatMessage(m *ChatMessage) error
	ListRecentMessages(limit int) ([]*ChatMessage, error)

	CreateCinemaRoom(name string) (int64, error)
	ListCinemaRooms() ([]*CinemaRoom, error)
	CreateCinemaSession(s *CinemaSession) (int64, error)
	ListCinemaSessions() ([]*CinemaSession, error)
	CreateStadiumMatch(m *StadiumMatch) (int64, error)
	ListStadiumMatches() ([]*StadiumMatch, error)

	Close() error
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    string
}

// Appearance is the avatar customization record stored inline on the profile.
type Appearance struct {
	HairStyle  string
	HairColor  string
	SkinTone   string
	ShirtColor string
	PantsColor string
	Accessory  string
}

type Profile struct {
	UserID      int64
	DisplayName string
	X           float64
	Y           float64
	Z           float64
	Room        string // empty means open world
	IsOnline    bool
	LastSeen    int64 // unix seconds
	Appearance  Appearance
}

type ChatMessage struct {
	ID          string
	UserID      int64
	DisplayName string
	Body        string
	CreatedAt   int64 // unix seconds
}

type CinemaRoom struct {
	ID     int64
	Name   string
	IsOpen bool
}

type CinemaSession struct {
	ID         int64
	RoomID     int64
	MovieTitle string
	TMDBID     int64
	StartsAt   int64 // unix seconds
	EndsAt     int64
	IsOpen     bool
}

type StadiumMatch struct {
	ID       int64
	Title    string
	StartsAt int64 // unix seconds
	EndsAt   int64
	IsOpen   bool
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(username, passwordHash string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetUserByUsername(username string) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByID(userID int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpsertProfile creates the world profile on first entry and refreshes it on
// later entries. Keyed by user_id, so calling it twice leaves a single row.
func (s *SQLiteStore) UpsertProfile(p *Profile) error {
	_, err := s.db.Exec(`
		INSERT INTO profiles (
			user_id, display_name, x, y, z, room, is_online, last_seen,
			hair_style, hair_color, skin_tone, shirt_color, pants_color, accessory
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			is_online = excluded.is_online,
			last_seen = excluded.last_seen
	`,
		p.UserID, p.DisplayName, p.X, p.Y, p.Z, p.Room, boolToInt(p.IsOnline), p.LastSeen,
		p.Appearance.HairStyle, p.Appearance.HairColor, p.Appearance.SkinTone,
		p.Appearance.ShirtColor, p.Appearance.PantsColor, p.Appearance.Accessory,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(userID int64) (*Profile, error) {
	p := &Profile{}
	var isOnline int
	err := s.db.QueryRow(`
		SELECT user_id, display_name, x, y, z, room, is_online, last_seen,
		       hair_style, hair_color, skin_tone, shirt_color, pants_color, accessory
		FROM profiles WHERE user_id = ?
	`, userID).Scan(
		&p.UserID, &p.DisplayName, &p.X, &p.Y, &p.Z, &p.Room, &isOnline, &p.LastSeen,
		&p.Appearance.HairStyle, &p.Appearance.HairColor, &p.Appearance.SkinTone,
		&p.Appearance.ShirtColor, &p.Appearance.PantsColor, &p.Appearance.Accessory,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.IsOnline = isOnline == 1
	return p, nil
}

// UpdateProfilePosition is a partial update: position, room and last_seen
// only. Appearance and online flag are untouched.
func (s *SQLiteStore) UpdateProfilePosition(userID int64, x, z float64, room string, lastSeen int64) error {
	_, err := s.db.Exec(
		"UPDATE profiles SET x = ?, z = ?, room = ?, last_seen = ? WHERE user_id = ?",
		x, z, room, lastSeen, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProfileAppearance(userID int64, a Appearance) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET hair_style = ?, hair_color = ?, skin_tone = ?,
			shirt_color = ?, pants_color = ?, accessory = ?
		WHERE user_id = ?
	`, a.HairStyle, a.HairColor, a.SkinTone, a.ShirtColor, a.PantsColor, a.Accessory, userID)
	if err != nil {
		return fmt.Errorf("failed to update appearance: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetProfileOnline(userID int64, online bool, lastSeen int64) error {
	_, err := s.db.Exec(
		"UPDATE profiles SET is_online = ?, last_seen = ? WHERE user_id = ?",
		boolToInt(online), lastSeen, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update online flag: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProfilesExcluding(userID int64, limit int) ([]*Profile, error) {
	rows, err := s.db.Query(`
		SELECT user_id, display_name, x, y, z, room, is_online, last_seen,
		       hair_style, hair_color, skin_tone, shirt_color, pants_color, accessory
		FROM profiles
		WHERE user_id != ? AND is_online = 1
		ORDER BY last_seen DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		var isOnline int
		if err := rows.Scan(
			&p.UserID, &p.DisplayName, &p.X, &p.Y, &p.Z, &p.Room, &isOnline, &p.LastSeen,
			&p.Appearance.HairStyle, &p.Appearance.HairColor, &p.Appearance.SkinTone,
			&p.Appearance.ShirtColor, &p.Appearance.PantsColor, &p.Appearance.Accessory,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.IsOnline = isOnline == 1
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *SQLiteStore) InsertChatMessage(m *ChatMessage) error {
	_, err := s.db.Exec(
		"INSERT INTO chat_messages (id, user_id, display_name, body, created_at) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.UserID, m.DisplayName, m.Body, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListRecentMessages returns the newest messages, oldest first, so callers
// can append them to a chat log directly.
func (s *SQLiteStore) ListRecentMessages(limit int) ([]*ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, display_name, body, created_at FROM (
			SELECT id, user_id, display_name, body, created_at
			FROM chat_messages ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		m := &ChatMessage{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.DisplayName, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) CreateCinemaRoom(name string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO cinema_rooms (name, is_open) VALUES (?, 1)",
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create cinema room: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListCinemaRooms() ([]*CinemaRoom, error) {
	rows, err := s.db.Query("SELECT id, name, is_open FROM cinema_rooms ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list cinema rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*CinemaRoom
	for rows.Next() {
		room := &CinemaRoom{}
		var isOpen int
		if err := rows.Scan(&room.ID, &room.Name, &isOpen); err != nil {
			return nil, fmt.Errorf("failed to scan cinema room: %w", err)
		}
		room.IsOpen = isOpen == 1
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (s *SQLiteStore) CreateCinemaSession(cs *CinemaSession) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO cinema_sessions (room_id, movie_title, tmdb_id, starts_at, ends_at, is_open) VALUES (?, ?, ?, ?, ?, ?)",
		cs.RoomID, cs.MovieTitle, cs.TMDBID, cs.StartsAt, cs.EndsAt, boolToInt(cs.IsOpen),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create cinema session: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListCinemaSessions() ([]*CinemaSession, error) {
	rows, err := s.db.Query(
		"SELECT id, room_id, movie_title, tmdb_id, starts_at, ends_at, is_open FROM cinema_sessions ORDER BY starts_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cinema sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*CinemaSession
	for rows.Next() {
		cs := &CinemaSession{}
		var isOpen int
		if err := rows.Scan(&cs.ID, &cs.RoomID, &cs.MovieTitle, &cs.TMDBID, &cs.StartsAt, &cs.EndsAt, &isOpen); err != nil {
			return nil, fmt.Errorf("failed to scan cinema session: %w", err)
		}
		cs.IsOpen = isOpen == 1
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) CreateStadiumMatch(m *StadiumMatch) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO stadium_matches (title, starts_at, ends_at, is_open) VALUES (?, ?, ?, ?)",
		m.Title, m.StartsAt, m.EndsAt, boolToInt(m.IsOpen),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create stadium match: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListStadiumMatches() ([]*StadiumMatch, error) {
	rows, err := s.db.Query(
		"SELECT id, title, starts_at, ends_at, is_open FROM stadium_matches ORDER BY starts_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stadium matches: %w", err)
	}
	defer rows.Close()

	var matches []*StadiumMatch
	for rows.Next() {
		m := &StadiumMatch{}
		var isOpen int
		if err := rows.Scan(&m.ID, &m.Title, &m.StartsAt, &m.EndsAt, &isOpen); err != nil {
			return nil, fmt.Errorf("failed to scan stadium match: %w", err)
		}
		m.IsOpen = isOpen == 1
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
