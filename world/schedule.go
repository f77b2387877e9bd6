package world

import "wavewatch/store"

type ScheduleStatus string

const (
	StatusUpcoming ScheduleStatus = "upcoming"
	StatusLive     ScheduleStatus = "live"
	StatusFinished ScheduleStatus = "finished"
)

// StatusAt derives the display state of a scheduled entry from the wall
// clock. Bounds are [startsAt, endsAt): an entry is live at its start second
// and finished at its end second.
func StatusAt(now, startsAt, endsAt int64) ScheduleStatus {
	if now < startsAt {
		return StatusUpcoming
	}
	if now >= endsAt {
		return StatusFinished
	}
	return StatusLive
}

type CinemaRoomView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	IsOpen bool   `json:"isOpen"`
}

type CinemaSessionView struct {
	ID         int64          `json:"id"`
	RoomID     int64          `json:"roomId"`
	MovieTitle string         `json:"movieTitle"`
	TMDBID     int64          `json:"tmdbId"`
	StartsAt   int64          `json:"startsAt"`
	EndsAt     int64          `json:"endsAt"`
	IsOpen     bool           `json:"isOpen"`
	Status     ScheduleStatus `json:"status"`
}

type StadiumMatchView struct {
	ID       int64          `json:"id"`
	Title    string         `json:"title"`
	StartsAt int64          `json:"startsAt"`
	EndsAt   int64          `json:"endsAt"`
	IsOpen   bool           `json:"isOpen"`
	Status   ScheduleStatus `json:"status"`
}

func sessionView(s *store.CinemaSession, now int64) *CinemaSessionView {
	return &CinemaSessionView{
		ID:         s.ID,
		RoomID:     s.RoomID,
		MovieTitle: s.MovieTitle,
		TMDBID:     s.TMDBID,
		StartsAt:   s.StartsAt,
		EndsAt:     s.EndsAt,
		IsOpen:     s.IsOpen,
		Status:     StatusAt(now, s.StartsAt, s.EndsAt),
	}
}

func matchView(m *store.StadiumMatch, now int64) *StadiumMatchView {
	return &StadiumMatchView{
		ID:       m.ID,
		Title:    m.Title,
		StartsAt: m.StartsAt,
		EndsAt:   m.EndsAt,
		IsOpen:   m.IsOpen,
		Status:   StatusAt(now, m.StartsAt, m.EndsAt),
	}
}
