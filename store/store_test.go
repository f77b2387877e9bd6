package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(username, "hash")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return id
}

func TestUpsertProfileIdempotent(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice")

	p := &Profile{UserID: userID, DisplayName: "Alice", Y: 0.5, IsOnline: true, LastSeen: 100}
	if err := s.UpsertProfile(p); err != nil {
		t.Fatalf("first upsert returned error: %v", err)
	}
	p.LastSeen = 200
	if err := s.UpsertProfile(p); err != nil {
		t.Fatalf("second upsert returned error: %v", err)
	}

	got, err := s.GetProfile(userID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if got == nil {
		t.Fatal("profile not found after upsert")
	}
	if got.LastSeen != 200 {
		t.Fatalf("last_seen = %d, want 200", got.LastSeen)
	}

	others, err := s.ListProfilesExcluding(-1, 100)
	if err != nil {
		t.Fatalf("ListProfilesExcluding returned error: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("expected exactly one profile row, got %d", len(others))
	}
}

func TestUpsertPreservesPositionAndAppearance(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice")

	if err := s.UpsertProfile(&Profile{UserID: userID, DisplayName: "Alice", IsOnline: true}); err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}
	if err := s.UpdateProfilePosition(userID, 7, -3, "stadium", 150); err != nil {
		t.Fatalf("UpdateProfilePosition returned error: %v", err)
	}
	if err := s.UpdateProfileAppearance(userID, Appearance{HairStyle: "curly", SkinTone: "#aa8866"}); err != nil {
		t.Fatalf("UpdateProfileAppearance returned error: %v", err)
	}

	// Re-entry upsert must not reset position or appearance.
	if err := s.UpsertProfile(&Profile{UserID: userID, DisplayName: "Alice", IsOnline: true, LastSeen: 300}); err != nil {
		t.Fatalf("re-entry upsert returned error: %v", err)
	}

	got, err := s.GetProfile(userID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if got.X != 7 || got.Z != -3 || got.Room != "stadium" {
		t.Fatalf("position lost on re-entry: %+v", got)
	}
	if got.Appearance.HairStyle != "curly" || got.Appearance.SkinTone != "#aa8866" {
		t.Fatalf("appearance lost on re-entry: %+v", got.Appearance)
	}
}

func TestListProfilesExcludingFiltersAndBounds(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	for i, id := range []int64{alice, bob, carol} {
		if err := s.UpsertProfile(&Profile{UserID: id, DisplayName: "p", IsOnline: true, LastSeen: int64(i)}); err != nil {
			t.Fatalf("upsert returned error: %v", err)
		}
	}
	// Carol goes offline and must disappear from the listing.
	if err := s.SetProfileOnline(carol, false, 10); err != nil {
		t.Fatalf("SetProfileOnline returned error: %v", err)
	}

	got, err := s.ListProfilesExcluding(alice, 20)
	if err != nil {
		t.Fatalf("ListProfilesExcluding returned error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != bob {
		t.Fatalf("unexpected listing: %+v", got)
	}

	// Limit bounds the result.
	if err := s.SetProfileOnline(carol, true, 10); err != nil {
		t.Fatalf("SetProfileOnline returned error: %v", err)
	}
	got, err = s.ListProfilesExcluding(alice, 1)
	if err != nil {
		t.Fatalf("ListProfilesExcluding returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("limit ignored: got %d rows", len(got))
	}
}

func TestChatMessagesOrderedAndLimited(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice")

	for i := 0; i < 5; i++ {
		err := s.InsertChatMessage(&ChatMessage{
			ID:          string(rune('a' + i)),
			UserID:      userID,
			DisplayName: "Alice",
			Body:        "hi",
			CreatedAt:   int64(100 + i),
		})
		if err != nil {
			t.Fatalf("InsertChatMessage returned error: %v", err)
		}
	}

	got, err := s.ListRecentMessages(3)
	if err != nil {
		t.Fatalf("ListRecentMessages returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	// The newest three, oldest first.
	if got[0].CreatedAt != 102 || got[2].CreatedAt != 104 {
		t.Fatalf("unexpected ordering: %+v", got)
	}
}

func TestScheduleEntitiesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	roomID, err := s.CreateCinemaRoom("Room A")
	if err != nil {
		t.Fatalf("CreateCinemaRoom returned error: %v", err)
	}

	if _, err := s.CreateCinemaSession(&CinemaSession{
		RoomID: roomID, MovieTitle: "Example", TMDBID: 42, StartsAt: 100, EndsAt: 200, IsOpen: true,
	}); err != nil {
		t.Fatalf("CreateCinemaSession returned error: %v", err)
	}

	sessions, err := s.ListCinemaSessions()
	if err != nil {
		t.Fatalf("ListCinemaSessions returned error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].MovieTitle != "Example" || !sessions[0].IsOpen {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}

	if _, err := s.CreateStadiumMatch(&StadiumMatch{Title: "Final", StartsAt: 300, EndsAt: 400, IsOpen: true}); err != nil {
		t.Fatalf("CreateStadiumMatch returned error: %v", err)
	}
	matches, err := s.ListStadiumMatches()
	if err != nil {
		t.Fatalf("ListStadiumMatches returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Title != "Final" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}
