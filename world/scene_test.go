package world

import "testing"

func TestVisibleScreenOppositeSide(t *testing.T) {
	tests := []struct {
		seat Side
		want Side
	}{
		{SideSouth, SideNorth},
		{SideNorth, SideSouth},
		{SideEast, SideWest},
		{SideWest, SideEast},
	}

	for _, tt := range tests {
		screen, ok := VisibleScreen(tt.seat)
		if !ok {
			t.Fatalf("VisibleScreen(%q) reported no screen", tt.seat)
		}
		if screen != tt.want {
			t.Fatalf("VisibleScreen(%q) = %q, want %q", tt.seat, screen, tt.want)
		}
	}
}

func TestVisibleScreenNoSeat(t *testing.T) {
	if _, ok := VisibleScreen(""); ok {
		t.Fatal("expected no screen for an unseated viewer")
	}
	if _, ok := VisibleScreen(Side("balcony")); ok {
		t.Fatal("expected no screen for an unknown side")
	}
}

func TestScreenVisibleGating(t *testing.T) {
	// A south-seated viewer renders only the north screen group.
	if !ScreenVisible(SideSouth, SideNorth) {
		t.Fatal("north screen should render for a south seat")
	}
	for _, screen := range []Side{SideSouth, SideEast, SideWest} {
		if ScreenVisible(SideSouth, screen) {
			t.Fatalf("%q screen should not render for a south seat", screen)
		}
	}
	if ScreenVisible("", SideNorth) {
		t.Fatal("no screen should render without a seat")
	}
}
