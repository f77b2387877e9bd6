package world

// Side identifies one face of the four-sided stadium.
type Side string

const (
	SideNorth Side = "north"
	SideSouth Side = "south"
	SideEast  Side = "east"
	SideWest  Side = "west"
)

func (s Side) Valid() bool {
	switch s {
	case SideNorth, SideSouth, SideEast, SideWest:
		return true
	}
	return false
}

func (s Side) Opposite() Side {
	switch s {
	case SideNorth:
		return SideSouth
	case SideSouth:
		return SideNorth
	case SideEast:
		return SideWest
	case SideWest:
		return SideEast
	}
	return ""
}

// VisibleScreen returns the screen group a seated viewer should render.
// A screen only faces the side opposite its mounting, so a viewer seated on
// the south side sees the north screen. Viewers without a seat see none.
func VisibleScreen(seat Side) (Side, bool) {
	if !seat.Valid() {
		return "", false
	}
	return seat.Opposite(), true
}

// ScreenVisible reports whether one specific screen group renders for a
// viewer in the given seat.
func ScreenVisible(seat, screen Side) bool {
	visible, ok := VisibleScreen(seat)
	return ok && visible == screen
}
