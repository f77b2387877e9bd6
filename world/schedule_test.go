package world

import "testing"

func TestStatusAt(t *testing.T) {
	const start, end = int64(1000), int64(2000)

	tests := []struct {
		name string
		now  int64
		want ScheduleStatus
	}{
		{"before start", 999, StatusUpcoming},
		{"at start", 1000, StatusLive},
		{"mid", 1500, StatusLive},
		{"at end", 2000, StatusFinished},
		{"after end", 3000, StatusFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusAt(tt.now, start, end); got != tt.want {
				t.Fatalf("StatusAt(%d) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}
