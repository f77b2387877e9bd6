package world

import "testing"

func TestClampToWorldBounds(t *testing.T) {
	tests := []struct {
		name         string
		x, z         float64
		wantX, wantZ float64
	}{
		{"inside", 5, -3, 5, -3},
		{"x overflow", 1000, 0, WorldBound, 0},
		{"x underflow", -1000, 0, -WorldBound, 0},
		{"z overflow", 0, 21, 0, WorldBound},
		{"both corners", -500, 500, -WorldBound, WorldBound},
		{"exact edge", WorldBound, -WorldBound, WorldBound, -WorldBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotZ := ClampToWorld(tt.x, tt.z)
			if gotX != tt.wantX || gotZ != tt.wantZ {
				t.Fatalf("ClampToWorld(%v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.z, gotX, gotZ, tt.wantX, tt.wantZ)
			}
		})
	}
}

func TestClampRange(t *testing.T) {
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Fatalf("Clamp(0.5, 0, 1) = %v, want 0.5", got)
	}
	if got := Clamp(-2, 0, 1); got != 0 {
		t.Fatalf("Clamp(-2, 0, 1) = %v, want 0", got)
	}
	if got := Clamp(2, 0, 1); got != 1 {
		t.Fatalf("Clamp(2, 0, 1) = %v, want 1", got)
	}
}
