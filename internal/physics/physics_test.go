package physics

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 6, H: 8}

	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{16, 28, true},
		{13, 24, true},
		{9.9, 24, false},
		{13, 28.1, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectInflate(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 6, H: 8}.Inflate(1)
	if r != (Rect{X: 9, Y: 19, W: 8, H: 10}) {
		t.Fatalf("unexpected rect %+v", r)
	}
	if !r.Contains(9.5, 19.5) {
		t.Fatal("expected inflated rect to contain the margin")
	}
	if x, y := r.Center(); x != 13 || y != 24 {
		t.Fatalf("expected center (13, 24), got (%v, %v)", x, y)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.5, 0, 1) != 0.5 {
		t.Fatal("clamp out of range")
	}
}

func TestDistanceSquared(t *testing.T) {
	if got := DistanceSquared(0, 0, 3, 4); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}
