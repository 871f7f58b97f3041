package gamemath

import "testing"

func TestNormalize(t *testing.T) {
	got := Vec2{X: 5, Y: 0}.Normalize()
	if got != (Vec2{X: 1, Y: 0}) {
		t.Fatalf("Normalize(5,0) = %v, want (1,0)", got)
	}
	if z := Zero.Normalize(); z != Zero {
		t.Fatalf("Normalize(0,0) = %v, want zero", z)
	}
	n := Vec2{X: 3, Y: 4}.Normalize()
	if n != (Vec2{X: 0.6, Y: 0.8}) {
		t.Fatalf("Normalize(3,4) = %v, want (0.6,0.8)", n)
	}
}

func TestToward(t *testing.T) {
	got := Toward(Vec2{X: 1, Y: 1}, Vec2{X: 1, Y: 5}, 2)
	if got != (Vec2{X: 0, Y: 2}) {
		t.Fatalf("Toward = %v, want (0,2)", got)
	}
}

func TestScaledAddRoundsTheProduct(t *testing.T) {
	pos := Vec2{X: 0.1, Y: 2.3}
	dir := Vec2{X: 3, Y: 7}.Normalize()
	const speed = float32(0.3)

	for i := 0; i < 50; i++ {
		want := Vec2{
			X: float32(pos.X + float32(dir.X*speed)),
			Y: float32(pos.Y + float32(dir.Y*speed)),
		}
		pos = pos.Add(dir.Scale(speed))
		if pos != want {
			t.Fatalf("step %d: got %v, want %v", i, pos, want)
		}
	}
}

func TestClampToExtents(t *testing.T) {
	tests := []struct {
		in, want Vec2
	}{
		{Vec2{X: 10.49, Y: 0}, Vec2{X: 10, Y: 0}},
		{Vec2{X: -12, Y: 3}, Vec2{X: -10, Y: 3}},
		{Vec2{X: 2, Y: -7}, Vec2{X: 2, Y: -5}},
		{Vec2{X: 1, Y: 1}, Vec2{X: 1, Y: 1}},
	}
	for _, tt := range tests {
		if got := ClampToExtents(tt.in, 10, 5); got != tt.want {
			t.Fatalf("ClampToExtents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExceeds(t *testing.T) {
	if Exceeds(Vec2{X: 3, Y: 4}, 5) {
		t.Fatal("distance exactly r must not exceed r")
	}
	if !Exceeds(Vec2{X: 3, Y: 4.01}, 5) {
		t.Fatal("distance past r must exceed r")
	}
}
