package object

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
)

var testField = Field{Width: 120, Top: 6, Bottom: 78}

type collector struct {
	objects []Object
}

func (c *collector) Spawn(obj Object) {
	c.objects = append(c.objects, obj)
}

func TestDropFallsWithSessionClock(t *testing.T) {
	d := NewDrop(game.Drop{ID: 1, Kind: game.DropBonus, X: 10, SpawnedAt: time.Second, FallDuration: 4 * time.Second}, testField)

	remove, _ := d.Update(UpdateContext{Now: time.Second, Field: testField})
	if remove || d.Y != testField.Top {
		t.Fatalf("expected drop at top, got y=%v remove=%v", d.Y, remove)
	}

	remove, _ = d.Update(UpdateContext{Now: 3 * time.Second, Field: testField})
	wantMid := testField.Top + 0.5*(testField.Bottom-testField.Top-DropHeight)
	if remove || d.Y != wantMid {
		t.Fatalf("expected drop halfway at %v, got %v", wantMid, d.Y)
	}

	remove, _ = d.Update(UpdateContext{Now: 5 * time.Second, Field: testField})
	if !remove || !d.Landed() {
		t.Fatal("expected drop to land at the end of its fall")
	}
	if b := d.Bounds(); b.Y+b.H != testField.Bottom {
		t.Fatalf("expected drop to rest on the floor, bottom=%v", b.Y+b.H)
	}
}

func TestNewDropStaysInsideField(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{-3, 0},
		{40, 40},
		{500, testField.Width - DropWidth},
	}
	for _, tt := range tests {
		d := NewDrop(game.Drop{X: tt.x}, testField)
		if d.X != tt.want {
			t.Fatalf("x=%v: expected %v, got %v", tt.x, tt.want, d.X)
		}
		if d.Y != testField.Top {
			t.Fatalf("expected drop at field top, got %v", d.Y)
		}
	}
}

func TestKindColors(t *testing.T) {
	if KindColor(game.DropRegular) != draw.ColorDarkBlue ||
		KindColor(game.DropBonus) != draw.ColorLightBlue ||
		KindColor(game.DropBad) != draw.ColorBrown {
		t.Fatal("unexpected drop colors")
	}
}

func TestDropDrawsInKindColor(t *testing.T) {
	canvas := draw.NewScaledCanvas(120, 40, 120, 80)
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	d := NewDrop(game.Drop{Kind: game.DropBad, X: 20}, testField)

	if err := d.Draw(DrawContext{Canvas: canvas, Writer: cw, Field: testField}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	canvas.Render(cw)
	cw.Flush()

	if !strings.Contains(out.String(), draw.ColorBrown.FG()) {
		t.Fatal("expected brown pixels for a bad drop")
	}
}

func TestConfettiFallsAndExpires(t *testing.T) {
	var c collector
	SpawnConfetti(60, 40, 30, rand.New(rand.NewSource(1)), &c)
	if len(c.objects) != 30 {
		t.Fatalf("expected 30 particles, got %d", len(c.objects))
	}

	ctx := UpdateContext{Delta: 50 * time.Millisecond, Field: testField}
	alive := c.objects
	for i := 0; i < 100 && len(alive) > 0; i++ {
		kept := alive[:0]
		for _, obj := range alive {
			if remove, _ := obj.Update(ctx); remove {
				ReleaseObject(obj)
				continue
			}
			kept = append(kept, obj)
		}
		alive = kept
	}
	if len(alive) != 0 {
		t.Fatalf("expected all confetti gone after 5s, %d left", len(alive))
	}
}

func TestPopupFloatsAndExpires(t *testing.T) {
	canvas := draw.NewScaledCanvas(120, 40, 120, 80)
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	p := NewPopup(60, 40, "+10", draw.ColorLightBlue)

	if err := p.Draw(DrawContext{Canvas: canvas, Writer: cw}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	cw.Flush()
	if !strings.Contains(out.String(), "+10") {
		t.Fatalf("expected popup text, got %q", out.String())
	}

	startY := p.Y
	if remove, _ := p.Update(UpdateContext{Delta: 100 * time.Millisecond}); remove || p.Y >= startY {
		t.Fatalf("expected popup to rise, y %v -> %v", startY, p.Y)
	}
	if remove, _ := p.Update(UpdateContext{Delta: time.Second}); !remove {
		t.Fatal("expected popup to expire")
	}
}
