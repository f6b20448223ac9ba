package draw

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func render(c *Canvas) string {
	var buf bytes.Buffer
	c.Render(&buf)
	return buf.String()
}

func TestRenderOnlyEmitsChangedCells(t *testing.T) {
	c := NewCanvas(4, 2)

	first := render(c)
	if got := strings.Count(first, " "); got != 8 {
		t.Fatalf("expected first frame to paint 8 cells, got %d in %q", got, first)
	}

	if second := render(c); second != "" {
		t.Fatalf("expected unchanged frame to be empty, got %q", second)
	}
}

func TestRenderColoredHalfBlock(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.Set(1, 0, ColorBrown)
	out := render(c)
	want := "\033[1;2H" + ColorBrown.FG() + "▀" + ColorReset
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	c.Clear()
	out = render(c)
	if out != "\033[1;2H " {
		t.Fatalf("expected cell to be erased, got %q", out)
	}
}

func TestRenderTwoColorsInOneCell(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, ColorDarkBlue)
	c.Set(0, 1, ColorLightBlue)

	out := render(c)
	if !strings.Contains(out, ColorDarkBlue.FG()) || !strings.Contains(out, ColorLightBlue.BG()) {
		t.Fatalf("expected fg and bg colors, got %q", out)
	}
	if !strings.Contains(out, "▀") {
		t.Fatalf("expected upper half block, got %q", out)
	}
}

func TestMarkTextDirtyRepaints(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.MarkTextDirty(3, 2, 1)
	if out := render(c); out != "\033[2;3H " {
		t.Fatalf("expected dirty cell repaint, got %q", out)
	}
}

func TestForceRedrawAfterOffsetChange(t *testing.T) {
	c := NewCanvas(2, 1)
	render(c)

	c.SetOffset(3, 1)
	out := render(c)
	if !strings.HasPrefix(out, "\033[2;4H") {
		t.Fatalf("expected redraw at offset position, got %q", out)
	}
}

func TestTerminalToLogicalInvertsWithinOneCell(t *testing.T) {
	c := NewScaledCanvas(60, 20, 120, 80)
	c.SetOffset(5, 2)

	col, row := c.LogicalToTerminal(30, 40)
	x, y, ok := c.TerminalToLogical(col+c.OffsetCol(), row+c.OffsetRow())
	if !ok {
		t.Fatal("expected position inside canvas")
	}
	if math.Abs(x-30) > 2 || math.Abs(y-40) > 4 {
		t.Fatalf("expected about (30, 40), got (%v, %v)", x, y)
	}

	if _, _, ok := c.TerminalToLogical(5, 10); ok {
		t.Fatal("expected column in left margin to be outside the canvas")
	}
	if _, _, ok := c.TerminalToLogical(10, 23); ok {
		t.Fatal("expected row below the canvas to be outside")
	}
}

func TestFillRectCoversArea(t *testing.T) {
	c := NewCanvas(4, 2)
	c.FillRect(0, 2, 4, 2, ColorGray)

	for col := 0; col < 4; col++ {
		if got := c.cellAt(1, col); got.ch != BlockFull || got.fg != ColorGray {
			t.Fatalf("expected full gray cell at col %d, got %+v", col, got)
		}
		if got := c.cellAt(0, col); got.ch != BlockEmpty {
			t.Fatalf("expected empty top row at col %d, got %+v", col, got)
		}
	}
}

func TestChunkWriterAppliesOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)

	cw.WriteAt(1, 1, "hi")
	cw.WriteString(strings.Repeat("x", 3000))
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if !strings.HasPrefix(out.String(), "\033[2;3Hhi") {
		t.Fatalf("expected offset cursor move, got %q", out.String()[:12])
	}
	if got := strings.Count(out.String(), "x"); got != 3000 {
		t.Fatalf("expected all bytes flushed, got %d", got)
	}
	if cw.Len() != 0 {
		t.Fatalf("expected empty buffer after flush, got %d", cw.Len())
	}
}
