// Package input turns the raw terminal byte stream into per-frame key
// presses and mouse clicks.
package input

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

// escapeTimeout is how long an incomplete escape sequence waits for the
// rest of its bytes before it is treated as a lone Escape key.
const escapeTimeout = 50 * time.Millisecond

// Click is a mouse button press at an absolute 1-based terminal cell.
type Click struct {
	Col int
	Row int
}

// Input represents the current frame's input state. Keys are edge
// triggered: a field is set only in the frame its bytes arrived.
type Input struct {
	Quit    bool
	Space   bool
	Enter   bool
	Escape  bool
	Closed  bool    // The underlying reader is exhausted
	Number  int     // Last digit pressed this frame, -1 if none
	Keys    []byte  // Printable keys pressed this frame, in order
	Clicks  []Click // Mouse presses this frame, in order
	Pressed []byte  // Every byte received this frame, for activity tracking
}

// Stream delivers input bytes via a channel and carries incomplete escape
// sequences over to the next frame.
type Stream struct {
	ch           chan byte
	pending      []byte
	pendingSince time.Time
	closed       bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	var fresh []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			fresh = append(fresh, b)
		default:
			break drain
		}
	}

	now := time.Now()
	buf := append(s.pending, fresh...)
	flush := s.closed || (len(s.pending) > 0 && now.Sub(s.pendingSince) > escapeTimeout)
	in, rest := Parse(buf, flush)
	if len(rest) > 0 && (len(s.pending) == 0 || len(fresh) > 0) {
		s.pendingSince = now
	}
	s.pending = append(s.pending[:0], rest...)
	in.Pressed = fresh
	in.Closed = s.closed
	return in
}

// Parse decodes keys and SGR mouse reports from buf. An escape sequence cut
// off at the end of buf is returned as rest unless flush is set, in which
// case a dangling ESC counts as the Escape key.
func Parse(buf []byte, flush bool) (in Input, rest []byte) {
	in.Number = -1

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyByte(&in, b)
			continue
		}

		if i+1 >= len(buf) {
			if flush {
				in.Escape = true
				return in, nil
			}
			return in, buf[i:]
		}
		if buf[i+1] != '[' {
			in.Escape = true
			continue
		}

		// SGR mouse reports run to their M/m terminator, so a malformed
		// body is dropped whole instead of leaking into Keys.
		if i+2 < len(buf) && buf[i+2] == '<' {
			j := i + 3
			for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x7e && buf[j] != 'M' && buf[j] != 'm' {
				j++
			}
			if j >= len(buf) {
				if flush {
					in.Escape = true
					return in, nil
				}
				return in, buf[i:]
			}
			if buf[j] != 'M' && buf[j] != 'm' {
				// Interrupted by a control byte, which is read again.
				i = j - 1
				continue
			}
			if c, ok := parseMouse(string(buf[i+3:j]), buf[j]); ok {
				in.Clicks = append(in.Clicks, c)
			}
			i = j
			continue
		}

		// CSI: parameter bytes, then intermediate bytes, then a final byte.
		j := i + 2
		for j < len(buf) && buf[j] >= 0x30 && buf[j] <= 0x3f {
			j++
		}
		for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x2f {
			j++
		}
		if j >= len(buf) {
			if flush {
				in.Escape = true
				return in, nil
			}
			return in, buf[i:]
		}
		if buf[j] < 0x40 || buf[j] > 0x7e {
			// Not a final byte: the sequence was cut short, so the byte is
			// read as input again.
			j--
		}
		i = j
	}
	return in, nil
}

// parseMouse decodes the "b;x;y" body of an SGR mouse report and keeps
// only button presses.
func parseMouse(body string, final byte) (Click, bool) {
	if final != 'M' {
		return Click{}, false // release
	}
	parts := strings.Split(body, ";")
	if len(parts) != 3 {
		return Click{}, false
	}
	btn, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	row, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Click{}, false
	}
	// Motion (32) and wheel (64) reports are not clicks.
	if btn&(32|64) != 0 || btn&3 == 3 {
		return Click{}, false
	}
	return Click{Col: col, Row: row}, true
}

// applyByte records a single key press.
func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', '\x03':
		in.Quit = true
	case ' ':
		in.Space = true
	case '\n', '\r':
		in.Enter = true
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		in.Number = int(b - '0')
	}
	if b >= 0x20 && b < 0x7f {
		in.Keys = append(in.Keys, b)
	}
}
