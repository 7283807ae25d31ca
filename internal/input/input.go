// Package input turns the raw terminal byte stream into per-frame key and
// mouse state.
package input

import (
	"bufio"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report repeats, so a held arrow key shows up as a stream of
// presses a few tens of milliseconds apart.
const keyHoldDuration = 60 * time.Millisecond

// maxPending bounds an unfinished escape sequence carried to the next frame.
// Longer fragments are discarded.
const maxPending = 32

// Click is a left mouse button press at a 1-based terminal cell.
type Click struct {
	Col, Row int
}

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Space   bool
	Enter   bool
	Escape  bool
	Help    bool
	Number  int // 1-9 when a digit was pressed this frame, -1 otherwise
	Clicks  []Click
	Pressed []byte
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch      chan byte
	state   keyState
	closed  bool
	pending []byte // Unfinished escape sequence from the previous frame
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
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

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 128)}
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return s.Feed(buf, time.Now())
}

// ResetKeyInput forgets held keys so a press on one screen does not leak
// into the next.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// Feed parses one frame's worth of bytes received at now.
// An escape sequence cut off at the end of buf is held back and completed
// by the next call. A lone ESC counts as the Escape key once a frame passes
// without more bytes.
func (s *Stream) Feed(buf []byte, now time.Time) Input {
	in := Input{Number: -1, Pressed: buf}

	if len(s.pending) > 0 {
		if len(buf) == 0 && !isMouseFragment(s.pending) {
			in.Escape = true
		}
		buf = append(append([]byte(nil), s.pending...), buf...)
		s.pending = s.pending[:0]
		if len(in.Pressed) == 0 {
			buf = nil
		}
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && incompleteEscape(buf[i:]) {
			if rest := buf[i:]; len(rest) <= maxPending {
				s.pending = append(s.pending[:0], rest...)
			}
			break
		}

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'C':
				s.state.right = now
				i += 2
				continue
			case 'D':
				s.state.left = now
				i += 2
				continue
			case 'A', 'B':
				i += 2
				continue
			case '<':
				click, n, ok := parseSGRMouse(buf[i+3:])
				if ok {
					if click != nil {
						in.Clicks = append(in.Clicks, *click)
					}
					i += 2 + n
					continue
				}
			}
		}

		switch b {
		case 'q', 'Q':
			in.Quit = true
		case 'a', 'A':
			s.state.left = now
		case 'd', 'D':
			s.state.right = now
		case 'h', 'H', '?':
			in.Help = true
		case ' ':
			in.Space = true
		case '\n', '\r':
			in.Enter = true
		case '\x1b':
			in.Escape = true
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			in.Number = int(b - '0')
		}
	}

	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	return in
}

// incompleteEscape reports whether rest, starting with ESC, is a prefix of
// an arrow key or SGR mouse report that more bytes could still complete.
func incompleteEscape(rest []byte) bool {
	switch {
	case len(rest) == 1:
		return true
	case rest[1] != '[':
		return false
	case len(rest) == 2:
		return true
	case rest[2] != '<':
		return false
	}
	semicolons := 0
	for _, ch := range rest[3:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch == ';' && semicolons < 2:
			semicolons++
		default:
			return false
		}
	}
	return true
}

// isMouseFragment reports whether p is the start of an SGR mouse report.
func isMouseFragment(p []byte) bool {
	return len(p) >= 3 && p[1] == '[' && p[2] == '<'
}

// parseSGRMouse parses the body of an SGR mouse report "b;x;yM" following
// "ESC [ <". It returns the number of bytes consumed. click is nil for
// reports other than a left button press.
func parseSGRMouse(buf []byte) (click *Click, n int, ok bool) {
	var fields [3]int
	field := 0
	start := 0
	for n = 0; n < len(buf); n++ {
		ch := buf[n]
		switch {
		case ch >= '0' && ch <= '9':
			continue
		case ch == ';' && field < 2:
			v, err := strconv.Atoi(string(buf[start:n]))
			if err != nil {
				return nil, 0, false
			}
			fields[field] = v
			field++
			start = n + 1
		case (ch == 'M' || ch == 'm') && field == 2:
			v, err := strconv.Atoi(string(buf[start:n]))
			if err != nil {
				return nil, 0, false
			}
			fields[2] = v
			button := fields[0]
			if ch == 'M' && button&3 == 0 && button&(32|64) == 0 {
				click = &Click{Col: fields[1], Row: fields[2]}
			}
			return click, n + 1, true
		default:
			return nil, 0, false
		}
	}
	return nil, 0, false
}
