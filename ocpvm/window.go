package ocpvm

import "fmt"

// Window gives read access to the characters of the current match.
//
// Characters may be addressed from the start of the match, where index 1 is
// the first matched character, or from the end of the match, where offset 0
// is the last matched character.
type Window interface {
	Len() int                       // number of matched characters
	CharAt(n int) (rune, bool)      // n-th character from the start, 1-based
	CharFromEnd(n int) (rune, bool) // n-th character back from the end, 0 = last
	Current() (rune, bool)          // most recently matched character
}

// Cursor is a Window which is able to extend the match by reading further
// input. The matching instructions of a program (LEFT_START, GOTO_NO_ADVANCE,
// etc.) require a Cursor.
type Cursor interface {
	Window
	Start()            // begin a new match at the scan position
	Return()           // reset the match to its start, for the next rule
	Backup() bool      // un-read the last matched character
	Advance() bool     // read the next input character into the match
	AtBeginning() bool // true if the match starts at the beginning of input and is empty
	AtEnd() bool       // true if no further input is available
}

// SliceWindow is a fixed window over characters which have already been
// matched. It does not support extending the match.
type SliceWindow []rune

// Len returns the number of matched characters.
func (w SliceWindow) Len() int {
	return len(w)
}

// CharAt returns the n-th matched character, counting from 1.
func (w SliceWindow) CharAt(n int) (rune, bool) {
	if n < 1 || n > len(w) {
		return 0, false
	}
	return w[n-1], true
}

// CharFromEnd returns the character n positions before the last one.
func (w SliceWindow) CharFromEnd(n int) (rune, bool) {
	if n < 0 || n >= len(w) {
		return 0, false
	}
	return w[len(w)-1-n], true
}

// Current returns the last matched character.
func (w SliceWindow) Current() (rune, bool) {
	return w.CharFromEnd(0)
}

// --- Output ----------------------------------------------------------------

// Mode is the mode of an output write.
type Mode uint8

const (
	// Right output is appended after the scan position and not rescanned.
	Right Mode = iota
	// Pushback output is inserted in front of the scan position and rescanned.
	Pushback
)

func (m Mode) String() string {
	switch m {
	case Right:
		return "right"
	case Pushback:
		return "pushback"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// emit dispatches a write to the sink operation for the mode.
func (m Mode) emit(sink Sink, c rune) error {
	switch m {
	case Right:
		return sink.AppendRight(c)
	case Pushback:
		return sink.InsertPushback(c)
	}
	panic(fmt.Sprintf("ocpvm: unknown output mode %d", uint8(m)))
}

// Sink receives the output of a program.
type Sink interface {
	AppendRight(c rune) error    // append after the scan position
	InsertPushback(c rune) error // insert before the scan position, to be rescanned
}

// Write is a single write to a sink.
type Write struct {
	Mode Mode
	Char rune
}

// Collector is a Sink recording every write in order.
type Collector struct {
	Writes []Write
}

// AppendRight records a right output.
func (c *Collector) AppendRight(ch rune) error {
	c.Writes = append(c.Writes, Write{Mode: Right, Char: ch})
	return nil
}

// InsertPushback records a pushback output.
func (c *Collector) InsertPushback(ch rune) error {
	c.Writes = append(c.Writes, Write{Mode: Pushback, Char: ch})
	return nil
}

// Chars returns the characters written in mode m, in order.
func (c *Collector) Chars(m Mode) []rune {
	var out []rune
	for _, w := range c.Writes {
		if w.Mode == m {
			out = append(out, w.Char)
		}
	}
	return out
}
