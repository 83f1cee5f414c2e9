package ocpvm

// CharBuffer is a mutable sequence of characters, as operated on by the scan
// loop of a translation.
//
// Contract:
//   - Indices are zero-based in the range [0, Len()).
//   - Replace returns the resulting buffer. It may return the same receiver
//     or a new buffer. Callers must always use the returned value.
//   - Arguments follow slice semantics: Replace(i, j, repl) replaces the range
//     [i:j) with repl. Replace(i, i, chars) inserts before i, Replace(i, j, nil)
//     removes [i:j).
//   - Out-of-range indices are programmer errors and may panic.
type CharBuffer interface {
	// Len returns the number of characters in the buffer.
	Len() int
	// At returns the character at index i.
	At(i int) rune
	// Replace replaces the range [i:j) with repl and returns the resulting buffer.
	Replace(i, j int, repl []rune) CharBuffer
}

// RuneSlice is the default CharBuffer implementation backed by a slice.
type RuneSlice []rune

func (b RuneSlice) Len() int {
	return len(b)
}

func (b RuneSlice) At(i int) rune {
	return b[i]
}

// Replace works in place if the replacement is not longer than the range
// replaced, and re-allocates otherwise.
func (b RuneSlice) Replace(i, j int, repl []rune) CharBuffer {
	if len(repl) <= j-i {
		n := copy(b[i:], repl)
		out := append(b[:i+n], b[j:]...)
		return out
	}
	out := make(RuneSlice, 0, len(b)-(j-i)+len(repl))
	out = append(out, b[:i]...)
	out = append(out, repl...)
	out = append(out, b[j:]...)
	return out
}

var _ CharBuffer = RuneSlice{}
