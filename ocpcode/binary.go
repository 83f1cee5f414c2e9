package ocpcode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary layout of a compiled OCP, all entries big-endian 32-bit words:
//
//	length        total number of words, including this one
//	input         input character width in bytes
//	output        output character width in bytes
//	ntables       number of tables
//	tableroom     number of words following for all tables
//	  len, v…     for every table: its length and its values
//	nstates       number of states
//	stateroom     number of words following for all states
//	  len, w…     for every state: its length and its instruction words

// Encode returns the binary representation of p.
func Encode(p *Program) []byte {
	words := make([]uint32, 0, p.Size())
	words = append(words, uint32(p.Size()), uint32(p.input), uint32(p.output))
	words = append(words, uint32(len(p.tables)), 0)
	room := len(words) - 1
	for _, t := range p.tables {
		words = append(words, uint32(len(t)))
		for _, v := range t {
			words = append(words, uint32(int32(v)))
		}
	}
	words[room] = uint32(len(words) - room - 1)
	words = append(words, uint32(len(p.states)), 0)
	room = len(words) - 1
	for _, s := range p.states {
		words = append(words, uint32(len(s)))
		for _, instr := range s {
			words = append(words, uint32(instr))
		}
	}
	words[room] = uint32(len(words) - room - 1)
	assertEqualInt("encoded program size", len(words), p.Size())
	var buf bytes.Buffer
	buf.Grow(4 * len(words))
	_ = binary.Write(&buf, binary.BigEndian, words)
	return buf.Bytes()
}

// WriteProgram writes the binary representation of p to w.
func WriteProgram(w io.Writer, p *Program) error {
	_, err := w.Write(Encode(p))
	return err
}

// Decode reconstructs a program from its binary representation and gives it
// the name provided. Malformed input results in a *CompileError of kind
// KindTruncated or KindIllegalOpcode; in this case no program is returned.
func Decode(name string, data []byte) (*Program, error) {
	if len(data)%4 != 0 {
		return nil, truncated(len(data)/4, "binary size %d is not a multiple of 4", len(data))
	}
	r := &wordReader{words: make([]uint32, len(data)/4)}
	for i := range r.words {
		r.words[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	p, err := r.program(name)
	if err != nil {
		tracer().Errorf("cannot decode OCP %s: %v", name, err)
		return nil, err
	}
	tracer().Debugf("decoded OCP %s: %d tables, %d states", name, p.TableCount(), p.StateCount())
	return p, nil
}

// ReadProgram reads the binary representation of a program from r.
func ReadProgram(name string, r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ocp: reading %s: %w", name, err)
	}
	return Decode(name, data)
}

// MustDecode is like Decode, but panics on malformed input. It is intended
// for programs embedded into Go source.
func MustDecode(name string, data []byte) *Program {
	p, err := Decode(name, data)
	if err != nil {
		panic(fmt.Sprintf("ocp: cannot decode embedded program %s: %v", name, err))
	}
	return p
}

type wordReader struct {
	words []uint32
	pos   int
}

func (r *wordReader) next(what string) (uint32, error) {
	if r.pos >= len(r.words) {
		return 0, truncated(r.pos, "missing %s", what)
	}
	w := r.words[r.pos]
	r.pos++
	return w, nil
}

// count reads a size word and checks that the number of words it announces
// fits before index end.
func (r *wordReader) count(what string, end int) (int, error) {
	w, err := r.next(what)
	if err != nil {
		return 0, err
	}
	if int64(r.pos)+int64(w) > int64(end) {
		return 0, truncated(r.pos-1, "%s %d exceeds remaining %d words", what, w, end-r.pos)
	}
	return int(w), nil
}

func (r *wordReader) program(name string) (*Program, error) {
	length, err := r.next("length")
	if err != nil {
		return nil, err
	}
	if int64(length) > int64(len(r.words)) {
		return nil, truncated(len(r.words), "announced %d words, got %d", length, len(r.words))
	}
	if int(length) < len(r.words) {
		return nil, IllegalOpcode(int(length), "%d words of trailing data", len(r.words)-int(length))
	}
	p := &Program{name: name}
	in, err := r.next("input width")
	if err != nil {
		return nil, err
	}
	out, err := r.next("output width")
	if err != nil {
		return nil, err
	}
	p.input, p.output = int(in), int(out)
	if p.tables, err = r.section("table", func(w uint32) int { return int(int32(w)) }); err != nil {
		return nil, err
	}
	states, err := r.section("state", func(w uint32) int { return int(w) })
	if err != nil {
		return nil, err
	}
	for _, s := range states {
		code := make([]Instruction, len(s))
		for i, w := range s {
			code[i] = Instruction(uint32(w))
		}
		p.states = append(p.states, code)
	}
	if r.pos != len(r.words) {
		return nil, IllegalOpcode(r.pos, "%d words of trailing data", len(r.words)-r.pos)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *wordReader) section(what string, conv func(uint32) int) ([][]int, error) {
	n, err := r.next("number of " + what + "s")
	if err != nil {
		return nil, err
	}
	room, err := r.count(what+" room", len(r.words))
	if err != nil {
		return nil, err
	}
	end := r.pos + room
	if int64(n) > int64(room) {
		return nil, IllegalOpcode(r.pos-1, "%d %ss do not fit into %d words", n, what, room)
	}
	entries := make([][]int, 0, n)
	for i := 0; i < int(n); i++ {
		size, err := r.count(fmt.Sprintf("size of %s %d", what, i), end)
		if err != nil {
			return nil, err
		}
		entry := make([]int, size)
		for j := range entry {
			entry[j] = conv(r.words[r.pos])
			r.pos++
		}
		entries = append(entries, entry)
	}
	if r.pos != end {
		return nil, IllegalOpcode(r.pos, "%s room announces %d words, %d used", what, room, room-(end-r.pos))
	}
	return entries, nil
}
