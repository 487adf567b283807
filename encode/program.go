package encode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// Slice is the encoded form of one timeslice.
type Slice struct {
	Index int
	Words []Word
}

// Program is an encoded circuit.
type Program struct {
	Qubits    int
	QubitBits int
	Slices    []Slice
}

// Words returns the instruction stream in timeslice order.
func (p *Program) Words() []Word {
	var out []Word
	for _, s := range p.Slices {
		out = append(out, s.Words...)
	}
	return out
}

// WriteText writes one 64-character binary literal per line.
func (p *Program) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, word := range p.Words() {
		if _, err := fmt.Fprintln(bw, word); err != nil {
			return errors.Wrap(err, "write text program")
		}
	}
	return errors.Wrap(bw.Flush(), "write text program")
}

// WriteBinary writes every word as 8 little-endian bytes.
func (p *Program) WriteBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [8]byte
	for _, word := range p.Words() {
		binary.LittleEndian.PutUint64(buf[:], uint64(word))
		if _, err := bw.Write(buf[:]); err != nil {
			return errors.Wrap(err, "write binary program")
		}
	}
	return errors.Wrap(bw.Flush(), "write binary program")
}

// ReadBinary reads a stream written by WriteBinary.
func ReadBinary(r io.Reader) ([]Word, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read binary program")
	}
	if len(data)%8 != 0 {
		return nil, errors.Errorf("binary program of %d bytes is not a whole number of words", len(data))
	}
	words := make([]Word, 0, len(data)/8)
	for i := 0; i < len(data); i += 8 {
		words = append(words, Word(binary.LittleEndian.Uint64(data[i:])))
	}
	return words, nil
}

// Digest returns the BLAKE3-256 hash of the binary form.
func (p *Program) Digest() [32]byte {
	words := p.Words()
	data := make([]byte, 8*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint64(data[8*i:], uint64(word))
	}
	return blake3.Sum256(data)
}
