package encode

// MeasurementBuffer packs measurements of several timeslices into shared
// words. A batch stays open until a conditioned operation or the end of the
// program needs it, and is then written at the latest timeslice it covers.
type MeasurementBuffer struct {
	qubitBits int
	words     []Word
	open      bool
	pos       int
	timeslice int
}

// NewMeasurementBuffer returns an empty buffer for qubit fields of qubitBits bits.
func NewMeasurementBuffer(qubitBits int) *MeasurementBuffer {
	return &MeasurementBuffer{qubitBits: qubitBits}
}

// Add appends the measurement of qubit at timeslice t.
func (b *MeasurementBuffer) Add(qubit, t int) {
	if !b.open || b.pos < b.qubitBits {
		b.Pad()
		b.words = append(b.words, header(Measurement))
		b.pos = headerPos
		b.open = true
	}
	b.pos -= b.qubitBits
	b.words[len(b.words)-1] |= (Word(qubit) & ones(b.qubitBits)) << b.pos
	b.timeslice = max(b.timeslice, t)
}

// Pad sets the unused low bits of the last word to ones.
func (b *MeasurementBuffer) Pad() {
	if !b.open {
		return
	}
	b.words[len(b.words)-1] |= ones(b.pos)
	b.open = false
}

// Close returns the pending batch with the latest timeslice among its
// measurements, and starts a new batch.
func (b *MeasurementBuffer) Close() ([]Word, int) {
	b.Pad()
	words, t := b.words, b.timeslice
	b.words = nil
	b.timeslice = 0
	return words, t
}

// Flushed reports whether no batch is pending.
func (b *MeasurementBuffer) Flushed() bool {
	return len(b.words) == 0
}
