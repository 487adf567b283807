package encode

// Lane is one word stream of a timeslice: a category, or a sub-kind of a
// category whose header flags differ. Lanes are declared in emission order.
type Lane uint8

const (
	LaneSingle Lane = iota
	LaneSingleCondBit
	LaneSingleCondRange
	LaneControlOne
	LaneControlMany
	LaneControlCondOneBit
	LaneControlCondOneRange
	LaneControlCondManyBit
	LaneControlCondManyRange
	LaneDecoherence
	LaneReset

	numLanes
)

// Category returns the opcode written in the lane's header words.
func (l Lane) Category() Category {
	switch l {
	case LaneSingle:
		return SingleGate
	case LaneSingleCondBit, LaneSingleCondRange:
		return SingleGateCond
	case LaneControlOne, LaneControlMany:
		return ControlGate
	case LaneControlCondOneBit, LaneControlCondOneRange, LaneControlCondManyBit, LaneControlCondManyRange:
		return ControlGateCond
	case LaneDecoherence:
		return Decoherence
	case LaneReset:
		return Reset
	}
	panic("encode: unknown lane")
}

// multiControl reports whether the lane encodes controls as a bitmask.
func (l Lane) multiControl() bool {
	return l == LaneControlMany || l == LaneControlCondManyBit || l == LaneControlCondManyRange
}

// rangeCond reports whether the lane tests a register range against a literal.
func (l Lane) rangeCond() bool {
	return l == LaneSingleCondRange || l == LaneControlCondOneRange || l == LaneControlCondManyRange
}

// header returns a fresh header word for the lane and the bit position
// below which its first group goes.
func (l Lane) header() (Word, int) {
	w, pos := header(l.Category()), headerPos
	switch l.Category() {
	case SingleGateCond:
		pos--
		if l.rangeCond() {
			w |= 1 << pos
		}
	case ControlGate:
		pos--
		if l.multiControl() {
			w |= 1 << pos
		}
	case ControlGateCond:
		pos--
		if l.multiControl() {
			w |= 1 << pos
		}
		pos--
		if l.rangeCond() {
			w |= 1 << pos
		}
	}
	return w, pos
}

// controlCondLane selects the control-cond sub-kind.
func controlCondLane(multi, rng bool) Lane {
	idx := 0
	if multi {
		idx += 2
	}
	if rng {
		idx++
	}
	return LaneControlCondOneBit + Lane(idx)
}

// layout holds the fixed group width of every lane for one qubit count.
type layout struct {
	qubits    int
	qubitBits int
	width     [numLanes]int
}

func newLayout(n int) layout {
	qb := QubitBits(n)
	ly := layout{qubits: n, qubitBits: qb}
	bitCond := qb + 1
	rangeCond := qb + qb + n
	ly.width[LaneSingle] = qb + GateBits
	ly.width[LaneSingleCondBit] = qb + GateBits + bitCond
	ly.width[LaneSingleCondRange] = qb + GateBits + rangeCond
	ly.width[LaneControlOne] = qb + qb + GateBits
	ly.width[LaneControlMany] = n + qb + GateBits
	ly.width[LaneControlCondOneBit] = qb + qb + GateBits + bitCond
	ly.width[LaneControlCondOneRange] = qb + qb + GateBits + rangeCond
	ly.width[LaneControlCondManyBit] = n + qb + GateBits + bitCond
	ly.width[LaneControlCondManyRange] = n + qb + GateBits + rangeCond
	ly.width[LaneDecoherence] = qb + DecoherenceBits
	ly.width[LaneReset] = qb
	return ly
}

// fits reports whether a group of the lane fits in an empty header word.
func (ly layout) fits(l Lane) bool {
	_, pos := l.header()
	return ly.width[l] <= pos
}

// lane accumulates the words of one Lane within a timeslice.
type lane struct {
	words []Word
	open  bool
	cur   int // header word receiving groups
	pos   int // free bits below pos in words[cur]

	probOpen bool
	prob     int // probability word with a free low half
}

// begin makes room for a group of width bits, closing the current header
// word and opening a new one when the group does not fit.
func (ln *lane) begin(l Lane, width int) {
	if ln.open && ln.pos >= width {
		return
	}
	ln.close()
	w, pos := l.header()
	ln.cur = len(ln.words)
	ln.words = append(ln.words, w)
	ln.pos = pos
	ln.open = true
}

// put writes the low width bits of v directly below the current position.
func (ln *lane) put(v uint64, width int) {
	ln.pos -= width
	ln.words[ln.cur] |= (Word(v) & ones(width)) << ln.pos
}

// trail appends a word that follows the current header word.
func (ln *lane) trail(w Word) {
	ln.words = append(ln.words, w)
}

// probability stores a Q2.30 value, two per trailing word, high half first.
func (ln *lane) probability(v float64) {
	fp := uint32(FixedPoint(v))
	if ln.probOpen {
		ln.words[ln.prob] |= Word(fp)
		ln.probOpen = false
		return
	}
	ln.prob = len(ln.words)
	ln.probOpen = true
	ln.trail(Word(fp) << 32)
}

// close pads the unused low bits of the open words with ones.
func (ln *lane) close() {
	if ln.open {
		ln.words[ln.cur] |= ones(ln.pos)
		ln.open = false
	}
	if ln.probOpen {
		ln.words[ln.prob] |= ones(32)
		ln.probOpen = false
	}
}

func (ln *lane) empty() bool {
	return len(ln.words) == 0
}
