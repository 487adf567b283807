package encode

// sliceState is the encoder state of one timeslice.
type sliceState struct {
	index    int
	lanes    [numLanes]lane
	measured []Word

	marked   bool
	marker   Category // category written last
	markLane Lane
}

func newSliceState(t int) *sliceState {
	return &sliceState{index: t}
}

// claim records cat as the last category written. A measurement batch holds
// the marker only until a conditioned operation of the same timeslice flushes
// it and then opens its own group, which happens when a graph places a
// measurement and a conditioned operation side by side.
func (s *sliceState) claim(cat Category) {
	if s.marked && s.marker == Measurement && len(s.measured) > 0 {
		s.measured[len(s.measured)-1] &^= 1 << lastBit
	}
	s.marked = true
	s.marker = cat
}

// lane returns the lane l after making room for a group of width bits.
func (s *sliceState) lane(l Lane, width int) *lane {
	s.claim(l.Category())
	ln := &s.lanes[l]
	ln.begin(l, width)
	return ln
}

// addMeasurements stores a closed measurement batch. The batch carries the
// end-of-timeslice bit only when nothing else in the slice does.
func (s *sliceState) addMeasurements(words []Word) {
	if len(words) == 0 {
		return
	}
	if s.marked && s.marker == Measurement {
		s.measured[len(s.measured)-1] &^= 1 << lastBit
	}
	s.measured = append(s.measured, words...)
	if !s.marked || s.marker == Measurement {
		s.measured[len(s.measured)-1] |= 1 << lastBit
		s.marked = true
		s.marker = Measurement
	}
}

// flush pads every lane and sets bit 63 on the current header word of the
// marker category. Among sub-kinds the lane with the highest word index wins,
// ties going to the later lane.
func (s *sliceState) flush() {
	for l := range s.lanes {
		s.lanes[l].close()
	}
	if !s.marked || s.marker == Measurement {
		return
	}
	best, found := Lane(0), false
	for l := Lane(0); l < numLanes; l++ {
		ln := &s.lanes[l]
		if l.Category() != s.marker || ln.empty() {
			continue
		}
		if !found || ln.cur >= s.lanes[best].cur {
			best, found = l, true
		}
	}
	if !found {
		return
	}
	s.markLane = best
	ln := &s.lanes[best]
	ln.words[ln.cur] |= 1 << lastBit
}

// words assembles the timeslice in emission order with the marker category
// last and, within it, the marker lane last.
func (s *sliceState) words() []Word {
	var out []Word
	emit := func(cat Category, skip bool) {
		if cat == Measurement {
			out = append(out, s.measured...)
			return
		}
		for l := Lane(0); l < numLanes; l++ {
			if l.Category() != cat || (skip && l == s.markLane) {
				continue
			}
			out = append(out, s.lanes[l].words...)
		}
	}
	for _, cat := range emitOrder {
		if s.marked && cat == s.marker {
			continue
		}
		emit(cat, false)
	}
	if s.marked {
		emit(s.marker, s.marker != Measurement)
		if s.marker != Measurement {
			out = append(out, s.lanes[s.markLane].words...)
		}
	}
	return out
}
