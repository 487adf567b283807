package schedule

import "qsofinstr/circuit"

// packed shifts a node by the qubit's accumulated delay. Off-diagonal gates
// also wait for the watermark, multi-qubit gates take the largest delay of
// their participants, and conditioned operations wait for the latest
// measurement. The updates are applied in that order, and a measurement
// raises the high-water mark only once its final timeslice is known.
func (s *scheduler) packed(q string, t int, n *circuit.Node) int {
	off := circuit.IsOffDiagonal(n.Gate)

	add := s.shift[q]
	if off {
		add = max(add, s.watermark+1-t)
	}
	for _, p := range n.Partners {
		add = max(add, s.shift[p])
	}
	if n.Conditioned() {
		add = max(add, s.mhw+1-t)
	}

	nt := t + add
	if off {
		s.watermark = max(s.watermark, nt)
	}
	if n.Measurement {
		s.mhw = max(s.mhw, nt)
	}
	return nt
}
