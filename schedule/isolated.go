package schedule

import "qsofinstr/circuit"

// isolated gives each off-diagonal gate instance a fresh timeslice. Other
// operations of a source timeslice share one compacted slot, allocated
// on first use and replaced when a conditioned operation would otherwise
// run no later than the latest measurement.
func (s *scheduler) isolated(_ string, t int, n *circuit.Node) int {
	var nt int
	if circuit.IsOffDiagonal(n.Gate) {
		s.counter++
		nt = s.counter
	} else {
		slot, ok := s.remap[t]
		if !ok || (n.Conditioned() && slot <= s.mhw) {
			s.counter++
			slot = s.counter
			s.remap[t] = slot
		}
		nt = slot
	}
	if n.Measurement {
		s.mhw = max(s.mhw, nt)
	}
	return nt
}
