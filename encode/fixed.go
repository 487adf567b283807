package encode

import "math"

const fixedScale = 1 << FracBits

// FixedPoint converts v to signed Q2.30, truncating the fraction toward zero.
func FixedPoint(v float64) int32 {
	return int32(math.Trunc(v * fixedScale))
}

// FromFixed converts a Q2.30 value back to a float.
func FromFixed(v int32) float64 {
	return float64(v) / fixedScale
}

// ParamWord packs cos(theta) into the high 32 bits and sin(theta) into the low 32 bits.
func ParamWord(theta float64) Word {
	return pair(FixedPoint(math.Cos(theta)), FixedPoint(math.Sin(theta)))
}

func pair(hi, lo int32) Word {
	return Word(uint32(hi))<<32 | Word(uint32(lo))
}

// splitPair is the inverse of pair.
func splitPair(w Word) (hi, lo int32) {
	return int32(uint32(w >> 32)), int32(uint32(w))
}
