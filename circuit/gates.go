package circuit

import "strings"

// SingleGates maps single-qubit gate names to their 4-bit selector.
var SingleGates = map[string]uint8{
	"u":      0,
	"x":      1,
	"y":      2,
	"z":      3,
	"h":      4,
	"s":      5,
	"t":      6,
	"rx":     7,
	"ry":     8,
	"rz":     9,
	"rtheta": 10,
}

// ControlledGates maps controlled gate names to their 4-bit selector.
var ControlledGates = map[string]uint8{
	"cu":      0,
	"cx":      1,
	"cy":      2,
	"cz":      3,
	"ch":      4,
	"cs":      5,
	"ct":      6,
	"crx":     7,
	"cry":     8,
	"crz":     9,
	"crtheta": 10,
}

// DecoherenceOps maps opaque decoherence operations to their 1-bit kind.
var DecoherenceOps = map[string]uint8{
	"mixamp":   0,
	"mixphase": 1,
}

// offDiagonal gates can create new basis-state amplitudes.
var offDiagonal = map[string]bool{
	"h":   true,
	"rx":  true,
	"ry":  true,
	"ch":  true,
	"crx": true,
	"cry": true,
}

// paramArity is the number of real parameters a gate takes.
var paramArity = map[string]int{
	"u":        3,
	"cu":       3,
	"rx":       1,
	"ry":       1,
	"rz":       1,
	"rtheta":   1,
	"crx":      1,
	"cry":      1,
	"crz":      1,
	"crtheta":  1,
	"mixamp":   1,
	"mixphase": 1,
}

// IsOffDiagonal reports whether a gate must not share a timeslice with another off-diagonal gate.
func IsOffDiagonal(gate string) bool {
	return offDiagonal[gate]
}

// ParamArity returns the number of parameters the gate expects.
func ParamArity(gate string) int {
	return paramArity[gate]
}

// EncodesParameter reports whether the gate is followed by a cos/sin parameter word.
func EncodesParameter(gate string) bool {
	switch gate {
	case "rx", "ry", "rz", "rtheta", "crx", "cry", "crz", "crtheta":
		return true
	}
	return false
}

// HalvesAngle reports whether the encoded angle is theta/2.
func HalvesAngle(gate string) bool {
	switch gate {
	case "rx", "ry", "rz", "crx", "cry", "crz":
		return true
	}
	return false
}

// IsDecoherence reports whether name is a decoherence operation.
func IsDecoherence(name string) bool {
	_, ok := DecoherenceOps[name]
	return ok
}

// SplitControls resolves a possibly multi-controlled gate name.
// "ccx" yields ("cx", 2, true); "cx" yields ("cx", 1, true).
func SplitControls(name string) (base string, controls int, ok bool) {
	extra := 0
	for s := name; strings.HasPrefix(s, "c"); s = s[1:] {
		if _, found := ControlledGates[s]; found {
			return s, extra + 1, true
		}
		extra++
	}
	return "", 0, false
}

// ControlledName is the inverse of SplitControls.
func ControlledName(base string, controls int) string {
	if controls <= 1 {
		return base
	}
	return strings.Repeat("c", controls-1) + base
}
