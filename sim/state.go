// Package sim is a small state-vector simulator used to check that
// rescheduling a circuit does not change what it computes.
package sim

import (
	"math"
	"math/cmplx"
)

// StateVector holds 2^n amplitudes. Qubit i is bit i of the basis index.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0...0> over n qubits.
func NewStateVector(n int) *StateVector {
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: n}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// matrix is a 2x2 unitary in row-major order.
type matrix [4]complex128

var (
	identity = matrix{1, 0, 0, 1}
	pauliX   = matrix{0, 1, 1, 0}
	pauliY   = matrix{0, -1i, 1i, 0}
	pauliZ   = matrix{1, 0, 0, -1}
	hadamard = matrix{math.Sqrt2 / 2, math.Sqrt2 / 2, math.Sqrt2 / 2, -math.Sqrt2 / 2}
)

func phase(theta float64) matrix {
	return matrix{1, 0, 0, cmplx.Exp(complex(0, theta))}
}

func rx(theta float64) matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix{c, s, s, c}
}

func ry(theta float64) matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix{c, -s, s, c}
}

func rz(theta float64) matrix {
	p := cmplx.Exp(complex(0, theta/2))
	return matrix{cmplx.Conj(p), 0, 0, p}
}

func u(theta, phi, lambda float64) matrix {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return matrix{
		complex(c, 0),
		-cmplx.Exp(complex(0, lambda)) * complex(s, 0),
		cmplx.Exp(complex(0, phi)) * complex(s, 0),
		cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0),
	}
}

// gateMatrix returns the single-qubit unitary of a gate from the encoder
// tables. Controlled gates use the matrix of their base name ("crx" -> "rx").
// rtheta is the phase gate diag(1, e^{i theta}).
func gateMatrix(gate string, params []float64) (matrix, bool) {
	p := func(i int) float64 {
		if i < len(params) {
			return params[i]
		}
		return 0
	}
	switch gate {
	case "u":
		return u(p(0), p(1), p(2)), true
	case "x":
		return pauliX, true
	case "y":
		return pauliY, true
	case "z":
		return pauliZ, true
	case "h":
		return hadamard, true
	case "s":
		return phase(math.Pi / 2), true
	case "t":
		return phase(math.Pi / 4), true
	case "rx":
		return rx(p(0)), true
	case "ry":
		return ry(p(0)), true
	case "rz":
		return rz(p(0)), true
	case "rtheta":
		return phase(p(0)), true
	}
	return identity, false
}

// apply applies m to target on every basis state whose control bits are all set.
func (s *StateVector) apply(m matrix, target int, controls []int) {
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	bit := 1 << target
	for i := range s.Amplitudes {
		if i&bit != 0 || i&mask != mask {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0]*a0 + m[1]*a1
		s.Amplitudes[j] = m[2]*a0 + m[3]*a1
	}
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// Probabilities returns the marginal distribution of every qubit.
func (s *StateVector) Probabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, amp := range s.Amplitudes {
		prob := real(amp * cmplx.Conj(amp))
		for q := range s.NumQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// Fidelity returns |<s|o>|^2.
func (s *StateVector) Fidelity(o *StateVector) float64 {
	var inner complex128
	for i, amp := range s.Amplitudes {
		inner += cmplx.Conj(amp) * o.Amplitudes[i]
	}
	return real(inner * cmplx.Conj(inner))
}
