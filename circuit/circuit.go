package circuit

import (
	"fmt"
	"maps"
	"slices"
)

// CondKind selects how a classical condition is tested.
type CondKind int

const (
	// SingleBit compares one classical bit against 0 or 1.
	SingleBit CondKind = iota
	// MultiBit compares a whole classical register against an integer literal.
	MultiBit
)

// Condition is the classical guard of an operation.
// Register names a bit ("c[1]") for SingleBit and a register ("c") for MultiBit.
type Condition struct {
	Register string   `json:"register"`
	Value    int      `json:"value"`
	Kind     CondKind `json:"kind"`
}

// Node is the operation one qubit performs in one timeslice.
type Node struct {
	Gate         string     `json:"gate"`
	Controlled   bool       `json:"controlled"`
	Partners     []string   `json:"partners,omitempty"` // controls on the target node, co-participants elsewhere
	Cregs        []string   `json:"cregs,omitempty"`
	Params       []float64  `json:"params,omitempty"`
	Target       bool       `json:"target"`
	Timeslice    int        `json:"timeslice"`
	HasParameter bool       `json:"has_parameter"`
	Measurement  bool       `json:"measurement"`
	Reset        bool       `json:"reset"`
	Barrier      bool       `json:"barrier"`
	Cond         *Condition `json:"cond,omitempty"`
}

// Conditioned reports whether the node carries a classical guard.
func (n *Node) Conditioned() bool {
	return n.Cond != nil
}

// MultiQubit reports whether the node belongs to a gate instance spanning several qubits.
func (n *Node) MultiQubit() bool {
	return len(n.Partners) > 0
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	cpy := *n
	cpy.Partners = slices.Clone(n.Partners)
	cpy.Cregs = slices.Clone(n.Cregs)
	cpy.Params = slices.Clone(n.Params)
	if n.Cond != nil {
		cond := *n.Cond
		cpy.Cond = &cond
	}
	return &cpy
}

// Register is a declared quantum or classical register.
type Register struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Graph is the per-qubit sparse timeline of a circuit.
// Timeslices start at 1; a qubit without a node at t is idle there.
type Graph struct {
	Name string

	qregs     []Register
	cregRegs  []Register
	qubits    []string
	bits      []string
	timelines map[string]map[int]*Node
	writes    map[string]map[int]string
	qubitIdx  map[string]int
	cregIdx   map[string]int
	qubitHigh map[string]int
	cregHigh  map[string]int

	MaxTimeslice      int
	MeasuredHighWater int
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:      name,
		timelines: make(map[string]map[int]*Node),
		writes:    make(map[string]map[int]string),
		qubitIdx:  make(map[string]int),
		cregIdx:   make(map[string]int),
		qubitHigh: make(map[string]int),
		cregHigh:  make(map[string]int),
	}
}

// BitName returns the name of element i of a register.
func BitName(reg string, i int) string {
	return fmt.Sprintf("%s[%d]", reg, i)
}

// AddQubits declares a quantum register. Qubit indices are assigned densely in declaration order.
func (g *Graph) AddQubits(reg string, size int) {
	g.qregs = append(g.qregs, Register{Name: reg, Size: size})
	for i := range size {
		name := BitName(reg, i)
		g.qubitIdx[name] = len(g.qubits)
		g.qubits = append(g.qubits, name)
		g.timelines[name] = make(map[int]*Node)
		g.qubitHigh[name] = 0
	}
}

// AddCregs declares a classical register.
func (g *Graph) AddCregs(reg string, size int) {
	g.cregRegs = append(g.cregRegs, Register{Name: reg, Size: size})
	for i := range size {
		name := BitName(reg, i)
		g.cregIdx[name] = len(g.bits)
		g.bits = append(g.bits, name)
		g.writes[name] = make(map[int]string)
		g.cregHigh[name] = 0
	}
}

// Qubits returns qubit names in declaration order.
func (g *Graph) Qubits() []string { return g.qubits }

// Cregs returns classical bit names in declaration order.
func (g *Graph) Cregs() []string { return g.bits }

// QuantumRegisters returns the declared quantum registers.
func (g *Graph) QuantumRegisters() []Register { return g.qregs }

// ClassicalRegisters returns the declared classical registers.
func (g *Graph) ClassicalRegisters() []Register { return g.cregRegs }

// NumQubits returns the number of declared qubits.
func (g *Graph) NumQubits() int { return len(g.qubits) }

// HasQubit reports whether name is a declared qubit.
func (g *Graph) HasQubit(name string) bool {
	_, ok := g.qubitIdx[name]
	return ok
}

// HasCreg reports whether name is a declared classical bit.
func (g *Graph) HasCreg(name string) bool {
	_, ok := g.cregIdx[name]
	return ok
}

// QubitIndex returns the dense index of a qubit. Unknown names panic.
func (g *Graph) QubitIndex(name string) int {
	idx, ok := g.qubitIdx[name]
	if !ok {
		panic(fmt.Sprintf("circuit: unknown qubit %q", name))
	}
	return idx
}

// CregIndex returns the dense index of a classical bit. Unknown names panic.
func (g *Graph) CregIndex(name string) int {
	idx, ok := g.cregIdx[name]
	if !ok {
		panic(fmt.Sprintf("circuit: unknown classical bit %q", name))
	}
	return idx
}

// RegisterSize returns the size of a classical register, or 0 when undeclared.
func (g *Graph) RegisterSize(reg string) int {
	for _, r := range g.cregRegs {
		if r.Name == reg {
			return r.Size
		}
	}
	return 0
}

// QuantumRegisterSize returns the size of a quantum register, or 0 when undeclared.
func (g *Graph) QuantumRegisterSize(reg string) int {
	for _, r := range g.qregs {
		if r.Name == reg {
			return r.Size
		}
	}
	return 0
}

// At returns the node of qubit at timeslice t, or nil.
func (g *Graph) At(qubit string, t int) *Node {
	return g.timelines[qubit][t]
}

// Timeline returns the sparse timeline of a qubit.
func (g *Graph) Timeline(qubit string) map[int]*Node {
	return g.timelines[qubit]
}

// Timeslices returns the occupied timeslices of a qubit in increasing order.
func (g *Graph) Timeslices(qubit string) []int {
	return slices.Sorted(maps.Keys(g.timelines[qubit]))
}

// Writes returns the timeslices at which a classical bit is written and by which qubit.
func (g *Graph) Writes(bit string) map[int]string {
	return g.writes[bit]
}

// Empty reports whether no qubit has a node at t.
func (g *Graph) Empty(t int) bool {
	for _, q := range g.qubits {
		if _, ok := g.timelines[q][t]; ok {
			return false
		}
	}
	return true
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	n := 0
	for _, tl := range g.timelines {
		n += len(tl)
	}
	return n
}

// Skeleton returns a graph with the same registers and indices but no operations.
func (g *Graph) Skeleton() *Graph {
	s := New(g.Name)
	for _, r := range g.qregs {
		s.AddQubits(r.Name, r.Size)
	}
	for _, r := range g.cregRegs {
		s.AddCregs(r.Name, r.Size)
	}
	return s
}

// Place stores n on qubit at n.Timeslice and updates the graph counters.
func (g *Graph) Place(qubit string, n *Node) {
	t := n.Timeslice
	g.timelines[qubit][t] = n
	g.qubitHigh[qubit] = max(g.qubitHigh[qubit], t)
	g.MaxTimeslice = max(g.MaxTimeslice, t)
	if n.Measurement {
		g.MeasuredHighWater = max(g.MeasuredHighWater, t)
		for _, bit := range n.Cregs {
			g.writes[bit][t] = qubit
			g.cregHigh[bit] = max(g.cregHigh[bit], t)
		}
	}
}
