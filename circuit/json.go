package circuit

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/pkg/errors"
)

// graphJSON is the on-disk form of a Graph. Timeslice keys are decimal strings.
type graphJSON struct {
	Name              string                       `json:"name"`
	QuantumRegisters  []Register                   `json:"quantum_registers"`
	ClassicalRegister []Register                   `json:"classical_registers"`
	QubitIndex        map[string]int               `json:"qubits_idx"`
	CregIndex         map[string]int               `json:"cregs_idx"`
	QubitHigh         map[string]int               `json:"qubit_max_time_slice"`
	CregHigh          map[string]int               `json:"creg_max_time_slice"`
	MaxTimeslice      int                          `json:"max_time_slice"`
	MeasuredHighWater int                          `json:"measured_max_time_slice"`
	Cregs             map[string]map[string]string `json:"cregs"`
	Qubits            map[string]map[string]*Node  `json:"qubits"`
}

// Dump writes the graph as indented JSON.
func Dump(w io.Writer, g *Graph) error {
	doc := graphJSON{
		Name:              g.Name,
		QuantumRegisters:  g.qregs,
		ClassicalRegister: g.cregRegs,
		QubitIndex:        g.qubitIdx,
		CregIndex:         g.cregIdx,
		QubitHigh:         g.qubitHigh,
		CregHigh:          g.cregHigh,
		MaxTimeslice:      g.MaxTimeslice,
		MeasuredHighWater: g.MeasuredHighWater,
		Cregs:             make(map[string]map[string]string),
		Qubits:            make(map[string]map[string]*Node),
	}
	for bit, tl := range g.writes {
		m := make(map[string]string, len(tl))
		for t, q := range tl {
			m[strconv.Itoa(t)] = q
		}
		doc.Cregs[bit] = m
	}
	for q, tl := range g.timelines {
		m := make(map[string]*Node, len(tl))
		for t, n := range tl {
			m[strconv.Itoa(t)] = n
		}
		doc.Qubits[q] = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return errors.Wrap(enc.Encode(doc), "encode circuit json")
}

// Load reads a graph written by Dump.
func Load(r io.Reader) (*Graph, error) {
	var doc graphJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode circuit json")
	}

	g := New(doc.Name)
	for _, reg := range doc.QuantumRegisters {
		g.AddQubits(reg.Name, reg.Size)
	}
	for _, reg := range doc.ClassicalRegister {
		g.AddCregs(reg.Name, reg.Size)
	}
	if !maps.Equal(g.qubitIdx, doc.QubitIndex) || !maps.Equal(g.cregIdx, doc.CregIndex) {
		return nil, errors.New("circuit json: register indices do not match declarations")
	}

	for _, q := range slices.Sorted(maps.Keys(doc.Qubits)) {
		if !g.HasQubit(q) {
			return nil, errors.Errorf("circuit json: unknown qubit %q", q)
		}
		for key, n := range doc.Qubits[q] {
			t, err := strconv.Atoi(key)
			if err != nil {
				return nil, errors.Wrapf(err, "circuit json: timeslice key %q", key)
			}
			if n.Timeslice != t {
				return nil, errors.Errorf("circuit json: %s node keyed %d claims timeslice %d", q, t, n.Timeslice)
			}
			g.Place(q, n)
		}
	}
	for bit, tl := range doc.Cregs {
		if !g.HasCreg(bit) {
			return nil, errors.Errorf("circuit json: unknown classical bit %q", bit)
		}
		for key, q := range tl {
			t, err := strconv.Atoi(key)
			if err != nil {
				return nil, errors.Wrapf(err, "circuit json: timeslice key %q", key)
			}
			g.writes[bit][t] = q
		}
	}
	maps.Copy(g.qubitHigh, doc.QubitHigh)
	maps.Copy(g.cregHigh, doc.CregHigh)
	g.MaxTimeslice = max(g.MaxTimeslice, doc.MaxTimeslice)
	g.MeasuredHighWater = max(g.MeasuredHighWater, doc.MeasuredHighWater)
	return g, nil
}
