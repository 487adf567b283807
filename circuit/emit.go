package circuit

import (
	"fmt"
	"slices"
	"strings"
)

// QASM generates OpenQASM 2.0 for the graph in timeslice order. Each gate
// instance is written once, at its target node (or first participant).
func (g *Graph) QASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	for _, r := range g.qregs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range g.cregRegs {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}
	for _, decl := range g.opaqueDecls() {
		sb.WriteString(decl)
	}
	if len(g.qregs)+len(g.cregRegs) > 0 {
		sb.WriteString("\n")
	}

	for t := 1; t <= g.MaxTimeslice; t++ {
		var barrier []string
		for _, q := range g.qubits {
			node := g.timelines[q][t]
			if node == nil {
				continue
			}
			if node.Barrier {
				barrier = append(barrier, q)
				continue
			}
			g.writeNodeQASM(&sb, q, node)
		}
		if len(barrier) > 0 {
			fmt.Fprintf(&sb, "barrier %s;\n", strings.Join(barrier, ", "))
		}
	}
	return sb.String()
}

// leads reports whether node writes the statement of its gate instance:
// the target of a controlled gate, or the lowest-indexed participant otherwise.
func (g *Graph) leads(qubit string, node *Node) bool {
	if node.Controlled {
		return node.Target
	}
	for _, p := range node.Partners {
		if g.QubitIndex(p) < g.QubitIndex(qubit) {
			return false
		}
	}
	return true
}

func (g *Graph) writeNodeQASM(sb *strings.Builder, qubit string, node *Node) {
	if !g.leads(qubit, node) {
		return
	}
	if node.Cond != nil {
		fmt.Fprintf(sb, "if(%s==%d) ", node.Cond.Register, node.Cond.Value)
	}
	switch {
	case node.Measurement:
		fmt.Fprintf(sb, "measure %s -> %s;\n", qubit, node.Cregs[0])
	case node.Reset:
		fmt.Fprintf(sb, "reset %s;\n", qubit)
	case node.Controlled:
		name := ControlledName(node.Gate, len(node.Partners))
		if node.HasParameter {
			name = fmt.Sprintf("%s(%s)", name, FormatParams(node.Params))
		}
		fmt.Fprintf(sb, "%s %s, %s;\n", name, strings.Join(node.Partners, ", "), qubit)
	default:
		args := append([]string{qubit}, node.Partners...)
		fmt.Fprintf(sb, "%s %s;\n", node.Label(), strings.Join(args, ", "))
	}
}

// opaqueDecls returns one declaration per decoherence operation in use.
func (g *Graph) opaqueDecls() []string {
	arity := make(map[string]int)
	for _, tl := range g.timelines {
		for _, node := range tl {
			if IsDecoherence(node.Gate) {
				arity[node.Gate] = len(node.Partners) + 1
			}
		}
	}
	var out []string
	for name, n := range arity {
		args := make([]string, n)
		for i := range args {
			args[i] = fmt.Sprintf("a%d", i)
		}
		out = append(out, fmt.Sprintf("opaque %s(p) %s;\n", name, strings.Join(args, ", ")))
	}
	slices.Sort(out)
	return out
}
