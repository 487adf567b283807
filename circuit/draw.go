package circuit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lipgloss styles used by Draw.
var (
	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	offDiagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	measureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	condStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bb9af7"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// columnGap separates qubit columns.
const columnGap = 3

// CellText returns the plain text drawn for a node.
// Targets of controlled gates are marked "o"; controls name the target they drive.
func (g *Graph) CellText(node *Node) string {
	var s string
	switch {
	case node.Reset:
		s = "reset"
	case node.Measurement:
		s = "M -> " + strings.Join(node.Cregs, ", ")
	case node.Barrier:
		s = "--"
	case node.Controlled && node.Target:
		s = node.Label() + " o"
	case node.Controlled:
		s = node.Label() + " " + node.Partners[0]
	default:
		s = node.Label()
	}
	if node.Cond != nil {
		s += fmt.Sprintf("|%s=%d", node.Cond.Register, node.Cond.Value)
	}
	return s
}

func cellStyle(node *Node) lipgloss.Style {
	switch {
	case node.Measurement:
		return measureStyle
	case node.Barrier:
		return dimStyle
	case node.Cond != nil:
		return condStyle
	case IsOffDiagonal(node.Gate):
		return offDiagStyle
	default:
		return gateStyle
	}
}

// Draw renders the timeline with one column per qubit and one row per
// non-empty timeslice. Empty timeslices are skipped and rows renumbered from 1.
func (g *Graph) Draw() string {
	widths := make([]int, len(g.qubits))
	for i, q := range g.qubits {
		widths[i] = len(q)
		for _, node := range g.timelines[q] {
			widths[i] = max(widths[i], len(g.CellText(node)))
		}
		widths[i] += columnGap
	}
	labelW := len(fmt.Sprint(g.MaxTimeslice)) + 2

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelW))
	for i, q := range g.qubits {
		sb.WriteString(qubitLabelStyle.Width(widths[i]).Render(q))
	}
	sb.WriteString("\n")

	row := 0
	for t := 1; t <= g.MaxTimeslice; t++ {
		if g.Empty(t) {
			continue
		}
		row++

		sb.WriteString(strings.Repeat(" ", labelW))
		for i := range g.qubits {
			sb.WriteString(dimStyle.Width(widths[i]).Render("|"))
		}
		sb.WriteString("\n")

		sb.WriteString(lipgloss.NewStyle().Width(labelW).Render(fmt.Sprintf("%d:", row)))
		for i, q := range g.qubits {
			node := g.timelines[q][t]
			if node == nil {
				sb.WriteString(strings.Repeat(" ", widths[i]))
				continue
			}
			sb.WriteString(cellStyle(node).Width(widths[i]).Render(g.CellText(node)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
