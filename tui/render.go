package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qsofinstr/circuit"
	"qsofinstr/encode"
)

// padCenter centers s within width characters.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

// columnWidths returns the width of every qubit column.
func columnWidths(g *circuit.Graph) []int {
	widths := make([]int, g.NumQubits())
	for i, q := range g.Qubits() {
		widths[i] = len(q)
		for _, n := range g.Timeline(q) {
			widths[i] = max(widths[i], len(g.CellText(n)))
		}
		widths[i] += columnGap
	}
	return widths
}

// renderTimeline draws one row per timeslice of g, highlighting current.
func renderTimeline(g *circuit.Graph, current int) string {
	widths := columnWidths(g)
	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelW))
	for i, q := range g.Qubits() {
		sb.WriteString(qubitLabelStyle.Render(padCenter(q, widths[i])))
	}
	sb.WriteString("\n")

	for t := 1; t <= g.MaxTimeslice; t++ {
		if g.Empty(t) {
			continue
		}
		label := fmt.Sprintf("%*d: ", labelW-2, t)
		cell := gateStyle
		if t == current {
			label = fmt.Sprintf("%*s> ", labelW-2, fmt.Sprint(t))
			cell = currentRowStyle
		}
		sb.WriteString(dimStyle.Render(label))
		for i, q := range g.Qubits() {
			n := g.At(q, t)
			if n == nil {
				sb.WriteString(dimStyle.Render(padCenter("|", widths[i])))
				continue
			}
			sb.WriteString(cell.Render(padCenter(g.CellText(n), widths[i])))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderWord colors the end-of-slice flag, the opcode and the payload of a word.
func renderWord(w encode.Word) string {
	bits := w.String()
	return lastBitStyle.Render(bits[:1]) +
		opcodeStyle.Render(bits[1:1+encode.OpcodeBits]) +
		payloadStyle.Render(bits[1+encode.OpcodeBits:])
}

// renderSlice lists the words of one encoded timeslice and the operations they decode to.
func renderSlice(s encode.Slice, ops []encode.Op) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", titleStyle.Render(fmt.Sprintf("timeslice %d: %d words", s.Index, len(s.Words))))
	for i, w := range s.Words {
		fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render(fmt.Sprintf("%3d", i)), renderWord(w))
	}
	sb.WriteString("\n")
	for _, op := range ops {
		sb.WriteString(op.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderControls(width int) string {
	var sb strings.Builder
	sb.WriteString(keyStyle.Render("Navigate: "))
	sb.WriteString("←→/hl Timeslice  ↑↓/jk Scroll  Tab Switch pane  q/^C Quit\n")
	if m.status != "" {
		sb.WriteString(currentRowStyle.Render(m.status))
	} else if len(m.prog.Slices) > 0 {
		fmt.Fprintf(&sb, "Slice %d of %d  │  %d qubits, %d-bit qubit fields  │  %d words",
			m.slice+1, len(m.prog.Slices), m.prog.Qubits, m.prog.QubitBits, len(m.prog.Words()))
	}
	return controlsStyle.Width(width).Render(sb.String())
}

func panel(style lipgloss.Style, focused bool, title, body string, width, height int) string {
	if focused {
		style = style.BorderForeground(focusedBorder)
		title += " [ACTIVE]"
	}
	return style.Width(width).Height(height).Render(titleStyle.Render(title) + "\n" + body)
}
