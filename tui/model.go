// Package tui is a terminal inspector showing a scheduled circuit next to
// the instruction words it encodes to, one timeslice at a time.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"qsofinstr/circuit"
	"qsofinstr/encode"
)

// focus is the pane receiving scroll keys.
type focus int

const (
	focusCircuit focus = iota
	focusProgram
)

// Model represents the inspector state.
type Model struct {
	g    *circuit.Graph
	prog *encode.Program
	ops  [][]encode.Op // decoded operations per slice

	slice   int
	focus   focus
	width   int
	height  int
	status  string
	circuit viewport.Model
	program viewport.Model
}

// New builds an inspector for g and its encoded program, decoding every slice.
func New(g *circuit.Graph, prog *encode.Program) (Model, error) {
	m := Model{
		g:       g,
		prog:    prog,
		ops:     make([][]encode.Op, len(prog.Slices)),
		circuit: viewport.New(0, 0),
		program: viewport.New(0, 0),
	}
	for i, s := range prog.Slices {
		ops, err := encode.Decode(s.Words, prog.Qubits)
		if err != nil {
			return Model{}, errors.Wrapf(err, "decode timeslice %d", s.Index)
		}
		m.ops[i] = ops
	}
	if len(prog.Slices) == 0 {
		m.status = "empty program"
	}
	m.refresh()
	return m, nil
}

// Run starts the inspector on the alternate screen.
func Run(g *circuit.Graph, prog *encode.Program) error {
	m, err := New(g, prog)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return errors.Wrap(err, "run inspector")
}

// Timeslice returns the timeslice currently shown, or 0 for an empty program.
func (m Model) Timeslice() int {
	if len(m.prog.Slices) == 0 {
		return 0
	}
	return m.prog.Slices[m.slice].Index
}

func (m *Model) refresh() {
	m.circuit.SetContent(renderTimeline(m.g, m.Timeslice()))
	if len(m.prog.Slices) > 0 {
		m.program.SetContent(renderSlice(m.prog.Slices[m.slice], m.ops[m.slice]))
	} else {
		m.program.SetContent("")
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		paneH := max(msg.Height-helpHeight-panelChrome, 3)
		m.circuit.Width = max(msg.Width/2-panelChrome, 10)
		m.program.Width = max(msg.Width-msg.Width/2-panelChrome, 10)
		m.circuit.Height = paneH - 1
		m.program.Height = paneH - 1

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.focus = 1 - m.focus
		case "left", "h":
			if m.slice > 0 {
				m.slice--
				m.refresh()
				m.program.GotoTop()
			}
		case "right", "l":
			if m.slice < len(m.prog.Slices)-1 {
				m.slice++
				m.refresh()
				m.program.GotoTop()
			}
		default:
			if m.focus == focusCircuit {
				m.circuit, cmd = m.circuit.Update(msg)
			} else {
				m.program, cmd = m.program.Update(msg)
			}
		}
	}
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	leftW := m.width / 2
	rightW := m.width - leftW
	paneH := max(m.height-helpHeight-panelChrome, 3)

	left := panel(circuitStyle, m.focus == focusCircuit, "Circuit "+m.g.Name, m.circuit.View(), leftW-2, paneH)
	right := panel(programStyle, m.focus == focusProgram, "Program", m.program.View(), rightW-2, paneH)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.renderControls(m.width-2))
}
