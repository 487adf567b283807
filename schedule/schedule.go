// Package schedule moves circuit operations to timeslices the controller can
// execute: off-diagonal gates never share a timeslice with each other, and
// classically conditioned operations run after the latest measurement.
package schedule

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qsofinstr/circuit"
)

// Mode selects the scheduling strategy.
type Mode int

const (
	// Packed serializes off-diagonal gates behind a watermark and lets
	// everything else run in parallel.
	Packed Mode = 1
	// Isolated gives every off-diagonal gate a timeslice of its own.
	Isolated Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Packed:
		return "packed"
	case Isolated:
		return "isolated"
	}
	return "unknown"
}

// Config is the scheduling configuration of one compile.
type Config struct {
	Enabled bool `yaml:"enabled"`
	Mode    Mode `yaml:"mode"`
}

// DefaultConfig enables packed scheduling.
func DefaultConfig() Config {
	return Config{Enabled: true, Mode: Packed}
}

// Validate reports an unsupported mode.
func (c Config) Validate() error {
	if c.Mode != Packed && c.Mode != Isolated {
		return errors.Errorf("schedule mode must be 1 or 2, got %d", c.Mode)
	}
	return nil
}

// Option configures Schedule.
type Option func(*scheduler)

// WithLogger routes placement debug output to log.
func WithLogger(log *zap.Logger) Option {
	return func(s *scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// Schedule returns g rescheduled under cfg. A disabled config returns g
// itself; otherwise the result is a new graph with the same registers.
// An invalid mode panics.
func Schedule(g *circuit.Graph, cfg Config, opts ...Option) *circuit.Graph {
	if !cfg.Enabled {
		return g
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	s := &scheduler{
		src:   g,
		dst:   g.Skeleton(),
		log:   zap.NewNop(),
		memo:  make(map[instance]int),
		shift: make(map[string]int),
		remap: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	place := s.packed
	if cfg.Mode == Isolated {
		place = s.isolated
	}
	for t := 1; t <= g.MaxTimeslice; t++ {
		for _, q := range g.Qubits() {
			n := g.At(q, t)
			if n == nil {
				continue
			}
			nt, ok := s.memo[s.key(q, t, n)]
			if !ok {
				nt = place(q, t, n)
			}
			s.place(q, t, n, nt)
		}
	}
	s.log.Debug("scheduled circuit",
		zap.String("circuit", g.Name),
		zap.Stringer("mode", cfg.Mode),
		zap.Int("timeslices_before", g.MaxTimeslice),
		zap.Int("timeslices_after", s.dst.MaxTimeslice))
	return s.dst
}

// instance identifies a multi-qubit gate instance by its source timeslice
// and participants.
type instance struct {
	t     int
	qubit string
}

type scheduler struct {
	src *circuit.Graph
	dst *circuit.Graph
	log *zap.Logger

	memo map[instance]int
	mhw  int

	// packed
	shift     map[string]int
	watermark int

	// isolated
	counter int
	remap   map[int]int
}

func (s *scheduler) key(q string, t int, n *circuit.Node) instance {
	if !n.MultiQubit() {
		return instance{t: t, qubit: q}
	}
	set := append([]string{q}, n.Partners...)
	slices.Sort(set)
	return instance{t: t, qubit: strings.Join(set, ",")}
}

// place records the slot of a node and copies it into the new graph.
func (s *scheduler) place(q string, t int, n *circuit.Node, nt int) {
	if n.MultiQubit() {
		s.memo[s.key(q, t, n)] = nt
	}
	s.shift[q] = nt - t
	cpy := n.Clone()
	cpy.Timeslice = nt
	s.dst.Place(q, cpy)
	s.log.Debug("placed", zap.String("qubit", q), zap.String("gate", n.Gate), zap.Int("from", t), zap.Int("to", nt))
}
