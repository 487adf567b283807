package qasm

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsofinstr/circuit"
)

const namedCregs = `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c0[1];
creg c1[1];

h q[1];
cx q[1], q[2];
cx q[0], q[1];
h q[0];
measure q[0] -> c0[0];
measure q[1] -> c1[0];

if(c1==1) x q[2];
if(c0==1) z q[2];`

func TestParseNamedCregs(t *testing.T) {
	g, err := Parse("named", namedCregs)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumQubits())
	assert.Equal(t, []string{"c0[0]", "c1[0]"}, g.Cregs())
	assert.Equal(t, 10, g.NodeCount())

	cx := g.At("q[1]", 3)
	require.NotNil(t, cx)
	assert.Equal(t, "cx", cx.Gate)
	assert.True(t, cx.Target)
	assert.Equal(t, []string{"q[0]"}, cx.Partners)

	assert.Equal(t, 5, g.MeasuredHighWater)
	assert.Equal(t, "q[1]", g.Writes("c1[0]")[4])

	x := g.At("q[2]", 6)
	require.NotNil(t, x)
	assert.Equal(t, "x", x.Gate)
	assert.Equal(t, &circuit.Condition{Register: "c1[0]", Value: 1, Kind: circuit.SingleBit}, x.Cond)

	z := g.At("q[2]", 7)
	require.NotNil(t, z)
	assert.Equal(t, "c0[0]", z.Cond.Register)
}

func TestParseOldCregFormat(t *testing.T) {
	g, err := Parse("old", `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[3];

h q[0];
measure q[0] -> c[0];
if (c[0]==1) x q[1];
if (c==5) z q[2];`)
	require.NoError(t, err)

	x := g.At("q[1]", 3)
	require.NotNil(t, x)
	assert.Equal(t, &circuit.Condition{Register: "c[0]", Value: 1, Kind: circuit.SingleBit}, x.Cond)

	z := g.At("q[2]", 3)
	require.NotNil(t, z)
	assert.Equal(t, &circuit.Condition{Register: "c", Value: 5, Kind: circuit.MultiBit}, z.Cond)
}

func TestRoundTripQASM(t *testing.T) {
	g, err := Parse("named", namedCregs)
	require.NoError(t, err)
	out := g.QASM()

	g2, err := Parse("named", out)
	require.NoError(t, err)
	assert.Equal(t, out, g2.QASM())
	assert.Equal(t, g.NodeCount(), g2.NodeCount())
	assert.Equal(t, g.MaxTimeslice, g2.MaxTimeslice)
}

// evalParam parses expr as the angle of an rz gate.
func evalParam(expr string) (float64, error) {
	g, err := Parse("expr", "OPENQASM 2.0;\nqreg q[1];\nrz("+expr+") q[0];")
	if err != nil {
		return 0, err
	}
	return g.At("q[0]", 1).Params[0], nil
}

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.5707", 1.5707, true},
		{"3.14", 3.14, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"42", 42, true},
		{"1e-3", 0.001, true},
		{".5", 0.5, true},

		{"pi", math.Pi, true},
		{"pi/2", math.Pi / 2, true},
		{"pi/4", math.Pi / 4, true},
		{"2*pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},
		{"-pi", -math.Pi, true},
		{"-pi/2", -math.Pi / 2, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		{"1+2*3", 7, true},
		{"(1+2)*3", 9, true},
		{"2^3^2", 512, true},
		{"-2^2", -4, true},
		{"sin(pi/2)", 1, true},
		{"cos(0) + sqrt(4)", 3, true},
		{"ln(exp(2))", 2, true},
		{"tan(0)", 0, true},

		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
		{"sqrt(-1)", 0, false},
	}

	for _, tt := range tests {
		got, err := evalParam(tt.input)
		if !tt.ok {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.InDelta(t, tt.want, got, 1e-10, tt.input)
	}
}

func TestPiParamQASMRoundTrip(t *testing.T) {
	g := circuit.New("pi")
	g.AddQubits("q", 2)
	require.NoError(t, g.SingleGate("rx", "q[0]", []float64{math.Pi / 2}, nil))
	require.NoError(t, g.SingleGate("ry", "q[1]", []float64{3 * math.Pi / 4}, nil))
	require.NoError(t, g.SingleGate("rz", "q[0]", []float64{-math.Pi}, nil))
	require.NoError(t, g.ControlledGate("crx", []string{"q[0]"}, "q[1]", []float64{math.Pi / 4}, nil))

	out := g.QASM()
	assert.Contains(t, out, "rx(pi/2) q[0];")
	assert.Contains(t, out, "ry(3*pi/4) q[1];")
	assert.Contains(t, out, "rz(-pi) q[0];")
	assert.Contains(t, out, "crx(pi/4) q[0], q[1];")

	g2, err := Parse("pi", out)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, g2.At("q[0]", 1).Params[0], 1e-10)
	assert.InDelta(t, 3*math.Pi/4, g2.At("q[1]", 1).Params[0], 1e-10)
	assert.InDelta(t, -math.Pi, g2.At("q[0]", 2).Params[0], 1e-10)
	crx := g2.At("q[1]", 3)
	require.NotNil(t, crx)
	assert.True(t, crx.Target)
	assert.InDelta(t, math.Pi/4, crx.Params[0], 1e-10)
}

func TestParseBroadcast(t *testing.T) {
	g, err := Parse("broadcast", `OPENQASM 2.0;
qreg q[3];
qreg a[3];
creg c[3];
h q;
cx q, a;
cx q[0], a;
measure q -> c;
reset a;
barrier q, a;`)
	require.NoError(t, err)

	for i := range 3 {
		qi, ai := circuit.BitName("q", i), circuit.BitName("a", i)
		assert.Equal(t, "h", g.At(qi, 1).Gate)
		assert.Equal(t, []string{qi}, g.At(ai, 2).Partners)
		assert.True(t, g.At(ai, 2).Target)
	}
	for i := range 3 {
		cx := g.At(circuit.BitName("a", i), 3+i)
		require.NotNil(t, cx)
		assert.Equal(t, []string{"q[0]"}, cx.Partners)
	}

	assert.Equal(t, 6, g.MeasuredHighWater)
	for i := range 3 {
		assert.True(t, g.At(circuit.BitName("q", i), 6).Measurement)
		assert.True(t, g.At(circuit.BitName("a", i), 6).Reset)
	}
	for _, qb := range g.Qubits() {
		assert.True(t, g.At(qb, 7).Barrier, qb)
	}
}

func TestParseMultiControl(t *testing.T) {
	g, err := Parse("toffoli", `OPENQASM 2.0;
qreg q[4];
ccx q[0], q[1], q[2];
cccz q[0], q[1], q[2], q[3];
CX q[3], q[0];
U(pi, 0, pi) q[1];`)
	require.NoError(t, err)

	ccx := g.At("q[2]", 1)
	require.NotNil(t, ccx)
	assert.Equal(t, "cx", ccx.Gate)
	assert.Equal(t, []string{"q[0]", "q[1]"}, ccx.Partners)
	assert.False(t, g.At("q[0]", 1).Target)

	cccz := g.At("q[3]", 2)
	assert.Equal(t, "cz", cccz.Gate)
	assert.Len(t, cccz.Partners, 3)

	assert.Equal(t, "cx", g.At("q[0]", 3).Gate)
	assert.Equal(t, "u", g.At("q[1]", 3).Gate)
	assert.Contains(t, g.QASM(), "ccx q[0], q[1], q[2];\n")
}

func TestParseUserGate(t *testing.T) {
	g, err := Parse("user", `OPENQASM 2.0;
qreg q[2];
creg c[1];
gate bell a, b {
  h a;
  cx a, b;
}
gate spin(theta) a {
  rz(theta/2) a;
  rx(-theta) a;
}
bell q[1], q[0];
spin(pi) q[1];
measure q[0] -> c[0];
if (c==1) spin(1) q[0];`)
	require.NoError(t, err)

	assert.Equal(t, "h", g.At("q[1]", 1).Gate)
	cx := g.At("q[0]", 2)
	assert.Equal(t, "cx", cx.Gate)
	assert.Equal(t, []string{"q[1]"}, cx.Partners)

	assert.InDelta(t, math.Pi/2, g.At("q[1]", 3).Params[0], 1e-12)
	assert.InDelta(t, -math.Pi, g.At("q[1]", 4).Params[0], 1e-12)

	rz := g.At("q[0]", 4)
	require.NotNil(t, rz)
	assert.Equal(t, "rz", rz.Gate)
	assert.True(t, rz.Conditioned())
	assert.True(t, g.At("q[0]", 5).Conditioned())
}

func TestParseOpaqueDecoherence(t *testing.T) {
	g, err := Parse("noise", `OPENQASM 2.0;
qreg q[2];
opaque mixamp(p) a;
opaque mixphase(p) a, b;
mixamp(0.1) q[0];
mixphase(0.25) q[0], q[1];`)
	require.NoError(t, err)

	assert.Equal(t, "mixamp", g.At("q[0]", 1).Gate)
	assert.Equal(t, []float64{0.1}, g.At("q[0]", 1).Params)
	assert.Equal(t, "mixphase", g.At("q[1]", 2).Gate)
	assert.Equal(t, []string{"q[0]"}, g.At("q[1]", 2).Partners)

	out := g.QASM()
	assert.Contains(t, out, "opaque mixamp(p) a0;")
	assert.Contains(t, out, "opaque mixphase(p) a0, a1;")
	_, err = Parse("noise", out)
	assert.NoError(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "OPENQASM 2.0;\nqreg q[1]\nh q[0];", "parse qasm"},
		{"unknown register", "OPENQASM 2.0;\nqreg q[1];\nh r[0];", `unknown quantum register "r"`},
		{"out of range", "OPENQASM 2.0;\nqreg q[1];\nh q[1];", "q[1] out of range"},
		{"unknown gate", "OPENQASM 2.0;\nqreg q[1];\nfoo q[0];", `unknown gate "foo"`},
		{"arity", "OPENQASM 2.0;\nqreg q[2];\ncx q[0];", "cx takes 2 qubits"},
		{"params", "OPENQASM 2.0;\nqreg q[1];\nrx q[0];", "rx takes 1 parameters"},
		{"same qubit", "OPENQASM 2.0;\nqreg q[1];\ncx q[0], q[0];", "used twice"},
		{"redeclared", "OPENQASM 2.0;\nqreg q[1];\ncreg q[1];", "already declared"},
		{"opaque", "OPENQASM 2.0;\nopaque magic a;", "no instruction encoding"},
		{"condition register", "OPENQASM 2.0;\nqreg q[1];\nif (c==1) x q[0];", `unknown classical register "c"`},
		{"gate body index", "OPENQASM 2.0;\ngate g a { x a[0]; }", "cannot be indexed"},
		{"broadcast sizes", "OPENQASM 2.0;\nqreg a[2];\nqreg b[3];\ncx a, b;", "different sizes"},
		{"conditioned reset", "OPENQASM 2.0;\nqreg q[2];\ncreg c[1];\nmeasure q[0] -> c[0];\nif (c[0]==1) reset q[1];", "reset cannot be conditioned"},
		{"conditioned measure", "OPENQASM 2.0;\nqreg q[2];\ncreg c[2];\nmeasure q[0] -> c[0];\nif (c[0]==1) measure q[1] -> c[1];", "measure cannot be conditioned"},
		{"conditioned barrier", "OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nif (c==1) barrier q;", "barrier cannot be conditioned"},
		{"conditioned decoherence", "OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nopaque mixamp(p) a;\nif (c==1) mixamp(0.1) q[0];", "mixamp cannot be conditioned"},
		{"conditioned decoherence in gate", "OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nopaque mixphase(p) a;\ngate noisy a { mixphase(0.2) a; }\nif (c==1) noisy q[0];", "mixphase cannot be conditioned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := Parse("bad.qasm", "OPENQASM 2.0;\nqreg q[1];\n\nh r[0];")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.qasm:4:1")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.qasm")
	require.NoError(t, os.WriteFile(path, []byte("OPENQASM 2.0;\nqreg q[2];\nh q[0];\ncx q[0], q[1];\n"), 0o644))

	g, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bell", g.Name)
	assert.Equal(t, 3, g.NodeCount())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.qasm"))
	assert.ErrorContains(t, err, "read qasm")
}
