package qasm

import (
	"math"

	"github.com/pkg/errors"
)

// env binds gate parameter names to values during expansion.
type env map[string]float64

func (e *expr) eval(vars env) (float64, error) {
	v, err := e.Left.eval(vars)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		rv, err := r.Term.eval(vars)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			v += rv
		} else {
			v -= rv
		}
	}
	return v, nil
}

func (t *term) eval(vars env) (float64, error) {
	v, err := t.Left.eval(vars)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Right {
		rv, err := r.Factor.eval(vars)
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			v *= rv
			continue
		}
		if rv == 0 {
			return 0, errors.New("division by zero")
		}
		v /= rv
	}
	return v, nil
}

func (f *factor) eval(vars env) (float64, error) {
	if f.Neg != nil {
		v, err := f.Neg.eval(vars)
		return -v, err
	}
	return f.Power.eval(vars)
}

func (p *power) eval(vars env) (float64, error) {
	base, err := p.Base.eval(vars)
	if err != nil || p.Exp == nil {
		return base, err
	}
	exp, err := p.Exp.eval(vars)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *primary) eval(vars env) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Pi:
		return math.Pi, nil
	case p.Func != nil:
		return p.Func.eval(vars)
	case p.Ident != nil:
		v, ok := vars[*p.Ident]
		if !ok {
			return 0, errors.Errorf("unknown parameter %q", *p.Ident)
		}
		return v, nil
	default:
		return p.Sub.eval(vars)
	}
}

var funcs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
}

func (c *funcCall) eval(vars env) (float64, error) {
	v, err := c.Arg.eval(vars)
	if err != nil {
		return 0, err
	}
	if (c.Name == "ln" && v <= 0) || (c.Name == "sqrt" && v < 0) {
		return 0, errors.Errorf("%s(%g) is undefined", c.Name, v)
	}
	return funcs[c.Name](v), nil
}

// evalAll evaluates a parameter list.
func evalAll(exprs []*expr, vars env) ([]float64, error) {
	out := make([]float64, len(exprs))
	for i, e := range exprs {
		v, err := e.eval(vars)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
