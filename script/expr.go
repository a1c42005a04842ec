package script

import (
	"math"

	"visu"
)

// Env is the ambient state an argument expression is evaluated against:
// the playback time in seconds and the latest analysis snapshot. Expressions
// are pure over the Env, so re-evaluating a patched chain frame after frame
// is safe.
type Env struct {
	Time   float64
	Signal visu.Signal
}

// Expr is a frame-time argument expression.
type Expr interface {
	Value(env Env) float64
}

type (
	// Num is a number literal.
	Num float64

	timeExpr struct{}

	bandExpr struct {
		index Expr
	}

	binExpr struct {
		op       byte
		lhs, rhs Expr
	}

	negExpr struct {
		expr Expr
	}
)

func (n Num) Value(Env) float64 { return float64(n) }

func (timeExpr) Value(env Env) float64 { return env.Time }

func (b bandExpr) Value(env Env) float64 {
	i := int(math.Floor(b.index.Value(env)))
	return float64(env.Signal.Band(i)) // out of range reads 0, never panics
}

func (b binExpr) Value(env Env) float64 {
	l, r := b.lhs.Value(env), b.rhs.Value(env)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	}
	// division by zero yields 0 instead of Inf, so a band that momentarily
	// reads zero cannot poison a frame with non-finite pixels
	if r == 0 {
		return 0
	}
	return l / r
}

func (n negExpr) Value(env Env) float64 { return -n.expr.Value(env) }
