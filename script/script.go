// Package script implements the small chain language that segment code is
// written in. A program is a sequence of statements; each statement is either
// a render selection
//
//	render(o1)
//
// or a chain: a generator call followed by transform calls, terminated by
// .out, which patches the chain into one of the numbered outputs:
//
//	osc(10, 0.1, a.fft[0]).rotate(time).out(o0)
//
// Arguments are arithmetic expressions over number literals, time and the
// a.fft bands, so a chain stays live after patching: the expressions are
// re-evaluated every frame against the current playback time and analysis
// snapshot. The names o0..o3 and s0..s3 refer to outputs and external media
// sources and are only valid where an operation takes a source.
//
// Parsing and validation of a program happen before any statement takes
// effect, so a program that fails anywhere changes nothing.
package script

import "fmt"

const (
	NumOutputs = 4
	NumSources = 4
)

type (
	// Program is a parsed, validated program, ready to be applied to a Sink.
	Program []Stmt

	StmtKind int

	// Stmt is one statement of a program. A patch statement carries the chain
	// and the output it terminates into; a render statement only the output.
	Stmt struct {
		Chain  Chain
		Target int
		Kind   StmtKind
	}

	// Chain is a generator call followed by zero or more transform calls.
	Chain struct {
		Source Call
		Ops    []Call
	}

	// Call is one operation of a chain with its frame-time arguments. Src is
	// set for operations that read another output or media source; Args holds
	// the scalar arguments, missing trailing ones filled from the operation's
	// defaults.
	Call struct {
		Name string
		Src  SourceRef
		Args []Expr
	}

	SourceKind int

	// SourceRef names an output (o0..o3) or a media source (s0..s3).
	SourceRef struct {
		Kind  SourceKind
		Index int
	}

	// ExecutionError is a failure to compile or run segment code. It is
	// reported and otherwise ignored: playback continues and the previously
	// rendered state stays visible.
	ExecutionError struct {
		Message string
		Line    int
		Col     int
	}
)

const (
	StmtPatch StmtKind = iota
	StmtRender
)

const (
	SourceNone SourceKind = iota
	SourceOutput
	SourceMedia
)

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

func (s SourceRef) String() string {
	switch s.Kind {
	case SourceOutput:
		return fmt.Sprintf("o%d", s.Index)
	case SourceMedia:
		return fmt.Sprintf("s%d", s.Index)
	}
	return "none"
}

// OpClass groups the operations by how the renderer applies them: a
// generator produces a frame, a coordinate transform resamples it, a color
// transform rewrites pixels in place, and combiners and modulators take a
// second source.
type OpClass int

const (
	OpGenerator OpClass = iota
	OpCoord
	OpColor
	OpCombine
	OpModulate
)

type opSpec struct {
	class    OpClass
	needsSrc bool
	defaults []float64
}

// ops is the operation table of the language. The defaults fill in omitted
// trailing arguments, the same values a bare call renders with.
var ops = map[string]opSpec{
	// generators
	"osc":      {class: OpGenerator, defaults: []float64{60, 0.1, 0}},
	"noise":    {class: OpGenerator, defaults: []float64{10, 0.1}},
	"shape":    {class: OpGenerator, defaults: []float64{3, 0.3, 0.01}},
	"gradient": {class: OpGenerator, defaults: []float64{0}},
	"solid":    {class: OpGenerator, defaults: []float64{0, 0, 0, 1}},
	"src":      {class: OpGenerator, needsSrc: true},
	// coordinate transforms
	"rotate":   {class: OpCoord, defaults: []float64{10, 0}},
	"scale":    {class: OpCoord, defaults: []float64{1.5, 1, 1}},
	"pixelate": {class: OpCoord, defaults: []float64{20, 20}},
	"repeat":   {class: OpCoord, defaults: []float64{3, 3, 0, 0}},
	"kaleid":   {class: OpCoord, defaults: []float64{4}},
	"scrollX":  {class: OpCoord, defaults: []float64{0.5, 0}},
	"scrollY":  {class: OpCoord, defaults: []float64{0.5, 0}},
	// color transforms
	"color":      {class: OpColor, defaults: []float64{1, 1, 1}},
	"brightness": {class: OpColor, defaults: []float64{0.4}},
	"contrast":   {class: OpColor, defaults: []float64{1.6}},
	"invert":     {class: OpColor, defaults: []float64{1}},
	"saturate":   {class: OpColor, defaults: []float64{2}},
	"posterize":  {class: OpColor, defaults: []float64{3, 0.6}},
	"luma":       {class: OpColor, defaults: []float64{0.5, 0.1}},
	"thresh":     {class: OpColor, defaults: []float64{0.5, 0.04}},
	// combiners
	"add":   {class: OpCombine, needsSrc: true, defaults: []float64{1}},
	"mult":  {class: OpCombine, needsSrc: true, defaults: []float64{1}},
	"blend": {class: OpCombine, needsSrc: true, defaults: []float64{0.5}},
	"diff":  {class: OpCombine, needsSrc: true},
	"layer": {class: OpCombine, needsSrc: true},
	"mask":  {class: OpCombine, needsSrc: true},
	// modulators
	"modulate":       {class: OpModulate, needsSrc: true, defaults: []float64{0.1}},
	"modulateScale":  {class: OpModulate, needsSrc: true, defaults: []float64{1}},
	"modulateRotate": {class: OpModulate, needsSrc: true, defaults: []float64{1}},
}

// Class returns the operation class for a call name. Unknown names are
// rejected during parsing, so callers applying a validated Program can rely
// on every name being present.
func Class(name string) OpClass {
	return ops[name].class
}

// Sink is what a program is applied to. Patch replaces the chain of one
// output; Render selects which output is displayed; DefaultVisual restores
// the built-in idle visual.
type Sink interface {
	Patch(output int, c Chain)
	Render(output int)
	DefaultVisual()
}

// Runner executes segment code against a sink. It is the bridge between the
// segment scheduler and the render graph.
type Runner struct {
	sink Sink
}

func NewRunner(sink Sink) *Runner {
	return &Runner{sink: sink}
}

// Execute parses and applies one segment's code. The whole program is parsed
// and validated before any statement is applied, so on error the sink is
// untouched. An empty or comment-only program is a valid no-op.
func (r *Runner) Execute(code string) error {
	prog, err := Parse(code)
	if err != nil {
		return err
	}
	for _, stmt := range prog {
		switch stmt.Kind {
		case StmtPatch:
			r.sink.Patch(stmt.Target, stmt.Chain)
		case StmtRender:
			r.sink.Render(stmt.Target)
		}
	}
	return nil
}

// DefaultVisual restores the built-in idle visual, used when playback leaves
// the last segment of an empty timeline.
func (r *Runner) DefaultVisual() {
	r.sink.DefaultVisual()
}
