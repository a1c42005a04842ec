// Package render implements the persistent render graph that segment code
// drives. The graph has four chainable outputs (o0..o3) and four external
// media sources (s0..s3); each output holds the chain last patched into it
// and the frame it last rendered. Nothing ever resets implicitly: patching a
// new chain does not clear the previous frames, so chains that read their own
// output keep feeding back across segment boundaries and through gaps in the
// timeline.
package render

import (
	"sync"

	"github.com/viterin/vek/vek32"

	"visu"
	"visu/script"
)

const (
	NumOutputs = script.NumOutputs
	NumSources = script.NumSources

	// DefaultSize is the side length of the offscreen frames. The graph
	// renders on the CPU at preview resolution; a front end is expected to
	// upscale.
	DefaultSize = 64
)

// Graph is the render state of a session. It implements script.Sink, so a
// script.Runner patches straight into it. All methods are safe to call from
// one goroutine at a time; Step advances the graph by one frame.
type Graph struct {
	mu       sync.Mutex
	chains   [NumOutputs]*script.Chain
	frames   [NumOutputs]*Frame
	sources  [NumSources]*Frame
	rendered int

	w, h    int
	scratch []float32
	pool    sync.Pool
}

// defaultProgram is the idle visual: what an empty timeline shows.
var defaultProgram = func() script.Program {
	p, err := script.Parse("osc(6, 0.05, 0.8).out(o0)\nrender(o0)")
	if err != nil {
		panic(err)
	}
	return p
}()

func NewGraph(w, h int) *Graph {
	g := &Graph{w: w, h: h, scratch: make([]float32, w*h*4)}
	g.pool.New = func() any { return NewFrame(w, h) }
	for i := range g.frames {
		g.frames[i] = NewFrame(w, h)
	}
	for i := range g.sources {
		g.sources[i] = NewFrame(w, h)
		g.sources[i].Fill(0.5, 0.5, 0.5, 1)
	}
	return g
}

// Patch replaces the chain of one output. The output's previous frame is
// kept; the new chain takes effect on the next Step.
func (g *Graph) Patch(output int, c script.Chain) {
	if output < 0 || output >= NumOutputs {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chains[output] = &c
}

// Render selects which output the front end displays.
func (g *Graph) Render(output int) {
	if output < 0 || output >= NumOutputs {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rendered = output
}

// DefaultVisual patches the built-in idle program. Previously rendered frames
// are, as always, left in place.
func (g *Graph) DefaultVisual() {
	for _, stmt := range defaultProgram {
		switch stmt.Kind {
		case script.StmtPatch:
			g.Patch(stmt.Target, stmt.Chain)
		case script.StmtRender:
			g.Render(stmt.Target)
		}
	}
}

// SetSource replaces one external media source with a frame, e.g. a decoded
// video frame or still image. The frame is copied.
func (g *Graph) SetSource(index int, f *Frame) {
	if index < 0 || index >= NumSources {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sources[index] = f.Clone()
}

// Step renders every patched output once for playback time t and analysis
// snapshot sig. Source reads (src, blend, modulate...) see the frames of the
// previous step, so outputs referencing each other stay order-independent
// within a step.
func (g *Graph) Step(t float64, sig visu.Signal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	env := script.Env{Time: t, Signal: sig}
	var next [NumOutputs]*Frame
	for i, chain := range g.chains {
		if chain == nil {
			next[i] = g.frames[i]
			continue
		}
		next[i] = g.renderChain(chain, env)
	}
	for i, f := range g.frames {
		if next[i] != f {
			g.pool.Put(f)
		}
	}
	g.frames = next
}

// Output returns the frame of the displayed output. The frame is owned by
// the graph and valid until the next Step.
func (g *Graph) Output() *Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames[g.rendered]
}

// Frame returns the last rendered frame of one output.
func (g *Graph) Frame(output int) *Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	if output < 0 || output >= NumOutputs {
		return nil
	}
	return g.frames[output]
}

// Rendered returns the index of the displayed output.
func (g *Graph) Rendered() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rendered
}

func (g *Graph) getFrame() *Frame {
	return g.pool.Get().(*Frame)
}

// renderChain evaluates one chain into a fresh frame. Arguments are
// evaluated once per frame, not per pixel, matching how a live-coded patch
// is expected to react to time and the analysis bands.
func (g *Graph) renderChain(c *script.Chain, env script.Env) *Frame {
	cur := g.generate(c.Source, env)
	for _, op := range c.Ops {
		argv := evalArgs(op.Args, env)
		switch script.Class(op.Name) {
		case script.OpCoord:
			dst := g.getFrame()
			coordOp(dst, cur, op.Name, argv, env.Time)
			g.pool.Put(cur)
			cur = dst
		case script.OpColor:
			colorOp(cur, op.Name, argv)
		case script.OpCombine:
			combineOp(cur, g.sourceFrame(op.Src), op.Name, argv, g.scratch)
		case script.OpModulate:
			dst := g.getFrame()
			modulateOp(dst, cur, g.sourceFrame(op.Src), op.Name, argv)
			g.pool.Put(cur)
			cur = dst
		}
	}
	cur.clamp()
	return cur
}

func (g *Graph) generate(call script.Call, env script.Env) *Frame {
	if call.Name == "src" {
		return g.sourceFrame(call.Src).Clone()
	}
	dst := g.getFrame()
	generatorOp(dst, call.Name, evalArgs(call.Args, env), env.Time)
	return dst
}

// sourceFrame resolves a source ref against the previous step's frames.
func (g *Graph) sourceFrame(ref script.SourceRef) *Frame {
	if ref.Kind == script.SourceMedia {
		return g.sources[ref.Index]
	}
	return g.frames[ref.Index]
}

func evalArgs(args []script.Expr, env script.Env) []float32 {
	ret := make([]float32, len(args))
	for i, a := range args {
		ret[i] = float32(a.Value(env))
	}
	return ret
}

// combineOp merges a source frame into dst. These are whole-frame blends, so
// they vectorize cleanly.
func combineOp(dst, src *Frame, name string, argv []float32, scratch []float32) {
	switch name {
	case "add":
		tmp := vek32.MulNumber_Into(scratch, src.Pix, argv[0])
		vek32.Add_Inplace(dst.Pix, tmp)
	case "mult":
		tmp := vek32.Mul_Into(scratch, dst.Pix, src.Pix)
		vek32.MulNumber_Inplace(dst.Pix, 1-argv[0])
		vek32.MulNumber_Inplace(tmp, argv[0])
		vek32.Add_Inplace(dst.Pix, tmp)
	case "blend":
		tmp := vek32.MulNumber_Into(scratch, src.Pix, argv[0])
		vek32.MulNumber_Inplace(dst.Pix, 1-argv[0])
		vek32.Add_Inplace(dst.Pix, tmp)
	case "diff":
		vek32.Sub_Inplace(dst.Pix, src.Pix)
		vek32.Abs_Inplace(dst.Pix)
	case "layer":
		for i := 0; i < len(dst.Pix); i += 4 {
			sa := src.Pix[i+3]
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = src.Pix[i+c]*sa + dst.Pix[i+c]*(1-sa)
			}
			if sa > dst.Pix[i+3] {
				dst.Pix[i+3] = sa
			}
		}
	case "mask":
		for i := 0; i < len(dst.Pix); i += 4 {
			m := luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			dst.Pix[i] *= m
			dst.Pix[i+1] *= m
			dst.Pix[i+2] *= m
			dst.Pix[i+3] *= m
		}
	}
}
