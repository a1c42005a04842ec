package script_test

import (
	"strings"
	"testing"

	"visu"
	"visu/script"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"comment only", "// nothing here\n"},
		{"bare osc", "osc().out()"},
		{"full chain", "osc(10, 0.1, a.fft[0]).rotate(time).out(o0)"},
		{"two statements", "osc(10).out(o0)\nnoise(4).out(o1)"},
		{"semicolons", "osc(10).out(o0); render(o1)"},
		{"feedback", "src(o0).scale(1.01).blend(o1, 0.2).out(o0)"},
		{"media source", "src(s2).kaleid(4).out()"},
		{"arithmetic", "shape(3 + a.fft[1] * 4, 0.3, -0.01).out(o2)"},
		{"parens", "osc((1 + 2) * 20).out()"},
		{"render default", "render()"},
		{"trailing newlines", "render(o3)\n\n\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := script.Parse(test.code); err != nil {
				t.Fatalf("Parse(%q) = %v", test.code, err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		msg  string
	}{
		{"unknown function", "wobble(1).out()", `unknown function "wobble"`},
		{"missing out", "osc(10).rotate(1)", "chain must end in .out"},
		{"bare generator", "osc(10)", "chain must end in .out"},
		{"transform starts chain", "rotate(1).out()", `"rotate" cannot start a chain`},
		{"generator mid-chain", "osc(1).noise(2).out()", `"noise" cannot appear mid-chain`},
		{"too many args", "osc(1, 2, 3, 4).out()", "at most 3 arguments"},
		{"missing source", "osc(1).blend(0.5).out()", "takes a source"},
		{"unexpected source", "osc(o1).out()", "does not take a source"},
		{"source in expression", "osc(1 + o1).out()", "only valid as a source argument"},
		{"out of numbers", "osc(1).out(5)", "out takes an output"},
		{"render of source", "render(s0)", "render takes an output"},
		{"unknown name", "osc(bpm).out()", `unknown name "bpm"`},
		{"unterminated paren", "osc(1", "expected"},
		{"garbage", "osc(1).out() @", "expected"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := script.Parse(test.code)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, expected error", test.code)
			}
			var execErr *script.ExecutionError
			if !asExecutionError(err, &execErr) {
				t.Fatalf("Parse(%q) error is %T, expected *ExecutionError", test.code, err)
			}
			if !strings.Contains(execErr.Message, test.msg) {
				t.Errorf("Parse(%q) error %q does not mention %q", test.code, execErr.Message, test.msg)
			}
			if execErr.Line < 1 || execErr.Col < 1 {
				t.Errorf("Parse(%q) error has no position: %d:%d", test.code, execErr.Line, execErr.Col)
			}
		})
	}
}

func asExecutionError(err error, target **script.ExecutionError) bool {
	e, ok := err.(*script.ExecutionError)
	if ok {
		*target = e
	}
	return ok
}

func TestParseTargets(t *testing.T) {
	prog, err := script.Parse("osc(1).out(o2)\nnoise(1).out()\nrender(o2)\nrender()")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog) != 4 {
		t.Fatalf("got %d statements, expected 4", len(prog))
	}
	want := []struct {
		kind   script.StmtKind
		target int
	}{
		{script.StmtPatch, 2},
		{script.StmtPatch, 0},
		{script.StmtRender, 2},
		{script.StmtRender, 0},
	}
	for i, w := range want {
		if prog[i].Kind != w.kind || prog[i].Target != w.target {
			t.Errorf("statement %d: got kind %v target %d, expected kind %v target %d",
				i, prog[i].Kind, prog[i].Target, w.kind, w.target)
		}
	}
}

func TestParseFillsDefaults(t *testing.T) {
	prog, err := script.Parse("osc(30).out()")
	if err != nil {
		t.Fatal(err)
	}
	args := prog[0].Chain.Source.Args
	if len(args) != 3 {
		t.Fatalf("got %d args, expected 3", len(args))
	}
	env := script.Env{}
	want := []float64{30, 0.1, 0}
	for i, w := range want {
		if got := args[i].Value(env); got != w {
			t.Errorf("arg %d: got %v, expected %v", i, got, w)
		}
	}
}

func TestExprValue(t *testing.T) {
	env := script.Env{
		Time:   2,
		Signal: visu.Signal{Bands: [visu.NumBands]float32{0.5, 0.25, 0, 1}},
	}
	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"-time", -2},
		{"time * 3", 6},
		{"a.fft[0]", 0.5},
		{"a.fft[1] * 4", 1},
		{"a.fft[0] + a.fft[3]", 1.5},
		{"a.fft[9]", 0},  // out of range reads zero
		{"a.fft[-1]", 0}, // likewise below zero
		{"1 / 0", 0},     // never produces Inf
		{"3 / 2", 1.5},
	}
	for _, test := range tests {
		prog, err := script.Parse("solid(" + test.expr + ").out()")
		if err != nil {
			t.Fatalf("Parse(%q) = %v", test.expr, err)
		}
		if got := prog[0].Chain.Source.Args[0].Value(env); got != test.want {
			t.Errorf("%q = %v, expected %v", test.expr, got, test.want)
		}
	}
}

type recordingSink struct {
	patches  map[int]string
	rendered int
	defaults int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{patches: map[int]string{}, rendered: -1}
}

func (r *recordingSink) Patch(output int, c script.Chain) { r.patches[output] = c.Source.Name }
func (r *recordingSink) Render(output int)                { r.rendered = output }
func (r *recordingSink) DefaultVisual()                   { r.defaults++ }

func TestRunnerExecute(t *testing.T) {
	sink := newRecordingSink()
	runner := script.NewRunner(sink)
	err := runner.Execute("osc(10).out(o1)\nnoise(3).out(o0)\nrender(o1)")
	if err != nil {
		t.Fatal(err)
	}
	if sink.patches[1] != "osc" || sink.patches[0] != "noise" {
		t.Errorf("patches = %v, expected osc on o1 and noise on o0", sink.patches)
	}
	if sink.rendered != 1 {
		t.Errorf("rendered = %d, expected 1", sink.rendered)
	}
}

func TestRunnerExecuteAtomic(t *testing.T) {
	sink := newRecordingSink()
	runner := script.NewRunner(sink)
	// the first statement is valid, the second is not; nothing may reach the
	// sink
	err := runner.Execute("osc(10).out(o1)\nwobble(3).out(o0)")
	if err == nil {
		t.Fatal("Execute succeeded, expected error")
	}
	if len(sink.patches) != 0 || sink.rendered != -1 {
		t.Errorf("failed program reached the sink: patches %v, rendered %d", sink.patches, sink.rendered)
	}
}

func TestRunnerEmptyProgram(t *testing.T) {
	sink := newRecordingSink()
	runner := script.NewRunner(sink)
	if err := runner.Execute("  \n// just a comment\n"); err != nil {
		t.Fatalf("empty program: %v", err)
	}
	if len(sink.patches) != 0 || sink.rendered != -1 || sink.defaults != 0 {
		t.Error("empty program had an effect")
	}
}
