package script

import (
	"fmt"
	"strconv"
)

// Parse compiles a program into its validated form. All errors are
// *ExecutionError with the position of the offending token; a non-nil
// Program is fully applicable.
func Parse(code string) (Program, error) {
	p := &parser{toks: scan(code)}
	var prog Program
	for {
		for p.peek().kind == tokNewline {
			p.next()
		}
		if p.peek().kind == tokEOF {
			return prog, nil
		}
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		prog = append(prog, stmt)
		if t := p.peek(); t.kind != tokNewline && t.kind != tokEOF {
			return nil, p.errorf(t, "expected end of statement, got %s", describe(t))
		}
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, got %s", what, describe(t))
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &ExecutionError{Message: fmt.Sprintf(format, args...), Line: t.line, Col: t.col}
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of program"
	case tokNewline:
		return "end of statement"
	case tokIdent, tokNumber:
		return fmt.Sprintf("%q", t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

// stmt parses either render(oN) or a chain terminated by .out(oN).
func (p *parser) stmt() (Stmt, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return Stmt{}, p.errorf(t, "expected a statement, got %s", describe(t))
	}
	if t.text == "render" {
		return p.renderStmt()
	}
	return p.chainStmt()
}

// renderStmt parses render(oN); with no argument output 0 is selected.
func (p *parser) renderStmt() (Stmt, error) {
	p.next() // the render ident
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return Stmt{}, err
	}
	target := 0
	if p.peek().kind != tokRParen {
		t, err := p.expect(tokIdent, "an output name")
		if err != nil {
			return Stmt{}, err
		}
		ref, ok := sourceRef(t.text)
		if !ok || ref.Kind != SourceOutput {
			return Stmt{}, p.errorf(t, "render takes an output o0..o%d", NumOutputs-1)
		}
		target = ref.Index
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return Stmt{}, err
	}
	return Stmt{Kind: StmtRender, Target: target}, nil
}

func (p *parser) chainStmt() (Stmt, error) {
	first := p.peek()
	source, err := p.call()
	if err != nil {
		return Stmt{}, err
	}
	if spec, known := ops[source.Name]; !known {
		return Stmt{}, p.errorf(first, "unknown function %q", source.Name)
	} else if spec.class != OpGenerator {
		return Stmt{}, p.errorf(first, "%q cannot start a chain", source.Name)
	}
	chain := Chain{Source: source}
	for {
		if t := p.peek(); t.kind != tokDot {
			return Stmt{}, p.errorf(t, "chain must end in .out(...)")
		}
		p.next()
		at := p.peek()
		call, err := p.call()
		if err != nil {
			return Stmt{}, err
		}
		if call.Name == "out" {
			target, err := p.outTarget(at, call)
			if err != nil {
				return Stmt{}, err
			}
			return Stmt{Kind: StmtPatch, Chain: chain, Target: target}, nil
		}
		spec, known := ops[call.Name]
		if !known {
			return Stmt{}, p.errorf(at, "unknown function %q", call.Name)
		}
		if spec.class == OpGenerator {
			return Stmt{}, p.errorf(at, "%q cannot appear mid-chain", call.Name)
		}
		chain.Ops = append(chain.Ops, call)
	}
}

// outTarget resolves the .out terminator to an output index; a bare .out()
// patches o0.
func (p *parser) outTarget(at token, call Call) (int, error) {
	if len(call.Args) > 0 {
		return 0, p.errorf(at, "out takes an output o0..o%d", NumOutputs-1)
	}
	if call.Src.Kind == SourceNone {
		return 0, nil
	}
	if call.Src.Kind != SourceOutput {
		return 0, p.errorf(at, "out takes an output o0..o%d", NumOutputs-1)
	}
	return call.Src.Index, nil
}

// call parses ident(arg, ...). A leading o/s name becomes the source ref;
// everything else is parsed as a scalar expression. Argument counts are
// checked against the operation table and omitted trailing arguments filled
// with the defaults, except for out, whose pseudo-signature is resolved by
// the caller.
func (p *parser) call() (Call, error) {
	name, err := p.expect(tokIdent, "a function name")
	if err != nil {
		return Call{}, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return Call{}, err
	}
	call := Call{Name: name.text}
	for p.peek().kind != tokRParen {
		if len(call.Args) > 0 || call.Src.Kind != SourceNone {
			if _, err := p.expect(tokComma, `","`); err != nil {
				return Call{}, err
			}
		}
		t := p.peek()
		if ref, ok := p.trySourceRef(); ok {
			if call.Src.Kind != SourceNone || len(call.Args) > 0 {
				return Call{}, p.errorf(t, "%s is only valid as the first argument", ref)
			}
			call.Src = ref
			continue
		}
		arg, err := p.expr()
		if err != nil {
			return Call{}, err
		}
		call.Args = append(call.Args, arg)
	}
	p.next() // the closing paren
	if name.text == "out" {
		return call, nil
	}
	spec, known := ops[name.text]
	if !known {
		// reported by the caller with the chain position context
		return call, nil
	}
	if spec.needsSrc && call.Src.Kind == SourceNone {
		return Call{}, p.errorf(name, "%s takes a source o0..o%d or s0..s%d as its first argument",
			name.text, NumOutputs-1, NumSources-1)
	}
	if !spec.needsSrc && call.Src.Kind != SourceNone {
		return Call{}, p.errorf(name, "%s does not take a source argument", name.text)
	}
	if len(call.Args) > len(spec.defaults) {
		return Call{}, p.errorf(name, "%s takes at most %d arguments", name.text, len(spec.defaults))
	}
	for i := len(call.Args); i < len(spec.defaults); i++ {
		call.Args = append(call.Args, Num(spec.defaults[i]))
	}
	return call, nil
}

// trySourceRef consumes an o/s name only when it stands alone as an
// argument, i.e. is directly followed by a comma or closing paren.
func (p *parser) trySourceRef() (SourceRef, bool) {
	t := p.peek()
	if t.kind != tokIdent {
		return SourceRef{}, false
	}
	ref, ok := sourceRef(t.text)
	if !ok {
		return SourceRef{}, false
	}
	if k := p.toks[p.pos+1].kind; k != tokComma && k != tokRParen {
		return SourceRef{}, false
	}
	p.next()
	return ref, true
}

// expr parses an additive expression.
func (p *parser) expr() (Expr, error) {
	lhs, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch p.peek().kind {
		case tokPlus:
			op = '+'
		case tokMinus:
			op = '-'
		default:
			return lhs, nil
		}
		p.next()
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		lhs = binExpr{op: op, lhs: lhs, rhs: rhs}
	}
}

func (p *parser) term() (Expr, error) {
	lhs, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch p.peek().kind {
		case tokStar:
			op = '*'
		case tokSlash:
			op = '/'
		default:
			return lhs, nil
		}
		p.next()
		rhs, err := p.factor()
		if err != nil {
			return nil, err
		}
		lhs = binExpr{op: op, lhs: lhs, rhs: rhs}
	}
}

func (p *parser) factor() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return Num(f), nil
	case tokMinus:
		e, err := p.factor()
		if err != nil {
			return nil, err
		}
		return negExpr{expr: e}, nil
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return e, nil
	case tokIdent:
		switch t.text {
		case "time":
			return timeExpr{}, nil
		case "a":
			return p.bandRef(t)
		}
		if _, ok := sourceRef(t.text); ok {
			return nil, p.errorf(t, "%s is only valid as a source argument", t.text)
		}
		return nil, p.errorf(t, "unknown name %q in expression", t.text)
	}
	return nil, p.errorf(t, "expected an expression, got %s", describe(t))
}

// bandRef parses the a.fft[index] band accessor, the a ident already
// consumed.
func (p *parser) bandRef(at token) (Expr, error) {
	if _, err := p.expect(tokDot, `"."`); err != nil {
		return nil, err
	}
	field, err := p.expect(tokIdent, `"fft"`)
	if err != nil {
		return nil, err
	}
	if field.text != "fft" {
		return nil, p.errorf(field, "unknown field a.%s", field.text)
	}
	if _, err := p.expect(tokLBracket, `"["`); err != nil {
		return nil, err
	}
	index, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBracket, `"]"`); err != nil {
		return nil, err
	}
	return bandExpr{index: index}, nil
}
