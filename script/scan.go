package script

import "strings"

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokIdent
	tokNumber
	tokDot
	tokComma
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokInvalid
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

// scan tokenizes a program. Statement separators are newlines and semicolons,
// both emitted as tokNewline; // comments run to the end of the line. The
// scanner never fails: an unrecognized byte becomes a tokInvalid token and is
// rejected by the parser with its position.
func scan(code string) []token {
	var toks []token
	line, col := 1, 1
	emit := func(kind tokKind, text string) {
		toks = append(toks, token{kind: kind, text: text, line: line, col: col})
	}
	for i := 0; i < len(code); {
		c := code[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
			col++
		case c == '\n' || c == ';':
			emit(tokNewline, "")
			i++
			if c == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			for i < len(code) && code[i] != '\n' {
				i++
				col++
			}
		case isIdentStart(c):
			j := i
			for j < len(code) && isIdentPart(code[j]) {
				j++
			}
			emit(tokIdent, code[i:j])
			col += j - i
			i = j
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(code) && code[i+1] >= '0' && code[i+1] <= '9':
			j := i
			for j < len(code) && (code[j] >= '0' && code[j] <= '9' || code[j] == '.') {
				j++
			}
			// a trailing dot belongs to the chain, not the number: "osc(10).out"
			if code[j-1] == '.' {
				j--
			}
			emit(tokNumber, code[i:j])
			col += j - i
			i = j
		default:
			kind, ok := punct[c]
			if !ok {
				kind = tokInvalid
			}
			emit(kind, string(c))
			i++
			col++
		}
	}
	emit(tokEOF, "")
	return toks
}

var punct = map[byte]tokKind{
	'.': tokDot,
	',': tokComma,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// sourceRef recognizes the o0..o3 and s0..s3 names.
func sourceRef(ident string) (SourceRef, bool) {
	if len(ident) != 2 || !strings.ContainsRune("os", rune(ident[0])) {
		return SourceRef{}, false
	}
	index := int(ident[1] - '0')
	if index < 0 || index >= NumOutputs {
		return SourceRef{}, false
	}
	kind := SourceOutput
	if ident[0] == 's' {
		kind = SourceMedia
	}
	return SourceRef{Kind: kind, Index: index}, true
}
