package msbuild

import (
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/slngraph/pkg/solution"
)

// ParseDeclarations returns every class, struct, record, interface and enum
// declared in C# source, nested declarations included, in source order.
//
// Only a lexer runs: comments, preprocessor lines and every literal form
// (regular, verbatim, interpolated, raw and char) are skipped, then
// declaration keywords followed by a name are reported. A keyword that
// follows ':' or ',' is a generic constraint ("where T : class") and is
// ignored.
func ParseDeclarations(src []byte) []solution.Declaration {
	toks := tokenize(src)
	var out []solution.Declaration
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokIdent {
			continue
		}
		kind, ok := declKeywords[t.text]
		if !ok {
			continue
		}
		if i > 0 && (toks[i-1].is(':') || toks[i-1].is(',') || toks[i-1].is('.')) {
			continue
		}
		j := i + 1
		if kind == solution.DeclRecord && j < len(toks) && (toks[j].text == "struct" || toks[j].text == "class") {
			j++
		}
		if j >= len(toks) || toks[j].kind != tokIdent || reserved[toks[j].text] {
			continue
		}
		out = append(out, solution.Declaration{Name: trimVerbatim(toks[j].text), Kind: kind})
		i = j
	}
	return out
}

var declKeywords = map[string]solution.DeclKind{
	"class":     solution.DeclClass,
	"struct":    solution.DeclStruct,
	"record":    solution.DeclRecord,
	"interface": solution.DeclInterface,
	"enum":      solution.DeclEnum,
}

// reserved lists keywords that cannot name a type; "record" is contextual,
// so "record switch" and similar must not count.
var reserved = map[string]bool{
	"class": true, "struct": true, "interface": true, "enum": true,
	"switch": true, "with": true, "where": true, "is": true, "as": true,
	"new": true, "in": true, "out": true, "ref": true, "static": true,
	"public": true, "private": true, "internal": true, "protected": true,
	"readonly": true, "sealed": true, "abstract": true, "partial": true,
	"return": true, "var": true, "this": true, "base": true,
}

func trimVerbatim(s string) string {
	if len(s) > 1 && s[0] == '@' {
		return s[1:]
	}
	return s
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokPunct
	tokLiteral
)

type token struct {
	kind tokKind
	text string
}

func (t token) is(c byte) bool { return t.kind == tokPunct && len(t.text) == 1 && t.text[0] == c }

type lexer struct {
	src       []byte
	pos       int
	lineStart bool
}

func tokenize(src []byte) []token {
	lx := &lexer{src: src, lineStart: true}
	var toks []token
	for {
		t, ok := lx.next()
		if !ok {
			return toks
		}
		toks = append(toks, t)
	}
}

func (lx *lexer) peek(off int) byte {
	if lx.pos+off < len(lx.src) {
		return lx.src[lx.pos+off]
	}
	return 0
}

func (lx *lexer) next() (token, bool) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.pos++
			lx.lineStart = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == '/' && lx.peek(1) == '/':
			lx.skipLine()
		case c == '/' && lx.peek(1) == '*':
			lx.skipBlockComment()
		case c == '#' && lx.lineStart:
			lx.skipLine()
		default:
			lx.lineStart = false
			return lx.lexToken(), true
		}
	}
	return token{}, false
}

func (lx *lexer) lexToken() token {
	c := lx.src[lx.pos]
	switch {
	case c == '"':
		lx.skipString(0, false)
		return token{kind: tokLiteral}
	case c == '\'':
		lx.skipChar()
		return token{kind: tokLiteral}
	case c == '@' && lx.peek(1) == '"':
		lx.pos++
		lx.skipString(0, true)
		return token{kind: tokLiteral}
	case c == '@' && lx.peek(1) == '$', c == '$':
		lx.skipInterpolated()
		return token{kind: tokLiteral}
	case c == '@' && isIdentStart(lx.peekRune(1)):
		start := lx.pos
		lx.pos++
		lx.skipIdent()
		return token{kind: tokIdent, text: string(lx.src[start:lx.pos])}
	case c >= '0' && c <= '9':
		for lx.pos < len(lx.src) && isNumberPart(lx.src[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokLiteral}
	}
	if r := lx.peekRune(0); isIdentStart(r) {
		start := lx.pos
		lx.skipIdent()
		return token{kind: tokIdent, text: string(lx.src[start:lx.pos])}
	}
	_, size := utf8.DecodeRune(lx.src[lx.pos:])
	t := token{kind: tokPunct, text: string(lx.src[lx.pos : lx.pos+size])}
	lx.pos += size
	return t
}

func (lx *lexer) peekRune(off int) rune {
	if lx.pos+off >= len(lx.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(lx.src[lx.pos+off:])
	return r
}

func (lx *lexer) skipIdent() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRune(lx.src[lx.pos:])
		if !isIdentPart(r) {
			return
		}
		lx.pos += size
	}
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

func (lx *lexer) skipBlockComment() {
	lx.pos += 2
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '*' && lx.peek(1) == '/' {
			lx.pos += 2
			return
		}
		lx.pos++
	}
}

func (lx *lexer) skipChar() {
	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
			continue
		case '\'', '\n':
			lx.pos++
			return
		}
		lx.pos++
	}
}

// quoteRun counts consecutive '"' at the current position.
func (lx *lexer) quoteRun() int {
	n := 0
	for lx.pos+n < len(lx.src) && lx.src[lx.pos+n] == '"' {
		n++
	}
	return n
}

// skipString skips a string literal starting at the opening quote.
// dollars is the number of '$' prefixes (0 when not interpolated).
func (lx *lexer) skipString(dollars int, verbatim bool) {
	quotes := lx.quoteRun()
	if quotes >= 3 {
		lx.pos += quotes
		lx.skipRawBody(quotes, dollars)
		return
	}
	if quotes == 2 && !verbatim {
		lx.pos += 2 // ""
		return
	}
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\' && !verbatim:
			lx.pos += 2
		case c == '"' && verbatim && lx.peek(1) == '"':
			lx.pos += 2
		case c == '"':
			lx.pos++
			return
		case c == '\n' && !verbatim:
			return
		case c == '{' && dollars > 0:
			if lx.peek(1) == '{' {
				lx.pos += 2
				continue
			}
			lx.pos++
			lx.skipHole()
		default:
			lx.pos++
		}
	}
}

func (lx *lexer) skipRawBody(quotes, dollars int) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '"' {
			n := lx.quoteRun()
			lx.pos += n
			if n >= quotes {
				return
			}
			continue
		}
		if c == '{' && dollars > 0 {
			n := 0
			for lx.pos+n < len(lx.src) && lx.src[lx.pos+n] == '{' {
				n++
			}
			lx.pos += n
			if n >= dollars {
				lx.skipHole()
			}
			continue
		}
		lx.pos++
	}
}

// skipHole skips an interpolation hole up to its matching '}'. Holes hold
// arbitrary expressions, including nested strings.
func (lx *lexer) skipHole() {
	depth := 1
	for {
		t, ok := lx.next()
		if !ok {
			return
		}
		switch {
		case t.is('{'):
			depth++
		case t.is('}'):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (lx *lexer) skipInterpolated() {
	verbatim := false
	dollars := 0
prefix:
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '@':
			verbatim = true
		case '$':
			dollars++
		default:
			break prefix
		}
		lx.pos++
	}
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '"' {
		return
	}
	lx.skipString(dollars, verbatim)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNumberPart(c byte) bool {
	return c == '.' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
