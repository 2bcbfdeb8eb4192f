package cargo

import (
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/slngraph/pkg/solution"
)

var rustDecls = map[string]solution.DeclKind{
	"struct": solution.DeclStruct,
	"enum":   solution.DeclEnum,
	"trait":  solution.DeclTrait,
	"union":  solution.DeclUnion,
}

// ParseDeclarations returns the structs, enums, traits and unions declared
// in Rust source, in source order. Comments (nested block comments
// included), string, raw string, byte string and char literals are
// skipped; lifetimes are not mistaken for chars.
func ParseDeclarations(src []byte) []solution.Declaration {
	var (
		out     []solution.Declaration
		pending solution.DeclKind
	)
	emit := func(word string) {
		if pending != "" {
			if _, kw := rustDecls[word]; !kw {
				out = append(out, solution.Declaration{Name: word, Kind: pending})
			}
			pending = ""
		}
		if k, ok := rustDecls[word]; ok {
			pending = k
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = skipBlockComment(src, i)
		case c == '"':
			i = skipString(src, i+1)
			pending = ""
		case (c == 'r' || c == 'b') && rawStart(src, i) > 0:
			i = skipRaw(src, rawStart(src, i))
			pending = ""
		case c == 'b' && i+1 < len(src) && src[i+1] == '"':
			i = skipString(src, i+2)
			pending = ""
		case c == '\'':
			i = skipCharOrLifetime(src, i)
		default:
			r, size := utf8.DecodeRune(src[i:])
			if r == '_' || unicode.IsLetter(r) {
				start := i
				for i < len(src) {
					r, size := utf8.DecodeRune(src[i:])
					if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
						break
					}
					i += size
				}
				emit(string(src[start:i]))
				continue
			}
			if !unicode.IsSpace(r) {
				pending = ""
			}
			i += size
		}
	}
	return out
}

func skipBlockComment(src []byte, i int) int {
	depth := 0
	for i < len(src) {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			depth++
			i += 2
		case src[i] == '*' && i+1 < len(src) && src[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return i
}

func skipString(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

// rawStart returns the index just past the opening quote of a raw string
// (r"..", r#".."#, br#".."#) starting at i, or 0 if there is none.
func rawStart(src []byte, i int) int {
	if i > 0 && isIdentByte(src[i-1]) {
		return 0
	}
	j := i
	if src[j] == 'b' {
		j++
	}
	if j >= len(src) || src[j] != 'r' {
		return 0
	}
	j++
	for j < len(src) && src[j] == '#' {
		j++
	}
	if j >= len(src) || src[j] != '"' {
		return 0
	}
	return j + 1
}

// skipRaw skips a raw string body; start is the index past the opening
// quote. The closing delimiter is a quote followed by as many hashes as
// precede the opening quote.
func skipRaw(src []byte, start int) int {
	hashes := 0
	for k := start - 2; k >= 0 && src[k] == '#'; k-- {
		hashes++
	}
	for i := start; i < len(src); i++ {
		if src[i] != '"' {
			continue
		}
		n := 0
		for i+1+n < len(src) && n < hashes && src[i+1+n] == '#' {
			n++
		}
		if n == hashes {
			return i + 1 + n
		}
	}
	return len(src)
}

func skipCharOrLifetime(src []byte, i int) int {
	// '\n', '\'', '\u{1F600}'
	if i+1 < len(src) && src[i+1] == '\\' {
		j := i + 3
		for j < len(src) && src[j] != '\'' && src[j] != '\n' {
			j++
		}
		return j + 1
	}
	// 'x' is a char; 'a without a closing quote is a lifetime.
	if i+1 < len(src) {
		_, size := utf8.DecodeRune(src[i+1:])
		if i+1+size < len(src) && src[i+1+size] == '\'' {
			return i + 2 + size
		}
	}
	return i + 1
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
