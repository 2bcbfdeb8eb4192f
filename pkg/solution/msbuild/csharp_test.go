package msbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/slngraph/pkg/solution"
)

func decl(name string, kind solution.DeclKind) solution.Declaration {
	return solution.Declaration{Name: name, Kind: kind}
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []solution.Declaration
	}{
		{
			name: "nested classes",
			src: `namespace Shop {
	public class Order {
		private sealed class Line { }
		internal struct Money { }
	}
}`,
			want: []solution.Declaration{
				decl("Order", solution.DeclClass),
				decl("Line", solution.DeclClass),
				decl("Money", solution.DeclStruct),
			},
		},
		{
			name: "all kinds",
			src: `interface IRepo {}
enum Color { Red }
record Person(string Name);
public record struct Point(int X, int Y);
readonly record class Tag;
ref struct Span2 {}`,
			want: []solution.Declaration{
				decl("IRepo", solution.DeclInterface),
				decl("Color", solution.DeclEnum),
				decl("Person", solution.DeclRecord),
				decl("Point", solution.DeclRecord),
				decl("Tag", solution.DeclRecord),
				decl("Span2", solution.DeclStruct),
			},
		},
		{
			name: "generic constraints",
			src: `class Box<T> where T : class, new() { }
class Pair<A, B> where A : struct where B : notnull, class { }`,
			want: []solution.Declaration{
				decl("Box", solution.DeclClass),
				decl("Pair", solution.DeclClass),
			},
		},
		{
			name: "comments and strings",
			src: `// class NotMe {}
/* struct NorMe {} */
#if DEBUG // class Directive
var s = "class Fake {}";
var v = @"class ""Verbatim"" {}";
var c = '"';
var r = """
    class Raw {}
    """;
class Real {}`,
			want: []solution.Declaration{decl("Real", solution.DeclClass)},
		},
		{
			name: "interpolated",
			src: `var a = $"class {name} is {(ok ? "class X" : "y")} {{class Y}}";
var b = $$"""class {{value}} {not a hole}""";
class After {}`,
			want: []solution.Declaration{decl("After", solution.DeclClass)},
		},
		{
			name: "record as identifier",
			src: `var record = Load();
return record switch { _ => 1 };
class Holder { Record record; }`,
			want: []solution.Declaration{decl("Holder", solution.DeclClass)},
		},
		{
			name: "verbatim identifier",
			src:  `class @event {} var @class = 1;`,
			want: []solution.Declaration{decl("event", solution.DeclClass)},
		},
		{
			name: "unterminated comment",
			src:  "class Ok {}\n/* class Lost",
			want: []solution.Declaration{decl("Ok", solution.DeclClass)},
		},
		{
			name: "empty",
			src:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDeclarations([]byte(tt.src))
			assert.Equal(t, tt.want, got)
		})
	}
}
