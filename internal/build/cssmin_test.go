package build

import (
	"errors"
	"testing"
)

func TestMinifyCSS(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "rule",
			input: "/* header */\nbody {\n  color: red;\n  margin: 0 auto;\n}\n",
			want:  "body{color:red;margin:0 auto}",
		},
		{
			name:  "media query",
			input: "@media (max-width: 600px) {\n  .a > .b, .c { padding: 1px 2px; }\n}\n",
			want:  "@media (max-width:600px){.a>.b,.c{padding:1px 2px}}",
		},
		{
			name:  "descendant selector keeps space",
			input: "nav  ul li { list-style : none }",
			want:  "nav ul li{list-style :none}",
		},
		{
			name:  "strings untouched",
			input: `a::after { content: "  spaced  ;  "; }`,
			want:  `a::after{content:"  spaced  ;  "}`,
		},
		{
			name:  "calc operators keep spaces",
			input: ".x { width: calc(100% - 2px); }",
			want:  ".x{width:calc(100% - 2px)}",
		},
		{
			name:  "duplicate semicolons",
			input: ".y { color: red;; ; }",
			want:  ".y{color:red}",
		},
		{
			name:  "comment inside compound selector",
			input: ".a/**/.b{top:0}",
			want:  ".a.b{top:0}",
		},
		{
			name:  "comment before pseudo-class",
			input: "a/**/:hover{color:red}",
			want:  "a:hover{color:red}",
		},
		{
			name:  "comment next to whitespace keeps descendant",
			input: "a /* x */ b{color:red}",
			want:  "a b{color:red}",
		},
		{
			name:  "comment between dimensions keeps boundary",
			input: ".m{margin:1px/**/2px}",
			want:  ".m{margin:1px 2px}",
		},
		{
			name:  "comment before closing brace",
			input: ".z{color:red;/* end */}",
			want:  ".z{color:red}",
		},
		{
			name:  "empty",
			input: "  \n ",
			want:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MinifyCSS(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("MinifyCSS(%q)\n got: %q\nwant: %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMinifyCSSRejectsUnclosedComment(t *testing.T) {
	_, err := MinifyCSS("a{color:red}/* never closed")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestMinifyCSSIsStable(t *testing.T) {
	input := "@media screen and (min-width: 10px) { .a { color: #fff !important; } }"
	once, err := MinifyCSS(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := MinifyCSS(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Fatalf("minify should be idempotent: %q vs %q", once, twice)
	}
}
