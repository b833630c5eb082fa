package conductors

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// specLexer defines the lexical structure of conductor spec files.
// Keywords must come before Ident, and the unit-suffixed value literal
// must come before the bare number rules so "0.5A" lexes as one token.
var specLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments, both shell and SQL style
	{Name: "Comment", Pattern: `(?:#|--)[^\n]*`},

	// Whitespace
	{Name: "Whitespace", Pattern: `\s+`},

	// Keywords
	{Name: "KwConductor", Pattern: `\bconductor\b`},
	{Name: "KwValue", Pattern: `\bvalue\b`},
	{Name: "KwNet", Pattern: `\bnet\b`},
	{Name: "KwPadRatio", Pattern: `\bpad-ratio\b`},
	{Name: "KwRegion", Pattern: `\bregion\b`},
	{Name: "KwModule", Pattern: `\bmodule\b`},
	{Name: "KwPads", Pattern: `\bpads\b`},

	// Literals
	{Name: "ValueLit", Pattern: `[-+]?[0-9]+(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?[VvAaIi]\b`},
	{Name: "Float", Pattern: `[-+]?[0-9]+\.[0-9]+(?:[eE][-+]?[0-9]+)?`},
	{Name: "Integer", Pattern: `[-+]?[0-9]+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Punctuation
	{Name: "Equals", Pattern: `=`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},

	// Identifiers (must come after keywords). Hyphens are allowed so
	// component references like "SW-1" stay one token.
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_-]*`},
})
