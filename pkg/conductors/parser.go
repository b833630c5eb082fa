// Package conductors parses conductor spec files, the small DSL that
// names the excited pads of a board and the voltage or current applied
// to them.
package conductors

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser parses conductor spec files.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds a conductor spec parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(specLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse reads conductor specs from a reader.
func (p *Parser) Parse(r io.Reader) ([]*Spec, error) {
	file, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return file.specs()
}

// ParseString reads conductor specs from a string.
func (p *Parser) ParseString(input string) ([]*Spec, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return file.specs()
}

// ParseFile reads conductor specs from a file.
func (p *Parser) ParseFile(filename string) ([]*Spec, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}
