package conductors

// File is the root of a conductor spec file.
type File struct {
	Conductors []*Block `parser:"@@*"`
}

// Block is a single conductor definition.
type Block struct {
	Name   *string  `parser:"KwConductor @String? LBrace"`
	Fields []*Field `parser:"@@* RBrace"`
}

// Field is one assignment inside a conductor block. Exactly one of the
// members is set.
type Field struct {
	Value    *string  `parser:"  KwValue Equals @ValueLit"`
	Net      *string  `parser:"| KwNet Equals @String"`
	PadRatio *float64 `parser:"| KwPadRatio Equals @( Float | Integer )"`
	Region   *Region  `parser:"| KwRegion Equals @@"`
	Module   *Module  `parser:"| KwModule Equals @@"`
}

// Region is an axis-aligned selection rectangle given as two corners.
type Region struct {
	X1 float64 `parser:"LParen @( Float | Integer )"`
	Y1 float64 `parser:"Comma @( Float | Integer )"`
	X2 float64 `parser:"Comma @( Float | Integer )"`
	Y2 float64 `parser:"Comma @( Float | Integer ) RParen"`
}

// Module selects pads of one component by reference. Without a pads
// list every pad of the component is selected.
type Module struct {
	Reference string   `parser:"@Ident"`
	Pads      []string `parser:"( KwPads @( Ident | Integer | String ) ( Comma @( Ident | Integer | String ) )* )?"`
}

// unquote strips the surrounding quotes from a String token.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
