package ast

type Delimiter int

const (
	Curly Delimiter = iota
	Square
)

func (d Delimiter) String() string {
	if d == Square {
		return "square"
	}
	return "curly"
}

// ContentMode tells how the inside of a curly parameter is parsed.
type ContentMode int

const (
	// RawContent keeps the parameter as a single Parameter leaf.
	RawContent ContentMode = iota
	// TextContent parses the parameter as regular document content.
	TextContent
)

func (m ContentMode) String() string {
	if m == TextContent {
		return "text"
	}
	return "raw"
}

// ParameterSpec declares one parameter slot of a command or environment.
type ParameterSpec struct {
	Delimiter Delimiter
	Optional  bool
	Content   ContentMode
}

// Argument is the value of one parameter slot: either a parsed block or
// absent, when an optional parameter was not written.
type Argument struct {
	spec  ParameterSpec
	block Node
}

func PresentArgument(spec ParameterSpec, block Node) Argument {
	return Argument{spec: spec, block: block}
}

func AbsentArgument(spec ParameterSpec) Argument {
	return Argument{spec: spec}
}

func (a Argument) Spec() ParameterSpec {
	return a.spec
}

// Block returns the parsed parameter block and true, or nil and false when
// the argument is absent.
func (a Argument) Block() (Node, bool) {
	return a.block, a.block != nil
}

func (a Argument) IsAbsent() bool {
	return a.block == nil
}

func (a Argument) String() string {
	if a.block == nil {
		return "<absent>"
	}
	return a.block.Snapshot()
}
