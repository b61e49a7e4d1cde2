package ast

type Kind int

const (
	KindDocument Kind = iota
	KindText
	KindWhitespace
	KindComment
	KindSpecialSymbol
	KindInlineMath
	KindDisplayMath
	KindMath
	KindBlock
	KindCommand
	KindEnvironment
	KindCurlyParameterBlock
	KindSquareParameterBlock
	KindParameter
	KindParameterKey
	KindParameterValue
	KindParameterAssignment
	KindParameterList
)

var kindNames = map[Kind]string{
	KindDocument:             "Document",
	KindText:                 "Text",
	KindWhitespace:           "Whitespace",
	KindComment:              "Comment",
	KindSpecialSymbol:        "SpecialSymbol",
	KindInlineMath:           "InlineMath",
	KindDisplayMath:          "DisplayMath",
	KindMath:                 "Math",
	KindBlock:                "Block",
	KindCommand:              "Command",
	KindEnvironment:          "Environment",
	KindCurlyParameterBlock:  "CurlyParameterBlock",
	KindSquareParameterBlock: "SquareParameterBlock",
	KindParameter:            "Parameter",
	KindParameterKey:         "ParameterKey",
	KindParameterValue:       "ParameterValue",
	KindParameterAssignment:  "ParameterAssignment",
	KindParameterList:        "ParameterList",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
