package ast

// Kind identifies a node variant.
type Kind int

const (
	KindToken Kind = iota

	KindProgram
	KindBorrow
	KindBlock
	KindBind
	KindFunctionDefinition
	KindStructureDefinition
	KindConversionDefinition
	KindStreamDefinition
	KindTypeVariables
	KindTypeVariable
	KindTypeInputs
	KindEvaluate
	KindBinaryOperation
	KindUnaryOperation
	KindConditional
	KindReference
	KindPropertyReference
	KindNumberLiteral
	KindUnit
	KindTextLiteral
	KindTemplate
	KindBooleanLiteral
	KindNoneLiteral
	KindListLiteral
	KindListAccess
	KindSetLiteral
	KindMapLiteral
	KindKeyValue
	KindSetOrMapAccess
	KindIs
	KindConvert
	KindReaction
	KindChanged
	KindPrevious
	KindThis
	KindInitial
	KindPlaceholder
	KindNativeExpression
	KindUnparsable

	KindNumberType
	KindTextType
	KindBooleanType
	KindNoneType
	KindListType
	KindSetType
	KindMapType
	KindFunctionType
	KindNameType
	KindUnionType
	KindTypePlaceholder
	KindUnparsableType

	// Categories usable in Field.Kinds.
	AnyExpression
	AnyType
	AnyStatement
)

var kindNames = map[Kind]string{
	KindToken:                "Token",
	KindProgram:              "Program",
	KindBorrow:               "Borrow",
	KindBlock:                "Block",
	KindBind:                 "Bind",
	KindFunctionDefinition:   "FunctionDefinition",
	KindStructureDefinition:  "StructureDefinition",
	KindConversionDefinition: "ConversionDefinition",
	KindStreamDefinition:     "StreamDefinition",
	KindTypeVariables:        "TypeVariables",
	KindTypeVariable:         "TypeVariable",
	KindTypeInputs:           "TypeInputs",
	KindEvaluate:             "Evaluate",
	KindBinaryOperation:      "BinaryOperation",
	KindUnaryOperation:       "UnaryOperation",
	KindConditional:          "Conditional",
	KindReference:            "Reference",
	KindPropertyReference:    "PropertyReference",
	KindNumberLiteral:        "NumberLiteral",
	KindUnit:                 "Unit",
	KindTextLiteral:          "TextLiteral",
	KindTemplate:             "Template",
	KindBooleanLiteral:       "BooleanLiteral",
	KindNoneLiteral:          "NoneLiteral",
	KindListLiteral:          "ListLiteral",
	KindListAccess:           "ListAccess",
	KindSetLiteral:           "SetLiteral",
	KindMapLiteral:           "MapLiteral",
	KindKeyValue:             "KeyValue",
	KindSetOrMapAccess:       "SetOrMapAccess",
	KindIs:                   "Is",
	KindConvert:              "Convert",
	KindReaction:             "Reaction",
	KindChanged:              "Changed",
	KindPrevious:             "Previous",
	KindThis:                 "This",
	KindInitial:              "Initial",
	KindPlaceholder:          "Placeholder",
	KindNativeExpression:     "NativeExpression",
	KindUnparsable:           "Unparsable",
	KindNumberType:           "NumberType",
	KindTextType:             "TextType",
	KindBooleanType:          "BooleanType",
	KindNoneType:             "NoneType",
	KindListType:             "ListType",
	KindSetType:              "SetType",
	KindMapType:              "MapType",
	KindFunctionType:         "FunctionType",
	KindNameType:             "NameType",
	KindUnionType:            "UnionType",
	KindTypePlaceholder:      "TypePlaceholder",
	KindUnparsableType:       "UnparsableType",
	AnyExpression:            "Expression",
	AnyType:                  "Type",
	AnyStatement:             "Statement",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind?"
}
