package components

import (
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/statevar"
)

// Type tags of the catalog.
const (
	TypeDocument           = "document"
	TypeSection            = "section"
	TypeText               = "text"
	TypeNumber             = "number"
	TypeBoolean            = "boolean"
	TypeMath               = "math"
	TypePoint              = "point"
	TypeMatrix             = "matrix"
	TypeFunction           = "function"
	TypeEvaluate           = "evaluate"
	TypeMathInput          = "mathinput"
	TypeTextInput          = "textinput"
	TypeBooleanInput       = "booleaninput"
	TypeMatrixInput        = "matrixinput"
	TypeAnswer             = "answer"
	TypeAward              = "award"
	TypeRepeat             = "repeat"
	TypeSelect             = "select"
	TypeOption             = "option"
	TypeSelectFromSequence = "select_from_sequence"
	TypeCopy               = "copy"
	TypeDisclosure         = "disclosure"
)

// ChildrenVar is the variable through which constructs publish their
// active instances.
const ChildrenVar = "children"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every component type with the registry.
func (m *Module) Register(r *registry.Registry) {
	for _, t := range []*statevar.Type{
		documentType(TypeDocument),
		documentType(TypeSection),
		textType(),
		numberType(),
		booleanType(),
		mathType(),
		pointType(),
		matrixType(),
		functionType(),
		evaluateType(),
		mathInputType(),
		textInputType(),
		booleanInputType(),
		matrixInputType(),
		answerType(),
		awardType(),
		repeatType(),
		selectType(),
		statevar.NewType(TypeOption),
		selectFromSequenceType(),
		copyType(),
		disclosureType(),
	} {
		r.RegisterType(t)
	}
}

// withDefault sets the variable read by a bare reference.
func withDefault(t *statevar.Type, name string) *statevar.Type {
	t.Default = name
	return t
}
