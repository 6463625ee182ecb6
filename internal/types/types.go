// Package types defines the closed type lattice shared by the type
// checker, tree interpreter, and bytecode backends.
package types

import "github.com/wuu-lang/wuu/internal/ast"

// Type is a nominal type identified by a dotted path, plus the
// distinguished Unit. Equality is structural equality of Path (or both
// being Unit).
type Type struct {
	Unit bool
	Path string // dotted path, e.g. "Int", "Bool", "String", or a user type
}

var (
	Int    = Type{Path: "Int"}
	Bool   = Type{Path: "Bool"}
	String = Type{Path: "String"}
	UnitT  = Type{Unit: true}
)

// Equal reports structural equality.
func (t Type) Equal(other Type) bool {
	if t.Unit || other.Unit {
		return t.Unit == other.Unit
	}
	return t.Path == other.Path
}

func (t Type) String() string {
	if t.Unit {
		return "Unit"
	}
	return t.Path
}

// FromTypeRef converts a parsed TypeRef into a Type.
func FromTypeRef(ref *ast.TypeRef) Type {
	if ref == nil {
		return UnitT
	}
	path := ref.Path.String()
	switch path {
	case "Unit":
		return UnitT
	case "Int", "Bool", "String":
		return Type{Path: path}
	default:
		return Type{Path: path}
	}
}

// Signature is a (paramTypes, returnType) pair attached to every
// user function/workflow and to every intrinsic.
type Signature struct {
	Params []Type
	Return Type
}
