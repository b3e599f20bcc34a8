package expr

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

// Types is the type collaborator: surface type → IR type
type Types struct{}

// Lower maps a surface type to its IR form
func (Types) Lower(t ast.Type) ir.Type {
	switch ty := t.(type) {
	case *ast.PrimType:
		switch ty.Kind {
		case ast.Void:
			return ir.Void
		case ast.Bool:
			return ir.I1
		case ast.I8:
			return ir.I8
		case ast.I16:
			return ir.I16
		case ast.I32:
			return ir.I32
		case ast.I64:
			return ir.I64
		case ast.U8:
			return ir.U8
		case ast.U16:
			return ir.U16
		case ast.U32:
			return ir.U32
		case ast.U64:
			return ir.U64
		}
	case *ast.ArrayType:
		return &ir.SliceType{Elem: Types{}.Lower(ty.Elem)}
	case *ast.PointerType:
		return &ir.PointerType{Elem: Types{}.Lower(ty.Elem)}
	case *ast.StringType:
		switch ty.Width {
		case 2:
			return &ir.SliceType{Elem: ir.U16}
		case 4:
			return &ir.SliceType{Elem: ir.U32}
		}
		return &ir.SliceType{Elem: ir.U8}
	case *ast.StructType:
		fields := make([]ir.Type, len(ty.Fields))
		for i, f := range ty.Fields {
			fields[i] = Types{}.Lower(f)
		}
		return &ir.StructType{Name: ty.Name, Fields: fields}
	case *ast.ObjectType:
		return &ir.PointerType{Elem: ir.I8}
	}
	panic("expr: unknown surface type")
}

// SizeT is the target's pointer-width unsigned integer
func (Types) SizeT() *ir.IntType { return ir.SizeT }

// BitSize returns the bit width of an integer type
func (Types) BitSize(t ir.Type) int { return ir.BitSize(t) }

// lowerInt maps a surface type that must be an integer
func lowerInt(t ast.Type) *ir.IntType {
	it, ok := Types{}.Lower(t).(*ir.IntType)
	if !ok {
		panic("expr: integer type expected")
	}
	return it
}
