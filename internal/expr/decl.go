package expr

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

// DeclareLocal reserves a raw, uninitialized stack slot for a variable
// and binds its name
func (x *Lowerer) DeclareLocal(v *ast.VarDecl) *ir.Value {
	ty := Types{}.Lower(v.Type)
	slot := x.B.CreateAlloca(ty, v.Name)
	x.decls[v] = slot
	x.locals[v.Name] = slot
	return slot
}

// BindLocal rebinds a declared variable to another address; foreach uses
// this to point a ref binding at the indexed element
func (x *Lowerer) BindLocal(v *ast.VarDecl, addr *ir.Value) {
	x.decls[v] = addr
	x.locals[v.Name] = addr
}

// BindParam introduces a function parameter: a slot holding the
// incoming value
func (x *Lowerer) BindParam(name string, ty ast.Type, incoming *ir.Value) {
	slot := x.B.CreateAlloca(Types{}.Lower(ty), name)
	x.B.CreateStore(incoming, slot)
	x.locals[name] = slot
}

// Assign stores a value into a slot, bit-casting when the declared type
// differs
func (x *Lowerer) Assign(slot, val *ir.Value) {
	if pt, ok := slot.Type.(*ir.PointerType); ok && !ir.SameType(pt.Elem, val.Type) {
		if _, isInt := pt.Elem.(*ir.IntType); isInt {
			val = x.CastTo(val, pt.Elem)
		} else {
			val = x.B.CreateBitcast(val, pt.Elem, "assigncast")
		}
	}
	x.B.CreateStore(val, slot)
}

// Copy copy-assigns the value at src into dst, both addresses
func (x *Lowerer) Copy(dst, src *ir.Value) {
	v := x.B.CreateLoad(src, "copyval")
	x.B.CreateStore(v, dst)
}
