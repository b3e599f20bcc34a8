package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/ast"
	"sable/internal/ir"
)

func newTestLowerer() (*Lowerer, *ir.Builder) {
	m := ir.NewModule("test")
	fn := m.NewFunc("f", &ir.FuncType{Ret: ir.Void, Params: nil})
	b := ir.NewBuilder(fn)
	return NewLowerer(b), b
}

func TestLowerIntLiteral(t *testing.T) {
	x, _ := newTestLowerer()
	v, err := x.Lower(&ast.IntLit{Value: 42})
	require.NoError(t, err)
	assert.True(t, v.IsConst())
	assert.Equal(t, 32, ir.BitSize(v.Type))
}

func TestLowerIdentLoadsSlot(t *testing.T) {
	x, b := newTestLowerer()
	x.DeclareLocal(&ast.VarDecl{Name: "n", Type: &ast.PrimType{Kind: ast.I64}})

	v, err := x.Lower(&ast.Ident{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, 64, ir.BitSize(v.Type))

	// alloca + load in the entry block
	entry := b.Fn.Blocks[0]
	require.Len(t, entry.Instrs, 2)
	assert.IsType(t, &ir.Alloca{}, entry.Instrs[0])
	assert.IsType(t, &ir.Load{}, entry.Instrs[1])
}

func TestLowerUndefinedIdent(t *testing.T) {
	x, _ := newTestLowerer()
	_, err := x.Lower(&ast.Ident{Name: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func TestLowerComparisonSignedness(t *testing.T) {
	x, _ := newTestLowerer()
	x.DeclareLocal(&ast.VarDecl{Name: "s", Type: &ast.PrimType{Kind: ast.I32}})
	x.DeclareLocal(&ast.VarDecl{Name: "u", Type: &ast.PrimType{Kind: ast.U32}})

	v, err := x.Lower(&ast.BinaryExpr{Op: "<", X: &ast.Ident{Name: "s"}, Y: &ast.IntLit{Value: 1}})
	require.NoError(t, err)
	cmp := v.Def.(*ir.ICmp)
	assert.Equal(t, ir.SLT, cmp.Pred)

	v2, err := x.Lower(&ast.BinaryExpr{Op: "<", X: &ast.Ident{Name: "u"}, Y: &ast.IntLit{Value: 1}})
	require.NoError(t, err)
	cmp2 := v2.Def.(*ir.ICmp)
	assert.Equal(t, ir.ULT, cmp2.Pred)
}

func TestCastToBool(t *testing.T) {
	x, _ := newTestLowerer()

	// i1 passes through untouched
	b1 := ir.ConstBool(true)
	assert.Equal(t, b1, x.CastToBool(b1))

	// wider integers compare against zero
	v := x.CastToBool(ir.ConstInt(ir.I32, 5))
	assert.Equal(t, 1, ir.BitSize(v.Type))
}

func TestCastToWidths(t *testing.T) {
	x, _ := newTestLowerer()
	x.DeclareLocal(&ast.VarDecl{Name: "n", Type: &ast.PrimType{Kind: ast.I32}})
	n, err := x.Lower(&ast.Ident{Name: "n"})
	require.NoError(t, err)

	wide := x.CastTo(n, ir.I64)
	assert.Equal(t, 64, ir.BitSize(wide.Type))
	assert.Equal(t, ir.ZExt, wide.Def.(*ir.Cast).Op)

	narrow := x.CastTo(n, ir.I16)
	assert.Equal(t, ir.Trunc, narrow.Def.(*ir.Cast).Op)
}

func TestArrayLenAndPtr(t *testing.T) {
	x, _ := newTestLowerer()
	x.DeclareLocal(&ast.VarDecl{Name: "arr", Type: &ast.ArrayType{Elem: &ast.PrimType{Kind: ast.I32}}})
	arr, err := x.Lower(&ast.Ident{Name: "arr"})
	require.NoError(t, err)

	length := x.ArrayLen(arr)
	assert.Equal(t, ir.SizeT, length.Type)

	ptr := x.ArrayPtr(arr)
	_, ok := ptr.Type.(*ir.PointerType)
	assert.True(t, ok)
}

func TestLowerConstFoldsNegation(t *testing.T) {
	x, _ := newTestLowerer()
	c, err := x.LowerConst(&ast.UnaryExpr{Op: "-", X: &ast.IntLit{Value: 3}})
	require.NoError(t, err)
	ic := c.(*ir.IntConst)
	assert.Equal(t, int64(-3), ic.Int64())
}

func TestLowerConstRejectsCalls(t *testing.T) {
	x, _ := newTestLowerer()
	_, err := x.LowerConst(&ast.CallExpr{Callee: "g"})
	require.Error(t, err)
}

func TestStringLiteralMakesGlobal(t *testing.T) {
	x, b := newTestLowerer()
	v, err := x.Lower(&ast.StrLit{Value: "hi", Width: 1})
	require.NoError(t, err)

	sc, ok := v.Const.(*ir.SliceConst)
	require.True(t, ok)
	assert.Equal(t, "2", sc.Len.String())
	require.Len(t, b.Mod.Globals, 1)
	lit := b.Mod.Globals[0].Init.(*ir.StringConst)
	assert.Equal(t, "hi", lit.Value)
}

func TestCallDeclaresCalleeOnce(t *testing.T) {
	x, b := newTestLowerer()
	_, err := x.Lower(&ast.CallExpr{Callee: "g"})
	require.NoError(t, err)
	_, err = x.Lower(&ast.CallExpr{Callee: "g"})
	require.NoError(t, err)

	var decls int
	for _, fn := range b.Mod.Funcs {
		if fn.Name == "g" {
			decls++
		}
	}
	assert.Equal(t, 1, decls, "repeated callees share one declaration")
}

func TestCallBecomesInvokeUnderUnwind(t *testing.T) {
	x, b := newTestLowerer()
	pad := b.NewBlock("landingpad")
	x.UnwindDest = func() *ir.BasicBlock { return pad }

	before := b.Block()
	_, err := x.Lower(&ast.CallExpr{Callee: "g"})
	require.NoError(t, err)

	inv, ok := before.Term.(*ir.Invoke)
	require.True(t, ok)
	assert.Equal(t, pad, inv.Unwind)
}

func TestTypesLower(t *testing.T) {
	ty := Types{}
	assert.Equal(t, "void", ty.Lower(&ast.PrimType{Kind: ast.Void}).String())
	assert.Equal(t, 64, ir.BitSize(ty.Lower(&ast.PrimType{Kind: ast.U64})))
	assert.IsType(t, &ir.SliceType{}, ty.Lower(&ast.StringType{Width: 2}))
	assert.IsType(t, &ir.PointerType{}, ty.Lower(&ast.ObjectType{Name: "Object"}))
	assert.Equal(t, ir.SizeT, ty.SizeT())
}
