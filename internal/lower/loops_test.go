package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/ast"
	"sable/internal/ir"
)

func blockHasBinOp(bb *ir.BasicBlock, op string) bool {
	for _, inst := range bb.Instrs {
		if b, ok := inst.(*ir.BinOp); ok && b.Op == op {
			return true
		}
	}
	return false
}

func blockICmpPreds(bb *ir.BasicBlock) []ir.ICmpPred {
	var out []ir.ICmpPred
	for _, inst := range bb.Instrs {
		if c, ok := inst.(*ir.ICmp); ok {
			out = append(out, c.Pred)
		}
	}
	return out
}

func TestDoWhile(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("c", tI32)},
		Body: body(&ast.DoWhileStmt{
			Body: body(callStmt("work")),
			Cond: ident("c"),
		}),
	}
	_, fn := lowerFunc(t, fd)

	bodybb := findBlock(t, fn, "dowhile")
	condbb := findBlock(t, fn, "dowhilecond")
	endbb := findBlock(t, fn, "enddowhile")

	// the entry branches straight into the body
	br, ok := fn.Blocks[0].Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, bodybb, br.Target)

	// the body falls through into the condition
	bodyBr, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, condbb, bodyBr.Target)

	// the condition re-enters the body or exits
	cb, ok := condbb.Term.(*ir.CondBr)
	require.True(t, ok)
	assert.Equal(t, bodybb, cb.Then)
	assert.Equal(t, endbb, cb.Else)
}

func TestForLoop(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.ForStmt{
			Init: &ast.VarDecl{Name: "i", Type: tI32, Init: intlit(0)},
			Cond: &ast.BinaryExpr{Op: "<", X: ident("i"), Y: intlit(10)},
			Inc:  &ast.BinaryExpr{Op: "=", X: ident("i"), Y: &ast.BinaryExpr{Op: "+", X: ident("i"), Y: intlit(1)}},
			Body: body(&ast.ContinueStmt{}),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "forcond")
	bodybb := findBlock(t, fn, "forbody")
	incbb := findBlock(t, fn, "forinc")
	endbb := findBlock(t, fn, "endfor")

	// continue targets the increment block
	br, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, incbb, br.Target)

	// the increment loops back to the condition
	incBr, ok := incbb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, condbb, incBr.Target)

	cb, ok := condbb.Term.(*ir.CondBr)
	require.True(t, ok)
	assert.Equal(t, bodybb, cb.Then)
	assert.Equal(t, endbb, cb.Else)
}

func TestForWithoutConditionIsConstTrue(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.ForStmt{
			Body: body(&ast.BreakStmt{}),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "forcond")
	cb, ok := condbb.Term.(*ir.CondBr)
	require.True(t, ok)
	require.True(t, cb.Cond.IsConst())
	ic := cb.Cond.Const.(*ir.IntConst)
	assert.Equal(t, uint64(1), ic.V, "missing condition lowers to constant true")
}

// S5: foreach_reverse over an array
func TestForeachReverse(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("arr", &ast.ArrayType{Elem: tI32})},
		Body: body(&ast.ForeachStmt{
			Reverse: true,
			Value:   &ast.VarDecl{Name: "v", Type: tI32},
			Aggr:    ident("arr"),
			Body:    body(callStmt("use", ident("v"))),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "foreachcond")
	nextbb := findBlock(t, fn, "foreachnext")

	// the key is initialized from the length in the entry block, then
	// the condition tests key > 0 and pre-decrements
	preds := blockICmpPreds(condbb)
	require.Len(t, preds, 1)
	assert.Equal(t, ir.UGT, preds[0])
	assert.True(t, blockHasBinOp(condbb, "sub"), "reverse iteration pre-decrements in the condition block")

	// no post-loop increment in reverse mode
	assert.False(t, blockHasBinOp(nextbb, "add"))
	br, ok := nextbb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, condbb, br.Target)
}

func TestForeachForward(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("arr", &ast.ArrayType{Elem: tI32})},
		Body: body(&ast.ForeachStmt{
			Key:   &ast.VarDecl{Name: "i", Type: tU64},
			Value: &ast.VarDecl{Name: "v", Type: tI32},
			Aggr:  ident("arr"),
			Body:  body(callStmt("use", ident("i"), ident("v"))),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "foreachcond")
	bodybb := findBlock(t, fn, "foreachbody")
	nextbb := findBlock(t, fn, "foreachnext")

	// forward: key < length, increment in the next block
	preds := blockICmpPreds(condbb)
	require.Len(t, preds, 1)
	assert.Equal(t, ir.ULT, preds[0])
	assert.False(t, blockHasBinOp(condbb, "sub"))
	assert.True(t, blockHasBinOp(nextbb, "add"))

	// the body indexes the aggregate by the loaded key
	var sawGEP bool
	for _, inst := range bodybb.Instrs {
		if _, ok := inst.(*ir.GEP); ok {
			sawGEP = true
		}
	}
	assert.True(t, sawGEP, "element address is a 1-D GEP by the key")
}

func TestForeachRangeSigned(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.ForeachRangeStmt{
			Key:   &ast.VarDecl{Name: "i", Type: tI64},
			Lower: intlit(0),
			Upper: intlit(10),
			Body:  body(callStmt("use", ident("i"))),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "foreachrange_cond")
	nextbb := findBlock(t, fn, "foreachrange_next")

	preds := blockICmpPreds(condbb)
	require.Len(t, preds, 1)
	assert.Equal(t, ir.SLT, preds[0], "signed keys compare with slt")
	assert.True(t, blockHasBinOp(nextbb, "add"), "forward range post-increments")
}

func TestForeachRangeReverseUnsigned(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.ForeachRangeStmt{
			Reverse: true,
			Key:     &ast.VarDecl{Name: "i", Type: tU64},
			Lower:   intlit(0),
			Upper:   intlit(10),
			Body:    body(callStmt("use", ident("i"))),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "foreachrange_cond")
	bodybb := findBlock(t, fn, "foreachrange_body")
	nextbb := findBlock(t, fn, "foreachrange_next")

	preds := blockICmpPreds(condbb)
	require.Len(t, preds, 1)
	assert.Equal(t, ir.UGT, preds[0], "reverse unsigned keys compare with ugt")

	// reverse pre-decrements in the body, not in next
	assert.True(t, blockHasBinOp(bodybb, "sub"))
	assert.False(t, blockHasBinOp(nextbb, "add"))
}

func TestUnrolledLoop(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.UnrolledLoopStmt{
			Stmts: []ast.Stmt{
				body(callStmt("s0"), &ast.ContinueStmt{}),
				body(callStmt("s1"), &ast.BreakStmt{}),
				body(callStmt("s2")),
			},
		}),
	}
	_, fn := lowerFunc(t, fd)

	blocks := findBlocks(fn, "unrolledstmt")
	require.Len(t, blocks, 3)
	endbb := findBlock(t, fn, "unrolledend")

	// continue in member 0 advances to member 1
	br0, ok := blocks[0].Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, blocks[1], br0.Target)

	// break in member 1 exits the whole loop
	br1, ok := blocks[1].Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, br1.Target)

	// member 2 falls through to the end
	br2, ok := blocks[2].Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, br2.Target)
}

func TestUnrolledLoopEmpty(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.UnrolledLoopStmt{}),
	}
	_, fn := lowerFunc(t, fd)
	assert.Empty(t, findBlocks(fn, "unrolledstmt"))
	assert.Empty(t, findBlocks(fn, "unrolledend"))
}

func TestForeachKeyWidthAdjustment(t *testing.T) {
	// a 32-bit key against a 64-bit length truncates the length
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("arr", &ast.ArrayType{Elem: tI32})},
		Body: body(&ast.ForeachStmt{
			Key:   &ast.VarDecl{Name: "i", Type: &ast.PrimType{Kind: ast.U32}},
			Value: &ast.VarDecl{Name: "v", Type: tI32},
			Aggr:  ident("arr"),
			Body:  body(callStmt("use")),
		}),
	}
	_, fn := lowerFunc(t, fd)

	entry := fn.Blocks[0]
	var sawTrunc bool
	for _, inst := range entry.Instrs {
		if c, ok := inst.(*ir.Cast); ok && c.Op == ir.Trunc {
			sawTrunc = true
		}
	}
	assert.True(t, sawTrunc, "length must be narrowed to the key width")
}
