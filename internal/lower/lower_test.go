package lower_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/ast"
	"sable/internal/compile"
	"sable/internal/ir"
	"sable/internal/lower"
)

// ============================================================================
// AST construction helpers
// ============================================================================

var (
	tI32    = &ast.PrimType{Kind: ast.I32}
	tI64    = &ast.PrimType{Kind: ast.I64}
	tU64    = &ast.PrimType{Kind: ast.U64}
	tVoid   = &ast.PrimType{Kind: ast.Void}
	tString = &ast.StringType{Width: 1}
)

func intlit(v uint64) *ast.IntLit { return &ast.IntLit{Value: v} }

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func callStmt(name string, args ...ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: &ast.CallExpr{Callee: name, Args: args}}
}

func body(stmts ...ast.Stmt) *ast.CompoundStmt {
	return &ast.CompoundStmt{Stmts: stmts}
}

func param(name string, ty ast.Type) *ast.VarDecl {
	return &ast.VarDecl{Name: name, Type: ty}
}

// lowerFunc runs semantic analysis and lowering over a single function
func lowerFunc(t *testing.T, fd *ast.FuncDecl) (*ir.Module, *ir.Function) {
	t.Helper()
	file := &ast.File{Name: "test.sb", Funcs: []*ast.FuncDecl{fd}}
	m, semErrs, err := compile.Module(file, "test", lower.NopDebug{})
	require.Empty(t, semErrs, "semantic errors")
	require.NoError(t, err)
	for _, fn := range m.Funcs {
		if fn.Name == fd.Name {
			return m, fn
		}
	}
	t.Fatalf("function %s not found in module", fd.Name)
	return nil, nil
}

// ============================================================================
// CFG inspection helpers
// ============================================================================

// findBlock returns the first block named prefix.N
func findBlock(t *testing.T, fn *ir.Function, prefix string) *ir.BasicBlock {
	t.Helper()
	for _, bb := range fn.Blocks {
		if strings.HasPrefix(bb.Name, prefix+".") {
			return bb
		}
	}
	t.Fatalf("no block with prefix %q in %s", prefix, blockNames(fn))
	return nil
}

func findBlocks(fn *ir.Function, prefix string) []*ir.BasicBlock {
	var out []*ir.BasicBlock
	for _, bb := range fn.Blocks {
		if strings.HasPrefix(bb.Name, prefix+".") {
			out = append(out, bb)
		}
	}
	return out
}

func blockNames(fn *ir.Function) []string {
	names := make([]string, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		names[i] = bb.Name
	}
	return names
}

// blockCalls lists the callees invoked by a block's instructions and
// terminator, in order
func blockCalls(bb *ir.BasicBlock) []string {
	var out []string
	for _, inst := range bb.Instrs {
		if c, ok := inst.(*ir.Call); ok {
			out = append(out, c.Callee.Name)
		}
	}
	if inv, ok := bb.Term.(*ir.Invoke); ok {
		out = append(out, inv.Callee.Name)
	}
	return out
}

// callChain follows invoke continuations from bb, collecting callees
// until a non-invoke terminator, which it returns
func callChain(bb *ir.BasicBlock) ([]string, ir.Terminator) {
	var calls []string
	for {
		for _, inst := range bb.Instrs {
			if c, ok := inst.(*ir.Call); ok {
				calls = append(calls, c.Callee.Name)
			}
		}
		inv, ok := bb.Term.(*ir.Invoke)
		if !ok {
			return calls, bb.Term
		}
		calls = append(calls, inv.Callee.Name)
		bb = inv.Normal
	}
}

func reachable(fn *ir.Function) map[*ir.BasicBlock]bool {
	seen := make(map[*ir.BasicBlock]bool)
	var visit func(bb *ir.BasicBlock)
	visit = func(bb *ir.BasicBlock) {
		if bb == nil || seen[bb] {
			return
		}
		seen[bb] = true
		if bb.Term != nil {
			for _, succ := range bb.Term.Successors() {
				visit(succ)
			}
		}
	}
	if len(fn.Blocks) > 0 {
		visit(fn.Blocks[0])
	}
	return seen
}

// ============================================================================
// S1: if/else
// ============================================================================

func TestIfElse(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("x", tI32)},
		Body: body(&ast.IfStmt{
			Cond: ident("x"),
			Then: body(callStmt("a")),
			Else: body(callStmt("b")),
		}),
	}
	_, fn := lowerFunc(t, fd)

	ifbb := findBlock(t, fn, "if")
	elsebb := findBlock(t, fn, "else")
	endbb := findBlock(t, fn, "endif")

	// the entry holds the bool coercion and the conditional branch
	entry := fn.Blocks[0]
	cb, ok := entry.Term.(*ir.CondBr)
	require.True(t, ok, "entry should end in cond_br, got %T", entry.Term)
	assert.Equal(t, ifbb, cb.Then)
	assert.Equal(t, elsebb, cb.Else)
	assert.Equal(t, 1, ir.BitSize(cb.Cond.Type), "condition must be coerced to i1")

	// both arms branch to the end block
	thenBr, ok := ifbb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, thenBr.Target)
	elseBr, ok := elsebb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, elseBr.Target)
}

func TestIfWithoutElse(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("x", tI32)},
		Body:   body(&ast.IfStmt{Cond: ident("x"), Then: body(callStmt("a"))}),
	}
	_, fn := lowerFunc(t, fd)

	endbb := findBlock(t, fn, "endif")
	entry := fn.Blocks[0]
	cb := entry.Term.(*ir.CondBr)

	// without an else arm the false edge aliases the end block
	assert.Equal(t, endbb, cb.Else)
	assert.Empty(t, findBlocks(fn, "else"))
}

// ============================================================================
// S2: while with break
// ============================================================================

func TestWhileBreak(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("c", tI32)},
		Body: body(&ast.WhileStmt{
			Cond: ident("c"),
			Body: body(&ast.BreakStmt{}),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "whilecond")
	bodybb := findBlock(t, fn, "whilebody")
	endbb := findBlock(t, fn, "endwhile")

	// the entry branches into the condition block
	br, ok := fn.Blocks[0].Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, condbb, br.Target)

	// condition dispatches between body and end
	cb, ok := condbb.Term.(*ir.CondBr)
	require.True(t, ok)
	assert.Equal(t, bodybb, cb.Then)
	assert.Equal(t, endbb, cb.Else)

	// the break branches directly to the loop's end block
	bodyBr, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, bodyBr.Target)
}

func TestWhileFallThroughLoopsBack(t *testing.T) {
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("c", tI32)},
		Body: body(&ast.WhileStmt{
			Cond: ident("c"),
			Body: body(callStmt("work")),
		}),
	}
	_, fn := lowerFunc(t, fd)

	condbb := findBlock(t, fn, "whilecond")
	bodybb := findBlock(t, fn, "whilebody")

	br, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, condbb, br.Target, "loop body must branch back to the condition")
}

// ============================================================================
// S3: try/finally with return
// ============================================================================

func TestTryFinallyReturn(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Ret:  tI32,
		Body: body(&ast.TryFinallyStmt{
			Body:  body(&ast.ReturnStmt{X: intlit(1)}),
			Final: body(callStmt("cleanup")),
		}),
	}
	_, fn := lowerFunc(t, fd)

	trybb := findBlock(t, fn, "try")
	finallybb := findBlock(t, fn, "finally")
	padbb := findBlock(t, fn, "landingpad")
	endbb := findBlock(t, fn, "endtryfinally")

	// the return path runs the finally body first: the landing pad is
	// still active there, so cleanup() is an invoke
	calls, term := callChain(trybb)
	assert.Equal(t, []string{"cleanup"}, calls, "return path must run the finally before ret")
	ret, ok := term.(*ir.Ret)
	require.True(t, ok, "return path must end in ret, got %T", term)
	require.NotNil(t, ret.Val)
	assert.Equal(t, "1", ret.Val.String())

	// the try body's first invoke unwinds to the landing pad
	inv, ok := trybb.Term.(*ir.Invoke)
	require.True(t, ok)
	assert.Equal(t, padbb, inv.Unwind)

	// a separate finally block exists for fall-through
	calls, term = callChain(finallybb)
	assert.Equal(t, []string{"cleanup"}, calls)
	br, ok := term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, br.Target)

	// the landing pad runs cleanup and re-raises
	require.NotEmpty(t, padbb.Instrs)
	_, ok = padbb.Instrs[0].(*ir.EHPad)
	assert.True(t, ok, "landing pad must begin by receiving the exception")
	calls, term = callChain(padbb)
	assert.Equal(t, []string{"cleanup"}, calls)
	_, ok = term.(*ir.Resume)
	assert.True(t, ok, "unmatched unwind must re-raise, got %T", term)
}

// ============================================================================
// S6: labeled break and goto
// ============================================================================

func TestLabeledBreak(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(
			&ast.LabelStmt{
				Name: "L",
				Stmt: &ast.WhileStmt{
					Cond: &ast.BoolLit{Value: true},
					Body: body(&ast.BreakStmt{Label: "L"}),
				},
			},
		),
	}
	_, fn := lowerFunc(t, fd)

	bodybb := findBlock(t, fn, "whilebody")
	endbb := findBlock(t, fn, "endwhile")

	// the labeled break finds scope L and branches to the while's end
	br, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, br.Target)
}

func TestGotoResolvesLabel(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Params: []*ast.VarDecl{
			param("x", tI32),
		},
		Body: body(
			&ast.IfStmt{Cond: ident("x"), Then: body(&ast.GotoStmt{Label: "L"})},
			callStmt("before"),
			&ast.LabelStmt{Name: "L", Stmt: callStmt("after")},
		),
	}
	_, fn := lowerFunc(t, fd)

	labels := findBlocks(fn, "label__Sf.L")
	require.Len(t, labels, 1, "forward goto and label definition share one block: %v", blockNames(fn))
	labelbb := labels[0]

	// the goto branches to the very block later bound by the label
	ifbb := findBlock(t, fn, "if")
	br, ok := ifbb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, labelbb, br.Target)

	calls := blockCalls(labelbb)
	assert.Equal(t, []string{"after"}, calls)
}

// ============================================================================
// Universal invariants
// ============================================================================

func TestEveryReachableBlockTerminates(t *testing.T) {
	// a potpourri of constructs in one function
	fd := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.VarDecl{param("x", tI32), param("arr", &ast.ArrayType{Elem: tI32})},
		Body: body(
			&ast.IfStmt{Cond: ident("x"), Then: body(callStmt("a")), Else: body(callStmt("b"))},
			&ast.WhileStmt{Cond: ident("x"), Body: body(&ast.BreakStmt{})},
			&ast.DoWhileStmt{Body: body(callStmt("w")), Cond: ident("x")},
			&ast.ForStmt{Cond: ident("x"), Body: body(&ast.ContinueStmt{})},
			&ast.ForeachStmt{Value: param("v", tI32), Aggr: ident("arr"), Body: body(callStmt("e", ident("v")))},
			&ast.SwitchStmt{Cond: ident("x"), Body: body(
				&ast.CaseStmt{Value: intlit(1), Body: body(&ast.BreakStmt{})},
				&ast.DefaultStmt{Body: body(callStmt("d"))},
			)},
			&ast.TryFinallyStmt{Body: body(callStmt("t")), Final: body(callStmt("fin"))},
			&ast.SynchronizedStmt{Body: body(callStmt("locked"))},
			&ast.VolatileStmt{Stmt: body(callStmt("vol"))},
			&ast.ReturnStmt{},
		),
	}
	_, fn := lowerFunc(t, fd)

	for bb := range reachable(fn) {
		assert.NotNil(t, bb.Term, "reachable block %s has no terminator", bb.Name)
	}
}

func TestFallThroughPreservation(t *testing.T) {
	// a statement that can fall through leaves the cursor open, sealed
	// by the implicit ret void; one that cannot leaves a dead block
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(callStmt("work")),
	}
	_, fn := lowerFunc(t, fd)

	entry := fn.Blocks[0]
	_, ok := entry.Term.(*ir.Ret)
	assert.True(t, ok, "falling off a void function must ret void")
}

func TestBreakAfterTerminatorEmitsNothing(t *testing.T) {
	fd := &ast.FuncDecl{
		Name: "f",
		Body: body(&ast.WhileStmt{
			Cond: &ast.BoolLit{Value: true},
			Body: body(&ast.BreakStmt{}, &ast.BreakStmt{}),
		}),
	}
	// the second break sees a terminated block and emits nothing
	_, fn := lowerFunc(t, fd)
	endbb := findBlock(t, fn, "endwhile")
	bodybb := findBlock(t, fn, "whilebody")
	br, ok := bodybb.Term.(*ir.Br)
	require.True(t, ok)
	assert.Equal(t, endbb, br.Target)
}
