package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/ast"
)

func fnWith(stmts ...ast.Stmt) *ast.File {
	return &ast.File{
		Name: "test.sb",
		Funcs: []*ast.FuncDecl{{
			Name: "f",
			Body: &ast.CompoundStmt{Stmts: stmts},
		}},
	}
}

func TestBindLabeledBreak(t *testing.T) {
	brk := &ast.BreakStmt{Label: "L"}
	loop := &ast.WhileStmt{
		Cond: &ast.BoolLit{Value: true},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{brk}},
	}
	lbl := &ast.LabelStmt{Name: "L", Stmt: loop}

	errs := NewAnalyzer().Analyze(fnWith(lbl))
	require.Empty(t, errs)
	assert.Equal(t, lbl, brk.Target)
}

func TestUndefinedLabelReported(t *testing.T) {
	errs := NewAnalyzer().Analyze(fnWith(&ast.GotoStmt{Label: "nowhere"}))
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUndefinedLabel, errs[0].Code)
}

func TestDuplicateLabelReported(t *testing.T) {
	errs := NewAnalyzer().Analyze(fnWith(
		&ast.LabelStmt{Name: "L", Stmt: &ast.ExprStmt{}},
		&ast.LabelStmt{Name: "L", Stmt: &ast.ExprStmt{}},
	))
	require.Len(t, errs, 1)
	assert.Equal(t, CodeDuplicateLabel, errs[0].Code)
}

func TestForwardGotoBinds(t *testing.T) {
	g := &ast.GotoStmt{Label: "done"}
	lbl := &ast.LabelStmt{Name: "done", Stmt: &ast.ExprStmt{}}
	errs := NewAnalyzer().Analyze(fnWith(g, lbl))
	require.Empty(t, errs)
	assert.Equal(t, lbl, g.Target)
}

func TestSwitchCaseCollection(t *testing.T) {
	c1 := &ast.CaseStmt{Value: &ast.IntLit{Value: 1}, Body: &ast.CompoundStmt{}}
	c2 := &ast.CaseStmt{Value: &ast.IntLit{Value: 2}, Body: &ast.CompoundStmt{}}
	def := &ast.DefaultStmt{Body: &ast.CompoundStmt{}}
	sw := &ast.SwitchStmt{
		Cond: &ast.IntLit{Value: 0},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{c1, c2, def}},
	}

	errs := NewAnalyzer().Analyze(fnWith(sw))
	require.Empty(t, errs)
	assert.Equal(t, []*ast.CaseStmt{c1, c2}, sw.Cases)
	assert.Equal(t, def, sw.Default)
}

func TestNestedSwitchOwnsItsCases(t *testing.T) {
	inner := &ast.CaseStmt{Value: &ast.IntLit{Value: 9}, Body: &ast.CompoundStmt{}}
	innerSw := &ast.SwitchStmt{
		Cond: &ast.IntLit{Value: 0},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{inner}},
	}
	outer := &ast.CaseStmt{Value: &ast.IntLit{Value: 1}, Body: &ast.CompoundStmt{Stmts: []ast.Stmt{innerSw}}}
	outerSw := &ast.SwitchStmt{
		Cond: &ast.IntLit{Value: 0},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{outer}},
	}

	errs := NewAnalyzer().Analyze(fnWith(outerSw))
	require.Empty(t, errs)
	assert.Equal(t, []*ast.CaseStmt{outer}, outerSw.Cases)
	assert.Equal(t, []*ast.CaseStmt{inner}, innerSw.Cases)
}

func TestGotoCaseBinds(t *testing.T) {
	target := &ast.CaseStmt{Value: &ast.IntLit{Value: 2}, Body: &ast.CompoundStmt{}}
	g := &ast.GotoCaseStmt{Value: &ast.IntLit{Value: 2}}
	c1 := &ast.CaseStmt{Value: &ast.IntLit{Value: 1}, Body: &ast.CompoundStmt{Stmts: []ast.Stmt{g}}}
	sw := &ast.SwitchStmt{
		Cond: &ast.IntLit{Value: 0},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{c1, target}},
	}

	errs := NewAnalyzer().Analyze(fnWith(sw))
	require.Empty(t, errs)
	assert.Equal(t, target, g.Case)
	assert.Equal(t, sw, g.Sw)
}

func TestGotoDefaultOutsideSwitch(t *testing.T) {
	errs := NewAnalyzer().Analyze(fnWith(&ast.GotoDefaultStmt{}))
	require.Len(t, errs, 1)
	assert.Equal(t, CodeGotoOutsideSwitch, errs[0].Code)
}

func TestDuplicateDefaultReported(t *testing.T) {
	sw := &ast.SwitchStmt{
		Cond: &ast.IntLit{Value: 0},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{
			&ast.DefaultStmt{Body: &ast.CompoundStmt{}},
			&ast.DefaultStmt{Body: &ast.CompoundStmt{}},
		}},
	}
	errs := NewAnalyzer().Analyze(fnWith(sw))
	require.Len(t, errs, 1)
	assert.Equal(t, CodeDuplicateDefault, errs[0].Code)
}
