package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sable/internal/ast"
)

func TestErrorReporter(t *testing.T) {
	source := `fn test() : i32 {
	var x: i32 = unknownVar;
	return x;
}`

	reporter := NewErrorReporter("test.sb", source)

	err := UndefinedVariable("unknownVar", ast.Position{Line: 2, Column: 15}, []string{"unknownVal", "other"})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "undefined variable")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.sb:2:15")
	assert.Contains(t, formatted, "did you mean `unknownVal`?")
	assert.NotContains(t, formatted, "other", "dissimilar names are not suggested")
}

func TestStatementNotImplemented(t *testing.T) {
	err := StatementNotImplemented("PragmaStmt", ast.Position{Line: 4, Column: 1})
	assert.Equal(t, ErrorStatementNotImplemented, err.Code)
	assert.Contains(t, err.Message, "statement type PragmaStmt not implemented")
}

func TestMarkerPlacement(t *testing.T) {
	source := "var a: i32 = b;"
	reporter := NewErrorReporter("m.sb", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedVariable,
		Message:  "undefined variable `b`",
		Position: ast.Position{Line: 1, Column: 14},
		Length:   1,
	}
	formatted := reporter.FormatError(err)

	// a caret marker line is rendered under the source line
	var markerLine string
	for _, line := range strings.Split(formatted, "\n") {
		if strings.Contains(line, "^") {
			markerLine = line
			break
		}
	}
	assert.NotEmpty(t, markerLine, "expected a caret marker line")
}

func TestStatementSpan(t *testing.T) {
	// a try/finally from line 2 whose last statement is on line 5 reports lines 2-5
	stmt := &ast.TryFinallyStmt{
		Body: &ast.CompoundStmt{
			Stmts: []ast.Stmt{
				&ast.ExprStmt{X: &ast.CallExpr{Callee: "risky", Position: ast.Position{Line: 3}}, Position: ast.Position{Line: 3}},
			},
			Position: ast.Position{Line: 2},
		},
		Final: &ast.CompoundStmt{
			Stmts: []ast.Stmt{
				&ast.ExprStmt{X: &ast.CallExpr{Callee: "release", Position: ast.Position{Line: 5}}, Position: ast.Position{Line: 5}},
			},
			Position: ast.Position{Line: 5},
		},
		Position: ast.Position{Line: 2, Column: 2},
	}

	start, end := StatementSpan(stmt)
	assert.Equal(t, 2, start.Line)
	assert.Equal(t, 5, end)
}

func TestFormatErrorRendersSpan(t *testing.T) {
	source := `fn f() {
	try {
		risky();
	} finally {
		release();
	}
}`
	reporter := NewErrorReporter("span.sb", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorStatementNotImplemented,
		Message:  "statement type *ast.TryFinallyStmt not implemented",
		Position: ast.Position{Line: 2, Column: 2},
		EndLine:  6,
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "statement spans lines 2-6")
	for _, want := range []string{"try {", "risky();", "release();"} {
		assert.Contains(t, formatted, want, "every spanned source line is shown")
	}
	assert.NotContains(t, formatted, "fn f()", "lines outside the span stay hidden")
}

func TestUnsupportedStatementCoversSpan(t *testing.T) {
	stmt := &ast.WhileStmt{
		Cond: &ast.BoolLit{Value: true, Position: ast.Position{Line: 4}},
		Body: &ast.ExprStmt{
			X:        &ast.CallExpr{Callee: "g", Position: ast.Position{Line: 6}},
			Position: ast.Position{Line: 6},
		},
		Position: ast.Position{Line: 4, Column: 2},
	}

	err := UnsupportedStatement("statement type *ast.WhileStmt not implemented", stmt)
	assert.Equal(t, ErrorStatementNotImplemented, err.Code)
	assert.Equal(t, 4, err.Position.Line)
	assert.Equal(t, 6, err.EndLine)
}

func TestFormatErrorWithoutCode(t *testing.T) {
	reporter := NewErrorReporter("m.sb", "fn f() {}")
	err := CompilerError{
		Level:    Warning,
		Message:  "something looks off",
		Position: ast.Position{Line: 1, Column: 1},
	}
	formatted := reporter.FormatError(err)
	assert.Contains(t, formatted, "warning")
	assert.Contains(t, formatted, "something looks off")
}
