package errors

import (
	"fmt"

	"sable/internal/ast"
)

// Error codes for the sable compiler
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Parser errors
// E0600-E0699: Flow control errors (reported by the semantic pass)
// E0700-E0799: Lowering errors
// E0800-E0899: Warning codes

const (
	// E0701: a statement variant with no lowering
	ErrorStatementNotImplemented = "E0701"

	// E0702: a case selector that is not a constant expression
	ErrorNonConstantCase = "E0702"

	// E0703: control reaches the end of a non-void function
	ErrorMissingReturn = "E0703"

	// E0704: an undefined variable reached expression lowering
	ErrorUndefinedVariable = "E0704"
)

// StatementNotImplemented builds the diagnostic for an unsupported
// statement variant; compilation terminates after reporting it.
func StatementNotImplemented(kind string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorStatementNotImplemented,
		Message:  fmt.Sprintf("statement type %s not implemented", kind),
		Position: pos,
	}
}

// UnsupportedStatement builds the diagnostic for a lowering failure,
// spanning the whole statement the lowerer rejected
func UnsupportedStatement(msg string, stmt ast.Stmt) CompilerError {
	start, end := StatementSpan(stmt)
	return CompilerError{
		Level:    Error,
		Code:     ErrorStatementNotImplemented,
		Message:  msg,
		Position: start,
		EndLine:  end,
	}
}

// NonConstantCase builds the diagnostic for a case label that does not
// fold to a constant
func NonConstantCase(pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorNonConstantCase,
		Message:  "case selector is not a constant expression",
		Position: pos,
		HelpText: "case labels must be integer or string literals",
	}
}

// MissingReturn builds the diagnostic for a non-void function whose
// control falls off the end
func MissingReturn(fn string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorMissingReturn,
		Message:  fmt.Sprintf("control falls off the end of non-void function %s", fn),
		Position: pos,
	}
}

// UndefinedVariable builds the diagnostic for an unresolved identifier,
// with suggestions drawn from the names in scope
func UndefinedVariable(name string, pos ast.Position, inScope []string) CompilerError {
	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedVariable,
		Message:  fmt.Sprintf("undefined variable `%s`", name),
		Position: pos,
		Length:   len(name),
	}
	for _, candidate := range inScope {
		if closeEnough(name, candidate) {
			err.Suggestions = append(err.Suggestions, Suggestion{
				Message: fmt.Sprintf("did you mean `%s`?", candidate),
			})
		}
	}
	return err
}

// closeEnough is a cheap similarity test for suggestion candidates
func closeEnough(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if a[0] != b[0] {
		return false
	}
	diff := len(a) - len(b)
	return diff >= -2 && diff <= 2
}
