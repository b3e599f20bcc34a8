package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"sable/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// CompilerError is a structured diagnostic. Position is where the
// problem starts; EndLine extends it over the whole statement when the
// lowering rejects a multi-line construct (a try/finally, a loop), so
// the renderer shows the full span instead of a single point.
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // error code like E0701
	Message     string       // primary message
	Position    ast.Position // start of the problematic region
	EndLine     int          // last line of the region; 0 means single-line
	Length      int          // column width of a single-line region
	Suggestions []Suggestion // suggested fixes
	Notes       []string     // additional context notes
	HelpText    string       // trailing help text
}

// Suggestion is one suggested fix attached to a diagnostic
type Suggestion struct {
	Message string
}

// StatementSpan computes the source region a statement covers: its own
// position through the last line of its deepest trailing child. The
// walk mirrors the statement sum the lowerer dispatches over.
func StatementSpan(s ast.Stmt) (start ast.Position, endLine int) {
	if s == nil {
		return ast.Position{}, 0
	}
	start = s.Pos()
	endLine = start.Line

	grow := func(children ...ast.Stmt) {
		for _, c := range children {
			if c == nil {
				continue
			}
			if _, e := StatementSpan(c); e > endLine {
				endLine = e
			}
		}
	}
	growExpr := func(exprs ...ast.Expr) {
		for _, e := range exprs {
			if e != nil && e.Pos().Line > endLine {
				endLine = e.Pos().Line
			}
		}
	}

	switch st := s.(type) {
	case *ast.CompoundStmt:
		grow(st.Stmts...)
	case *ast.ScopeStmt:
		grow(st.Stmt)
	case *ast.ExprStmt:
		growExpr(st.X)
	case *ast.VarDecl:
		growExpr(st.Init)
	case *ast.IfStmt:
		grow(st.Then, st.Else)
	case *ast.WhileStmt:
		grow(st.Body)
	case *ast.DoWhileStmt:
		grow(st.Body)
		growExpr(st.Cond)
	case *ast.ForStmt:
		grow(st.Init, st.Body)
	case *ast.ForeachStmt:
		grow(st.Body)
	case *ast.ForeachRangeStmt:
		grow(st.Body)
	case *ast.UnrolledLoopStmt:
		grow(st.Stmts...)
	case *ast.SwitchStmt:
		grow(st.Body)
	case *ast.CaseStmt:
		grow(st.Body)
	case *ast.DefaultStmt:
		grow(st.Body)
	case *ast.LabelStmt:
		grow(st.Stmt)
	case *ast.TryCatchStmt:
		grow(st.Body)
		for _, c := range st.Catches {
			grow(c.Body)
		}
	case *ast.TryFinallyStmt:
		grow(st.Body, st.Final)
	case *ast.ThrowStmt:
		growExpr(st.X)
	case *ast.SynchronizedStmt:
		grow(st.Body)
	case *ast.VolatileStmt:
		grow(st.Stmt)
	case *ast.WithStmt:
		grow(st.Body)
	case *ast.OnScopeStmt:
		grow(st.Stmt)
	case *ast.AsmBlockStmt:
		grow(st.Stmts...)
	}
	return start, endLine
}

// ErrorReporter renders diagnostics against one source file
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a reporter for a file
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError renders a diagnostic with its source context: a caret
// under a single-line region, or a bracketed gutter covering every line
// of a multi-line statement span.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var out strings.Builder

	level := er.levelColor(err.Level)
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	// header: error[E0701]: message
	if err.Code != "" {
		fmt.Fprintf(&out, "%s[%s]: %s\n", level(string(err.Level)), err.Code, err.Message)
	} else {
		fmt.Fprintf(&out, "%s: %s\n", level(string(err.Level)), err.Message)
	}

	last := err.EndLine
	if last < err.Position.Line {
		last = err.Position.Line
	}
	gutter := er.gutterWidth(last)
	pad := strings.Repeat(" ", gutter)

	// location: --> file:line:column
	fmt.Fprintf(&out, "%s %s %s:%d:%d\n", pad, dim("-->"), er.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(&out, "%s %s\n", pad, dim("|"))

	if last > err.Position.Line {
		er.renderSpan(&out, err.Position.Line, last, gutter, level, dim, bold)
	} else {
		er.renderPoint(&out, err, gutter, level, dim, bold)
	}

	for _, s := range err.Suggestions {
		help := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s\n", pad, help("help:"), s.Message)
	}
	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", pad, dim("|"), noteColor("note:"), note)
	}
	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", pad, dim("|"), helpColor("help:"), err.HelpText)
	}

	out.WriteString("\n")
	return out.String()
}

// renderPoint shows one source line with a caret marker under the
// offending column
func (er *ErrorReporter) renderPoint(out *strings.Builder, err CompilerError, gutter int,
	level, dim, bold func(...interface{}) string) {

	line := err.Position.Line
	if line < 1 || line > len(er.lines) {
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", bold(fmt.Sprintf("%*d", gutter, line)), dim("|"), er.lines[line-1])

	width := err.Length
	if width < 1 {
		width = 1
	}
	indent := err.Position.Column - 1
	if indent < 0 {
		indent = 0
	}
	marker := strings.Repeat(" ", indent) + level(strings.Repeat("^", width))
	fmt.Fprintf(out, "%s %s %s\n", strings.Repeat(" ", gutter), dim("|"), marker)
}

// renderSpan shows every line of a statement's region with a bracketing
// gutter, the way lowering failures cover whole constructs
func (er *ErrorReporter) renderSpan(out *strings.Builder, first, last, gutter int,
	level, dim, bold func(...interface{}) string) {

	if first < 1 {
		first = 1
	}
	if last > len(er.lines) {
		last = len(er.lines)
	}

	for line := first; line <= last; line++ {
		fmt.Fprintf(out, "%s %s %s %s\n",
			bold(fmt.Sprintf("%*d", gutter, line)), dim("|"), level(">"), er.lines[line-1])
	}
	fmt.Fprintf(out, "%s %s %s\n",
		strings.Repeat(" ", gutter), dim("|"), level(fmt.Sprintf("^ statement spans lines %d-%d", first, last)))
}

func (er *ErrorReporter) levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// gutterWidth sizes the line-number column for the widest line shown
func (er *ErrorReporter) gutterWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}
