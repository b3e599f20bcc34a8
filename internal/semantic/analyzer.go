package semantic

import (
	"fmt"

	"sable/internal/ast"
)

// Error is a semantic diagnostic tied to a source position
type Error struct {
	Code     string
	Message  string
	Position ast.Position
}

// Analyzer binds control-flow back-references the lowerer resolves at
// emission time: labeled break/continue targets, goto labels, goto
// case/default bindings, and each switch's case list.
type Analyzer struct {
	errors []Error
}

// NewAnalyzer creates an analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Errors returns the diagnostics collected so far
func (a *Analyzer) Errors() []Error { return a.errors }

// Analyze binds every function in the file and returns the diagnostics
func (a *Analyzer) Analyze(file *ast.File) []Error {
	for _, fn := range file.Funcs {
		a.analyzeFunc(fn)
	}
	return a.errors
}

func (a *Analyzer) analyzeFunc(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}
	b := &binder{analyzer: a, labels: make(map[string]*ast.LabelStmt)}
	b.collectLabels(fn.Body)
	b.bind(fn.Body)
}

func (a *Analyzer) errorf(pos ast.Position, code, format string, args ...interface{}) {
	a.errors = append(a.errors, Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

// binder walks one function body. Labels are collected first so forward
// gotos resolve; the second walk binds jump targets and case lists.
type binder struct {
	analyzer *Analyzer
	labels   map[string]*ast.LabelStmt
	switches []*ast.SwitchStmt
}

func (b *binder) collectLabels(s ast.Stmt) {
	walk(s, func(child ast.Stmt) {
		if lbl, ok := child.(*ast.LabelStmt); ok {
			if prev, exists := b.labels[lbl.Name]; exists {
				b.analyzer.errorf(lbl.Position, CodeDuplicateLabel,
					"label %s already defined at line %d", lbl.Name, prev.Position.Line)
				return
			}
			b.labels[lbl.Name] = lbl
		}
	})
}

func (b *binder) bind(s ast.Stmt) {
	if s == nil {
		return
	}
	switch st := s.(type) {
	case *ast.CompoundStmt:
		for _, child := range st.Stmts {
			b.bind(child)
		}
	case *ast.ScopeStmt:
		b.bind(st.Stmt)
	case *ast.IfStmt:
		b.bind(st.Then)
		b.bind(st.Else)
	case *ast.WhileStmt:
		b.bind(st.Body)
	case *ast.DoWhileStmt:
		b.bind(st.Body)
	case *ast.ForStmt:
		b.bind(st.Init)
		b.bind(st.Body)
	case *ast.ForeachStmt:
		b.bind(st.Body)
	case *ast.ForeachRangeStmt:
		b.bind(st.Body)
	case *ast.UnrolledLoopStmt:
		for _, child := range st.Stmts {
			b.bind(child)
		}
	case *ast.SwitchStmt:
		b.bindSwitch(st)
	case *ast.CaseStmt:
		b.bind(st.Body)
	case *ast.DefaultStmt:
		b.bind(st.Body)
	case *ast.LabelStmt:
		b.bind(st.Stmt)
	case *ast.TryCatchStmt:
		b.bind(st.Body)
		for _, c := range st.Catches {
			b.bind(c.Body)
		}
	case *ast.TryFinallyStmt:
		b.bind(st.Body)
		b.bind(st.Final)
	case *ast.SynchronizedStmt:
		b.bind(st.Body)
	case *ast.VolatileStmt:
		b.bind(st.Stmt)
	case *ast.WithStmt:
		b.bind(st.Body)
	case *ast.OnScopeStmt:
		b.bind(st.Stmt)
	case *ast.BreakStmt:
		if st.Label != "" {
			st.Target = b.lookupLabel(st.Label, st.Position)
		}
	case *ast.ContinueStmt:
		if st.Label != "" {
			st.Target = b.lookupLabel(st.Label, st.Position)
		}
	case *ast.GotoStmt:
		st.Target = b.lookupLabel(st.Label, st.Position)
	case *ast.GotoCaseStmt:
		b.bindGotoCase(st)
	case *ast.GotoDefaultStmt:
		if len(b.switches) == 0 {
			b.analyzer.errorf(st.Position, CodeGotoOutsideSwitch, "goto default outside a switch")
			return
		}
		st.Sw = b.switches[len(b.switches)-1]
		if st.Sw.Default == nil {
			b.analyzer.errorf(st.Position, CodeGotoOutsideSwitch, "goto default in a switch without a default")
		}
	}
}

func (b *binder) lookupLabel(name string, pos ast.Position) *ast.LabelStmt {
	lbl, ok := b.labels[name]
	if !ok {
		b.analyzer.errorf(pos, CodeUndefinedLabel, "undefined label %s", name)
		return nil
	}
	return lbl
}

func (b *binder) bindSwitch(sw *ast.SwitchStmt) {
	sw.Cases = nil
	sw.Default = nil
	collectCases(sw.Body, sw, b.analyzer)

	b.switches = append(b.switches, sw)
	b.bind(sw.Body)
	b.switches = b.switches[:len(b.switches)-1]
}

// collectCases gathers the case and default arms belonging to sw,
// without descending into nested switches
func collectCases(s ast.Stmt, sw *ast.SwitchStmt, a *Analyzer) {
	if s == nil {
		return
	}
	switch st := s.(type) {
	case *ast.CaseStmt:
		sw.Cases = append(sw.Cases, st)
		collectCases(st.Body, sw, a)
	case *ast.DefaultStmt:
		if sw.Default != nil {
			a.errorf(st.Position, CodeDuplicateDefault, "switch already has a default at line %d", sw.Default.Position.Line)
		} else {
			sw.Default = st
		}
		collectCases(st.Body, sw, a)
	case *ast.SwitchStmt:
		// nested switch owns its own cases
	case *ast.CompoundStmt:
		for _, child := range st.Stmts {
			collectCases(child, sw, a)
		}
	case *ast.ScopeStmt:
		collectCases(st.Stmt, sw, a)
	case *ast.LabelStmt:
		collectCases(st.Stmt, sw, a)
	case *ast.IfStmt:
		collectCases(st.Then, sw, a)
		collectCases(st.Else, sw, a)
	case *ast.TryFinallyStmt:
		collectCases(st.Body, sw, a)
	case *ast.TryCatchStmt:
		collectCases(st.Body, sw, a)
	}
}

func (b *binder) bindGotoCase(st *ast.GotoCaseStmt) {
	if len(b.switches) == 0 {
		b.analyzer.errorf(st.Position, CodeGotoOutsideSwitch, "goto case outside a switch")
		return
	}
	sw := b.switches[len(b.switches)-1]
	st.Sw = sw

	if st.Case != nil {
		return // already bound (synthesized nodes)
	}
	for _, cs := range sw.Cases {
		if caseValuesEqual(cs.Value, st.Value) {
			st.Case = cs
			return
		}
	}
	b.analyzer.errorf(st.Position, CodeUndefinedCase, "goto case target not found in enclosing switch")
}

func caseValuesEqual(a, b ast.Expr) bool {
	switch av := a.(type) {
	case *ast.IntLit:
		bv, ok := b.(*ast.IntLit)
		return ok && av.Value == bv.Value
	case *ast.StrLit:
		bv, ok := b.(*ast.StrLit)
		return ok && av.Value == bv.Value
	}
	return false
}

// walk applies fn to s and every statement nested below it
func walk(s ast.Stmt, fn func(ast.Stmt)) {
	if s == nil {
		return
	}
	fn(s)
	switch st := s.(type) {
	case *ast.CompoundStmt:
		for _, child := range st.Stmts {
			walk(child, fn)
		}
	case *ast.ScopeStmt:
		walk(st.Stmt, fn)
	case *ast.IfStmt:
		walk(st.Then, fn)
		walk(st.Else, fn)
	case *ast.WhileStmt:
		walk(st.Body, fn)
	case *ast.DoWhileStmt:
		walk(st.Body, fn)
	case *ast.ForStmt:
		walk(st.Init, fn)
		walk(st.Body, fn)
	case *ast.ForeachStmt:
		walk(st.Body, fn)
	case *ast.ForeachRangeStmt:
		walk(st.Body, fn)
	case *ast.UnrolledLoopStmt:
		for _, child := range st.Stmts {
			walk(child, fn)
		}
	case *ast.SwitchStmt:
		walk(st.Body, fn)
	case *ast.CaseStmt:
		walk(st.Body, fn)
	case *ast.DefaultStmt:
		walk(st.Body, fn)
	case *ast.LabelStmt:
		walk(st.Stmt, fn)
	case *ast.TryCatchStmt:
		walk(st.Body, fn)
		for _, c := range st.Catches {
			walk(c.Body, fn)
		}
	case *ast.TryFinallyStmt:
		walk(st.Body, fn)
		walk(st.Final, fn)
	case *ast.SynchronizedStmt:
		walk(st.Body, fn)
	case *ast.VolatileStmt:
		walk(st.Stmt, fn)
	case *ast.WithStmt:
		walk(st.Body, fn)
	case *ast.OnScopeStmt:
		walk(st.Stmt, fn)
	case *ast.AsmBlockStmt:
		for _, child := range st.Stmts {
			walk(child, fn)
		}
	}
}
