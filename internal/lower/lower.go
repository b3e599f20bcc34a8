package lower

import (
	"fmt"

	"github.com/tliron/commonlog"

	"sable/internal/ast"
	"sable/internal/ir"
	"sable/internal/semantic"
)

// ExprLowerer is the expression collaborator: it turns expression leaves
// into SSA values, emitting through the shared builder.
type ExprLowerer interface {
	Lower(e ast.Expr) (*ir.Value, error)
	LowerConst(e ast.Expr) (ir.Constant, error)
	CastToBool(v *ir.Value) *ir.Value
	CastTo(v *ir.Value, t ir.Type) *ir.Value
	Bitcast(v *ir.Value, t ir.Type) *ir.Value
	ArrayLen(agg *ir.Value) *ir.Value
	ArrayPtr(agg *ir.Value) *ir.Value
	PutRet(v *ir.Value) *ir.Value
}

// TypeLowerer is the type collaborator
type TypeLowerer interface {
	Lower(t ast.Type) ir.Type
	SizeT() *ir.IntType
	BitSize(t ir.Type) int
}

// DeclLowerer is the declaration collaborator. DeclareLocal yields a raw,
// uninitialized slot address; BindLocal rebinds a name to an address
// (foreach ref bindings); Assign stores a value into a slot; Copy
// copy-assigns between two addresses.
type DeclLowerer interface {
	DeclareLocal(v *ast.VarDecl) *ir.Value
	BindLocal(v *ast.VarDecl, addr *ir.Value)
	Assign(slot, val *ir.Value)
	Copy(dst, src *ir.Value)
}

// DebugSink receives statement-boundary debug events
type DebugSink interface {
	StopPoint(line int)
	FuncEnd(fn string)
}

// NopDebug discards all debug events
type NopDebug struct{}

func (NopDebug) StopPoint(int)  {}
func (NopDebug) FuncEnd(string) {}

// StatementError is a lowering failure anchored to the statement that
// produced it, so diagnostics can render the statement's full span.
type StatementError struct {
	Stmt ast.Stmt
	Msg  string
}

func (e *StatementError) Error() string { return e.Msg }

func unimplemented(s ast.Stmt, format string, args ...interface{}) error {
	return &StatementError{Stmt: s, Msg: fmt.Sprintf(format, args...)}
}

var log = commonlog.GetLogger("sable.lower")

// Lowerer translates the statement AST of one function into a CFG of
// basic blocks. All state is per-function and single-writer.
type Lowerer struct {
	B     *ir.Builder
	Fn    *ir.Function
	Decl  *ast.FuncDecl
	Exprs ExprLowerer
	Types TypeLowerer
	Decls DeclLowerer
	Debug DebugSink

	scopes   []targetScope
	pads     *LandingPadStack
	labels   map[string]*ir.BasicBlock
	cases    map[*ast.CaseStmt]*caseState
	defaults map[*ast.DefaultStmt]*caseState
	asm      *asmBlock
}

// New creates a lowerer for one function. The builder's cursor must sit
// at the function entry.
func New(b *ir.Builder, decl *ast.FuncDecl, exprs ExprLowerer, types TypeLowerer, decls DeclLowerer, debug DebugSink) *Lowerer {
	if debug == nil {
		debug = NopDebug{}
	}
	return &Lowerer{
		B:      b,
		Fn:     b.Fn,
		Decl:   decl,
		Exprs:  exprs,
		Types:  types,
		Decls:  decls,
		Debug:  debug,
		pads:     &LandingPadStack{},
		labels:   make(map[string]*ir.BasicBlock),
		cases:    make(map[*ast.CaseStmt]*caseState),
		defaults: make(map[*ast.DefaultStmt]*caseState),
	}
}

// LowerBody lowers the function body and seals the fall-through exit of a
// void function with ret void.
func (l *Lowerer) LowerBody() error {
	if l.Decl.Body == nil {
		return nil
	}
	if err := l.Statement(l.Decl.Body); err != nil {
		return err
	}
	if !l.B.Returned() {
		switch {
		case ir.IsVoid(l.Fn.Type.Ret):
			// a dead block left by a return or throw already had its
			// function end reported there
			if semantic.FallsThrough(l.Decl.Body) {
				l.Debug.FuncEnd(l.Decl.Name)
			}
			l.B.CreateRet(nil)
		case semantic.FallsThrough(l.Decl.Body):
			return fmt.Errorf("function %s: control falls off the end of a non-void function", l.Decl.Name)
		default:
			// the open cursor is a dead block left behind by a
			// terminating construct; seal it for the back-end
			l.B.CreateUnreachable()
		}
	}
	return nil
}

// UnwindDest is the active landing pad calls must unwind to, or nil.
// The expression collaborator consults it so calls inside a try become
// invokes.
func (l *Lowerer) UnwindDest() *ir.BasicBlock {
	return l.pads.Top()
}

// Statement dispatches one statement variant to its lowering
func (l *Lowerer) Statement(s ast.Stmt) error {
	if s == nil {
		return nil
	}
	switch st := s.(type) {
	case *ast.CompoundStmt:
		return l.compound(st)
	case *ast.ScopeStmt:
		return l.Statement(st.Stmt)
	case *ast.ExprStmt:
		return l.exprStatement(st)
	case *ast.VarDecl:
		return l.varDecl(st)
	case *ast.IfStmt:
		return l.ifStatement(st)
	case *ast.WhileStmt:
		return l.whileStatement(st)
	case *ast.DoWhileStmt:
		return l.doWhileStatement(st)
	case *ast.ForStmt:
		return l.forStatement(st)
	case *ast.ForeachStmt:
		return l.foreachStatement(st)
	case *ast.ForeachRangeStmt:
		return l.foreachRangeStatement(st)
	case *ast.UnrolledLoopStmt:
		return l.unrolledLoop(st)
	case *ast.SwitchStmt:
		return l.switchStatement(st)
	case *ast.CaseStmt:
		return l.caseStatement(st)
	case *ast.DefaultStmt:
		return l.defaultStatement(st)
	case *ast.BreakStmt:
		return l.breakStatement(st)
	case *ast.ContinueStmt:
		return l.continueStatement(st)
	case *ast.ReturnStmt:
		return l.returnStatement(st)
	case *ast.GotoStmt:
		return l.gotoStatement(st)
	case *ast.GotoCaseStmt:
		return l.gotoCase(st)
	case *ast.GotoDefaultStmt:
		return l.gotoDefault(st)
	case *ast.LabelStmt:
		return l.labelStatement(st)
	case *ast.TryCatchStmt:
		return l.tryCatch(st)
	case *ast.TryFinallyStmt:
		return l.tryFinally(st)
	case *ast.ThrowStmt:
		return l.throwStatement(st)
	case *ast.SynchronizedStmt:
		return l.synchronizedStatement(st)
	case *ast.VolatileStmt:
		return l.volatileStatement(st)
	case *ast.WithStmt:
		return l.withStatement(st)
	case *ast.SwitchErrorStmt:
		return l.switchError(st)
	case *ast.OnScopeStmt:
		// scope-exit actions were rewritten into try/finally by the
		// front-end; nothing to emit for the marker itself
		return nil
	case *ast.AsmBlockStmt:
		return l.asmBlockStatement(st)
	default:
		return unimplemented(s, "statement type %T not implemented", s)
	}
}

func (l *Lowerer) compound(s *ast.CompoundStmt) error {
	log.Debugf("CompoundStmt: line %d", s.Position.Line)
	for _, child := range s.Stmts {
		if child == nil {
			continue
		}
		if err := l.Statement(child); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowerer) exprStatement(s *ast.ExprStmt) error {
	log.Debugf("ExprStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)
	if s.X == nil {
		return nil
	}
	// a cast(void) wrapper evaluates the operand for side effects only
	if c, ok := s.X.(*ast.CastExpr); ok && isVoidType(c.To) {
		_, err := l.Exprs.Lower(c.X)
		return err
	}
	_, err := l.Exprs.Lower(s.X)
	return err
}

func (l *Lowerer) varDecl(s *ast.VarDecl) error {
	log.Debugf("VarDecl %s: line %d", s.Name, s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)
	slot := l.Decls.DeclareLocal(s)
	if s.Init != nil {
		v, err := l.Exprs.Lower(s.Init)
		if err != nil {
			return err
		}
		l.Decls.Assign(slot, v)
	}
	return nil
}

// afterDead parks the cursor in a fresh dead block after a terminating
// statement so later lowering always has an open block to write into.
// The back-end prunes unreachable blocks.
func (l *Lowerer) afterDead(name string) {
	bb := l.B.NewBlock(name)
	l.B.SetScope(ir.Scope{Cur: bb, End: l.B.End()})
}

func isVoidType(t ast.Type) bool {
	p, ok := t.(*ast.PrimType)
	return ok && p.Kind == ast.Void
}
