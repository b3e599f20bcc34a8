package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

func (l *Lowerer) tryFinally(s *ast.TryFinallyStmt) error {
	log.Debugf("TryFinallyStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	// with either side missing, things are simple
	if s.Final == nil {
		return l.Statement(s.Body)
	}
	if s.Body == nil {
		return l.Statement(s.Final)
	}

	oldend := l.B.End()
	trybb := l.B.NewBlock("try")
	finallybb := l.B.NewBlock("finally")
	// the landing pad for calls inside the try block
	landingpadbb := l.B.NewBlock("landingpad")
	endbb := l.B.NewBlock("endtryfinally")

	if l.B.Returned() {
		panic("lower: try entered from a terminated block")
	}
	l.B.CreateBr(trybb)

	l.pads.AddFinally(s.Final)
	l.pads.Push(landingpadbb)

	// the try block: every non-local exit re-lowers the finally inline
	l.B.SetScope(ir.Scope{Cur: trybb, End: finallybb})
	l.pushScope(targetScope{stmt: s, cleanup: finallyCleanup{body: s.Final}})
	err := l.Statement(s.Body)
	l.popScope()
	if err != nil {
		return err
	}

	if !l.B.Returned() {
		l.B.CreateBr(finallybb)
	}

	frame := l.pads.Pop()

	// the fall-through copy of the finally
	l.B.SetScope(ir.Scope{Cur: finallybb, End: landingpadbb})
	if err := l.Statement(s.Final); err != nil {
		return err
	}
	if !l.B.Returned() {
		l.B.CreateBr(endbb)
	}

	// the unwind copy: run the finally, then re-raise
	if err := l.emitLandingPad(frame, endbb); err != nil {
		return err
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) tryCatch(s *ast.TryCatchStmt) error {
	log.Debugf("TryCatchStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()
	trybb := l.B.NewBlock("try")
	// the landing pad branches to the matching catch block
	landingpadbb := l.B.NewBlock("landingpad")
	endbb := l.B.NewBlock("endtrycatch")

	if l.B.Returned() {
		panic("lower: try entered from a terminated block")
	}
	l.B.CreateBr(trybb)

	for _, c := range s.Catches {
		l.pads.AddCatch(c, endbb)
	}
	l.pads.Push(landingpadbb)

	l.B.SetScope(ir.Scope{Cur: trybb, End: landingpadbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}

	if !l.B.Returned() {
		l.B.CreateBr(endbb)
	}

	frame := l.pads.Pop()
	if err := l.emitLandingPad(frame, endbb); err != nil {
		return err
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) throwStatement(s *ast.ThrowStmt) error {
	log.Debugf("ThrowStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	v, err := l.Exprs.Lower(s.X)
	if err != nil {
		return err
	}
	l.Debug.FuncEnd(l.Decl.Name)

	fn := l.runtimeFn(rtThrowException)
	arg := l.B.CreateBitcast(v, objectPtr, "throwable")
	l.B.CallOrInvoke(fn, []*ir.Value{arg}, l.pads.Top(), "")
	l.B.CreateUnreachable()

	l.afterDead("afterthrow")
	return nil
}
