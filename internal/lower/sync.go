package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
	"sable/internal/semantic"
)

func (l *Lowerer) synchronizedStatement(s *ast.SynchronizedStmt) error {
	log.Debugf("SynchronizedStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	// enter the lock: an explicit object's monitor, or a synthesized
	// critical section unique to this statement
	var handle *ir.Value
	monitor := s.X != nil
	if monitor {
		v, err := l.Exprs.Lower(s.X)
		if err != nil {
			return err
		}
		handle = l.B.CreateBitcast(v, objectPtr, "monitor")
		l.B.CallOrInvoke(l.runtimeFn(rtMonitorEnter), []*ir.Value{handle}, l.pads.Top(), "")
	} else {
		g := l.B.Mod.NewUniqueGlobal(".uniqueCS", critSecType, &ir.NullConst{Ty: critSecType}, false)
		handle = g.Ref()
		l.B.CallOrInvoke(l.runtimeFn(rtCriticalEnter), []*ir.Value{handle}, l.pads.Top(), "")
	}

	cleanup := monitorCleanup{handle: handle, monitor: monitor}
	l.pushScope(targetScope{stmt: s, cleanup: cleanup})
	err := l.Statement(s.Body)
	l.popScope()
	if err != nil {
		return err
	}

	// no point in an unreachable unlock; terminating statements insert
	// their own release through the cleanup runner
	if l.B.Returned() {
		return nil
	}
	l.emitMonitorLeave(cleanup)
	return nil
}

func (l *Lowerer) volatileStatement(s *ast.VolatileStmt) error {
	log.Debugf("VolatileStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	if s.Stmt == nil {
		// barrier only: load-store and store-load
		l.B.CreateMemoryBarrier(false, true, true, false)
		return nil
	}

	// load-store ahead of the body
	l.B.CreateMemoryBarrier(false, true, false, false)

	l.pushScope(targetScope{stmt: s, cleanup: volatileCleanup{}})
	err := l.Statement(s.Stmt)
	l.popScope()
	if err != nil {
		return err
	}

	// no point in an unreachable barrier; terminating statements insert
	// their own through the cleanup runner
	if semantic.FallsThrough(s.Stmt) {
		l.B.CreateMemoryBarrier(false, false, true, false)
	}
	return nil
}
