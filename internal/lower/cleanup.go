package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

// enclosingHandlers emits the cleanup chain that must run before control
// transfers out of the scopes enclosing the cursor. target is the scope
// statement the transfer lands in; nil means all the way out (return,
// throw). Cleanups are emitted innermost first, into the current block,
// so they precede the branch or ret that causes the exit.
func (l *Lowerer) enclosingHandlers(target ast.Stmt) error {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := l.scopes[i]
		if target != nil && sc.stmt == target {
			break
		}
		if sc.cleanup == nil {
			continue
		}
		if err := l.emitCleanup(i, sc.cleanup); err != nil {
			return err
		}
	}
	return nil
}

// emitCleanup materializes a single cleanup inline. While a finally body
// is re-lowered, the scope stack is truncated below the owning scope so a
// nested non-local exit only runs the outer cleanups once.
func (l *Lowerer) emitCleanup(idx int, c Cleanup) error {
	switch c := c.(type) {
	case finallyCleanup:
		saved := l.scopes
		l.scopes = append([]targetScope(nil), l.scopes[:idx]...)
		err := l.Statement(c.body)
		l.scopes = saved
		return err
	case monitorCleanup:
		l.emitMonitorLeave(c)
		return nil
	case volatileCleanup:
		l.B.CreateMemoryBarrier(false, false, true, false)
		return nil
	}
	return nil
}

// emitMonitorLeave releases the lock a synchronized scope holds
func (l *Lowerer) emitMonitorLeave(c monitorCleanup) {
	if c.monitor {
		fn := l.runtimeFn(rtMonitorExit)
		l.B.CallOrInvoke(fn, []*ir.Value{c.handle}, l.pads.Top(), "")
	} else {
		fn := l.runtimeFn(rtCriticalExit)
		l.B.CallOrInvoke(fn, []*ir.Value{c.handle}, l.pads.Top(), "")
	}
}
