package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

// Cleanup is the action a scope runs when control leaves it by any path.
// A tagged value, matched by the cleanup runner.
type Cleanup interface {
	cleanupKind()
}

// finallyCleanup re-lowers the finally body at every exit site. The body
// is carried by AST reference, never cloned at the SSA level.
type finallyCleanup struct {
	body ast.Stmt
}

// monitorCleanup releases a monitor or synthesized critical section
type monitorCleanup struct {
	handle  *ir.Value
	monitor bool // true: object monitor, false: critical-section slot
}

// volatileCleanup emits the trailing store-load barrier
type volatileCleanup struct{}

func (finallyCleanup) cleanupKind()  {}
func (monitorCleanup) cleanupKind()  {}
func (volatileCleanup) cleanupKind() {}

// targetScope is one entry of the target-scope stack: an active lexical
// scope that break/continue/goto may leave or target. breakBB and
// continueBB are nil for pure cleanup scopes and label scopes.
type targetScope struct {
	stmt       ast.Stmt
	cleanup    Cleanup
	breakBB    *ir.BasicBlock
	continueBB *ir.BasicBlock
}

func (l *Lowerer) pushScope(s targetScope) {
	l.scopes = append(l.scopes, s)
}

func (l *Lowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// findBreakScope walks the stack top-down for the nearest scope with a
// break target, or the scope owning target when a label is given.
func (l *Lowerer) findBreakScope(target ast.Stmt) *targetScope {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := &l.scopes[i]
		if target != nil {
			if sc.stmt == target {
				return sc
			}
		} else if sc.breakBB != nil {
			return sc
		}
	}
	return nil
}

// findContinueScope is findBreakScope for continue targets
func (l *Lowerer) findContinueScope(target ast.Stmt) *targetScope {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := &l.scopes[i]
		if target != nil {
			if sc.stmt == target {
				return sc
			}
		} else if sc.continueBB != nil {
			return sc
		}
	}
	return nil
}

// labelTarget unwraps the statement a label names down to the underlying
// loop or switch, skipping transparent scope wrappers.
func labelTarget(s *ast.LabelStmt) ast.Stmt {
	target := s.Stmt
	for {
		if sc, ok := target.(*ast.ScopeStmt); ok {
			target = sc.Stmt
			continue
		}
		return target
	}
}
