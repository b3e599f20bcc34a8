package semantic

import (
	"sable/internal/ast"
)

// FallsThrough reports whether control can reach the point after a
// statement when it executes. The lowerer uses it to decide whether the
// cursor needs a terminator after a construct (for example the trailing
// barrier of a volatile statement is elided when the body always
// transfers control).
func FallsThrough(s ast.Stmt) bool {
	switch st := s.(type) {
	case nil:
		return true
	case *ast.CompoundStmt:
		ft := true
		for _, child := range st.Stmts {
			if child == nil {
				continue
			}
			// statements after a non-falling one are unreachable; their
			// own exits do not resurrect the block
			if ft {
				ft = FallsThrough(child)
			}
		}
		return ft
	case *ast.ScopeStmt:
		return FallsThrough(st.Stmt)
	case *ast.ReturnStmt, *ast.ThrowStmt, *ast.GotoStmt, *ast.GotoCaseStmt,
		*ast.GotoDefaultStmt, *ast.BreakStmt, *ast.ContinueStmt, *ast.SwitchErrorStmt:
		return false
	case *ast.IfStmt:
		if st.Else == nil {
			return true
		}
		return FallsThrough(st.Then) || FallsThrough(st.Else)
	case *ast.WhileStmt, *ast.DoWhileStmt, *ast.ForeachStmt, *ast.ForeachRangeStmt:
		return true
	case *ast.ForStmt:
		if st.Cond == nil {
			// for(;;) only exits through a break
			return hasBreak(st.Body, st)
		}
		return true
	case *ast.UnrolledLoopStmt:
		return true
	case *ast.SwitchStmt:
		// without a default the unmatched selector falls out; otherwise
		// the switch exits through a break or the last arm's fall-through
		if st.Default == nil {
			return true
		}
		return hasBreak(st.Body, st) || FallsThrough(st.Body)
	case *ast.CaseStmt:
		return FallsThrough(st.Body)
	case *ast.DefaultStmt:
		return FallsThrough(st.Body)
	case *ast.LabelStmt:
		return FallsThrough(st.Stmt)
	case *ast.TryFinallyStmt:
		return FallsThrough(st.Body) && FallsThrough(st.Final)
	case *ast.TryCatchStmt:
		if FallsThrough(st.Body) {
			return true
		}
		for _, c := range st.Catches {
			if FallsThrough(c.Body) {
				return true
			}
		}
		return false
	case *ast.SynchronizedStmt:
		return FallsThrough(st.Body)
	case *ast.VolatileStmt:
		return FallsThrough(st.Stmt)
	case *ast.WithStmt:
		return FallsThrough(st.Body)
	default:
		return true
	}
}

// hasBreak reports whether body contains an unlabeled break binding to
// loop, or a labeled break whose label wraps loop
func hasBreak(body ast.Stmt, loop ast.Stmt) bool {
	found := false
	var inner []ast.Stmt // loops/switches capturing unlabeled breaks

	var visit func(s ast.Stmt)
	visit = func(s ast.Stmt) {
		if s == nil || found {
			return
		}
		switch st := s.(type) {
		case *ast.BreakStmt:
			if st.Label == "" {
				if len(inner) == 0 {
					found = true
				}
			} else if st.Target != nil && labelWraps(st.Target, loop) {
				found = true
			}
		case *ast.WhileStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.DoWhileStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.ForStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.ForeachStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.ForeachRangeStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.SwitchStmt:
			inner = append(inner, st)
			visit(st.Body)
			inner = inner[:len(inner)-1]
		case *ast.CompoundStmt:
			for _, child := range st.Stmts {
				visit(child)
			}
		case *ast.ScopeStmt:
			visit(st.Stmt)
		case *ast.IfStmt:
			visit(st.Then)
			visit(st.Else)
		case *ast.CaseStmt:
			visit(st.Body)
		case *ast.DefaultStmt:
			visit(st.Body)
		case *ast.LabelStmt:
			visit(st.Stmt)
		case *ast.TryCatchStmt:
			visit(st.Body)
			for _, c := range st.Catches {
				visit(c.Body)
			}
		case *ast.TryFinallyStmt:
			visit(st.Body)
			visit(st.Final)
		case *ast.SynchronizedStmt:
			visit(st.Body)
		case *ast.VolatileStmt:
			visit(st.Stmt)
		case *ast.WithStmt:
			visit(st.Body)
		}
	}
	visit(body)
	return found
}

func labelWraps(lbl *ast.LabelStmt, loop ast.Stmt) bool {
	target := lbl.Stmt
	for {
		if target == loop {
			return true
		}
		sc, ok := target.(*ast.ScopeStmt)
		if !ok {
			return false
		}
		target = sc.Stmt
	}
}
