package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

// padCatch registers one catch handler: the arm and the block control
// joins after the handler body.
type padCatch struct {
	c   *ast.Catch
	end *ir.BasicBlock
}

// padFrame is one active exception-handler frame. A frame carries the
// landing-pad block calls inside the try unwind to, plus the catches and
// finallys registered before the frame was pushed.
type padFrame struct {
	pad      *ir.BasicBlock
	catches  []padCatch
	finallys []ast.Stmt
}

// LandingPadStack is the per-function stack of active handler frames.
// Catches and finallys are registered into a pending frame, then Push
// activates it with its landing-pad block. Frames are pushed on
// try-entry and popped on try-exit symmetrically.
type LandingPadStack struct {
	pending padFrame
	frames  []padFrame
}

// AddCatch registers a catch arm into the pending frame
func (s *LandingPadStack) AddCatch(c *ast.Catch, end *ir.BasicBlock) {
	s.pending.catches = append(s.pending.catches, padCatch{c: c, end: end})
}

// AddFinally registers a finally body into the pending frame
func (s *LandingPadStack) AddFinally(body ast.Stmt) {
	s.pending.finallys = append(s.pending.finallys, body)
}

// Push activates the pending frame with its landing-pad block
func (s *LandingPadStack) Push(pad *ir.BasicBlock) {
	s.pending.pad = pad
	s.frames = append(s.frames, s.pending)
	s.pending = padFrame{}
}

// Pop deactivates and returns the top frame
func (s *LandingPadStack) Pop() padFrame {
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Top returns the unwind destination for calls emitted now, or nil when
// no handler is active (plain calls instead of invokes)
func (s *LandingPadStack) Top() *ir.BasicBlock {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1].pad
}

// emitLandingPad fills in a popped frame's landing-pad block: receive the
// exception, run the frame's finallys, then dispatch to a matching catch
// by runtime type, re-raising when nothing matches. Called with the frame
// already popped so nested calls unwind to the next outer frame.
func (l *Lowerer) emitLandingPad(frame padFrame, end *ir.BasicBlock) error {
	saved := l.B.Scope()
	l.B.SetScope(ir.Scope{Cur: frame.pad, End: end})

	exn := l.B.CreateEHPad("ehptr")

	// active finallys run before any dispatch
	for i := len(frame.finallys) - 1; i >= 0; i-- {
		if err := l.Statement(frame.finallys[i]); err != nil {
			return err
		}
		if l.B.Returned() {
			// the finally body took over control
			l.B.SetScope(saved)
			return nil
		}
	}

	if len(frame.catches) == 0 {
		l.B.CreateResume(exn)
		l.B.SetScope(saved)
		return nil
	}

	// dispatch on the thrown object's runtime type, in registration order
	selector := l.B.CallOrInvoke(l.runtimeFn(rtEHTypeID), []*ir.Value{exn}, l.pads.Top(), "ehsel")
	for _, pc := range frame.catches {
		handler := l.B.NewBlock("catch")
		next := l.B.NewBlock("catchdispatch")

		ti := l.catchFilter(pc.c)
		tid := l.B.CallOrInvoke(l.runtimeFn(rtEHTypeIDFor), []*ir.Value{ti}, l.pads.Top(), "ehtid")
		match := l.B.CreateICmp(ir.EQ, selector, tid, "ehmatch")
		l.B.CreateCondBr(match, handler, next)

		l.B.SetScope(ir.Scope{Cur: handler, End: next})
		if err := l.emitCatchBody(pc, exn); err != nil {
			return err
		}
		l.B.SetScope(ir.Scope{Cur: next, End: end})
	}

	// no registered type matched: re-raise into the next outer frame
	l.B.CreateResume(exn)
	l.B.SetScope(saved)
	return nil
}

func (l *Lowerer) catchFilter(c *ast.Catch) *ir.Value {
	name := "Throwable"
	if obj, ok := c.Type.(*ast.ObjectType); ok {
		name = obj.Name
	}
	g := l.typeInfoGlobal(name)
	return l.B.CreateBitcast(g.Ref(), objectPtr, "ehti")
}

func (l *Lowerer) emitCatchBody(pc padCatch, exn *ir.Value) error {
	if pc.c.Var != "" {
		decl := &ast.VarDecl{Name: pc.c.Var, Type: pc.c.Type, Position: pc.c.Position}
		slot := l.Decls.DeclareLocal(decl)
		obj := l.B.CreateBitcast(exn, l.Types.Lower(pc.c.Type), "caught")
		l.Decls.Assign(slot, obj)
	}
	if err := l.Statement(pc.c.Body); err != nil {
		return err
	}
	if !l.B.Returned() {
		l.B.CreateBr(pc.end)
	}
	return nil
}
