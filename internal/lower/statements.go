package lower

import (
	"sable/internal/ast"
	"sable/internal/ir"
)

func (l *Lowerer) ifStatement(s *ast.IfStmt) error {
	log.Debugf("IfStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	cond, err := l.Exprs.Lower(s.Cond)
	if err != nil {
		return err
	}

	oldend := l.B.End()
	ifbb := l.B.NewBlock("if")
	endbb := l.B.NewBlock("endif")
	elsebb := endbb
	if s.Else != nil {
		elsebb = l.B.NewBlockBefore("else", endbb)
	}

	if ir.BitSize(cond.Type) != 1 {
		cond = l.Exprs.CastToBool(cond)
	}
	l.B.CreateCondBr(cond, ifbb, elsebb)

	l.B.SetScope(ir.Scope{Cur: ifbb, End: elsebb})
	if err := l.Statement(s.Then); err != nil {
		return err
	}
	if !l.B.Returned() {
		l.B.CreateBr(endbb)
	}

	if s.Else != nil {
		l.B.SetScope(ir.Scope{Cur: elsebb, End: endbb})
		if err := l.Statement(s.Else); err != nil {
			return err
		}
		if !l.B.Returned() {
			l.B.CreateBr(endbb)
		}
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) returnStatement(s *ast.ReturnStmt) error {
	log.Debugf("ReturnStmt: line %d", s.Position.Line)

	if s.X != nil {
		if ir.IsVoid(l.Fn.Type.Ret) {
			// returning through the hidden out-pointer argument
			if l.Fn.RetArg == nil {
				panic("lower: return with value in void function without sret argument")
			}
			l.Debug.StopPoint(s.Position.Line)
			v, err := l.Exprs.Lower(s.X)
			if err != nil {
				return err
			}
			l.Decls.Assign(l.Fn.RetArg, v)
			if err := l.enclosingHandlers(nil); err != nil {
				return err
			}
			l.Debug.FuncEnd(l.Decl.Name)
			l.B.CreateRet(nil)
		} else {
			l.Debug.StopPoint(s.Position.Line)
			v, err := l.Exprs.Lower(s.X)
			if err != nil {
				return err
			}
			v = l.Exprs.PutRet(v)

			// structs come back as a pointer; load before returning by value
			if _, isStruct := l.Fn.Type.Ret.(*ir.StructType); isStruct {
				if _, isPtr := v.Type.(*ir.PointerType); isPtr {
					v = l.B.CreateLoad(v, "sretload")
				}
			}
			if !ir.SameType(v.Type, l.Fn.Type.Ret) {
				v = l.Exprs.Bitcast(v, l.Fn.Type.Ret)
			}

			if err := l.enclosingHandlers(nil); err != nil {
				return err
			}
			l.Debug.FuncEnd(l.Decl.Name)
			l.B.CreateRet(v)
		}
	} else {
		if !ir.IsVoid(l.Fn.Type.Ret) {
			panic("lower: return without value in non-void function")
		}
		if err := l.enclosingHandlers(nil); err != nil {
			return err
		}
		l.Debug.FuncEnd(l.Decl.Name)
		l.B.CreateRet(nil)
	}

	l.afterDead("afterreturn")
	return nil
}

// scopedLabelName qualifies a label with the function's mangled name so
// forward gotos resolve within the right function
func (l *Lowerer) scopedLabelName(ident string) string {
	return l.Decl.Mangle() + "." + ident
}

// labelBlock fetches or lazily creates the block a label names; forward
// gotos and the label definition share the same entry
func (l *Lowerer) labelBlock(ident string) *ir.BasicBlock {
	name := l.scopedLabelName(ident)
	if bb, ok := l.labels[name]; ok {
		return bb
	}
	bb := l.B.NewBlock("label_" + name)
	l.labels[name] = bb
	return bb
}

func (l *Lowerer) labelStatement(s *ast.LabelStmt) error {
	log.Debugf("LabelStmt %s: line %d", s.Name, s.Position.Line)

	if l.asm != nil {
		// a label inside inline asm becomes asm text, not a block
		code := l.Decl.Mangle() + "_" + s.Name + ":"
		l.Fn.InlineAsm = append(l.Fn.InlineAsm, code)
		l.asm.internalLabels = append(l.asm.internalLabels, s.Name)
		l.Fn.NeverInline = true
	} else {
		oldend := l.B.End()
		labelBB := l.labelBlock(s.Name)
		l.B.Fn.MoveBlockBefore(labelBB, oldend)

		if !l.B.Returned() {
			l.B.CreateBr(labelBB)
		}
		l.B.SetScope(ir.Scope{Cur: labelBB, End: oldend})
	}

	if s.Stmt != nil {
		// neutral scope so labeled break/continue resolve through it
		l.pushScope(targetScope{stmt: s})
		err := l.Statement(s.Stmt)
		l.popScope()
		return err
	}
	return nil
}

func (l *Lowerer) gotoStatement(s *ast.GotoStmt) error {
	log.Debugf("GotoStmt %s: line %d", s.Label, s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	target := l.labelBlock(s.Label)

	// run cleanups up to the scope holding the label when it encloses
	// the goto; a forward jump out of every cleanup scope runs them all
	var labelScope ast.Stmt
	if s.Target != nil {
		for i := len(l.scopes) - 1; i >= 0; i-- {
			if l.scopes[i].stmt == ast.Stmt(s.Target) {
				labelScope = l.scopes[i].stmt
				break
			}
		}
	}
	if err := l.enclosingHandlers(labelScope); err != nil {
		return err
	}

	l.B.CreateBr(target)
	l.afterDead("aftergoto")
	return nil
}

func (l *Lowerer) withStatement(s *ast.WithStmt) error {
	log.Debugf("WithStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	// the symbol form carries no wthis and emits no code of its own
	if s.WThis != nil {
		v, err := l.Exprs.Lower(s.X)
		if err != nil {
			return err
		}
		mem := l.Decls.DeclareLocal(s.WThis)
		l.Decls.Assign(mem, v)
	}
	return l.Statement(s.Body)
}

func (l *Lowerer) switchError(s *ast.SwitchErrorStmt) error {
	log.Debugf("SwitchErrorStmt: line %d", s.Position.Line)

	fn := l.runtimeFn(rtSwitchError)
	file := l.fileNameGlobal()
	line := ir.ConstInt(ir.U32, uint64(s.Position.Line))
	l.B.CallOrInvoke(fn, []*ir.Value{file, line}, l.pads.Top(), "")
	l.B.CreateUnreachable()
	return nil
}

// fileNameGlobal interns the module's source file name for runtime traps
func (l *Lowerer) fileNameGlobal() *ir.Value {
	name := ".file"
	for _, g := range l.B.Mod.Globals {
		if g.Name == name {
			return l.B.CreateBitcast(g.Ref(), &ir.PointerType{Elem: ir.U8}, "file")
		}
	}
	data := &ir.StringConst{
		Ty:    &ir.ArrayType{Len: len(l.B.Mod.Name), Elem: ir.U8},
		Value: l.B.Mod.Name,
		Width: 1,
	}
	g := l.B.Mod.NewGlobal(name, data.Ty, data, true, ir.InternalLinkage)
	return l.B.CreateBitcast(g.Ref(), &ir.PointerType{Elem: ir.U8}, "file")
}

// asmBlock tracks inline-asm emission state while lowering an asm block
type asmBlock struct {
	internalLabels []string
}

func (l *Lowerer) asmBlockStatement(s *ast.AsmBlockStmt) error {
	log.Debugf("AsmBlockStmt: line %d", s.Position.Line)

	if l.asm != nil {
		return unimplemented(s, "statement type %T not implemented: nested asm blocks", s)
	}
	l.asm = &asmBlock{}
	defer func() { l.asm = nil }()

	for _, child := range s.Stmts {
		switch c := child.(type) {
		case *ast.AsmStmt:
			l.Fn.InlineAsm = append(l.Fn.InlineAsm, c.Code)
		case *ast.LabelStmt:
			if err := l.labelStatement(c); err != nil {
				return err
			}
		default:
			return unimplemented(child, "statement type %T not implemented inside asm block", child)
		}
	}
	return nil
}
