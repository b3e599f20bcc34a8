package lower

import (
	"fmt"

	"sable/internal/ast"
	"sable/internal/ir"
)

func (l *Lowerer) whileStatement(s *ast.WhileStmt) error {
	log.Debugf("WhileStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()
	condbb := l.B.NewBlock("whilecond")
	bodybb := l.B.NewBlock("whilebody")
	endbb := l.B.NewBlock("endwhile")

	l.B.CreateBr(condbb)

	l.B.SetScope(ir.Scope{Cur: condbb, End: endbb})
	cond, err := l.loweredBool(s.Cond)
	if err != nil {
		return err
	}
	l.B.CreateCondBr(cond, bodybb, endbb)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: endbb})
	l.pushScope(targetScope{stmt: s, continueBB: condbb, breakBB: endbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}
	l.popScope()

	if !l.B.Returned() {
		l.B.CreateBr(condbb)
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) doWhileStatement(s *ast.DoWhileStmt) error {
	log.Debugf("DoWhileStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()
	bodybb := l.B.NewBlock("dowhile")
	condbb := l.B.NewBlock("dowhilecond")
	endbb := l.B.NewBlock("enddowhile")

	l.B.CreateBr(bodybb)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: condbb})
	l.pushScope(targetScope{stmt: s, continueBB: condbb, breakBB: endbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}
	l.popScope()

	if !l.B.Returned() {
		l.B.CreateBr(condbb)
	}

	l.B.SetScope(ir.Scope{Cur: condbb, End: endbb})
	cond, err := l.loweredBool(s.Cond)
	if err != nil {
		return err
	}
	l.B.CreateCondBr(cond, bodybb, endbb)

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) forStatement(s *ast.ForStmt) error {
	log.Debugf("ForStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()
	condbb := l.B.NewBlock("forcond")
	bodybb := l.B.NewBlock("forbody")
	incbb := l.B.NewBlock("forinc")
	endbb := l.B.NewBlock("endfor")

	if s.Init != nil {
		if err := l.Statement(s.Init); err != nil {
			return err
		}
	}

	l.B.CreateBr(condbb)
	l.pushScope(targetScope{stmt: s, continueBB: incbb, breakBB: endbb})

	l.B.SetScope(ir.Scope{Cur: condbb, End: bodybb})
	var cond *ir.Value
	if s.Cond != nil {
		var err error
		cond, err = l.loweredBool(s.Cond)
		if err != nil {
			return err
		}
	} else {
		cond = ir.ConstBool(true)
	}
	l.B.CreateCondBr(cond, bodybb, endbb)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: incbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}

	if !l.B.Returned() {
		l.B.CreateBr(incbb)
	}
	l.B.SetScope(ir.Scope{Cur: incbb, End: endbb})

	if s.Inc != nil {
		if _, err := l.Exprs.Lower(s.Inc); err != nil {
			return err
		}
	}

	if !l.B.Returned() {
		l.B.CreateBr(condbb)
	}
	l.popScope()

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) unrolledLoop(s *ast.UnrolledLoopStmt) error {
	log.Debugf("UnrolledLoopStmt: line %d", s.Position.Line)

	if len(s.Stmts) == 0 {
		return nil
	}
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()
	blocks := make([]*ir.BasicBlock, len(s.Stmts))
	for i := range s.Stmts {
		blocks[i] = l.B.NewBlock("unrolledstmt")
	}
	endbb := l.B.NewBlock("unrolledend")

	if !l.B.Returned() {
		l.B.CreateBr(blocks[0])
	}

	for i, child := range s.Stmts {
		thisbb := blocks[i]
		nextbb := endbb
		if i+1 < len(blocks) {
			nextbb = blocks[i+1]
		}

		l.B.SetScope(ir.Scope{Cur: thisbb, End: nextbb})

		// continue advances to the next member, break exits the loop
		l.pushScope(targetScope{stmt: s, continueBB: nextbb, breakBB: endbb})
		err := l.Statement(child)
		l.popScope()
		if err != nil {
			return err
		}

		if !l.B.Returned() {
			l.B.CreateBr(nextbb)
		}
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) foreachStatement(s *ast.ForeachStmt) error {
	log.Debugf("ForeachStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	// key slot: declared key or a synthesized index of size_t
	var keyType *ir.IntType
	var keyvar *ir.Value
	if s.Key != nil {
		kt, ok := l.Types.Lower(s.Key.Type).(*ir.IntType)
		if !ok {
			return fmt.Errorf("foreach key %s is not an integer", s.Key.Name)
		}
		keyType = kt
		keyvar = l.Decls.DeclareLocal(s.Key)
	} else {
		keyType = l.Types.SizeT()
		keyvar = l.B.CreateAlloca(keyType, "foreachkey")
	}
	zerokey := ir.ConstInt(keyType, 0)

	// value binding; by-value bindings copy the element into their own slot
	var valvar *ir.Value
	byValue := !s.Value.Ref && !s.Value.Out
	if byValue {
		valvar = l.Decls.DeclareLocal(s.Value)
	}

	aggr, err := l.Exprs.Lower(s.Aggr)
	if err != nil {
		return err
	}
	niters := l.Exprs.ArrayLen(aggr)
	ptr := l.Exprs.ArrayPtr(aggr)

	// match the length's width to the key's
	if sz1, sz2 := l.Types.BitSize(niters.Type), keyType.Bits; sz1 != sz2 {
		if sz1 < sz2 {
			niters = l.B.CreateZExt(niters, keyType, "foreachtrunckey")
		} else {
			niters = l.B.CreateTrunc(niters, keyType, "foreachtrunckey")
		}
	} else if !ir.SameType(niters.Type, keyType) {
		niters = l.B.CreateBitcast(niters, keyType, "foreachtrunckey")
	}

	if s.Reverse {
		l.B.CreateStore(niters, keyvar)
	} else {
		l.B.CreateStore(zerokey, keyvar)
	}

	oldend := l.B.End()
	condbb := l.B.NewBlock("foreachcond")
	bodybb := l.B.NewBlock("foreachbody")
	nextbb := l.B.NewBlock("foreachnext")
	endbb := l.B.NewBlock("foreachend")

	l.B.CreateBr(condbb)

	l.B.SetScope(ir.Scope{Cur: condbb, End: bodybb})
	load := l.B.CreateLoad(keyvar, "key")
	var done *ir.Value
	if s.Reverse {
		done = l.B.CreateICmp(ir.UGT, load, zerokey, "morekeys")
		// reverse iteration pre-decrements in the condition block
		load = l.B.CreateBinOp("sub", load, ir.ConstInt(keyType, 1), "prevkey")
		l.B.CreateStore(load, keyvar)
	} else {
		done = l.B.CreateICmp(ir.ULT, load, niters, "morekeys")
	}
	l.B.CreateCondBr(done, bodybb, endbb)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: nextbb})
	loadedKey := l.B.CreateLoad(keyvar, "key")
	elem := l.B.CreateGEP(ptr, loadedKey, "elem")
	l.Decls.BindLocal(s.Value, elem)
	if byValue {
		l.Decls.Copy(valvar, elem)
		l.Decls.BindLocal(s.Value, valvar)
	}

	l.pushScope(targetScope{stmt: s, continueBB: nextbb, breakBB: endbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}
	l.popScope()

	if !l.B.Returned() {
		l.B.CreateBr(nextbb)
	}

	l.B.SetScope(ir.Scope{Cur: nextbb, End: endbb})
	if !s.Reverse {
		v := l.B.CreateLoad(keyvar, "key")
		v = l.B.CreateBinOp("add", v, ir.ConstInt(keyType, 1), "nextkey")
		l.B.CreateStore(v, keyvar)
	}
	l.B.CreateBr(condbb)

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) foreachRangeStatement(s *ast.ForeachRangeStmt) error {
	log.Debugf("ForeachRangeStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	lower, err := l.Exprs.Lower(s.Lower)
	if err != nil {
		return err
	}
	upper, err := l.Exprs.Lower(s.Upper)
	if err != nil {
		return err
	}

	keyType, ok := l.Types.Lower(s.Key.Type).(*ir.IntType)
	if !ok {
		return fmt.Errorf("foreach range key %s is not an integer", s.Key.Name)
	}
	keyval := l.Decls.DeclareLocal(s.Key)

	if s.Reverse {
		l.B.CreateStore(upper, keyval)
	} else {
		l.B.CreateStore(lower, keyval)
	}

	oldend := l.B.End()
	condbb := l.B.NewBlock("foreachrange_cond")
	bodybb := l.B.NewBlock("foreachrange_body")
	nextbb := l.B.NewBlock("foreachrange_next")
	endbb := l.B.NewBlock("foreachrange_end")

	l.B.CreateBr(condbb)

	l.B.SetScope(ir.Scope{Cur: condbb, End: bodybb})
	key := l.B.CreateLoad(keyval, "key")
	var pred ir.ICmpPred
	var bound *ir.Value
	if keyType.Unsigned {
		if s.Reverse {
			pred, bound = ir.UGT, lower
		} else {
			pred, bound = ir.ULT, upper
		}
	} else {
		if s.Reverse {
			pred, bound = ir.SGT, lower
		} else {
			pred, bound = ir.SLT, upper
		}
	}
	cond := l.B.CreateICmp(pred, key, bound, "inrange")
	l.B.CreateCondBr(cond, bodybb, endbb)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: nextbb})
	if s.Reverse {
		v := l.B.CreateLoad(keyval, "key")
		v = l.B.CreateBinOp("sub", v, ir.ConstInt(keyType, 1), "prevkey")
		l.B.CreateStore(v, keyval)
	}

	l.pushScope(targetScope{stmt: s, continueBB: nextbb, breakBB: endbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}
	l.popScope()

	if !l.B.Returned() {
		l.B.CreateBr(nextbb)
	}

	l.B.SetScope(ir.Scope{Cur: nextbb, End: endbb})
	if !s.Reverse {
		v := l.B.CreateLoad(keyval, "key")
		v = l.B.CreateBinOp("add", v, ir.ConstInt(keyType, 1), "nextkey")
		l.B.CreateStore(v, keyval)
	}
	l.B.CreateBr(condbb)

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

func (l *Lowerer) breakStatement(s *ast.BreakStmt) error {
	log.Debugf("BreakStmt: line %d", s.Position.Line)

	// don't emit two terminators in a row; happens before synthesized
	// default statements when the last case terminates
	if l.B.Returned() {
		return nil
	}
	l.Debug.StopPoint(s.Position.Line)

	var sc *targetScope
	if s.Label != "" {
		if s.Target == nil {
			panic("lower: labeled break was not bound by semantic analysis")
		}
		sc = l.findBreakScope(labelTarget(s.Target))
	} else {
		sc = l.findBreakScope(nil)
	}
	if sc == nil || sc.breakBB == nil {
		panic("lower: no enclosing breakable scope")
	}
	if err := l.enclosingHandlers(sc.stmt); err != nil {
		return err
	}
	l.B.CreateBr(sc.breakBB)

	l.afterDead("afterbreak")
	return nil
}

func (l *Lowerer) continueStatement(s *ast.ContinueStmt) error {
	log.Debugf("ContinueStmt: line %d", s.Position.Line)

	if l.B.Returned() {
		return nil
	}
	l.Debug.StopPoint(s.Position.Line)

	var sc *targetScope
	if s.Label != "" {
		if s.Target == nil {
			panic("lower: labeled continue was not bound by semantic analysis")
		}
		sc = l.findContinueScope(labelTarget(s.Target))
	} else {
		sc = l.findContinueScope(nil)
	}
	if sc == nil || sc.continueBB == nil {
		panic("lower: no enclosing continuable scope")
	}
	if err := l.enclosingHandlers(sc.stmt); err != nil {
		return err
	}
	l.B.CreateBr(sc.continueBB)

	l.afterDead("aftercontinue")
	return nil
}

// loweredBool lowers a loop/branch condition and coerces it to i1
func (l *Lowerer) loweredBool(e ast.Expr) (*ir.Value, error) {
	v, err := l.Exprs.Lower(e)
	if err != nil {
		return nil, err
	}
	if ir.BitSize(v.Type) != 1 {
		v = l.Exprs.CastToBool(v)
	}
	return v, nil
}
