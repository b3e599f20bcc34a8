package lower

import (
	"fmt"
	"sort"

	"sable/internal/ast"
	"sable/internal/ir"
)

// caseState is the per-case lowering state: the block holding the case
// body (lazily replaced on first encounter) and the integer selector the
// switch terminator dispatches on. Cleared at the start of every switch.
type caseState struct {
	bodyBB   *ir.BasicBlock
	selector *ir.Value
}

func (l *Lowerer) switchStatement(s *ast.SwitchStmt) error {
	log.Debugf("SwitchStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	oldend := l.B.End()

	// clear data from previous passes
	for _, cs := range s.Cases {
		l.cases[cs] = &caseState{}
	}
	if s.Default != nil {
		l.defaults[s.Default] = &caseState{}
	}

	isString := len(s.Cases) > 0
	for _, cs := range s.Cases {
		if _, ok := cs.Value.(*ast.StrLit); !ok {
			isString = false
			break
		}
	}

	// block for the case chain, the default, and the break target
	bodybb := l.B.NewBlockBefore("switchbody", oldend)
	var defbb *ir.BasicBlock
	if s.Default != nil {
		defbb = l.B.NewBlockBefore("default", oldend)
		l.defaults[s.Default].bodyBB = defbb
	}
	endbb := l.B.NewBlockBefore("switchend", oldend)

	var condVal *ir.Value
	var err error
	if isString {
		condVal, err = l.stringSwitchSelector(s)
	} else {
		condVal, err = l.Exprs.Lower(s.Cond)
	}
	if err != nil {
		return err
	}

	fallback := defbb
	if fallback == nil {
		fallback = endbb
	}
	sw := l.B.CreateSwitch(condVal, fallback)

	l.B.SetScope(ir.Scope{Cur: bodybb, End: endbb})
	l.pushScope(targetScope{stmt: s, breakBB: endbb})
	if err := l.Statement(s.Body); err != nil {
		return err
	}
	l.popScope()

	if !l.B.Returned() {
		l.B.CreateBr(endbb)
	}

	// attach the case edges recorded while lowering the body
	for _, cs := range s.Cases {
		st := l.cases[cs]
		if st.bodyBB == nil || st.selector == nil {
			panic(fmt.Sprintf("lower: case at line %d never lowered", cs.Position.Line))
		}
		sw.AddCase(st.selector, st.bodyBB)
	}

	l.B.SetScope(ir.Scope{Cur: endbb, End: oldend})
	return nil
}

// stringCase pairs a case literal with its original position, so sorting
// by literal can assign each case its post-sort index as selector
type stringCase struct {
	lit   *ast.StrLit
	index int
}

// stringSwitchSelector builds the sorted static dispatch table and calls
// the runtime matcher; the returned integer (or -1 for no match) becomes
// the switch selector.
func (l *Lowerer) stringSwitchSelector(s *ast.SwitchStmt) (*ir.Value, error) {
	log.Debugf("is string switch")

	caseArray := make([]stringCase, len(s.Cases))
	for i, cs := range s.Cases {
		caseArray[i] = stringCase{lit: cs.Value.(*ast.StrLit), index: i}
	}
	// keys are unique by source rule, so plain sorting suffices
	sort.Slice(caseArray, func(i, j int) bool {
		return caseArray[i].lit.Value < caseArray[j].lit.Value
	})

	width := caseArray[0].lit.Width
	charTy := charType(width)
	entryTy := &ir.SliceType{Elem: charTy}

	inits := make([]ir.Constant, len(caseArray))
	for i, c := range caseArray {
		l.cases[s.Cases[c.index]].selector = ir.ConstInt(ir.I32, uint64(i))
		inits[i] = l.stringLiteralConst(c.lit, charTy)
	}

	// the table data is a module-scope constant array of the sorted
	// literals; the runtime receives it as a slice-of-slices
	arrTy := &ir.ArrayType{Len: len(inits), Elem: entryTy}
	arr := l.B.Mod.NewUniqueGlobal(".string_switch_table_data", arrTy, &ir.ArrayConst{Ty: arrTy, Elems: inits}, true)

	table := ir.ConstValue(&ir.SliceConst{
		Ty:  &ir.SliceType{Elem: entryTy},
		Len: &ir.IntConst{Ty: ir.SizeT, V: uint64(len(inits))},
		Ptr: &ir.BitcastConst{C: &ir.GlobalRef{G: arr}, To: &ir.PointerType{Elem: entryTy}},
	})

	cond, err := l.Exprs.Lower(s.Cond)
	if err != nil {
		return nil, err
	}

	fn := l.runtimeFn(stringSwitchFn(width))
	return l.B.CallOrInvoke(fn, []*ir.Value{table, cond}, l.pads.Top(), "tmp"), nil
}

// stringLiteralConst interns a literal's character data and returns the
// slice constant referencing it
func (l *Lowerer) stringLiteralConst(lit *ast.StrLit, charTy *ir.IntType) ir.Constant {
	n := len(lit.Value)
	if lit.Width > 1 {
		n = len([]rune(lit.Value))
	}
	dataTy := &ir.ArrayType{Len: n, Elem: charTy}
	data := l.B.Mod.NewUniqueGlobal(".str", dataTy, &ir.StringConst{Ty: dataTy, Value: lit.Value, Width: lit.Width}, true)
	return &ir.SliceConst{
		Ty:  &ir.SliceType{Elem: charTy},
		Len: &ir.IntConst{Ty: ir.SizeT, V: uint64(n)},
		Ptr: &ir.BitcastConst{C: &ir.GlobalRef{G: data}, To: &ir.PointerType{Elem: charTy}},
	}
}

func charType(width int) *ir.IntType {
	switch width {
	case 1:
		return ir.U8
	case 2:
		return ir.U16
	case 4:
		return ir.U32
	}
	panic(fmt.Sprintf("lower: bad string element width %d", width))
}

func stringSwitchFn(width int) string {
	switch width {
	case 1:
		return rtSwitchString
	case 2:
		return rtSwitchUString
	case 4:
		return rtSwitchDString
	}
	panic(fmt.Sprintf("lower: bad string element width %d", width))
}

func (l *Lowerer) caseStatement(s *ast.CaseStmt) error {
	log.Debugf("CaseStmt: line %d", s.Position.Line)

	st := l.cases[s]
	if st == nil {
		return fmt.Errorf("case statement at line %d outside a switch", s.Position.Line)
	}

	nbb := l.B.NewBlockBefore("case", l.B.End())

	// a previously assigned stub (goto case) falls through into the
	// real body block
	if st.bodyBB != nil && !st.bodyBB.Terminated() {
		ir.BranchTo(st.bodyBB, nbb)
	}
	st.bodyBB = nbb

	if st.selector == nil {
		c, err := l.Exprs.LowerConst(s.Value)
		if err != nil {
			return err
		}
		if _, ok := c.(*ir.IntConst); !ok {
			return fmt.Errorf("case selector at line %d is not an integer constant", s.Position.Line)
		}
		st.selector = ir.ConstValue(c)
	}

	// fall-through from the previous case body
	if !l.B.Returned() {
		l.B.CreateBr(st.bodyBB)
	}

	l.B.SetScope(ir.Scope{Cur: st.bodyBB, End: l.B.End()})
	return l.Statement(s.Body)
}

func (l *Lowerer) defaultStatement(s *ast.DefaultStmt) error {
	log.Debugf("DefaultStmt: line %d", s.Position.Line)

	st := l.defaults[s]
	if st == nil || st.bodyBB == nil {
		return fmt.Errorf("default statement at line %d outside a switch", s.Position.Line)
	}

	nbb := l.B.NewBlockBefore("default", l.B.End())
	if !st.bodyBB.Terminated() {
		ir.BranchTo(st.bodyBB, nbb)
	}
	st.bodyBB = nbb

	if !l.B.Returned() {
		l.B.CreateBr(st.bodyBB)
	}

	l.B.SetScope(ir.Scope{Cur: st.bodyBB, End: l.B.End()})
	return l.Statement(s.Body)
}

func (l *Lowerer) gotoCase(s *ast.GotoCaseStmt) error {
	log.Debugf("GotoCaseStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	st := l.cases[s.Case]
	if st == nil {
		return fmt.Errorf("goto case at line %d outside a switch", s.Position.Line)
	}
	if st.bodyBB == nil {
		// forward goto case: park a stub the case statement stitches later
		st.bodyBB = l.B.NewBlockBefore("goto_case", l.B.End())
	}

	if err := l.enclosingHandlers(s.Sw); err != nil {
		return err
	}
	l.B.CreateBr(st.bodyBB)

	l.afterDead("aftergotocase")
	return nil
}

func (l *Lowerer) gotoDefault(s *ast.GotoDefaultStmt) error {
	log.Debugf("GotoDefaultStmt: line %d", s.Position.Line)
	l.Debug.StopPoint(s.Position.Line)

	if s.Sw.Default == nil {
		return fmt.Errorf("goto default at line %d in a switch without default", s.Position.Line)
	}
	st := l.defaults[s.Sw.Default]
	if st == nil || st.bodyBB == nil {
		panic("lower: goto default before its switch was set up")
	}

	if err := l.enclosingHandlers(s.Sw); err != nil {
		return err
	}
	l.B.CreateBr(st.bodyBB)

	l.afterDead("aftergotodefault")
	return nil
}
