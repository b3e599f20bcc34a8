package ir

import "fmt"

// Scope is the emission cursor: Cur receives instructions, End anchors
// where newly created blocks are positioned (immediately before it).
type Scope struct {
	Cur *BasicBlock
	End *BasicBlock
}

// Builder wraps a function's CFG with block and instruction factories.
// Nested statement lowering saves and restores the cursor by value.
type Builder struct {
	Fn  *Function
	Mod *Module

	scope Scope
}

// NewBuilder positions a builder at a fresh entry block of fn. An
// "endentry" anchor block is created after it; unreachable anchors are
// pruned by the back-end.
func NewBuilder(fn *Function) *Builder {
	entry := fn.AppendBlock("entry")
	end := fn.AppendBlock("endentry")
	return &Builder{Fn: fn, Mod: fn.Module, scope: Scope{Cur: entry, End: end}}
}

// Scope returns the current cursor
func (b *Builder) Scope() Scope { return b.scope }

// SetScope replaces the cursor atomically
func (b *Builder) SetScope(s Scope) { b.scope = s }

// Block is the block currently receiving instructions
func (b *Builder) Block() *BasicBlock { return b.scope.Cur }

// End is the current end anchor
func (b *Builder) End() *BasicBlock { return b.scope.End }

// Returned reports whether the current block already has a terminator
func (b *Builder) Returned() bool { return b.scope.Cur.Terminated() }

// NewBlock creates a block positioned immediately before the end anchor
func (b *Builder) NewBlock(name string) *BasicBlock {
	return b.Fn.InsertBlockBefore(name, b.scope.End)
}

// NewBlockBefore creates a block positioned immediately before anchor
func (b *Builder) NewBlockBefore(name string, anchor *BasicBlock) *BasicBlock {
	return b.Fn.InsertBlockBefore(name, anchor)
}

func (b *Builder) emit(inst Instruction) {
	if b.scope.Cur.Terminated() {
		panic(fmt.Sprintf("ir: emitting %q into terminated block %s", inst.String(), b.scope.Cur.Name))
	}
	b.scope.Cur.Instrs = append(b.scope.Cur.Instrs, inst)
}

func (b *Builder) terminate(t Terminator) {
	if b.scope.Cur.Terminated() {
		panic(fmt.Sprintf("ir: second terminator %q in block %s", t.String(), b.scope.Cur.Name))
	}
	b.scope.Cur.Term = t
}

// CreateBr terminates the current block with an unconditional branch
func (b *Builder) CreateBr(target *BasicBlock) {
	b.terminate(&Br{Target: target, Block: b.scope.Cur})
}

// BranchTo terminates bb (not the cursor) with a branch to target.
// Used to stitch a previous case stub into its replacement.
func BranchTo(bb, target *BasicBlock) {
	if bb.Terminated() {
		panic(fmt.Sprintf("ir: second terminator in block %s", bb.Name))
	}
	bb.Term = &Br{Target: target, Block: bb}
}

// CreateCondBr terminates the current block with a conditional branch
func (b *Builder) CreateCondBr(cond *Value, then, els *BasicBlock) {
	if BitSize(cond.Type) != 1 {
		panic("ir: cond_br condition is not i1")
	}
	b.terminate(&CondBr{Cond: cond, Then: then, Else: els, Block: b.scope.Cur})
}

// CreateSwitch terminates the current block with a switch; cases are
// attached afterwards with AddCase.
func (b *Builder) CreateSwitch(val *Value, def *BasicBlock) *Switch {
	sw := &Switch{Val: val, Default: def, Block: b.scope.Cur}
	b.terminate(sw)
	return sw
}

// AddCase attaches a (selector → target) edge to a switch
func (sw *Switch) AddCase(sel *Value, target *BasicBlock) {
	if !sel.IsConst() {
		panic("ir: switch selector is not a constant")
	}
	sw.Cases = append(sw.Cases, SwitchCase{Selector: sel, Target: target})
}

// CreateRet terminates the current block returning val (nil for void)
func (b *Builder) CreateRet(val *Value) {
	b.terminate(&Ret{Val: val, Block: b.scope.Cur})
}

// CreateUnreachable terminates the current block as unreachable
func (b *Builder) CreateUnreachable() {
	b.terminate(&Unreachable{Block: b.scope.Cur})
}

// CreateResume re-raises an exception into the next outer frame
func (b *Builder) CreateResume(val *Value) {
	b.terminate(&Resume{Val: val, Block: b.scope.Cur})
}

// CreateAlloca reserves a stack slot
func (b *Builder) CreateAlloca(ty Type, name string) *Value {
	res := b.Fn.NewValue(name, &PointerType{Elem: ty})
	inst := &Alloca{Res: res, Ty: ty, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateLoad reads through a pointer
func (b *Builder) CreateLoad(addr *Value, name string) *Value {
	pt, ok := addr.Type.(*PointerType)
	if !ok {
		panic("ir: load from non-pointer")
	}
	res := b.Fn.NewValue(name, pt.Elem)
	inst := &Load{Res: res, Addr: addr, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateStore writes through a pointer
func (b *Builder) CreateStore(val, addr *Value) {
	b.emit(&Store{Val: val, Addr: addr, Block: b.scope.Cur})
}

// CreateGEP computes &ptr[index]
func (b *Builder) CreateGEP(ptr, index *Value, name string) *Value {
	if _, ok := ptr.Type.(*PointerType); !ok {
		panic("ir: gep on non-pointer")
	}
	res := b.Fn.NewValue(name, ptr.Type)
	inst := &GEP{Res: res, Ptr: ptr, Index: index, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateExtractValue selects a field of an aggregate value
func (b *Builder) CreateExtractValue(agg *Value, index int, name string) *Value {
	var ty Type
	switch at := agg.Type.(type) {
	case *SliceType:
		if index == 0 {
			ty = SizeT
		} else {
			ty = &PointerType{Elem: at.Elem}
		}
	case *StructType:
		ty = at.Fields[index]
	default:
		panic("ir: extractvalue on non-aggregate")
	}
	res := b.Fn.NewValue(name, ty)
	inst := &ExtractValue{Res: res, Agg: agg, Index: index, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateICmp compares two integers
func (b *Builder) CreateICmp(pred ICmpPred, l, r *Value, name string) *Value {
	res := b.Fn.NewValue(name, I1)
	inst := &ICmp{Res: res, Pred: pred, L: l, R: r, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateBinOp performs integer arithmetic
func (b *Builder) CreateBinOp(op string, l, r *Value, name string) *Value {
	res := b.Fn.NewValue(name, l.Type)
	inst := &BinOp{Res: res, Op: op, L: l, R: r, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateZExt widens an integer with zero extension
func (b *Builder) CreateZExt(val *Value, to Type, name string) *Value {
	return b.createCast(ZExt, val, to, name)
}

// CreateTrunc narrows an integer
func (b *Builder) CreateTrunc(val *Value, to Type, name string) *Value {
	return b.createCast(Trunc, val, to, name)
}

// CreateBitcast reinterprets a value at another type of the same width
func (b *Builder) CreateBitcast(val *Value, to Type, name string) *Value {
	if SameType(val.Type, to) {
		return val
	}
	return b.createCast(Bitcast, val, to, name)
}

func (b *Builder) createCast(op CastOp, val *Value, to Type, name string) *Value {
	res := b.Fn.NewValue(name, to)
	inst := &Cast{Res: res, Op: op, Val: val, To: to, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}

// CreateCall emits a plain call
func (b *Builder) CreateCall(callee *Function, args []*Value, name string) *Value {
	var res *Value
	if !IsVoid(callee.Type.Ret) {
		res = b.Fn.NewValue(name, callee.Type.Ret)
	}
	inst := &Call{Res: res, Callee: callee, Args: args, Block: b.scope.Cur}
	if res != nil {
		res.Def = inst
	}
	b.emit(inst)
	return res
}

// CallOrInvoke emits a call, or an invoke when an unwind destination is
// active. The invoke terminates the current block; the cursor moves to a
// fresh continuation block positioned before the end anchor.
func (b *Builder) CallOrInvoke(callee *Function, args []*Value, unwind *BasicBlock, name string) *Value {
	if unwind == nil {
		return b.CreateCall(callee, args, name)
	}
	var res *Value
	if !IsVoid(callee.Type.Ret) {
		res = b.Fn.NewValue(name, callee.Type.Ret)
	}
	normal := b.NewBlock("invokecont")
	inv := &Invoke{Res: res, Callee: callee, Args: args, Normal: normal, Unwind: unwind, Block: b.scope.Cur}
	if res != nil {
		res.Def = inv
	}
	b.terminate(inv)
	b.scope.Cur = normal
	return res
}

// CreateMemoryBarrier orders memory operations per the four flags
func (b *Builder) CreateMemoryBarrier(loadload, loadstore, storeload, storestore bool) {
	b.emit(&MemoryBarrier{
		LoadLoad:   loadload,
		LoadStore:  loadstore,
		StoreLoad:  storeload,
		StoreStore: storestore,
		Block:      b.scope.Cur,
	})
}

// CreateEHPad receives the in-flight exception at a landing pad
func (b *Builder) CreateEHPad(name string) *Value {
	res := b.Fn.NewValue(name, &PointerType{Elem: I8})
	inst := &EHPad{Res: res, Block: b.scope.Cur}
	res.Def = inst
	b.emit(inst)
	return res
}
