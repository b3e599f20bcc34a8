package ir

import (
	"fmt"
	"strings"
)

// Instruction is implemented by everything that can appear in a basic
// block, terminators included.
type Instruction interface {
	Result() *Value // nil when the instruction produces no value
	Parent() *BasicBlock
	String() string
}

// ICmpPred enumerates integer comparison predicates
type ICmpPred string

const (
	EQ  ICmpPred = "eq"
	NE  ICmpPred = "ne"
	ULT ICmpPred = "ult"
	ULE ICmpPred = "ule"
	UGT ICmpPred = "ugt"
	UGE ICmpPred = "uge"
	SLT ICmpPred = "slt"
	SLE ICmpPred = "sle"
	SGT ICmpPred = "sgt"
	SGE ICmpPred = "sge"
)

// Alloca reserves a stack slot and yields its address
type Alloca struct {
	Res   *Value
	Ty    Type
	Block *BasicBlock
}

// Load reads the value at Addr
type Load struct {
	Res   *Value
	Addr  *Value
	Block *BasicBlock
}

// Store writes Val to Addr
type Store struct {
	Val   *Value
	Addr  *Value
	Block *BasicBlock
}

// GEP computes the address of Ptr[Index] (1-D element arithmetic)
type GEP struct {
	Res   *Value
	Ptr   *Value
	Index *Value
	Block *BasicBlock
}

// ExtractValue selects field Index of an aggregate SSA value
type ExtractValue struct {
	Res   *Value
	Agg   *Value
	Index int
	Block *BasicBlock
}

// ICmp compares two integers, yielding an i1
type ICmp struct {
	Res   *Value
	Pred  ICmpPred
	L, R  *Value
	Block *BasicBlock
}

// BinOp is integer arithmetic
type BinOp struct {
	Res   *Value
	Op    string // "add", "sub", "mul", "sdiv", "udiv", "srem", "urem", "and", "or", "xor"
	L, R  *Value
	Block *BasicBlock
}

// CastOp enumerates value conversions
type CastOp string

const (
	ZExt    CastOp = "zext"
	Trunc   CastOp = "trunc"
	Bitcast CastOp = "bitcast"
)

// Cast converts Val to To
type Cast struct {
	Res   *Value
	Op    CastOp
	Val   *Value
	To    Type
	Block *BasicBlock
}

// Call invokes Callee; calls that may unwind are emitted as the Invoke
// terminator instead.
type Call struct {
	Res    *Value
	Callee *Function
	Args   []*Value
	Block  *BasicBlock
}

// MemoryBarrier orders memory operations. The four flags select which
// orderings are enforced.
type MemoryBarrier struct {
	LoadLoad   bool
	LoadStore  bool
	StoreLoad  bool
	StoreStore bool
	Block      *BasicBlock
}

// EHPad receives the in-flight exception at the start of a landing pad,
// yielding the exception object pointer.
type EHPad struct {
	Res   *Value
	Block *BasicBlock
}

func (i *Alloca) Result() *Value        { return i.Res }
func (i *Load) Result() *Value          { return i.Res }
func (i *Store) Result() *Value         { return nil }
func (i *GEP) Result() *Value           { return i.Res }
func (i *ExtractValue) Result() *Value  { return i.Res }
func (i *ICmp) Result() *Value          { return i.Res }
func (i *BinOp) Result() *Value         { return i.Res }
func (i *Cast) Result() *Value          { return i.Res }
func (i *Call) Result() *Value          { return i.Res }
func (i *MemoryBarrier) Result() *Value { return nil }
func (i *EHPad) Result() *Value         { return i.Res }

func (i *Alloca) Parent() *BasicBlock        { return i.Block }
func (i *Load) Parent() *BasicBlock          { return i.Block }
func (i *Store) Parent() *BasicBlock         { return i.Block }
func (i *GEP) Parent() *BasicBlock           { return i.Block }
func (i *ExtractValue) Parent() *BasicBlock  { return i.Block }
func (i *ICmp) Parent() *BasicBlock          { return i.Block }
func (i *BinOp) Parent() *BasicBlock         { return i.Block }
func (i *Cast) Parent() *BasicBlock          { return i.Block }
func (i *Call) Parent() *BasicBlock          { return i.Block }
func (i *MemoryBarrier) Parent() *BasicBlock { return i.Block }
func (i *EHPad) Parent() *BasicBlock         { return i.Block }

func (i *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s", i.Res, i.Ty.String())
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s", i.Res, i.Addr)
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, %s", i.Val, i.Addr)
}

func (i *GEP) String() string {
	return fmt.Sprintf("%s = gep %s, %s", i.Res, i.Ptr, i.Index)
}

func (i *ExtractValue) String() string {
	return fmt.Sprintf("%s = extractvalue %s, %d", i.Res, i.Agg, i.Index)
}

func (i *ICmp) String() string {
	return fmt.Sprintf("%s = icmp %s %s, %s", i.Res, i.Pred, i.L, i.R)
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Res, i.Op, i.L, i.R)
}

func (i *Cast) String() string {
	return fmt.Sprintf("%s = %s %s to %s", i.Res, i.Op, i.Val, i.To.String())
}

func (i *Call) String() string {
	args := make([]string, len(i.Args))
	for n, a := range i.Args {
		args[n] = a.String()
	}
	call := fmt.Sprintf("call @%s(%s)", i.Callee.Name, strings.Join(args, ", "))
	if i.Res != nil {
		return i.Res.String() + " = " + call
	}
	return call
}

func (i *MemoryBarrier) String() string {
	flag := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return fmt.Sprintf("membar ll=%s ls=%s sl=%s ss=%s",
		flag(i.LoadLoad), flag(i.LoadStore), flag(i.StoreLoad), flag(i.StoreStore))
}

func (i *EHPad) String() string {
	return fmt.Sprintf("%s = ehpad", i.Res)
}
