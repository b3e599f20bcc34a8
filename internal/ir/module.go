package ir

import "fmt"

// Linkage of a module-scope symbol
type Linkage string

const (
	ExternalLinkage Linkage = "external"
	InternalLinkage Linkage = "internal"
)

// Module is the append-only compilation target: functions plus synthesized
// globals (string-switch tables, unique critical-section slots).
type Module struct {
	Name    string
	Globals []*Global
	Funcs   []*Function

	// monotonically generated per-prefix names keep builds reproducible
	uniqueCounters map[string]int
}

// Global is a module-scope variable
type Global struct {
	Name    string
	Type    Type // value type; the symbol itself is a pointer to it
	Init    Constant
	Const   bool
	Linkage Linkage
}

// Ref returns the global's address as an SSA value
func (g *Global) Ref() *Value {
	return ConstValue(&GlobalRef{G: g})
}

// NewModule creates an empty module
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// NewGlobal appends a global with an explicit name
func (m *Module) NewGlobal(name string, ty Type, init Constant, constant bool, linkage Linkage) *Global {
	g := &Global{Name: name, Type: ty, Init: init, Const: constant, Linkage: linkage}
	m.Globals = append(m.Globals, g)
	return g
}

// NewUniqueGlobal appends an internal-linkage global with a synthesized
// name derived from prefix
func (m *Module) NewUniqueGlobal(prefix string, ty Type, init Constant, constant bool) *Global {
	if m.uniqueCounters == nil {
		m.uniqueCounters = make(map[string]int)
	}
	name := fmt.Sprintf("%s%d", prefix, m.uniqueCounters[prefix])
	m.uniqueCounters[prefix]++
	return m.NewGlobal(name, ty, init, constant, InternalLinkage)
}

// NewFunc appends a function definition
func (m *Module) NewFunc(name string, ty *FuncType) *Function {
	f := &Function{Name: name, Type: ty, Module: m}
	for i, pt := range ty.Params {
		f.Params = append(f.Params, &Value{Name: fmt.Sprintf("arg%d", i), Type: pt})
	}
	m.Funcs = append(m.Funcs, f)
	return f
}

// DeclareFunc returns the named function, appending a body-less
// declaration on first use. Runtime symbols are declared this way.
func (m *Module) DeclareFunc(name string, ty *FuncType) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	f := m.NewFunc(name, ty)
	f.Decl = true
	return f
}

// Function is a CFG of basic blocks. Blocks keeps textual order; the
// builder inserts new blocks immediately before its end anchor.
type Function struct {
	Name   string
	Type   *FuncType
	Params []*Value
	Blocks []*BasicBlock
	Module *Module

	// Decl marks a body-less declaration (runtime symbols)
	Decl bool

	// RetArg is the hidden out-pointer for struct returns
	RetArg *Value

	// NeverInline is set when the body contains internal asm labels
	NeverInline bool

	// InlineAsm collects raw assembler text emitted by asm blocks
	InlineAsm []string

	valueCounter int
	blockCounter int
}

// AppendBlock adds a block at the end of the function
func (f *Function) AppendBlock(name string) *BasicBlock {
	bb := f.newBlock(name)
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// InsertBlockBefore adds a block immediately before anchor, or at the end
// when anchor is nil or not found
func (f *Function) InsertBlockBefore(name string, anchor *BasicBlock) *BasicBlock {
	bb := f.newBlock(name)
	if anchor != nil {
		for i, b := range f.Blocks {
			if b == anchor {
				f.Blocks = append(f.Blocks[:i], append([]*BasicBlock{bb}, f.Blocks[i:]...)...)
				return bb
			}
		}
	}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// MoveBlockBefore repositions an existing block immediately before anchor
func (f *Function) MoveBlockBefore(bb, anchor *BasicBlock) {
	if bb == anchor {
		return
	}
	idx := -1
	for i, b := range f.Blocks {
		if b == bb {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	f.Blocks = append(f.Blocks[:idx], f.Blocks[idx+1:]...)
	if anchor != nil {
		for i, b := range f.Blocks {
			if b == anchor {
				f.Blocks = append(f.Blocks[:i], append([]*BasicBlock{bb}, f.Blocks[i:]...)...)
				return
			}
		}
	}
	f.Blocks = append(f.Blocks, bb)
}

func (f *Function) newBlock(name string) *BasicBlock {
	bb := &BasicBlock{Name: fmt.Sprintf("%s.%d", name, f.blockCounter), Func: f}
	f.blockCounter++
	return bb
}

// NewValue creates a fresh SSA value with a unique name
func (f *Function) NewValue(name string, ty Type) *Value {
	v := &Value{ID: f.valueCounter, Name: fmt.Sprintf("%s%d", name, f.valueCounter), Type: ty}
	f.valueCounter++
	return v
}

// BasicBlock is a straight-line instruction sequence with at most one
// terminator. At the end of lowering every reachable block has exactly one.
type BasicBlock struct {
	Name   string
	Func   *Function
	Instrs []Instruction
	Term   Terminator
}

// Terminated reports whether the block already ends in a terminator
func (bb *BasicBlock) Terminated() bool { return bb.Term != nil }

// Empty reports whether the block holds no instructions or terminator
func (bb *BasicBlock) Empty() bool { return len(bb.Instrs) == 0 && bb.Term == nil }
