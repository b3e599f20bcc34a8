package ast

// Statement variants. Back-references (break/continue targets, goto case
// bindings) are filled in by the semantic pass; the lowerer resolves them
// against its target-scope stack by identity.

// CompoundStmt is a braced sequence of statements
type CompoundStmt struct {
	Stmts    []Stmt
	Position Position
}

// ScopeStmt introduces a lexical scope around a single statement.
// Lowering is transparent: only the child is lowered.
type ScopeStmt struct {
	Stmt     Stmt
	Position Position
}

// ExprStmt evaluates an expression for its side effects
type ExprStmt struct {
	X        Expr
	Position Position
}

// VarDecl declares a local variable, optionally initialized.
// It doubles as the declaration form used by foreach keys/values
// and function parameters.
type VarDecl struct {
	Name     string
	Type     Type
	Init     Expr
	Ref      bool // bound by reference (foreach ref value)
	Out      bool
	Position Position
}

// IfStmt is a conditional with optional else arm
type IfStmt struct {
	Cond     Expr
	Then     Stmt
	Else     Stmt
	Position Position
}

// WhileStmt is a top-tested loop
type WhileStmt struct {
	Cond     Expr
	Body     Stmt
	Position Position
}

// DoWhileStmt is a bottom-tested loop
type DoWhileStmt struct {
	Body     Stmt
	Cond     Expr
	Position Position
}

// ForStmt is the three-clause loop; any clause may be nil
type ForStmt struct {
	Init     Stmt
	Cond     Expr
	Inc      Expr
	Body     Stmt
	Position Position
}

// ForeachStmt iterates an array or slice aggregate.
// Key is optional; Value is the per-element binding.
type ForeachStmt struct {
	Reverse  bool
	Key      *VarDecl
	Value    *VarDecl
	Aggr     Expr
	Body     Stmt
	Position Position
}

// ForeachRangeStmt iterates an integer interval [Lower, Upper)
type ForeachRangeStmt struct {
	Reverse  bool
	Key      *VarDecl
	Lower    Expr
	Upper    Expr
	Body     Stmt
	Position Position
}

// UnrolledLoopStmt is a compiler-unrolled loop: each member statement gets
// its own block, continue advances to the next member, break exits the loop.
type UnrolledLoopStmt struct {
	Stmts    []Stmt
	Position Position
}

// SwitchStmt is an N-way dispatch on an integral or string condition.
// Cases and Default are collected from Body by the semantic pass.
type SwitchStmt struct {
	Cond     Expr
	Body     Stmt
	Cases    []*CaseStmt
	Default  *DefaultStmt
	Position Position
}

// CaseStmt labels a switch arm with a constant expression
type CaseStmt struct {
	Value    Expr
	Body     Stmt
	Position Position
}

// DefaultStmt is the fallback switch arm
type DefaultStmt struct {
	Body     Stmt
	Position Position
}

// BreakStmt exits the nearest (or labeled) breakable scope
type BreakStmt struct {
	Label    string
	Target   *LabelStmt // bound by semantic when Label != ""
	Position Position
}

// ContinueStmt advances the nearest (or labeled) loop
type ContinueStmt struct {
	Label    string
	Target   *LabelStmt
	Position Position
}

// ReturnStmt exits the function, optionally with a value
type ReturnStmt struct {
	X        Expr
	Position Position
}

// GotoStmt transfers control to a label in the same function
type GotoStmt struct {
	Label    string
	Target   *LabelStmt // bound by semantic
	Position Position
}

// GotoCaseStmt transfers control to a case of the enclosing switch
type GotoCaseStmt struct {
	Value    Expr        // the case constant named in source
	Case     *CaseStmt   // bound by semantic
	Sw       *SwitchStmt // enclosing switch
	Position Position
}

// GotoDefaultStmt transfers control to the enclosing switch's default
type GotoDefaultStmt struct {
	Sw       *SwitchStmt
	Position Position
}

// LabelStmt names a statement as a goto/break/continue target
type LabelStmt struct {
	Name     string
	Stmt     Stmt
	Position Position
}

// Catch is one handler arm of a try/catch
type Catch struct {
	Type     Type
	Var      string
	Body     Stmt
	Position Position
}

// TryCatchStmt runs Body with the catch handlers active
type TryCatchStmt struct {
	Body     Stmt
	Catches  []*Catch
	Position Position
}

// TryFinallyStmt runs Final on every exit from Body
type TryFinallyStmt struct {
	Body     Stmt
	Final    Stmt
	Position Position
}

// ThrowStmt raises an exception object
type ThrowStmt struct {
	X        Expr
	Position Position
}

// SynchronizedStmt serializes Body on a monitor object, or on a
// synthesized critical section when X is nil
type SynchronizedStmt struct {
	X        Expr
	Body     Stmt
	Position Position
}

// VolatileStmt fences Body with memory barriers; with no statement it is
// a standalone full barrier
type VolatileStmt struct {
	Stmt     Stmt
	Position Position
}

// WithStmt evaluates X once and binds it as WThis for Body.
// WThis is nil for the symbol form.
type WithStmt struct {
	X        Expr
	WThis    *VarDecl
	Body     Stmt
	Position Position
}

// SwitchErrorStmt traps a final switch that matched no case
type SwitchErrorStmt struct {
	Position Position
}

// OnScopeStmt records a scope(exit/success/failure) action. The front-end
// rewrites these into try/finally before lowering, so no code is emitted
// for the node itself.
type OnScopeStmt struct {
	Kind     string // "exit", "success", "failure"
	Stmt     Stmt
	Position Position
}

// AsmBlockStmt is a block of inline assembler. Members are AsmStmt lines
// and LabelStmt targets; labels inside the block are emitted as asm text.
type AsmBlockStmt struct {
	Stmts    []Stmt
	Position Position
}

// AsmStmt is one raw assembler line inside an asm block
type AsmStmt struct {
	Code     string
	Position Position
}

func (s *CompoundStmt) Pos() Position     { return s.Position }
func (s *ScopeStmt) Pos() Position        { return s.Position }
func (s *ExprStmt) Pos() Position         { return s.Position }
func (s *VarDecl) Pos() Position          { return s.Position }
func (s *IfStmt) Pos() Position           { return s.Position }
func (s *WhileStmt) Pos() Position        { return s.Position }
func (s *DoWhileStmt) Pos() Position      { return s.Position }
func (s *ForStmt) Pos() Position          { return s.Position }
func (s *ForeachStmt) Pos() Position      { return s.Position }
func (s *ForeachRangeStmt) Pos() Position { return s.Position }
func (s *UnrolledLoopStmt) Pos() Position { return s.Position }
func (s *SwitchStmt) Pos() Position       { return s.Position }
func (s *CaseStmt) Pos() Position         { return s.Position }
func (s *DefaultStmt) Pos() Position      { return s.Position }
func (s *BreakStmt) Pos() Position        { return s.Position }
func (s *ContinueStmt) Pos() Position     { return s.Position }
func (s *ReturnStmt) Pos() Position       { return s.Position }
func (s *GotoStmt) Pos() Position         { return s.Position }
func (s *GotoCaseStmt) Pos() Position     { return s.Position }
func (s *GotoDefaultStmt) Pos() Position  { return s.Position }
func (s *LabelStmt) Pos() Position        { return s.Position }
func (s *Catch) Pos() Position            { return s.Position }
func (s *TryCatchStmt) Pos() Position     { return s.Position }
func (s *TryFinallyStmt) Pos() Position   { return s.Position }
func (s *ThrowStmt) Pos() Position        { return s.Position }
func (s *SynchronizedStmt) Pos() Position { return s.Position }
func (s *VolatileStmt) Pos() Position     { return s.Position }
func (s *WithStmt) Pos() Position         { return s.Position }
func (s *SwitchErrorStmt) Pos() Position  { return s.Position }
func (s *OnScopeStmt) Pos() Position      { return s.Position }
func (s *AsmBlockStmt) Pos() Position     { return s.Position }
func (s *AsmStmt) Pos() Position          { return s.Position }

func (*CompoundStmt) stmtNode()     {}
func (*ScopeStmt) stmtNode()        {}
func (*ExprStmt) stmtNode()         {}
func (*VarDecl) stmtNode()          {}
func (*IfStmt) stmtNode()           {}
func (*WhileStmt) stmtNode()        {}
func (*DoWhileStmt) stmtNode()      {}
func (*ForStmt) stmtNode()          {}
func (*ForeachStmt) stmtNode()      {}
func (*ForeachRangeStmt) stmtNode() {}
func (*UnrolledLoopStmt) stmtNode() {}
func (*SwitchStmt) stmtNode()       {}
func (*CaseStmt) stmtNode()         {}
func (*DefaultStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()        {}
func (*ContinueStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()       {}
func (*GotoStmt) stmtNode()         {}
func (*GotoCaseStmt) stmtNode()     {}
func (*GotoDefaultStmt) stmtNode()  {}
func (*LabelStmt) stmtNode()        {}
func (*TryCatchStmt) stmtNode()     {}
func (*TryFinallyStmt) stmtNode()   {}
func (*ThrowStmt) stmtNode()        {}
func (*SynchronizedStmt) stmtNode() {}
func (*VolatileStmt) stmtNode()     {}
func (*WithStmt) stmtNode()         {}
func (*SwitchErrorStmt) stmtNode()  {}
func (*OnScopeStmt) stmtNode()      {}
func (*AsmBlockStmt) stmtNode()     {}
func (*AsmStmt) stmtNode()          {}
