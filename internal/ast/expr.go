package ast

// Expression variants. The statement lowerer treats expressions as opaque
// leaves handed to the expression collaborator; only the shapes needed to
// drive statements are modeled.

// IntLit is an integer literal
type IntLit struct {
	Value    uint64
	Type     Type // nil defaults to i32
	Position Position
}

// BoolLit is true or false
type BoolLit struct {
	Value    bool
	Position Position
}

// StrLit is a string literal. Width is the element width in bytes:
// 1 for string, 2 for wstring, 4 for dstring.
type StrLit struct {
	Value    string
	Width    int
	Position Position
}

// Ident references a declared local or function parameter
type Ident struct {
	Name     string
	Position Position
}

// UnaryExpr applies a prefix operator
type UnaryExpr struct {
	Op       string // "-", "!"
	X        Expr
	Position Position
}

// BinaryExpr applies an infix operator
type BinaryExpr struct {
	Op       string // "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "="
	X        Expr
	Y        Expr
	Position Position
}

// CallExpr invokes a function by name
type CallExpr struct {
	Callee   string
	Args     []Expr
	Position Position
}

// IndexExpr selects an element of an array or slice
type IndexExpr struct {
	X        Expr
	Index    Expr
	Position Position
}

// CastExpr converts X to the target type. A cast to void evaluates X
// for side effects only.
type CastExpr struct {
	To       Type
	X        Expr
	Position Position
}

func (e *IntLit) Pos() Position     { return e.Position }
func (e *BoolLit) Pos() Position    { return e.Position }
func (e *StrLit) Pos() Position     { return e.Position }
func (e *Ident) Pos() Position      { return e.Position }
func (e *UnaryExpr) Pos() Position  { return e.Position }
func (e *BinaryExpr) Pos() Position { return e.Position }
func (e *CallExpr) Pos() Position   { return e.Position }
func (e *IndexExpr) Pos() Position  { return e.Position }
func (e *CastExpr) Pos() Position   { return e.Position }

func (*IntLit) exprNode()     {}
func (*BoolLit) exprNode()    {}
func (*StrLit) exprNode()     {}
func (*Ident) exprNode()      {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*CastExpr) exprNode()   {}
