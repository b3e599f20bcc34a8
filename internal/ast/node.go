package ast

// Position represents a location in source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// Node is the interface implemented by all AST nodes
type Node interface {
	Pos() Position
}

// Stmt is implemented by all statement variants. The lowering pass
// dispatches on the concrete type, one arm per construct.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression variants
type Expr interface {
	Node
	exprNode()
}

// Type is implemented by all surface type variants
type Type interface {
	Node
	typeNode()
}

// File is the root of a parsed source file
type File struct {
	Name     string
	Funcs    []*FuncDecl
	Position Position
}

func (f *File) Pos() Position { return f.Position }

// FuncDecl is a function definition
type FuncDecl struct {
	Name     string
	Params   []*VarDecl
	Ret      Type // nil means void
	Body     *CompoundStmt
	Position Position

	// NeverInline is set when the body contains inline-asm labels
	NeverInline bool
}

func (f *FuncDecl) Pos() Position { return f.Position }

// Mangle returns the symbol name used for scoped labels and asm labels.
func (f *FuncDecl) Mangle() string { return "_S" + f.Name }
