package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Parse tree of the sable surface language. The shapes mirror the
// concrete syntax; convert.go reshapes them into internal/ast.

type Program struct {
	Funcs []*Function `@@*`
}

type Function struct {
	Pos    lexer.Position
	Name   string   `"fn" @Ident "("`
	Params []*Param `[ @@ { "," @@ } ] ")"`
	Ret    *Type    `[ ":" @@ ]`
	Body   *Block   `@@`
}

type Param struct {
	Pos  lexer.Position
	Name string `@Ident ":"`
	Type *Type  `@@`
}

type Type struct {
	Pos   lexer.Position
	Name  string `@Ident`
	Slice bool   `[ @"[" "]" ]`
	Ptr   bool   `[ @"*" ]`
}

type Block struct {
	Pos   lexer.Position
	Stmts []*Stmt `"{" @@* "}"`
}

type Stmt struct {
	Pos      lexer.Position
	Block    *Block         `  @@`
	If       *IfStmt        `| @@`
	While    *WhileStmt     `| @@`
	Do       *DoStmt        `| @@`
	For      *ForStmt       `| @@`
	Foreach  *ForeachStmt   `| @@`
	Switch   *SwitchStmt    `| @@`
	Case     *CaseStmt      `| @@`
	Default  *DefaultStmt   `| @@`
	Break    *BreakStmt     `| @@`
	Continue *ContinueStmt  `| @@`
	Return   *ReturnStmt    `| @@`
	Goto     *GotoStmt      `| @@`
	Try      *TryStmt       `| @@`
	Throw    *ThrowStmt     `| @@`
	Sync     *SyncStmt      `| @@`
	Volatile *VolatileStmt  `| @@`
	With     *WithStmt      `| @@`
	Asm      *AsmStmt       `| @@`
	Var      *VarStmt       `| @@`
	Label    *LabelStmt     `| @@`
	Empty    bool           `| @";"`
	Expr     *ExprStmt      `| @@`
}

type VarStmt struct {
	Pos  lexer.Position
	Name string `"var" @Ident ":"`
	Type *Type  `@@`
	Init *Expr  `[ "=" @@ ] ";"`
}

type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr `"if" "(" @@ ")"`
	Then *Stmt `@@`
	Else *Stmt `[ "else" @@ ]`
}

type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr `"while" "(" @@ ")"`
	Body *Stmt `@@`
}

type DoStmt struct {
	Pos  lexer.Position
	Body *Stmt `"do" @@`
	Cond *Expr `"while" "(" @@ ")" ";"`
}

type ForStmt struct {
	Pos  lexer.Position
	Init *ForInit `"for" "(" @@`
	Cond *Expr    `[ @@ ] ";"`
	Inc  *Expr    `[ @@ ] ")"`
	Body *Stmt    `@@`
}

type ForInit struct {
	Pos   lexer.Position
	Var   *VarStmt  `  @@`
	Expr  *ExprStmt `| @@`
	Empty bool      `| @";"`
}

type ForeachStmt struct {
	Pos   lexer.Position
	Op    string        `@("foreach_reverse" | "foreach")`
	Vars  []*ForeachVar `"(" @@ { "," @@ } ";"`
	Aggr  *Expr         `@@`
	Upper *Expr         `[ ".." @@ ] ")"`
	Body  *Stmt         `@@`
}

type ForeachVar struct {
	Pos  lexer.Position
	Ref  bool   `[ @"ref" ]`
	Name string `@Ident`
	Type *Type  `[ ":" @@ ]`
}

type SwitchStmt struct {
	Pos  lexer.Position
	Cond *Expr `"switch" "(" @@ ")"`
	Body *Stmt `@@`
}

type CaseStmt struct {
	Pos   lexer.Position
	Value *Expr   `"case" @@ ":"`
	Body  []*Stmt `@@*`
}

type DefaultStmt struct {
	Pos  lexer.Position
	Body []*Stmt `"default" ":" @@*`
}

type BreakStmt struct {
	Pos   lexer.Position
	Kw    bool   `@"break"`
	Label string `[ @Ident ] ";"`
}

type ContinueStmt struct {
	Pos   lexer.Position
	Kw    bool   `@"continue"`
	Label string `[ @Ident ] ";"`
}

type ReturnStmt struct {
	Pos lexer.Position
	Kw  bool  `@"return"`
	X   *Expr `[ @@ ] ";"`
}

type GotoStmt struct {
	Pos     lexer.Position
	Default bool          `"goto" ( @"default"`
	Case    *GotoCasePart `| @@`
	Label   string        `| @Ident ) ";"`
}

type GotoCasePart struct {
	Pos lexer.Position
	Kw  bool  `@"case"`
	Val *Expr `[ @@ ]`
}

type TryStmt struct {
	Pos     lexer.Position
	Body    *Block         `"try" @@`
	Catches []*CatchClause `@@*`
	Finally *Block         `[ "finally" @@ ]`
}

type CatchClause struct {
	Pos  lexer.Position
	Type string `"catch" "(" @Ident`
	Name string `[ @Ident ] ")"`
	Body *Block `@@`
}

type ThrowStmt struct {
	Pos lexer.Position
	X   *Expr `"throw" @@ ";"`
}

type SyncStmt struct {
	Pos  lexer.Position
	Kw   bool  `@"synchronized"`
	X    *Expr `[ "(" @@ ")" ]`
	Body *Stmt `@@`
}

type VolatileStmt struct {
	Pos   lexer.Position
	Kw    bool  `@"volatile"`
	Empty bool  `( @";"`
	Body  *Stmt `| @@ )`
}

type WithStmt struct {
	Pos  lexer.Position
	X    *Expr `"with" "(" @@ ")"`
	Body *Stmt `@@`
}

type AsmStmt struct {
	Pos   lexer.Position
	Lines []*AsmLine `"asm" "{" @@* "}"`
}

type AsmLine struct {
	Pos   lexer.Position
	Label *AsmLabel `  @@`
	Code  string    `| @String ";"`
}

type AsmLabel struct {
	Pos  lexer.Position
	Name string `@Ident ":"`
}

type LabelStmt struct {
	Pos  lexer.Position
	Name string `@Ident ":"`
	Stmt *Stmt  `@@`
}

type ExprStmt struct {
	Pos lexer.Position
	X   *Expr `@@ ";"`
}

// Expression ladder, lowest precedence first

type Expr struct {
	Pos    lexer.Position
	Or     *OrExpr `@@`
	Assign *Expr   `[ "=" @@ ]`
}

type OrExpr struct {
	Pos lexer.Position
	L   *AndExpr `@@`
	R   []*OrRHS `@@*`
}

type OrRHS struct {
	Op string   `@"||"`
	X  *AndExpr `@@`
}

type AndExpr struct {
	Pos lexer.Position
	L   *CmpExpr  `@@`
	R   []*AndRHS `@@*`
}

type AndRHS struct {
	Op string   `@"&&"`
	X  *CmpExpr `@@`
}

type CmpExpr struct {
	Pos lexer.Position
	L   *AddExpr  `@@`
	R   []*CmpRHS `@@*`
}

type CmpRHS struct {
	Op string   `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	X  *AddExpr `@@`
}

type AddExpr struct {
	Pos lexer.Position
	L   *MulExpr  `@@`
	R   []*AddRHS `@@*`
}

type AddRHS struct {
	Op string   `@("+" | "-" | "|" | "^")`
	X  *MulExpr `@@`
}

type MulExpr struct {
	Pos lexer.Position
	L   *UnaryExpr  `@@`
	R   []*MulRHS   `@@*`
}

type MulRHS struct {
	Op string     `@("*" | "/" | "%" | "&")`
	X  *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos lexer.Position
	Op  string       `[ @("-" | "!") ]`
	X   *PostfixExpr `@@`
}

type PostfixExpr struct {
	Pos     lexer.Position
	Primary *PrimaryExpr `@@`
	Indexes []*Expr      `{ "[" @@ "]" }`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Cast   *CastExpr `  @@`
	Call   *CallExpr `| @@`
	True   bool      `| @"true"`
	False  bool      `| @"false"`
	Int    *string   `| @Integer`
	Str    *string   `| @String`
	Ident  string    `| @Ident`
	Sub    *Expr     `| "(" @@ ")"`
}

type CastExpr struct {
	Pos lexer.Position
	To  *Type      `"cast" "(" @@ ")"`
	X   *UnaryExpr `@@`
}

type CallExpr struct {
	Pos    lexer.Position
	Callee string  `@Ident "("`
	Args   []*Expr `[ @@ { "," @@ } ] ")"`
}
