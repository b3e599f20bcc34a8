package grammar

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"sable/internal/ast"
)

// Convert reshapes the parse tree into the statement AST the semantic
// pass and the lowerer operate on.
func Convert(path string, p *Program) *ast.File {
	file := &ast.File{Name: path}
	for _, fn := range p.Funcs {
		file.Funcs = append(file.Funcs, convertFunc(fn))
	}
	return file
}

func pos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

func convertFunc(f *Function) *ast.FuncDecl {
	decl := &ast.FuncDecl{Name: f.Name, Position: pos(f.Pos)}
	for _, param := range f.Params {
		decl.Params = append(decl.Params, &ast.VarDecl{
			Name:     param.Name,
			Type:     convertType(param.Type),
			Position: pos(param.Pos),
		})
	}
	if f.Ret != nil {
		decl.Ret = convertType(f.Ret)
	}
	decl.Body = convertBlock(f.Body)
	return decl
}

func convertType(t *Type) ast.Type {
	if t == nil {
		return &ast.PrimType{Kind: ast.Void}
	}

	var base ast.Type
	switch t.Name {
	case "void":
		base = &ast.PrimType{Kind: ast.Void, Position: pos(t.Pos)}
	case "bool":
		base = &ast.PrimType{Kind: ast.Bool, Position: pos(t.Pos)}
	case "i8":
		base = &ast.PrimType{Kind: ast.I8, Position: pos(t.Pos)}
	case "i16":
		base = &ast.PrimType{Kind: ast.I16, Position: pos(t.Pos)}
	case "i32":
		base = &ast.PrimType{Kind: ast.I32, Position: pos(t.Pos)}
	case "i64":
		base = &ast.PrimType{Kind: ast.I64, Position: pos(t.Pos)}
	case "u8":
		base = &ast.PrimType{Kind: ast.U8, Position: pos(t.Pos)}
	case "u16":
		base = &ast.PrimType{Kind: ast.U16, Position: pos(t.Pos)}
	case "u32":
		base = &ast.PrimType{Kind: ast.U32, Position: pos(t.Pos)}
	case "u64":
		base = &ast.PrimType{Kind: ast.U64, Position: pos(t.Pos)}
	case "string":
		base = &ast.StringType{Width: 1, Position: pos(t.Pos)}
	case "wstring":
		base = &ast.StringType{Width: 2, Position: pos(t.Pos)}
	case "dstring":
		base = &ast.StringType{Width: 4, Position: pos(t.Pos)}
	default:
		// anything else is a class reference
		base = &ast.ObjectType{Name: t.Name, Position: pos(t.Pos)}
	}

	if t.Slice {
		base = &ast.ArrayType{Elem: base, Position: pos(t.Pos)}
	}
	if t.Ptr {
		base = &ast.PointerType{Elem: base, Position: pos(t.Pos)}
	}
	return base
}

func convertBlock(b *Block) *ast.CompoundStmt {
	if b == nil {
		return nil
	}
	out := &ast.CompoundStmt{Position: pos(b.Pos)}
	for _, s := range b.Stmts {
		if conv := convertStmt(s); conv != nil {
			out.Stmts = append(out.Stmts, conv)
		}
	}
	return out
}

func convertStmts(stmts []*Stmt, at lexer.Position) ast.Stmt {
	out := &ast.CompoundStmt{Position: pos(at)}
	for _, s := range stmts {
		if conv := convertStmt(s); conv != nil {
			out.Stmts = append(out.Stmts, conv)
		}
	}
	return out
}

func convertStmt(s *Stmt) ast.Stmt {
	switch {
	case s == nil:
		return nil
	case s.Block != nil:
		return convertBlock(s.Block)
	case s.If != nil:
		return &ast.IfStmt{
			Cond:     convertExpr(s.If.Cond),
			Then:     convertStmt(s.If.Then),
			Else:     convertStmt(s.If.Else),
			Position: pos(s.If.Pos),
		}
	case s.While != nil:
		return &ast.WhileStmt{
			Cond:     convertExpr(s.While.Cond),
			Body:     convertStmt(s.While.Body),
			Position: pos(s.While.Pos),
		}
	case s.Do != nil:
		return &ast.DoWhileStmt{
			Body:     convertStmt(s.Do.Body),
			Cond:     convertExpr(s.Do.Cond),
			Position: pos(s.Do.Pos),
		}
	case s.For != nil:
		return convertFor(s.For)
	case s.Foreach != nil:
		return convertForeach(s.Foreach)
	case s.Switch != nil:
		return &ast.SwitchStmt{
			Cond:     convertExpr(s.Switch.Cond),
			Body:     convertStmt(s.Switch.Body),
			Position: pos(s.Switch.Pos),
		}
	case s.Case != nil:
		return &ast.CaseStmt{
			Value:    convertExpr(s.Case.Value),
			Body:     convertStmts(s.Case.Body, s.Case.Pos),
			Position: pos(s.Case.Pos),
		}
	case s.Default != nil:
		return &ast.DefaultStmt{
			Body:     convertStmts(s.Default.Body, s.Default.Pos),
			Position: pos(s.Default.Pos),
		}
	case s.Break != nil:
		return &ast.BreakStmt{Label: s.Break.Label, Position: pos(s.Break.Pos)}
	case s.Continue != nil:
		return &ast.ContinueStmt{Label: s.Continue.Label, Position: pos(s.Continue.Pos)}
	case s.Return != nil:
		var x ast.Expr
		if s.Return.X != nil {
			x = convertExpr(s.Return.X)
		}
		return &ast.ReturnStmt{X: x, Position: pos(s.Return.Pos)}
	case s.Goto != nil:
		return convertGoto(s.Goto)
	case s.Try != nil:
		return convertTry(s.Try)
	case s.Throw != nil:
		return &ast.ThrowStmt{X: convertExpr(s.Throw.X), Position: pos(s.Throw.Pos)}
	case s.Sync != nil:
		var x ast.Expr
		if s.Sync.X != nil {
			x = convertExpr(s.Sync.X)
		}
		return &ast.SynchronizedStmt{X: x, Body: convertStmt(s.Sync.Body), Position: pos(s.Sync.Pos)}
	case s.Volatile != nil:
		var body ast.Stmt
		if s.Volatile.Body != nil {
			body = convertStmt(s.Volatile.Body)
		}
		return &ast.VolatileStmt{Stmt: body, Position: pos(s.Volatile.Pos)}
	case s.With != nil:
		x := convertExpr(s.With.X)
		return &ast.WithStmt{
			X: x,
			// the expression form binds a wthis local for the body
			WThis:    &ast.VarDecl{Name: "wthis", Type: &ast.ObjectType{Name: "Object"}, Position: pos(s.With.Pos)},
			Body:     convertStmt(s.With.Body),
			Position: pos(s.With.Pos),
		}
	case s.Asm != nil:
		return convertAsm(s.Asm)
	case s.Var != nil:
		return convertVar(s.Var)
	case s.Label != nil:
		return &ast.LabelStmt{
			Name:     s.Label.Name,
			Stmt:     convertStmt(s.Label.Stmt),
			Position: pos(s.Label.Pos),
		}
	case s.Empty:
		return nil
	case s.Expr != nil:
		return &ast.ExprStmt{X: convertExpr(s.Expr.X), Position: pos(s.Expr.Pos)}
	}
	return nil
}

func convertVar(v *VarStmt) *ast.VarDecl {
	decl := &ast.VarDecl{Name: v.Name, Type: convertType(v.Type), Position: pos(v.Pos)}
	if v.Init != nil {
		decl.Init = convertExpr(v.Init)
	}
	return decl
}

func convertFor(f *ForStmt) ast.Stmt {
	out := &ast.ForStmt{Position: pos(f.Pos)}
	switch {
	case f.Init.Var != nil:
		out.Init = convertVar(f.Init.Var)
	case f.Init.Expr != nil:
		out.Init = &ast.ExprStmt{X: convertExpr(f.Init.Expr.X), Position: pos(f.Init.Pos)}
	}
	if f.Cond != nil {
		out.Cond = convertExpr(f.Cond)
	}
	if f.Inc != nil {
		out.Inc = convertExpr(f.Inc)
	}
	out.Body = convertStmt(f.Body)
	return out
}

func convertForeach(f *ForeachStmt) ast.Stmt {
	reverse := f.Op == "foreach_reverse"

	if f.Upper != nil {
		// foreach (i; lower .. upper)
		key := foreachVarDecl(f.Vars[0], &ast.PrimType{Kind: ast.I64})
		return &ast.ForeachRangeStmt{
			Reverse:  reverse,
			Key:      key,
			Lower:    convertExpr(f.Aggr),
			Upper:    convertExpr(f.Upper),
			Body:     convertStmt(f.Body),
			Position: pos(f.Pos),
		}
	}

	out := &ast.ForeachStmt{Reverse: reverse, Position: pos(f.Pos)}
	if len(f.Vars) == 2 {
		out.Key = foreachVarDecl(f.Vars[0], &ast.PrimType{Kind: ast.U64})
		out.Value = foreachVarDecl(f.Vars[1], &ast.PrimType{Kind: ast.I32})
	} else {
		out.Value = foreachVarDecl(f.Vars[0], &ast.PrimType{Kind: ast.I32})
	}
	out.Aggr = convertExpr(f.Aggr)
	out.Body = convertStmt(f.Body)
	return out
}

func foreachVarDecl(v *ForeachVar, def ast.Type) *ast.VarDecl {
	ty := def
	if v.Type != nil {
		ty = convertType(v.Type)
	}
	return &ast.VarDecl{Name: v.Name, Type: ty, Ref: v.Ref, Position: pos(v.Pos)}
}

func convertGoto(g *GotoStmt) ast.Stmt {
	switch {
	case g.Default:
		return &ast.GotoDefaultStmt{Position: pos(g.Pos)}
	case g.Case != nil:
		var val ast.Expr
		if g.Case.Val != nil {
			val = convertExpr(g.Case.Val)
		}
		return &ast.GotoCaseStmt{Value: val, Position: pos(g.Pos)}
	default:
		return &ast.GotoStmt{Label: g.Label, Position: pos(g.Pos)}
	}
}

func convertTry(t *TryStmt) ast.Stmt {
	var out ast.Stmt = convertBlock(t.Body)

	if len(t.Catches) > 0 {
		tc := &ast.TryCatchStmt{Body: out, Position: pos(t.Pos)}
		for _, c := range t.Catches {
			tc.Catches = append(tc.Catches, &ast.Catch{
				Type:     &ast.ObjectType{Name: c.Type, Position: pos(c.Pos)},
				Var:      c.Name,
				Body:     convertBlock(c.Body),
				Position: pos(c.Pos),
			})
		}
		out = tc
	}

	if t.Finally != nil {
		out = &ast.TryFinallyStmt{
			Body:     out,
			Final:    convertBlock(t.Finally),
			Position: pos(t.Pos),
		}
	}
	return out
}

func convertAsm(a *AsmStmt) ast.Stmt {
	out := &ast.AsmBlockStmt{Position: pos(a.Pos)}
	for _, line := range a.Lines {
		if line.Label != nil {
			out.Stmts = append(out.Stmts, &ast.LabelStmt{Name: line.Label.Name, Position: pos(line.Label.Pos)})
		} else {
			code, _, _ := unquoteString(line.Code)
			out.Stmts = append(out.Stmts, &ast.AsmStmt{Code: code, Position: pos(line.Pos)})
		}
	}
	return out
}

// Expressions

func convertExpr(e *Expr) ast.Expr {
	if e == nil {
		return nil
	}
	left := convertOr(e.Or)
	if e.Assign != nil {
		return &ast.BinaryExpr{Op: "=", X: left, Y: convertExpr(e.Assign), Position: pos(e.Pos)}
	}
	return left
}

func convertOr(e *OrExpr) ast.Expr {
	out := convertAnd(e.L)
	for _, r := range e.R {
		out = &ast.BinaryExpr{Op: r.Op, X: out, Y: convertAnd(r.X), Position: pos(e.Pos)}
	}
	return out
}

func convertAnd(e *AndExpr) ast.Expr {
	out := convertCmp(e.L)
	for _, r := range e.R {
		out = &ast.BinaryExpr{Op: r.Op, X: out, Y: convertCmp(r.X), Position: pos(e.Pos)}
	}
	return out
}

func convertCmp(e *CmpExpr) ast.Expr {
	out := convertAdd(e.L)
	for _, r := range e.R {
		out = &ast.BinaryExpr{Op: r.Op, X: out, Y: convertAdd(r.X), Position: pos(e.Pos)}
	}
	return out
}

func convertAdd(e *AddExpr) ast.Expr {
	out := convertMul(e.L)
	for _, r := range e.R {
		out = &ast.BinaryExpr{Op: r.Op, X: out, Y: convertMul(r.X), Position: pos(e.Pos)}
	}
	return out
}

func convertMul(e *MulExpr) ast.Expr {
	out := convertUnary(e.L)
	for _, r := range e.R {
		out = &ast.BinaryExpr{Op: r.Op, X: out, Y: convertUnary(r.X), Position: pos(e.Pos)}
	}
	return out
}

func convertUnary(e *UnaryExpr) ast.Expr {
	out := convertPostfix(e.X)
	if e.Op != "" {
		out = &ast.UnaryExpr{Op: e.Op, X: out, Position: pos(e.Pos)}
	}
	return out
}

func convertPostfix(e *PostfixExpr) ast.Expr {
	out := convertPrimary(e.Primary)
	for _, idx := range e.Indexes {
		out = &ast.IndexExpr{X: out, Index: convertExpr(idx), Position: pos(e.Pos)}
	}
	return out
}

func convertPrimary(e *PrimaryExpr) ast.Expr {
	switch {
	case e.Cast != nil:
		return &ast.CastExpr{
			To:       convertType(e.Cast.To),
			X:        convertUnary(e.Cast.X),
			Position: pos(e.Cast.Pos),
		}
	case e.Call != nil:
		call := &ast.CallExpr{Callee: e.Call.Callee, Position: pos(e.Call.Pos)}
		for _, a := range e.Call.Args {
			call.Args = append(call.Args, convertExpr(a))
		}
		return call
	case e.True:
		return &ast.BoolLit{Value: true, Position: pos(e.Pos)}
	case e.False:
		return &ast.BoolLit{Value: false, Position: pos(e.Pos)}
	case e.Int != nil:
		v, _ := strconv.ParseUint(strings.TrimPrefix(*e.Int, "0x"), intBase(*e.Int), 64)
		return &ast.IntLit{Value: v, Position: pos(e.Pos)}
	case e.Str != nil:
		value, width, _ := unquoteString(*e.Str)
		return &ast.StrLit{Value: value, Width: width, Position: pos(e.Pos)}
	case e.Sub != nil:
		return convertExpr(e.Sub)
	default:
		return &ast.Ident{Name: e.Ident, Position: pos(e.Pos)}
	}
}

func intBase(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

// unquoteString strips the quotes and optional width suffix from a
// string token and processes the basic escapes
func unquoteString(tok string) (value string, width int, err error) {
	width = 1
	if strings.HasSuffix(tok, "w") {
		width = 2
		tok = tok[:len(tok)-1]
	} else if strings.HasSuffix(tok, "d") {
		width = 4
		tok = tok[:len(tok)-1]
	}
	value, err = strconv.Unquote(tok)
	if err != nil {
		// fall back to the raw body on exotic escapes
		value = strings.Trim(tok, `"`)
		err = nil
	}
	return value, width, err
}
