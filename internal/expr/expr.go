package expr

import (
	"fmt"

	"sable/internal/ast"
	"sable/internal/ir"
)

// Lowerer is the expression, type and declaration collaborator of the
// statement lowerer. It emits through the same builder, so values land
// in whatever block the statement lowerer's cursor points at.
type Lowerer struct {
	B *ir.Builder

	// UnwindDest supplies the active landing pad so calls inside a try
	// become invokes; nil means plain calls
	UnwindDest func() *ir.BasicBlock

	locals map[string]*ir.Value
	decls  map[*ast.VarDecl]*ir.Value
}

// NewLowerer creates a collaborator bound to one function's builder
func NewLowerer(b *ir.Builder) *Lowerer {
	return &Lowerer{
		B:      b,
		locals: make(map[string]*ir.Value),
		decls:  make(map[*ast.VarDecl]*ir.Value),
	}
}

func (x *Lowerer) unwind() *ir.BasicBlock {
	if x.UnwindDest == nil {
		return nil
	}
	return x.UnwindDest()
}

// Lower turns an expression into an SSA value
func (x *Lowerer) Lower(e ast.Expr) (*ir.Value, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		ty := ir.I32
		if ex.Type != nil {
			ty = lowerInt(ex.Type)
		}
		return ir.ConstInt(ty, ex.Value), nil

	case *ast.BoolLit:
		return ir.ConstBool(ex.Value), nil

	case *ast.StrLit:
		return x.stringLiteral(ex), nil

	case *ast.Ident:
		slot, ok := x.locals[ex.Name]
		if !ok {
			return nil, fmt.Errorf("undefined variable %s", ex.Name)
		}
		return x.B.CreateLoad(slot, ex.Name), nil

	case *ast.UnaryExpr:
		v, err := x.Lower(ex.X)
		if err != nil {
			return nil, err
		}
		switch ex.Op {
		case "-":
			ty, ok := v.Type.(*ir.IntType)
			if !ok {
				return nil, fmt.Errorf("operator - on non-integer")
			}
			return x.B.CreateBinOp("sub", ir.ConstInt(ty, 0), v, "neg"), nil
		case "!":
			return x.B.CreateICmp(ir.EQ, x.CastToBool(v), ir.ConstBool(false), "not"), nil
		}
		return nil, fmt.Errorf("unary operator %s not implemented", ex.Op)

	case *ast.BinaryExpr:
		return x.binary(ex)

	case *ast.CallExpr:
		return x.call(ex)

	case *ast.IndexExpr:
		agg, err := x.Lower(ex.X)
		if err != nil {
			return nil, err
		}
		idx, err := x.Lower(ex.Index)
		if err != nil {
			return nil, err
		}
		ptr := x.ArrayPtr(agg)
		elem := x.B.CreateGEP(ptr, idx, "elem")
		return x.B.CreateLoad(elem, "elemval"), nil

	case *ast.CastExpr:
		v, err := x.Lower(ex.X)
		if err != nil {
			return nil, err
		}
		if p, ok := ex.To.(*ast.PrimType); ok && p.Kind == ast.Void {
			return v, nil
		}
		return x.CastTo(v, (Types{}).Lower(ex.To)), nil
	}
	return nil, fmt.Errorf("expression type %T not implemented", e)
}

func (x *Lowerer) binary(e *ast.BinaryExpr) (*ir.Value, error) {
	if e.Op == "=" {
		return x.assign(e)
	}

	l, err := x.Lower(e.X)
	if err != nil {
		return nil, err
	}
	r, err := x.Lower(e.Y)
	if err != nil {
		return nil, err
	}

	ty, _ := l.Type.(*ir.IntType)
	unsigned := ty != nil && ty.Unsigned

	switch e.Op {
	case "+":
		return x.B.CreateBinOp("add", l, r, "add"), nil
	case "-":
		return x.B.CreateBinOp("sub", l, r, "sub"), nil
	case "*":
		return x.B.CreateBinOp("mul", l, r, "mul"), nil
	case "/":
		if unsigned {
			return x.B.CreateBinOp("udiv", l, r, "div"), nil
		}
		return x.B.CreateBinOp("sdiv", l, r, "div"), nil
	case "%":
		if unsigned {
			return x.B.CreateBinOp("urem", l, r, "rem"), nil
		}
		return x.B.CreateBinOp("srem", l, r, "rem"), nil
	case "&":
		return x.B.CreateBinOp("and", l, r, "and"), nil
	case "|":
		return x.B.CreateBinOp("or", l, r, "or"), nil
	case "^":
		return x.B.CreateBinOp("xor", l, r, "xor"), nil
	case "&&":
		return x.B.CreateBinOp("and", x.CastToBool(l), x.CastToBool(r), "andand"), nil
	case "||":
		return x.B.CreateBinOp("or", x.CastToBool(l), x.CastToBool(r), "oror"), nil
	case "==":
		return x.B.CreateICmp(ir.EQ, l, r, "cmp"), nil
	case "!=":
		return x.B.CreateICmp(ir.NE, l, r, "cmp"), nil
	case "<":
		return x.B.CreateICmp(pick(unsigned, ir.ULT, ir.SLT), l, r, "cmp"), nil
	case "<=":
		return x.B.CreateICmp(pick(unsigned, ir.ULE, ir.SLE), l, r, "cmp"), nil
	case ">":
		return x.B.CreateICmp(pick(unsigned, ir.UGT, ir.SGT), l, r, "cmp"), nil
	case ">=":
		return x.B.CreateICmp(pick(unsigned, ir.UGE, ir.SGE), l, r, "cmp"), nil
	}
	return nil, fmt.Errorf("binary operator %s not implemented", e.Op)
}

func pick(unsigned bool, u, s ir.ICmpPred) ir.ICmpPred {
	if unsigned {
		return u
	}
	return s
}

func (x *Lowerer) assign(e *ast.BinaryExpr) (*ir.Value, error) {
	v, err := x.Lower(e.Y)
	if err != nil {
		return nil, err
	}
	switch target := e.X.(type) {
	case *ast.Ident:
		slot, ok := x.locals[target.Name]
		if !ok {
			return nil, fmt.Errorf("undefined variable %s", target.Name)
		}
		x.Assign(slot, v)
		return v, nil
	case *ast.IndexExpr:
		agg, err := x.Lower(target.X)
		if err != nil {
			return nil, err
		}
		idx, err := x.Lower(target.Index)
		if err != nil {
			return nil, err
		}
		elem := x.B.CreateGEP(x.ArrayPtr(agg), idx, "elem")
		x.Assign(elem, v)
		return v, nil
	}
	return nil, fmt.Errorf("cannot assign to %T", e.X)
}

func (x *Lowerer) call(e *ast.CallExpr) (*ir.Value, error) {
	args := make([]*ir.Value, len(e.Args))
	ptypes := make([]ir.Type, len(e.Args))
	for i, a := range e.Args {
		v, err := x.Lower(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
		ptypes[i] = v.Type
	}
	// unseen callees are declared on first use; the signature is taken
	// from the call site, the back-end links the real definition
	fn := x.B.Mod.DeclareFunc(e.Callee, &ir.FuncType{Ret: ir.I32, Params: ptypes})
	return x.B.CallOrInvoke(fn, args, x.unwind(), "call"), nil
}

func (x *Lowerer) stringLiteral(lit *ast.StrLit) *ir.Value {
	charTy := ir.U8
	switch lit.Width {
	case 2:
		charTy = ir.U16
	case 4:
		charTy = ir.U32
	}
	n := len(lit.Value)
	if lit.Width > 1 {
		n = len([]rune(lit.Value))
	}
	dataTy := &ir.ArrayType{Len: n, Elem: charTy}
	data := x.B.Mod.NewUniqueGlobal(".str", dataTy, &ir.StringConst{Ty: dataTy, Value: lit.Value, Width: lit.Width}, true)
	return ir.ConstValue(&ir.SliceConst{
		Ty:  &ir.SliceType{Elem: charTy},
		Len: &ir.IntConst{Ty: ir.SizeT, V: uint64(n)},
		Ptr: &ir.BitcastConst{C: &ir.GlobalRef{G: data}, To: &ir.PointerType{Elem: charTy}},
	})
}

// LowerConst folds a constant expression without emitting code
func (x *Lowerer) LowerConst(e ast.Expr) (ir.Constant, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		ty := ir.I32
		if ex.Type != nil {
			ty = lowerInt(ex.Type)
		}
		return &ir.IntConst{Ty: ty, V: ex.Value}, nil
	case *ast.BoolLit:
		var v uint64
		if ex.Value {
			v = 1
		}
		return &ir.IntConst{Ty: ir.I1, V: v}, nil
	case *ast.UnaryExpr:
		if ex.Op == "-" {
			inner, err := x.LowerConst(ex.X)
			if err != nil {
				return nil, err
			}
			ic, ok := inner.(*ir.IntConst)
			if !ok {
				return nil, fmt.Errorf("cannot negate non-integer constant")
			}
			return &ir.IntConst{Ty: ic.Ty, V: ic.V, Neg: !ic.Neg}, nil
		}
	}
	return nil, fmt.Errorf("expression %T is not a constant", e)
}

// CastToBool coerces an integer to i1 by comparing against zero
func (x *Lowerer) CastToBool(v *ir.Value) *ir.Value {
	if ir.BitSize(v.Type) == 1 {
		return v
	}
	ty, ok := v.Type.(*ir.IntType)
	if !ok {
		// pointers compare against null
		return x.B.CreateICmp(ir.NE, v, ir.ConstNull(v.Type), "tobool")
	}
	return x.B.CreateICmp(ir.NE, v, ir.ConstInt(ty, 0), "tobool")
}

// CastTo converts between integer widths and pointer types
func (x *Lowerer) CastTo(v *ir.Value, t ir.Type) *ir.Value {
	if ir.SameType(v.Type, t) {
		return v
	}
	from, fok := v.Type.(*ir.IntType)
	to, tok := t.(*ir.IntType)
	if fok && tok {
		switch {
		case from.Bits < to.Bits:
			return x.B.CreateZExt(v, t, "zext")
		case from.Bits > to.Bits:
			return x.B.CreateTrunc(v, t, "trunc")
		default:
			return x.B.CreateBitcast(v, t, "cast")
		}
	}
	return x.B.CreateBitcast(v, t, "cast")
}

// Bitcast reinterprets a value at another type
func (x *Lowerer) Bitcast(v *ir.Value, t ir.Type) *ir.Value {
	return x.B.CreateBitcast(v, t, "bitcast")
}

// ArrayLen extracts the length of a slice aggregate
func (x *Lowerer) ArrayLen(agg *ir.Value) *ir.Value {
	return x.B.CreateExtractValue(agg, 0, "arraylen")
}

// ArrayPtr extracts the data pointer of a slice aggregate
func (x *Lowerer) ArrayPtr(agg *ir.Value) *ir.Value {
	return x.B.CreateExtractValue(agg, 1, "arrayptr")
}

// PutRet applies ABI adjustments to a return value. This target returns
// scalars in registers unchanged.
func (x *Lowerer) PutRet(v *ir.Value) *ir.Value { return v }
