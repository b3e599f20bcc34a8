package compile

import (
	"fmt"

	"sable/internal/ast"
	"sable/internal/expr"
	"sable/internal/ir"
	"sable/internal/lower"
	"sable/internal/semantic"
)

// Module runs semantic analysis over a file and lowers every function
// into a fresh IR module.
func Module(file *ast.File, name string, debug lower.DebugSink) (*ir.Module, []semantic.Error, error) {
	analyzer := semantic.NewAnalyzer()
	if errs := analyzer.Analyze(file); len(errs) > 0 {
		return nil, errs, fmt.Errorf("%d semantic errors", len(errs))
	}

	m := ir.NewModule(name)
	for _, fd := range file.Funcs {
		if _, err := Func(m, fd, debug); err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", fd.Name, err)
		}
	}
	return m, nil, nil
}

// Func lowers a single pre-analyzed function into m
func Func(m *ir.Module, fd *ast.FuncDecl, debug lower.DebugSink) (*ir.Function, error) {
	types := expr.Types{}

	var ret ir.Type = ir.Void
	if fd.Ret != nil {
		ret = types.Lower(fd.Ret)
	}

	// struct returns travel through a hidden out-pointer argument
	_, sret := ret.(*ir.StructType)
	var params []ir.Type
	if sret {
		params = append(params, &ir.PointerType{Elem: ret})
		ret = ir.Void
	}
	for _, p := range fd.Params {
		params = append(params, types.Lower(p.Type))
	}

	fn := m.NewFunc(fd.Name, &ir.FuncType{Ret: ret, Params: params})
	b := ir.NewBuilder(fn)
	el := expr.NewLowerer(b)

	argIdx := 0
	if sret {
		fn.Params[0].Name = "sret"
		fn.RetArg = fn.Params[0]
		argIdx = 1
	}
	for i, p := range fd.Params {
		el.BindParam(p.Name, p.Type, fn.Params[argIdx+i])
	}

	sl := lower.New(b, fd, el, types, el, debug)
	el.UnwindDest = sl.UnwindDest

	if err := sl.LowerBody(); err != nil {
		return nil, err
	}
	return fn, nil
}
