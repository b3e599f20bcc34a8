package lower

import (
	"sable/internal/ir"
)

// Runtime symbols consumed by name. The ABI of these is frozen; the
// lowerer declares them on first use and never defines them.
const (
	rtThrowException = "_d_throw_exception"
	rtSwitchString   = "_d_switch_string"
	rtSwitchUString  = "_d_switch_ustring"
	rtSwitchDString  = "_d_switch_dstring"
	rtSwitchError    = "_d_switch_error"
	rtMonitorEnter   = "_d_monitorenter"
	rtMonitorExit    = "_d_monitorexit"
	rtCriticalEnter  = "_d_criticalenter"
	rtCriticalExit   = "_d_criticalexit"
	rtEHTypeID       = "_d_eh_typeid"
	rtEHTypeIDFor    = "_d_eh_typeid_for"
)

var (
	objectPtr = &ir.PointerType{Elem: ir.I8}

	// critSecType is the opaque mutex slot a synchronized statement
	// without an expression allocates per site
	critSecType = &ir.StructType{Name: "critsec", Fields: []ir.Type{objectPtr}}
)

// switchTableType is the packed { len, ptr } header of a string-switch
// table for the given element type
func switchTableType(elem ir.Type) *ir.StructType {
	return &ir.StructType{Fields: []ir.Type{ir.SizeT, &ir.PointerType{Elem: elem}}}
}

func runtimeSignature(name string) *ir.FuncType {
	switch name {
	case rtThrowException:
		return &ir.FuncType{Ret: ir.Void, Params: []ir.Type{objectPtr}}
	case rtSwitchString:
		return &ir.FuncType{
			Ret:    ir.I32,
			Params: []ir.Type{&ir.PointerType{Elem: switchTableType(ir.U8)}, &ir.SliceType{Elem: ir.U8}},
		}
	case rtSwitchUString:
		return &ir.FuncType{
			Ret:    ir.I32,
			Params: []ir.Type{&ir.PointerType{Elem: switchTableType(ir.U16)}, &ir.SliceType{Elem: ir.U16}},
		}
	case rtSwitchDString:
		return &ir.FuncType{
			Ret:    ir.I32,
			Params: []ir.Type{&ir.PointerType{Elem: switchTableType(ir.U32)}, &ir.SliceType{Elem: ir.U32}},
		}
	case rtSwitchError:
		return &ir.FuncType{Ret: ir.Void, Params: []ir.Type{&ir.PointerType{Elem: ir.U8}, ir.U32}}
	case rtMonitorEnter, rtMonitorExit:
		return &ir.FuncType{Ret: ir.Void, Params: []ir.Type{objectPtr}}
	case rtCriticalEnter, rtCriticalExit:
		return &ir.FuncType{Ret: ir.Void, Params: []ir.Type{&ir.PointerType{Elem: critSecType}}}
	case rtEHTypeID:
		return &ir.FuncType{Ret: ir.I32, Params: []ir.Type{objectPtr}}
	case rtEHTypeIDFor:
		return &ir.FuncType{Ret: ir.I32, Params: []ir.Type{objectPtr}}
	default:
		panic("lower: unknown runtime symbol " + name)
	}
}

// runtimeFn returns the declaration for a runtime symbol, creating it in
// the module on first use
func (l *Lowerer) runtimeFn(name string) *ir.Function {
	return l.B.Mod.DeclareFunc(name, runtimeSignature(name))
}

// typeInfoGlobal returns the module-scope type-info symbol for a class
// name, used as the catch filter handed to the unwinder
func (l *Lowerer) typeInfoGlobal(name string) *ir.Global {
	sym := "_STI_" + name
	for _, g := range l.B.Mod.Globals {
		if g.Name == sym {
			return g
		}
	}
	return l.B.Mod.NewGlobal(sym, ir.I8, nil, true, ir.ExternalLinkage)
}
