package ir

import (
	"strings"
	"testing"
)

func testFunc() *Function {
	m := NewModule("test")
	return m.NewFunc("f", &FuncType{Ret: Void, Params: []Type{I32}})
}

func TestNewBuilder(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)

	if b == nil {
		t.Fatal("NewBuilder should not return nil")
	}
	if len(fn.Blocks) != 2 {
		t.Fatalf("expected entry and endentry blocks, got %d", len(fn.Blocks))
	}
	if !strings.HasPrefix(fn.Blocks[0].Name, "entry") {
		t.Errorf("first block should be the entry, got %s", fn.Blocks[0].Name)
	}
	if b.Block() != fn.Blocks[0] {
		t.Error("cursor should start at the entry block")
	}
	if b.End() != fn.Blocks[1] {
		t.Error("end anchor should be the endentry block")
	}
}

func TestNewBlockPositionsBeforeAnchor(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)

	first := b.NewBlock("first")
	second := b.NewBlock("second")

	// both must sit before the end anchor, in creation order
	names := make([]string, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		names[i] = bb.Name
	}
	if fn.Blocks[1] != first || fn.Blocks[2] != second {
		t.Errorf("blocks not positioned before anchor: %v", names)
	}
	if fn.Blocks[3] != b.End() {
		t.Errorf("end anchor not last: %v", names)
	}
}

func TestMoveBlockBefore(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)

	bb1 := b.NewBlock("one")
	bb2 := b.NewBlock("two")
	fn.MoveBlockBefore(bb2, bb1)

	if fn.Blocks[1] != bb2 || fn.Blocks[2] != bb1 {
		t.Error("MoveBlockBefore did not reposition the block")
	}
}

func TestReturnedAndDoubleTerminator(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)

	if b.Returned() {
		t.Error("fresh block should not be terminated")
	}
	b.CreateRet(nil)
	if !b.Returned() {
		t.Error("block with ret should report terminated")
	}

	defer func() {
		if recover() == nil {
			t.Error("second terminator should panic")
		}
	}()
	b.CreateRet(nil)
}

func TestEmitIntoTerminatedBlockPanics(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)
	b.CreateUnreachable()

	defer func() {
		if recover() == nil {
			t.Error("emitting into a terminated block should panic")
		}
	}()
	b.CreateAlloca(I32, "x")
}

func TestCondBrRequiresBool(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)
	then := b.NewBlock("then")
	els := b.NewBlock("else")

	defer func() {
		if recover() == nil {
			t.Error("cond_br on a non-i1 value should panic")
		}
	}()
	b.CreateCondBr(ConstInt(I32, 1), then, els)
}

func TestCallOrInvoke(t *testing.T) {
	m := NewModule("test")
	callee := m.DeclareFunc("g", &FuncType{Ret: I32, Params: nil})
	fn := m.NewFunc("f", &FuncType{Ret: Void, Params: nil})
	b := NewBuilder(fn)

	// without an unwind destination a plain call is emitted
	v := b.CallOrInvoke(callee, nil, nil, "r")
	if v == nil {
		t.Fatal("call should produce a value")
	}
	if b.Returned() {
		t.Error("plain call must not terminate the block")
	}

	// with an unwind destination the call becomes an invoke and the
	// cursor moves to the continuation block
	pad := b.NewBlock("landingpad")
	before := b.Block()
	v2 := b.CallOrInvoke(callee, nil, pad, "r")
	if v2 == nil {
		t.Fatal("invoke should produce a value")
	}
	inv, ok := before.Term.(*Invoke)
	if !ok {
		t.Fatalf("expected invoke terminator, got %T", before.Term)
	}
	if inv.Unwind != pad {
		t.Error("invoke unwind destination mismatch")
	}
	if inv.Normal != b.Block() {
		t.Error("cursor should sit at the invoke continuation block")
	}
}

func TestLoadTypechecks(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)

	slot := b.CreateAlloca(I64, "x")
	v := b.CreateLoad(slot, "xval")
	if BitSize(v.Type) != 64 {
		t.Errorf("load should yield the pointee type, got %s", v.Type)
	}
}

func TestSwitchCases(t *testing.T) {
	fn := testFunc()
	b := NewBuilder(fn)
	def := b.NewBlock("default")
	one := b.NewBlock("one")

	sw := b.CreateSwitch(ConstInt(I32, 0), def)
	sw.AddCase(ConstInt(I32, 1), one)

	if len(sw.Successors()) != 2 {
		t.Errorf("switch should have default plus one case successor")
	}
}

func TestUniqueGlobalNames(t *testing.T) {
	m := NewModule("test")
	g1 := m.NewUniqueGlobal(".uniqueCS", I32, nil, false)
	g2 := m.NewUniqueGlobal(".uniqueCS", I32, nil, false)
	if g1.Name == g2.Name {
		t.Errorf("unique globals must have distinct names: %s", g1.Name)
	}
	if g1.Name != ".uniqueCS0" || g2.Name != ".uniqueCS1" {
		t.Errorf("names must be deterministic, got %s, %s", g1.Name, g2.Name)
	}
}

func TestPrinterSmoke(t *testing.T) {
	m := NewModule("demo")
	fn := m.NewFunc("f", &FuncType{Ret: I32, Params: nil})
	b := NewBuilder(fn)
	b.CreateRet(ConstInt(I32, 42))

	out := Print(m)
	for _, want := range []string{"module demo", "func @f()", "ret 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("printer output missing %q:\n%s", want, out)
		}
	}
}
