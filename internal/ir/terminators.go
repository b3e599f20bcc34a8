package ir

import (
	"fmt"
	"strings"
)

// Terminator ends a basic block. Every reachable block carries exactly
// one once lowering completes.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
}

// Br branches unconditionally
type Br struct {
	Target *BasicBlock
	Block  *BasicBlock
}

// CondBr branches on an i1 condition
type CondBr struct {
	Cond  *Value
	Then  *BasicBlock
	Else  *BasicBlock
	Block *BasicBlock
}

// SwitchCase is one (selector → target) edge of a switch
type SwitchCase struct {
	Selector *Value // integer constant
	Target   *BasicBlock
}

// Switch dispatches on an integer selector
type Switch struct {
	Val     *Value
	Default *BasicBlock
	Cases   []SwitchCase
	Block   *BasicBlock
}

// Ret returns from the function; Val is nil for void
type Ret struct {
	Val   *Value
	Block *BasicBlock
}

// Unreachable marks a point control can never reach
type Unreachable struct {
	Block *BasicBlock
}

// Invoke calls a function that may unwind: control resumes at Normal on
// ordinary return and at Unwind when an exception is raised.
type Invoke struct {
	Res    *Value
	Callee *Function
	Args   []*Value
	Normal *BasicBlock
	Unwind *BasicBlock
	Block  *BasicBlock
}

// Resume re-raises an in-flight exception into the next outer frame
type Resume struct {
	Val   *Value
	Block *BasicBlock
}

func (t *Br) Result() *Value          { return nil }
func (t *CondBr) Result() *Value      { return nil }
func (t *Switch) Result() *Value      { return nil }
func (t *Ret) Result() *Value         { return nil }
func (t *Unreachable) Result() *Value { return nil }
func (t *Invoke) Result() *Value      { return t.Res }
func (t *Resume) Result() *Value      { return nil }

func (t *Br) Parent() *BasicBlock          { return t.Block }
func (t *CondBr) Parent() *BasicBlock      { return t.Block }
func (t *Switch) Parent() *BasicBlock      { return t.Block }
func (t *Ret) Parent() *BasicBlock         { return t.Block }
func (t *Unreachable) Parent() *BasicBlock { return t.Block }
func (t *Invoke) Parent() *BasicBlock      { return t.Block }
func (t *Resume) Parent() *BasicBlock      { return t.Block }

func (t *Br) Successors() []*BasicBlock     { return []*BasicBlock{t.Target} }
func (t *CondBr) Successors() []*BasicBlock { return []*BasicBlock{t.Then, t.Else} }

func (t *Switch) Successors() []*BasicBlock {
	succs := []*BasicBlock{t.Default}
	for _, c := range t.Cases {
		succs = append(succs, c.Target)
	}
	return succs
}

func (t *Ret) Successors() []*BasicBlock         { return nil }
func (t *Unreachable) Successors() []*BasicBlock { return nil }
func (t *Invoke) Successors() []*BasicBlock      { return []*BasicBlock{t.Normal, t.Unwind} }
func (t *Resume) Successors() []*BasicBlock      { return nil }

func (t *Br) String() string { return "br " + t.Target.Name }

func (t *CondBr) String() string {
	return fmt.Sprintf("condbr %s, %s, %s", t.Cond, t.Then.Name, t.Else.Name)
}

func (t *Switch) String() string {
	parts := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		parts[i] = fmt.Sprintf("%s: %s", c.Selector, c.Target.Name)
	}
	return fmt.Sprintf("switch %s, default %s [%s]", t.Val, t.Default.Name, strings.Join(parts, ", "))
}

func (t *Ret) String() string {
	if t.Val == nil {
		return "ret void"
	}
	return "ret " + t.Val.String()
}

func (t *Unreachable) String() string { return "unreachable" }

func (t *Invoke) String() string {
	args := make([]string, len(t.Args))
	for n, a := range t.Args {
		args[n] = a.String()
	}
	inv := fmt.Sprintf("invoke @%s(%s) to %s unwind %s",
		t.Callee.Name, strings.Join(args, ", "), t.Normal.Name, t.Unwind.Name)
	if t.Res != nil {
		return t.Res.String() + " = " + inv
	}
	return inv
}

func (t *Resume) String() string { return "resume " + t.Val.String() }
