package ir

import "fmt"

// Value is an SSA value: the result of an instruction, a function
// parameter, or a constant. Each value has exactly one definition.
type Value struct {
	ID    int
	Name  string
	Type  Type
	Def   Instruction // nil for constants, parameters and globals
	Const Constant    // non-nil when the value is a compile-time constant
}

// IsConst reports whether the value is a compile-time constant
func (v *Value) IsConst() bool { return v.Const != nil }

func (v *Value) String() string {
	if v.Const != nil {
		return v.Const.String()
	}
	return "%" + v.Name
}

// Constant is a compile-time constant initializer
type Constant interface {
	ConstType() Type
	String() string
}

// IntConst is an integer constant
type IntConst struct {
	Ty  *IntType
	V   uint64
	Neg bool // set for negative signed constants
}

func (c *IntConst) ConstType() Type { return c.Ty }

func (c *IntConst) String() string {
	if c.Neg {
		return fmt.Sprintf("-%d", c.V)
	}
	return fmt.Sprintf("%d", c.V)
}

// Int64 returns the constant as a signed integer
func (c *IntConst) Int64() int64 {
	if c.Neg {
		return -int64(c.V)
	}
	return int64(c.V)
}

// NullConst is the zero value of a pointer or aggregate type
type NullConst struct {
	Ty Type
}

func (c *NullConst) ConstType() Type { return c.Ty }
func (c *NullConst) String() string  { return "null" }

// StringConst is a constant array of character codes
type StringConst struct {
	Ty    *ArrayType
	Value string
	Width int // element width in bytes: 1, 2 or 4
}

func (c *StringConst) ConstType() Type { return c.Ty }
func (c *StringConst) String() string  { return fmt.Sprintf("c%q", c.Value) }

// StructConst is a constant aggregate
type StructConst struct {
	Ty     *StructType
	Fields []Constant
}

func (c *StructConst) ConstType() Type { return c.Ty }

func (c *StructConst) String() string {
	s := "{ "
	for i, f := range c.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.String()
	}
	return s + " }"
}

// ArrayConst is a constant array of homogeneous elements
type ArrayConst struct {
	Ty    *ArrayType
	Elems []Constant
}

func (c *ArrayConst) ConstType() Type { return c.Ty }

func (c *ArrayConst) String() string {
	s := "["
	for i, e := range c.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

// SliceConst is a constant (length, pointer) pair
type SliceConst struct {
	Ty  *SliceType
	Len Constant
	Ptr Constant
}

func (c *SliceConst) ConstType() Type { return c.Ty }

func (c *SliceConst) String() string {
	return fmt.Sprintf("{ %s, %s }", c.Len.String(), c.Ptr.String())
}

// GlobalRef is the address of a module-scope global
type GlobalRef struct {
	G *Global
}

func (c *GlobalRef) ConstType() Type { return &PointerType{Elem: c.G.Type} }
func (c *GlobalRef) String() string  { return "@" + c.G.Name }

// BitcastConst reinterprets a constant at another type
type BitcastConst struct {
	C  Constant
	To Type
}

func (c *BitcastConst) ConstType() Type { return c.To }

func (c *BitcastConst) String() string {
	return fmt.Sprintf("bitcast(%s to %s)", c.C.String(), c.To.String())
}

// ConstValue wraps a constant as an SSA value
func ConstValue(c Constant) *Value {
	return &Value{Name: c.String(), Type: c.ConstType(), Const: c}
}

// ConstInt builds an integer constant value
func ConstInt(ty *IntType, v uint64) *Value {
	return ConstValue(&IntConst{Ty: ty, V: v})
}

// ConstBool builds an i1 constant
func ConstBool(b bool) *Value {
	var v uint64
	if b {
		v = 1
	}
	return ConstInt(I1, v)
}

// ConstNull builds the zero value of a type
func ConstNull(ty Type) *Value {
	return ConstValue(&NullConst{Ty: ty})
}
