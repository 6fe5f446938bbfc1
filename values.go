// values.go: runtime values.
//
// A Value is a small tagged struct; Data holds the payload whose Go type is
// fixed by Tag:
//
//	VTNull   nil
//	VTBool   bool
//	VTInt    int64
//	VTFloat  float64
//	VTStr    string
//	VTList   *ListObject   (shared, mutable)
//	VTTuple  []Value       (never mutated after construction)
//	VTDict   *DictObject   (shared, mutable, insertion ordered)
//	VTSlice  SliceBounds
//
// Lists and dicts have reference semantics: copying a Value copies the
// pointer. Operators live in interpreter_ops.go.
package cobra

import (
	"fmt"
	"math"
	"strings"
)

type ValueTag int

const (
	VTNull ValueTag = iota
	VTBool
	VTInt
	VTFloat
	VTStr
	VTList
	VTTuple
	VTDict
	VTSlice
)

func (t ValueTag) String() string {
	switch t {
	case VTNull:
		return "Null"
	case VTBool:
		return "Boolean"
	case VTInt:
		return "Integer"
	case VTFloat:
		return "Float"
	case VTStr:
		return "String"
	case VTList:
		return "List"
	case VTTuple:
		return "Tuple"
	case VTDict:
		return "Dict"
	case VTSlice:
		return "Slice"
	}
	return fmt.Sprintf("ValueTag(%d)", int(t))
}

type Value struct {
	Tag  ValueTag
	Data any
}

type ListObject struct {
	Items []Value
}

// SliceBounds is the payload of a Slice value. Either bound may be Null.
type SliceBounds struct {
	Start Value
	Stop  Value
}

var Null = Value{Tag: VTNull}

func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value      { return Value{Tag: VTInt, Data: n} }
func Float(f float64) Value  { return Value{Tag: VTFloat, Data: f} }
func Str(s string) Value     { return Value{Tag: VTStr, Data: s} }
func List(xs []Value) Value  { return Value{Tag: VTList, Data: &ListObject{Items: xs}} }
func Tuple(xs []Value) Value { return Value{Tag: VTTuple, Data: xs} }
func Dict(d *DictObject) Value {
	return Value{Tag: VTDict, Data: d}
}
func SliceOf(start, stop Value) Value {
	return Value{Tag: VTSlice, Data: SliceBounds{Start: start, Stop: stop}}
}

func (v Value) TypeName() string { return v.Tag.String() }

func (v Value) IsNull() bool { return v.Tag == VTNull }

// Items returns the elements of a List or Tuple, nil otherwise. The slice
// of a List is live.
func (v Value) Items() []Value {
	switch v.Tag {
	case VTList:
		return v.Data.(*ListObject).Items
	case VTTuple:
		return v.Data.([]Value)
	}
	return nil
}

// ---- Dict ----

// DictObject keeps entries in insertion order. Keys must be hashable: every
// scalar, and tuples made only of hashable values.
type DictObject struct {
	keys  []Value
	vals  []Value
	index map[any]int
}

func NewDict() *DictObject { return &DictObject{index: map[any]int{}} }

func (d *DictObject) Len() int { return len(d.keys) }

// Keys returns a copy of the keys in insertion order.
func (d *DictObject) Keys() []Value { return append([]Value(nil), d.keys...) }

func (d *DictObject) Values() []Value { return append([]Value(nil), d.vals...) }

func (d *DictObject) Get(k Value) (Value, bool, error) {
	h, err := hashKey(k)
	if err != nil {
		return Null, false, err
	}
	i, ok := d.index[h]
	if !ok {
		return Null, false, nil
	}
	return d.vals[i], true, nil
}

func (d *DictObject) Set(k, v Value) error {
	h, err := hashKey(k)
	if err != nil {
		return err
	}
	if i, ok := d.index[h]; ok {
		d.vals[i] = v
		return nil
	}
	d.index[h] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
	return nil
}

// Each visits entries in insertion order until fn returns false.
func (d *DictObject) Each(fn func(k, v Value) bool) {
	for i := range d.keys {
		if !fn(d.keys[i], d.vals[i]) {
			return
		}
	}
}

type (
	nullKey  struct{}
	boolKey  bool
	tupleKey string
)

// hashKey maps a Value to a comparable Go key. An integral float and the
// equal integer share a key.
func hashKey(v Value) (any, error) {
	switch v.Tag {
	case VTNull:
		return nullKey{}, nil
	case VTBool:
		return boolKey(v.Data.(bool)), nil
	case VTInt:
		return v.Data.(int64), nil
	case VTFloat:
		f := v.Data.(float64)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), nil
		}
		return f, nil
	case VTStr:
		return v.Data.(string), nil
	case VTTuple:
		var b strings.Builder
		b.WriteByte('(')
		for _, e := range v.Data.([]Value) {
			k, err := hashKey(e)
			if err != nil {
				return nil, err
			}
			s := fmt.Sprint(k)
			fmt.Fprintf(&b, "%T:%d:%s,", k, len(s), s)
		}
		b.WriteByte(')')
		return tupleKey(b.String()), nil
	}
	return nil, rtErrorf(TypeError, "unhashable type: %s", v.TypeName())
}
