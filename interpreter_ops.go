// interpreter_ops.go: operators over Values.
//
// These functions are pure: they never touch a Context and report failures
// as *RuntimeError values without a position. The evaluator attaches the
// position of the node that triggered the operation.
//
// Numeric rules: Integer op Integer stays Integer (except "/" which is always
// Float); mixing Integer and Float yields Float. "//" and "%" floor toward
// negative infinity, so the remainder takes the divisor's sign.
package cobra

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Truthy: Null, False, 0, 0.0 and empty strings/containers are false.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTFloat:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTList, VTTuple:
		return len(v.Items()) != 0
	case VTDict:
		return v.Data.(*DictObject).Len() != 0
	}
	return true
}

// BinaryOperation applies an arithmetic, comparison or membership operator.
// "and"/"or" short-circuit and are handled by the evaluator.
func BinaryOperation(op TokenType, a, b Value) (Value, error) {
	switch op {
	case PLUS:
		return add(a, b)
	case MINUS:
		return arith(op, a, b)
	case MULT:
		return mul(a, b)
	case DIV:
		return div(a, b)
	case FLOORDIV, MOD:
		return floorOp(op, a, b)
	case POW:
		return pow(a, b)
	case EQ, NEQ:
		eq, err := Equal(a, b)
		if err != nil {
			return Null, err
		}
		return Bool(eq == (op == EQ)), nil
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		c, err := Compare(a, b)
		if err != nil {
			return Null, err
		}
		switch op {
		case LESS:
			return Bool(c < 0), nil
		case LESS_EQ:
			return Bool(c <= 0), nil
		case GREATER:
			return Bool(c > 0), nil
		}
		return Bool(c >= 0), nil
	case IN:
		ok, err := Contains(b, a)
		return Bool(ok), err
	}
	return Null, rtErrorf(TypeError, "unknown operator %s", op)
}

// UnaryOperation applies prefix +, - or not.
func UnaryOperation(op TokenType, v Value) (Value, error) {
	switch op {
	case NOT:
		return Bool(!Truthy(v)), nil
	case MINUS:
		switch v.Tag {
		case VTInt:
			return Int(-v.Data.(int64)), nil
		case VTFloat:
			return Float(-v.Data.(float64)), nil
		}
	case PLUS:
		if isNumber(v) {
			return v, nil
		}
	}
	return Null, rtErrorf(TypeError, "bad operand type for unary %s: %s", op, v.TypeName())
}

// Equal implements "==". Integer and Float compare numerically, anything
// compared with Null is simply unequal, and other mixed variants fail.
func Equal(a, b Value) (bool, error) {
	if a.Tag == VTNull || b.Tag == VTNull {
		return a.Tag == b.Tag, nil
	}
	if a.Tag != b.Tag && !(isNumber(a) && isNumber(b)) {
		return false, rtErrorf(TypeError, "cannot compare %s and %s with ==", a.TypeName(), b.TypeName())
	}
	return StructEqual(a, b), nil
}

// StructEqual is the non-failing structural equality used by membership
// tests and container comparison.
func StructEqual(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		if a.Tag == VTInt && b.Tag == VTInt {
			return a.Data.(int64) == b.Data.(int64)
		}
		return toFloat(a) == toFloat(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTList, VTTuple:
		xs, ys := a.Items(), b.Items()
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !StructEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTDict:
		da, db := a.Data.(*DictObject), b.Data.(*DictObject)
		if da.Len() != db.Len() {
			return false
		}
		eq := true
		da.Each(func(k, v Value) bool {
			w, ok, err := db.Get(k)
			eq = err == nil && ok && StructEqual(v, w)
			return eq
		})
		return eq
	case VTSlice:
		sa, sb := a.Data.(SliceBounds), b.Data.(SliceBounds)
		return StructEqual(sa.Start, sb.Start) && StructEqual(sa.Stop, sb.Stop)
	}
	return false
}

// Compare orders numbers with numbers and strings with strings.
func Compare(a, b Value) (int, error) {
	switch {
	case a.Tag == VTInt && b.Tag == VTInt:
		x, y := a.Data.(int64), b.Data.(int64)
		return cmp3(x < y, x > y), nil
	case isNumber(a) && isNumber(b):
		x, y := toFloat(a), toFloat(b)
		return cmp3(x < y, x > y), nil
	case a.Tag == VTStr && b.Tag == VTStr:
		return strings.Compare(a.Data.(string), b.Data.(string)), nil
	}
	return 0, rtErrorf(TypeError, "cannot order %s and %s", a.TypeName(), b.TypeName())
}

// Contains implements "item in container".
func Contains(container, item Value) (bool, error) {
	switch container.Tag {
	case VTList, VTTuple:
		for _, e := range container.Items() {
			if StructEqual(e, item) {
				return true, nil
			}
		}
		return false, nil
	case VTDict:
		_, ok, err := container.Data.(*DictObject).Get(item)
		return ok, err
	case VTStr:
		if item.Tag != VTStr {
			return false, rtErrorf(TypeError, "'in <String>' requires a String, not %s", item.TypeName())
		}
		return strings.Contains(container.Data.(string), item.Data.(string)), nil
	}
	return false, rtErrorf(TypeError, "argument of type %s is not iterable", container.TypeName())
}

// Index reads target[idx].
func Index(target, idx Value) (Value, error) {
	if idx.Tag == VTSlice {
		sb := idx.Data.(SliceBounds)
		return Slice(target, sb.Start, sb.Stop)
	}
	switch target.Tag {
	case VTList, VTTuple:
		items := target.Items()
		i, err := normIndex(idx, len(items))
		if err != nil {
			return Null, err
		}
		return items[i], nil
	case VTStr:
		rs := []rune(target.Data.(string))
		i, err := normIndex(idx, len(rs))
		if err != nil {
			return Null, err
		}
		return Str(string(rs[i])), nil
	case VTDict:
		v, ok, err := target.Data.(*DictObject).Get(idx)
		if err != nil {
			return Null, err
		}
		if !ok {
			return Null, rtErrorf(KeyError, "key %s not found", FormatRepr(idx))
		}
		return v, nil
	}
	return Null, rtErrorf(TypeError, "%s is not subscriptable", target.TypeName())
}

// Slice reads target[start:stop]; bounds are Integer or Null and are
// clamped the way Python clamps them.
func Slice(target, start, stop Value) (Value, error) {
	n := 0
	switch target.Tag {
	case VTList, VTTuple:
		n = len(target.Items())
	case VTStr:
		n = utf8.RuneCountInString(target.Data.(string))
	default:
		return Null, rtErrorf(TypeError, "%s cannot be sliced", target.TypeName())
	}
	lo, hi, err := sliceBounds(start, stop, n)
	if err != nil {
		return Null, err
	}
	switch target.Tag {
	case VTList:
		return List(append([]Value(nil), target.Items()[lo:hi]...)), nil
	case VTTuple:
		return Tuple(append([]Value(nil), target.Items()[lo:hi]...)), nil
	}
	return Str(string([]rune(target.Data.(string))[lo:hi])), nil
}

// SetIndex writes target[idx] = v in place.
func SetIndex(target, idx, v Value) error {
	switch target.Tag {
	case VTList:
		lo := target.Data.(*ListObject)
		if idx.Tag == VTSlice {
			sb := idx.Data.(SliceBounds)
			return setSlice(lo, sb.Start, sb.Stop, v)
		}
		i, err := normIndex(idx, len(lo.Items))
		if err != nil {
			return err
		}
		lo.Items[i] = v
		return nil
	case VTDict:
		return target.Data.(*DictObject).Set(idx, v)
	case VTTuple:
		return rtErrorf(ImmutableError, "Tuple does not support item assignment")
	}
	return rtErrorf(TypeError, "%s does not support item assignment", target.TypeName())
}

// Length is len() for strings (in runes) and containers.
func Length(v Value) (int, error) {
	switch v.Tag {
	case VTStr:
		return utf8.RuneCountInString(v.Data.(string)), nil
	case VTList, VTTuple:
		return len(v.Items()), nil
	case VTDict:
		return v.Data.(*DictObject).Len(), nil
	}
	return 0, rtErrorf(TypeError, "%s has no length", v.TypeName())
}

// Iterate returns a snapshot of the elements a for loop visits: list and
// tuple items, string characters, dict keys.
func Iterate(v Value) ([]Value, error) {
	switch v.Tag {
	case VTList, VTTuple:
		return append([]Value(nil), v.Items()...), nil
	case VTStr:
		var out []Value
		for _, r := range v.Data.(string) {
			out = append(out, Str(string(r)))
		}
		return out, nil
	case VTDict:
		return v.Data.(*DictObject).Keys(), nil
	}
	return nil, rtErrorf(TypeError, "%s is not iterable", v.TypeName())
}

////////////////////////////////////////////////////////////////////////////////

func isNumber(v Value) bool { return v.Tag == VTInt || v.Tag == VTFloat }

func toFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func unsupported(op TokenType, a, b Value) error {
	return rtErrorf(TypeError, "unsupported operand types for %s: %s and %s", op, a.TypeName(), b.TypeName())
}

func add(a, b Value) (Value, error) {
	switch {
	case a.Tag == VTStr && b.Tag == VTStr:
		return Str(a.Data.(string) + b.Data.(string)), nil
	case a.Tag == VTList && b.Tag == VTList:
		out := append(append([]Value(nil), a.Items()...), b.Items()...)
		return List(out), nil
	case a.Tag == VTTuple && b.Tag == VTTuple:
		out := append(append([]Value(nil), a.Items()...), b.Items()...)
		return Tuple(out), nil
	}
	return arith(PLUS, a, b)
}

func arith(op TokenType, a, b Value) (Value, error) {
	if !isNumber(a) || !isNumber(b) {
		return Null, unsupported(op, a, b)
	}
	if a.Tag == VTInt && b.Tag == VTInt {
		x, y := a.Data.(int64), b.Data.(int64)
		switch op {
		case PLUS:
			return Int(x + y), nil
		case MINUS:
			return Int(x - y), nil
		case MULT:
			return Int(x * y), nil
		}
	}
	x, y := toFloat(a), toFloat(b)
	switch op {
	case PLUS:
		return Float(x + y), nil
	case MINUS:
		return Float(x - y), nil
	case MULT:
		return Float(x * y), nil
	}
	return Null, unsupported(op, a, b)
}

func mul(a, b Value) (Value, error) {
	if b.Tag == VTInt && a.Tag != VTInt && a.Tag != VTFloat {
		a, b = b, a
	}
	if a.Tag == VTInt {
		n := max(a.Data.(int64), 0)
		switch b.Tag {
		case VTStr:
			str := b.Data.(string)
			if err := checkRepeat(len(str), n, b); err != nil {
				return Null, err
			}
			return Str(strings.Repeat(str, int(n))), nil
		case VTList, VTTuple:
			items := b.Items()
			if err := checkRepeat(len(items), n, b); err != nil {
				return Null, err
			}
			out := make([]Value, 0, len(items)*int(n))
			for i := int64(0); i < n && len(items) > 0; i++ {
				out = append(out, items...)
			}
			if b.Tag == VTList {
				return List(out), nil
			}
			return Tuple(out), nil
		}
	}
	return arith(MULT, a, b)
}

// maxRepeat bounds the length of a repeated String (bytes) or List/Tuple
// (elements).
const maxRepeat = 1 << 28

func checkRepeat(size int, n int64, v Value) error {
	if size > 0 && n > int64(maxRepeat/size) {
		return rtErrorf(ValueError, "%s repetition by %d is too large", v.TypeName(), n)
	}
	return nil
}

func div(a, b Value) (Value, error) {
	if !isNumber(a) || !isNumber(b) {
		return Null, unsupported(DIV, a, b)
	}
	if toFloat(b) == 0 {
		return Null, rtErrorf(DivisionByZero, "division by zero")
	}
	return Float(toFloat(a) / toFloat(b)), nil
}

func floorOp(op TokenType, a, b Value) (Value, error) {
	if !isNumber(a) || !isNumber(b) {
		return Null, unsupported(op, a, b)
	}
	if toFloat(b) == 0 {
		if op == MOD {
			return Null, rtErrorf(DivisionByZero, "modulo by zero")
		}
		return Null, rtErrorf(DivisionByZero, "division by zero")
	}
	if a.Tag == VTInt && b.Tag == VTInt {
		x, y := a.Data.(int64), b.Data.(int64)
		q, r := x/y, x%y
		if r != 0 && (r < 0) != (y < 0) {
			q--
			r += y
		}
		if op == MOD {
			return Int(r), nil
		}
		return Int(q), nil
	}
	x, y := toFloat(a), toFloat(b)
	if op == FLOORDIV {
		return Float(math.Floor(x / y)), nil
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return Float(r), nil
}

func pow(a, b Value) (Value, error) {
	if !isNumber(a) || !isNumber(b) {
		return Null, unsupported(POW, a, b)
	}
	if toFloat(a) == 0 && toFloat(b) < 0 {
		return Null, rtErrorf(DivisionByZero, "zero cannot be raised to a negative power")
	}
	if a.Tag == VTInt && b.Tag == VTInt && b.Data.(int64) >= 0 {
		base, exp := a.Data.(int64), b.Data.(int64)
		result := int64(1)
		for exp > 0 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
			exp >>= 1
		}
		return Int(result), nil
	}
	return Float(math.Pow(toFloat(a), toFloat(b))), nil
}

func normIndex(idx Value, n int) (int, error) {
	if idx.Tag != VTInt {
		return 0, rtErrorf(TypeError, "indices must be Integer, not %s", idx.TypeName())
	}
	i := idx.Data.(int64)
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, rtErrorf(IndexError, "index %d out of range", idx.Data.(int64))
	}
	return int(i), nil
}

func sliceBounds(start, stop Value, n int) (int, int, error) {
	clamp := func(v Value, def int) (int, error) {
		switch v.Tag {
		case VTNull:
			return def, nil
		case VTInt:
		default:
			return 0, rtErrorf(TypeError, "slice bounds must be Integer or Null, not %s", v.TypeName())
		}
		i := v.Data.(int64)
		if i < 0 {
			i += int64(n)
		}
		return int(min(max(i, 0), int64(n))), nil
	}
	lo, err := clamp(start, 0)
	if err != nil {
		return 0, 0, err
	}
	hi, err := clamp(stop, n)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi, nil
}

func setSlice(lo *ListObject, start, stop, v Value) error {
	if v.Tag != VTList && v.Tag != VTTuple {
		return rtErrorf(TypeError, "can only assign a List or Tuple to a slice, not %s", v.TypeName())
	}
	a, b, err := sliceBounds(start, stop, len(lo.Items))
	if err != nil {
		return err
	}
	repl := append([]Value(nil), v.Items()...)
	out := make([]Value, 0, len(lo.Items)-(b-a)+len(repl))
	out = append(out, lo.Items[:a]...)
	out = append(out, repl...)
	out = append(out, lo.Items[b:]...)
	lo.Items = out
	return nil
}
