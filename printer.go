package cobra

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/* ---------- values ---------- */

// FormatValue renders v the way print shows it: strings raw, everything
// else as FormatRepr.
func FormatValue(v Value) string {
	if v.Tag == VTStr {
		return v.Data.(string)
	}
	return FormatRepr(v)
}

// FormatRepr renders v as a literal: strings are single-quoted, containers
// show their elements in repr form.
func FormatRepr(v Value) string {
	var b strings.Builder
	writeRepr(&b, v, map[any]bool{})
	return b.String()
}

// FormatFloat prints a float with either a fractional part or an exponent,
// so it never reads back as an Integer.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func writeRepr(b *strings.Builder, v Value, seen map[any]bool) {
	switch v.Tag {
	case VTNull:
		b.WriteString("Null")
	case VTBool:
		if v.Data.(bool) {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case VTInt:
		b.WriteString(strconv.FormatInt(v.Data.(int64), 10))
	case VTFloat:
		b.WriteString(FormatFloat(v.Data.(float64)))
	case VTStr:
		b.WriteString(quoteString(v.Data.(string)))
	case VTList:
		lo := v.Data.(*ListObject)
		if seen[lo] {
			b.WriteString("[...]")
			return
		}
		seen[lo] = true
		defer delete(seen, lo)
		b.WriteByte('[')
		writeItems(b, lo.Items, seen)
		b.WriteByte(']')
	case VTTuple:
		items := v.Items()
		b.WriteByte('(')
		writeItems(b, items, seen)
		if len(items) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case VTDict:
		d := v.Data.(*DictObject)
		if seen[d] {
			b.WriteString("{...}")
			return
		}
		seen[d] = true
		defer delete(seen, d)
		b.WriteByte('{')
		first := true
		d.Each(func(k, val Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			writeRepr(b, k, seen)
			b.WriteString(": ")
			writeRepr(b, val, seen)
			return true
		})
		b.WriteByte('}')
	case VTSlice:
		sb := v.Data.(SliceBounds)
		if !sb.Start.IsNull() {
			writeRepr(b, sb.Start, seen)
		}
		b.WriteByte(':')
		if !sb.Stop.IsNull() {
			writeRepr(b, sb.Stop, seen)
		}
	default:
		fmt.Fprintf(b, "<%s>", v.TypeName())
	}
}

func writeItems(b *strings.Builder, items []Value, seen map[any]bool) {
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(b, it, seen)
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

/* ---------- tokens ---------- */

// FormatTokens lists tokens one per line with their position and
// whitespace flags.
func FormatTokens(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&b, "%-7s %s", t.Start, t)
		if t.SpaceAfter {
			b.WriteString(" ␣")
		}
		if t.NewlineAfter {
			b.WriteString(" ⏎")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

/* ---------- syntax trees ---------- */

// DumpAST converts a node into nested maps and slices, ready for a
// structured encoder. Every map has a "node" key naming the node type.
func DumpAST(n Node) any {
	if n == nil {
		return nil
	}
	m := map[string]any{"node": strings.TrimPrefix(fmt.Sprintf("%T", n), "*cobra."), "at": n.Pos().String()}
	switch x := n.(type) {
	case *StringLit:
		m["value"] = x.Value
	case *IntegerLit:
		m["value"] = x.Text
	case *FloatLit:
		m["value"] = x.Text
	case *BooleanLit:
		m["value"] = x.Value
	case *NullLit:
	case *ListLit:
		m["elems"] = dumpNodes(x.Elems)
	case *TupleLit:
		m["elems"] = dumpNodes(x.Elems)
	case *DictLit:
		var entries []any
		for _, e := range x.Entries {
			entries = append(entries, map[string]any{"key": DumpAST(e.Key), "value": DumpAST(e.Value)})
		}
		m["entries"] = entries
	case *VarRef:
		m["name"] = x.Name
	case *Subscript:
		m["target"] = DumpAST(x.Target)
		if x.Mode == SubscriptSlice {
			m["mode"] = "slice"
			m["start"] = DumpAST(x.Start)
			m["stop"] = DumpAST(x.Stop)
		} else {
			m["mode"] = "index"
			m["index"] = DumpAST(x.Index)
		}
	case *BinaryOp:
		m["op"] = x.Op.String()
		m["left"] = DumpAST(x.Left)
		m["right"] = DumpAST(x.Right)
	case *UnaryOp:
		m["op"] = x.Op.String()
		m["operand"] = DumpAST(x.Operand)
	case *Call:
		m["name"] = x.Name
		m["args"] = dumpNodes(x.Args)
		if len(x.Kwargs) > 0 {
			kw := map[string]any{}
			for _, k := range x.Kwargs {
				kw[k.Name] = DumpAST(k.Value)
			}
			m["kwargs"] = kw
		}
	case *Assign:
		m["target"] = DumpAST(x.Target)
		m["value"] = DumpAST(x.Value)
	case *LetDecl:
		m["name"] = x.Name
		m["value"] = DumpAST(x.Value)
	case *Block:
		m["stmts"] = dumpNodes(x.Stmts)
	case *FunctionBlock:
		m["stmts"] = dumpNodes(x.Stmts)
	case *Program:
		m["file"] = x.File
		m["stmts"] = dumpNodes(x.Stmts)
	case *If:
		var branches []any
		for _, br := range x.Branches {
			branches = append(branches, map[string]any{"cond": DumpAST(br.Cond), "body": DumpAST(br.Body)})
		}
		m["branches"] = branches
	case *While:
		m["cond"] = DumpAST(x.Cond)
		m["body"] = DumpAST(x.Body)
	case *For:
		m["vars"] = x.Vars
		m["iterable"] = DumpAST(x.Iterable)
		m["body"] = DumpAST(x.Body)
	case *Return:
		m["value"] = DumpAST(x.Value)
	case *Break:
	case *FunctionDef:
		m["name"] = x.Name
		m["params"] = x.Params
		if x.VarArg != "" {
			m["vararg"] = x.VarArg
		}
		if len(x.KwParams) > 0 {
			kw := map[string]any{}
			for _, k := range x.KwParams {
				kw[k.Name] = DumpAST(k.Default)
			}
			m["kwparams"] = kw
		}
		if x.VarKwArg != "" {
			m["varkwarg"] = x.VarKwArg
		}
		m["body"] = DumpAST(x.Body)
	case *FromImport:
		m["module"] = x.Module
		m["path"] = x.Path
		m["names"] = x.Names
	}
	return m
}

func dumpNodes(ns []Node) []any {
	out := make([]any, 0, len(ns))
	for _, n := range ns {
		out = append(out, DumpAST(n))
	}
	return out
}
