package cobra

// ---- list mutation ------------------------------------------------------

func registerCollectionBuiltins(b *Builtins) {
	// append(iterable, value) -> Null
	b.RegisterNative(
		"append",
		Signature{Params: []string{"iterable", "value"}},
		func(c *CallCtx) (Value, error) {
			lo, err := argList(c, "iterable")
			if err != nil {
				return Null, err
			}
			lo.Items = append(lo.Items, c.Arg("value"))
			return Null, nil
		},
	)
	b.SetDoc("append", "Add value to the end of a List, in place.")

	// insert(iterable, index, value) -> Null
	b.RegisterNative(
		"insert",
		Signature{Params: []string{"iterable", "index", "value"}},
		func(c *CallCtx) (Value, error) {
			lo, err := argList(c, "iterable")
			if err != nil {
				return Null, err
			}
			i, err := argInt(c, "index")
			if err != nil {
				return Null, err
			}
			n := int64(len(lo.Items))
			if i < 0 {
				i += n
			}
			i = min(max(i, 0), n)
			lo.Items = append(lo.Items, Null)
			copy(lo.Items[i+1:], lo.Items[i:])
			lo.Items[i] = c.Arg("value")
			return Null, nil
		},
	)
	b.SetDoc("insert", `Insert value before position index of a List, in place.
Negative indices count from the end; out-of-range indices are clamped.`)

	// pop(iterable, index=-1) -> Any
	b.RegisterNative(
		"pop",
		Signature{Params: []string{"iterable"}, KwParams: []Param{{Name: "index", Default: Int(-1)}}},
		func(c *CallCtx) (Value, error) {
			lo, err := argList(c, "iterable")
			if err != nil {
				return Null, err
			}
			if len(lo.Items) == 0 {
				return Null, rtErrorf(IndexError, "pop from empty List")
			}
			i, err := normIndex(c.Arg("index"), len(lo.Items))
			if err != nil {
				return Null, err
			}
			v := lo.Items[i]
			lo.Items = append(lo.Items[:i], lo.Items[i+1:]...)
			return v, nil
		},
	)
	b.SetDoc("pop", "Remove and return the element at index (default: the last one) of a List.")
}
