package cobra

// ---- randomness -----------------------------------------------------------

func registerMiscBuiltins(b *Builtins) {
	// random(minimum=0, maximum=1) -> Integer in [minimum, maximum]
	b.RegisterNative(
		"random",
		Signature{KwParams: []Param{
			{Name: "minimum", Default: Int(0)},
			{Name: "maximum", Default: Int(1)},
		}},
		func(c *CallCtx) (Value, error) {
			lo, err := argInt(c, "minimum")
			if err != nil {
				return Null, err
			}
			hi, err := argInt(c, "maximum")
			if err != nil {
				return Null, err
			}
			if hi < lo {
				return Null, rtErrorf(ValueError, "random(): maximum %d is smaller than minimum %d", hi, lo)
			}
			return Int(lo + c.Ctx.rng.Int64N(hi-lo+1)), nil
		},
	)
	b.SetDoc("random", "Uniform random Integer between minimum and maximum, both inclusive.")

	// choice(iterable) -> Any
	b.RegisterNative(
		"choice",
		Signature{Params: []string{"iterable"}},
		func(c *CallCtx) (Value, error) {
			items, err := Iterate(c.Arg("iterable"))
			if err != nil {
				return Null, err
			}
			if len(items) == 0 {
				return Null, rtErrorf(IndexError, "choice() from an empty sequence")
			}
			return items[c.Ctx.rng.IntN(len(items))], nil
		},
	)
	b.SetDoc("choice", "Pick one element of a List, Tuple, String or Dict (keys) at random.")
}
