package interp

// Options controls an interpretation run.
type Options struct {
	// Output receives each printed cout item. Nil discards output.
	Output func(string)
	// MaxSteps bounds executed statements plus loop iterations. Zero means
	// unlimited.
	MaxSteps int
}

// normalize normalizes the Options.
func (o *Options) normalize() Options {
	if o == nil {
		return Options{Output: func(string) {}}
	}

	out := *o
	if out.Output == nil {
		out.Output = func(string) {}
	}
	if out.MaxSteps < 0 {
		out.MaxSteps = 0
	}

	return out
}
