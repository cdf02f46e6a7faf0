package dsl

import (
	"fmt"

	"github.com/reoring/immjson"
)

// ObjectTyped returns a typed object builder that supports fluent Bind()/MustBind().
// Fields are appended to a flat property list in declaration order; Inline
// and End bracket nested wire objects decoded into the same T.
func ObjectTyped[T any]() *objectBuilderT[T] { return &objectBuilderT[T]{} }

// ObjectOf is an alias of ObjectTyped for naming consistency with other *Of[T] helpers.
func ObjectOf[T any]() *objectBuilderT[T] { return ObjectTyped[T]() }

type objectBuilderT[T any] struct {
	props  []immjson.Property[T]
	depth  int
	layout bool
	err    error
}

// Field binds key to a target built with Into, Fixed, Bounded, Describe or
// Hook.
func (tb *objectBuilderT[T]) Field(key string, target Target[T]) *objectBuilderT[T] {
	if target == nil {
		tb.fail(fmt.Errorf("field %q: nil target", key))
		return tb
	}
	tb.props = append(tb.props, target(key))
	return tb
}

// Inline opens a nested wire object under key. Its fields are declared
// until the matching End.
func (tb *objectBuilderT[T]) Inline(key string) *objectBuilderT[T] {
	tb.depth++
	tb.props = append(tb.props, immjson.Inline[T](key))
	return tb
}

// End closes the innermost Inline.
func (tb *objectBuilderT[T]) End() *objectBuilderT[T] {
	if tb.depth == 0 {
		tb.fail(fmt.Errorf("End without Inline"))
		return tb
	}
	tb.depth--
	tb.props = append(tb.props, immjson.EndInline[T]())
	return tb
}

// Pad accounts for n bytes of T that are not on the wire, such as
// alignment gaps or fields filled in after decoding.
func (tb *objectBuilderT[T]) Pad(n uintptr) *objectBuilderT[T] {
	tb.props = append(tb.props, immjson.Padding[T](n))
	return tb
}

// CheckLayout makes Bind verify that fields and padding, in declaration
// order, cover T exactly.
func (tb *objectBuilderT[T]) CheckLayout() *objectBuilderT[T] {
	tb.layout = true
	return tb
}

func (tb *objectBuilderT[T]) fail(err error) {
	if tb.err == nil {
		tb.err = err
	}
}

// Properties returns the flat property list built so far, terminated by
// an end marker.
func (tb *objectBuilderT[T]) Properties() []immjson.Property[T] {
	out := make([]immjson.Property[T], 0, len(tb.props)+1)
	out = append(out, tb.props...)
	return append(out, immjson.End[T]())
}

// Bind builds and binds to T.
func (tb *objectBuilderT[T]) Bind() (*immjson.Schema[T], error) {
	if tb.err != nil {
		return nil, fmt.Errorf("%w: %v", immjson.ErrInvalidSchema, tb.err)
	}
	return immjson.Compile(tb.Properties(), immjson.CompileOpt{CheckLayout: tb.layout})
}

// MustBind builds and binds to T, panicking on error.
func (tb *objectBuilderT[T]) MustBind() *immjson.Schema[T] {
	s, err := tb.Bind()
	if err != nil {
		panic(err)
	}
	return s
}
