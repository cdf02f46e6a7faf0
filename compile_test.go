package immjson_test

import (
	"context"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/dsl"
)

type packed struct {
	A uint8
	_ [3]byte
	B int32
	C [2]uint16
}

func packedProps(extra ...immjson.Property[packed]) []immjson.Property[packed] {
	props := []immjson.Property[packed]{
		immjson.Field("a", func(p *packed) *uint8 { return &p.A }, dsl.Uint[uint8]()),
		immjson.Padding[packed](3),
		immjson.Field("b", func(p *packed) *int32 { return &p.B }, dsl.Int[int32]()),
		immjson.FixedArrayField("c", func(p *packed) []uint16 { return p.C[:] }, dsl.Uint[uint16]()),
	}
	return append(props, extra...)
}

func TestCompile_CheckLayout(t *testing.T) {
	s, err := immjson.Compile(packedProps(immjson.End[packed]()), immjson.CompileOpt{CheckLayout: true})
	require.NoError(t, err)
	assert.Len(t, s.Properties(), 4, "End is not kept")

	got, err := immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"c":[7,8],"a":1,"b":-2}`)))
	require.NoError(t, err)
	assert.Equal(t, packed{A: 1, B: -2, C: [2]uint16{7, 8}}, got)
}

func TestCompile_LayoutErrors(t *testing.T) {
	// Missing padding leaves B at the wrong cursor.
	gap := []immjson.Property[packed]{
		immjson.Field("a", func(p *packed) *uint8 { return &p.A }, dsl.Uint[uint8]()),
		immjson.Field("b", func(p *packed) *int32 { return &p.B }, dsl.Int[int32]()),
	}
	_, err := immjson.Compile(gap, immjson.CompileOpt{CheckLayout: true})
	require.ErrorIs(t, err, immjson.ErrInvalidSchema)
	iss, _ := immjson.AsIssues(err)
	assert.Equal(t, immjson.CodeInvalidSchema, iss[0].Code)
	assert.Contains(t, iss[0].Hint, `field "b"`)

	// Short coverage.
	_, err = immjson.Compile(packedProps()[:3], immjson.CompileOpt{CheckLayout: true})
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	// Overlap: the same field twice under different keys.
	overlap := packedProps(immjson.Field("a2", func(p *packed) *uint8 { return &p.A }, dsl.Uint[uint8]()))
	_, err = immjson.Compile(overlap, immjson.CompileOpt{CheckLayout: true})
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	// Hooks have no layout.
	hooked := append(packedProps()[:1], immjson.Custom("x", func(*immjson.Decoder, *packed) error { return nil }))
	_, err = immjson.Compile(hooked, immjson.CompileOpt{CheckLayout: true})
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	// Without the check, any of these compile.
	_, err = immjson.Compile(gap)
	assert.NoError(t, err)
}

func TestCompile_Structure(t *testing.T) {
	dup := packedProps(immjson.Field("a", func(p *packed) *uint8 { return &p.A }, dsl.Uint[uint8]()))
	_, err := immjson.Compile(dup)
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	// The same key may appear at different levels.
	nested := packedProps(immjson.Inline[packed]("x"),
		immjson.Field("a", func(p *packed) *uint8 { return &p.A }, dsl.Uint[uint8]()),
		immjson.EndInline[packed]())
	s, err := immjson.Compile(nested)
	require.NoError(t, err)
	got, err := immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"a":1,"x":{"a":2}}`)))
	require.NoError(t, err)
	assert.Equal(t, uint8(2), got.A)

	_, err = immjson.Compile(packedProps(immjson.Inline[packed]("x")))
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	_, err = immjson.Compile(packedProps(immjson.EndInline[packed]()))
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)

	// Properties after End are ignored.
	s, err = immjson.Compile(packedProps(immjson.End[packed](), immjson.Inline[packed]("never closed")))
	require.NoError(t, err)
	assert.Len(t, s.Properties(), 4)

	assert.Panics(t, func() { immjson.MustCompile(dup) })
}

func TestProperty_Accessors(t *testing.T) {
	props := packedProps()
	assert.Equal(t, "a", props[0].Key())
	assert.Equal(t, immjson.KindInteger, props[0].Kind())
	assert.Equal(t, "", props[1].Key())
	assert.Equal(t, immjson.KindArray, props[3].Kind())
	assert.Equal(t, "array", immjson.KindArray.String())
}

func TestCompile_InlineLayout(t *testing.T) {
	type inner struct {
		Lo, Hi int16
	}
	type outer struct {
		ID    uint32
		Range inner
	}
	s := dsl.ObjectOf[outer]().
		Field("id", dsl.Into(func(o *outer) *uint32 { return &o.ID }, dsl.Uint[uint32]())).
		Inline("range").
		Field("lo", dsl.Into(func(o *outer) *int16 { return &o.Range.Lo }, dsl.Int[int16]())).
		Field("hi", dsl.Into(func(o *outer) *int16 { return &o.Range.Hi }, dsl.Int[int16]())).
		End().
		CheckLayout().
		MustBind()
	require.Equal(t, uintptr(8), unsafe.Sizeof(outer{}))

	got, err := immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"range":{"hi":9,"lo":-9},"id":4}`)))
	require.NoError(t, err)
	assert.Equal(t, outer{ID: 4, Range: inner{Lo: -9, Hi: 9}}, got)

	_, err = immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"range":{"hi":40000}}`)))
	iss, _ := immjson.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/range/hi", iss[0].Path)
	assert.Equal(t, unsafe.Offsetof(outer{}.Range)+unsafe.Offsetof(inner{}.Hi), iss[0].Params["offset"])
}
