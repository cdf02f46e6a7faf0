// Package dsl provides a type-safe schema DSL for immjson.
//
// Overview
//   - Typed build: ObjectOf[T]().Field(key, target).MustBind() compiles a
//     *immjson.Schema[T].
//   - Targets: Into (one value), Fixed (array storage), Bounded (slice with a
//     cap), Describe (per-occurrence array descriptor), Hook (custom code).
//   - Values: String/StringOf, Bool, Float32/Float64, Int/Uint (sized by the
//     Go type) and IntBits/UintBits (narrower ranges), Slice, Custom; any
//     *immjson.Schema is the object value.
//   - Layout: Inline/End describe nested wire objects that decode into the
//     same struct, Pad accounts for bytes not on the wire, and CheckLayout
//     makes Bind verify that the declaration covers T exactly.
//
// Example
//
//	type Point struct {
//	    Time [24]int64
//	    Temp [24]float32
//	}
//
//	s := dsl.ObjectOf[Point]().
//	    Inline("hourly").
//	    Field("time", dsl.Fixed(func(p *Point) []int64 { return p.Time[:] }, dsl.Int[int64]())).
//	    Field("temperature_2m", dsl.Fixed(func(p *Point) []float32 { return p.Temp[:] }, dsl.Float32())).
//	    End().
//	    CheckLayout().
//	    MustBind()
package dsl
