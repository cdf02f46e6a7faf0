// Package immjson decodes JSON that arrives in chunks of any size straight
// into caller-owned Go values, driven by a schema compiled ahead of time.
//
// The input is pulled chunk by chunk through a ChunkSource and is never
// buffered whole; only string values allocate. A Schema maps wire keys to
// typed setters, so the destination type is checked at compile time and,
// optionally, its memory layout is checked when the schema is built.
//
// Design policy:
//   - Keep only public APIs in the root package; the lexer, number decoder
//     and structural parser live in internal/engine.
//   - Place the schema builder and primitive values under dsl/, chunk
//     sources under source/, and the dashboard CLI under cmd/dashboard.
//   - Fail fast: the first error stops the decode, and everything decoded
//     before it stays in the destination.
//
// Typical usage:
//
//	s := dsl.ObjectOf[Forecast]().
//		Field("latitude", dsl.Into(func(f *Forecast) *float32 { return &f.Latitude }, dsl.Float32())).
//		MustBind()
//	var f Forecast
//	err := immjson.DeserializeObject(ctx, source.Reader(conn, 256), &f, s)
//
// Supported JSON: objects, arrays, strings without \u escapes, numbers
// without leading zeros (overflow checked, exponents applied), booleans,
// and null as a skippable value only.
package immjson
