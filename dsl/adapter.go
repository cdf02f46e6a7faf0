package dsl

import "github.com/reoring/immjson"

// Target binds a wire key to a destination inside T. It is produced by
// the generic helpers below so that each field keeps its own value type
// while the builder stays typed on T only.
type Target[T any] func(key string) immjson.Property[T]

// Into targets the field sel points at, decoded with v. Nested objects use
// a *immjson.Schema as v.
func Into[T, V any](sel func(*T) *V, v immjson.Value[V]) Target[T] {
	return func(key string) immjson.Property[T] { return immjson.Field(key, sel, v) }
}

// Fixed targets fixed storage, usually a slice over an array field. An
// input array longer than the storage fails the decode.
func Fixed[T, E any](sel func(*T) []E, elem immjson.Value[E]) Target[T] {
	return func(key string) immjson.Property[T] { return immjson.FixedArrayField(key, sel, elem) }
}

// Bounded targets a slice field that is refilled with at most max
// elements.
func Bounded[T, E any](sel func(*T) *[]E, max int, elem immjson.Value[E]) Target[T] {
	return func(key string) immjson.Property[T] { return immjson.SliceArrayField(key, sel, max, elem) }
}

// Describe targets an array whose descriptor is computed per occurrence,
// for storage such as ring buffers.
func Describe[T, E any](fn func(*T) immjson.ArrayDescriptor[E]) Target[T] {
	return func(key string) immjson.Property[T] { return immjson.ArrayField(key, fn) }
}

// Hook targets a function that consumes the member value itself and may
// write anywhere in T.
func Hook[T any](fn func(d *immjson.Decoder, dst *T) error) Target[T] {
	return func(key string) immjson.Property[T] { return immjson.Custom(key, fn) }
}
