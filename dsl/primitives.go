package dsl

import (
	"unsafe"

	"github.com/reoring/immjson"
)

// Signed is the set of signed integer types Int can decode into.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer types Uint can decode into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type stringValue[S ~string] struct{}

func (stringValue[S]) Kind() immjson.Kind { return immjson.KindString }
func (stringValue[S]) DecodeValue(d *immjson.Decoder, dst *S) error {
	s, err := d.ExpectString()
	if err != nil {
		return err
	}
	*dst = S(s)
	return nil
}

// String decodes a JSON string.
func String() immjson.Value[string] { return stringValue[string]{} }

// StringOf decodes a JSON string into a named string type.
func StringOf[S ~string]() immjson.Value[S] { return stringValue[S]{} }

type boolValue[B ~bool] struct{}

func (boolValue[B]) Kind() immjson.Kind { return immjson.KindBool }
func (boolValue[B]) DecodeValue(d *immjson.Decoder, dst *B) error {
	b, err := d.ExpectBool()
	if err != nil {
		return err
	}
	*dst = B(b)
	return nil
}

// Bool decodes true or false.
func Bool() immjson.Value[bool] { return boolValue[bool]{} }

type float32Value struct{}

func (float32Value) Kind() immjson.Kind { return immjson.KindFloat }
func (float32Value) DecodeValue(d *immjson.Decoder, dst *float32) error {
	f, err := d.ExpectFloat32()
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

type float64Value struct{}

func (float64Value) Kind() immjson.Kind { return immjson.KindFloat }
func (float64Value) DecodeValue(d *immjson.Decoder, dst *float64) error {
	f, err := d.ExpectFloat64()
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

// Float32 decodes a number into a float32; values beyond its range fail.
func Float32() immjson.Value[float32] { return float32Value{} }

// Float64 decodes a number into a float64.
func Float64() immjson.Value[float64] { return float64Value{} }

type intValue[V Signed] struct{ bits int }

func (intValue[V]) Kind() immjson.Kind { return immjson.KindInteger }
func (v intValue[V]) DecodeValue(d *immjson.Decoder, dst *V) error {
	n, err := d.ExpectInt(v.bits)
	if err != nil {
		return err
	}
	*dst = V(n)
	return nil
}

type uintValue[V Unsigned] struct{ bits int }

func (uintValue[V]) Kind() immjson.Kind { return immjson.KindInteger }
func (v uintValue[V]) DecodeValue(d *immjson.Decoder, dst *V) error {
	n, err := d.ExpectUint(v.bits)
	if err != nil {
		return err
	}
	*dst = V(n)
	return nil
}

func bitsOf[V any]() int { return int(unsafe.Sizeof(*new(V))) * 8 }

// Int decodes an integer that fits in V.
func Int[V Signed]() immjson.Value[V] { return intValue[V]{bits: bitsOf[V]()} }

// Uint decodes a non-negative integer that fits in V.
func Uint[V Unsigned]() immjson.Value[V] { return uintValue[V]{bits: bitsOf[V]()} }

// IntBits decodes an integer limited to a signed bitWidth-bit range, for
// values narrower than their Go type. bitWidth is clamped to V's size.
func IntBits[V Signed](bitWidth int) immjson.Value[V] {
	return intValue[V]{bits: clampBits(bitWidth, bitsOf[V]())}
}

// UintBits is IntBits for unsigned values.
func UintBits[V Unsigned](bitWidth int) immjson.Value[V] {
	return uintValue[V]{bits: clampBits(bitWidth, bitsOf[V]())}
}

func clampBits(want, max int) int {
	if want <= 0 || want > max {
		return max
	}
	return want
}

type customValue[V any] struct {
	fn func(*immjson.Decoder, *V) error
}

func (customValue[V]) Kind() immjson.Kind                             { return immjson.KindCustom }
func (c customValue[V]) DecodeValue(d *immjson.Decoder, dst *V) error { return c.fn(d, dst) }

// Custom wraps a hook that consumes one value with the Decoder primitives,
// for wire shapes the other values cannot express.
func Custom[V any](fn func(d *immjson.Decoder, dst *V) error) immjson.Value[V] {
	return customValue[V]{fn: fn}
}

type sliceValue[E any] struct {
	max  int
	elem immjson.Value[E]
}

func (sliceValue[E]) Kind() immjson.Kind { return immjson.KindArray }
func (v sliceValue[E]) DecodeValue(d *immjson.Decoder, dst *[]E) error {
	return immjson.DecodeArray(d, immjson.SliceDescriptor(dst, v.max, v.elem))
}

// Slice decodes an array of at most max elements into a slice, so arrays
// can nest inside arrays.
func Slice[E any](max int, elem immjson.Value[E]) immjson.Value[[]E] {
	return sliceValue[E]{max: max, elem: elem}
}
