package immjson

import (
	"fmt"
	"unsafe"
)

// Kind names the JSON shape a Value decodes.
type Kind int

const (
	KindCustom Kind = iota
	KindObject
	KindArray
	KindString
	KindFloat
	KindInteger
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value decodes one JSON value into a V. The dsl package provides the
// primitive kinds; *Schema[V] is the object kind.
type Value[V any] interface {
	Kind() Kind
	DecodeValue(d *Decoder, dst *V) error
}

// ArrayDescriptor drives the decode of one array occurrence. Reserve
// returns the storage for element i, or nil once capacity is exhausted.
type ArrayDescriptor[E any] struct {
	Reserve func(i int) *E
	Elem    Value[E]
}

type propKind uint8

const (
	propField propKind = iota
	propPadding
	propInline
	propInlineEnd
	propEnd
)

// Property is one entry of a flat schema description: a named field,
// padding, the start or end of an inline object, or the end of the list.
// Build them with Field, ArrayField, Padding, Inline, EndInline and End.
type Property[T any] struct {
	kind   propKind
	key    string
	vkind  Kind
	decode func(d *Decoder, dst *T) error
	// offset and width locate the field inside T; width is the byte count
	// for padding.
	offset uintptr
	width  uintptr
	layout bool
}

// Key returns the property's JSON key ("" for markers).
func (p Property[T]) Key() string { return p.key }

// Kind returns the value kind of a named property.
func (p Property[T]) Kind() Kind { return p.vkind }

// Field binds key to the field selected by sel, decoded with v. sel must
// return a pointer into its argument; it is also called once on a zero T
// to record the field's offset and width.
func Field[T, V any](key string, sel func(*T) *V, v Value[V]) Property[T] {
	off, width, ok := fieldLayout(func(t *T) unsafe.Pointer {
		return unsafe.Pointer(sel(t))
	}, unsafe.Sizeof(*new(V)))
	return Property[T]{
		kind:   propField,
		key:    key,
		vkind:  v.Kind(),
		decode: func(d *Decoder, dst *T) error { return v.DecodeValue(d, sel(dst)) },
		offset: off,
		width:  width,
		layout: ok,
	}
}

// FixedArrayField binds key to the fixed storage sel returns, typically
// a slice over an array field (t.Values[:]). The capacity is len of that
// slice.
func FixedArrayField[T, E any](key string, sel func(*T) []E, elem Value[E]) Property[T] {
	var width uintptr
	off, _, ok := fieldLayout(func(t *T) unsafe.Pointer {
		s := sel(t)
		width = uintptr(len(s)) * unsafe.Sizeof(*new(E))
		return unsafe.Pointer(unsafe.SliceData(s))
	}, 0)
	if ok {
		off, width, ok = fieldLayoutCheck[T](off, width)
	}
	return Property[T]{
		kind:  propField,
		key:   key,
		vkind: KindArray,
		decode: func(d *Decoder, dst *T) error {
			s := sel(dst)
			return DecodeArray(d, ArrayDescriptor[E]{
				Reserve: func(i int) *E {
					if i >= len(s) {
						return nil
					}
					return &s[i]
				},
				Elem: elem,
			})
		},
		offset: off,
		width:  width,
		layout: ok,
	}
}

// SliceArrayField binds key to the slice sel points at. Elements are
// appended after truncating the slice, up to max of them.
func SliceArrayField[T, E any](key string, sel func(*T) *[]E, max int, elem Value[E]) Property[T] {
	off, width, ok := fieldLayout(func(t *T) unsafe.Pointer {
		return unsafe.Pointer(sel(t))
	}, unsafe.Sizeof([]E(nil)))
	return Property[T]{
		kind:  propField,
		key:   key,
		vkind: KindArray,
		decode: func(d *Decoder, dst *T) error {
			return DecodeArray(d, SliceDescriptor(sel(dst), max, elem))
		},
		offset: off,
		width:  width,
		layout: ok,
	}
}

// SliceDescriptor appends into *s, allowing at most max elements.
func SliceDescriptor[E any](s *[]E, max int, elem Value[E]) ArrayDescriptor[E] {
	*s = (*s)[:0]
	return ArrayDescriptor[E]{
		Reserve: func(i int) *E {
			if i >= max {
				return nil
			}
			var zero E
			*s = append(*s, zero)
			return &(*s)[i]
		},
		Elem: elem,
	}
}

// ArrayField binds key to an array whose descriptor is produced per
// occurrence by describe. Its layout is unknown to CheckLayout.
func ArrayField[T, E any](key string, describe func(*T) ArrayDescriptor[E]) Property[T] {
	return Property[T]{
		kind:   propField,
		key:    key,
		vkind:  KindArray,
		decode: func(d *Decoder, dst *T) error { return DecodeArray(d, describe(dst)) },
	}
}

// Custom binds key to a hook that consumes the member's value itself.
func Custom[T any](key string, fn func(d *Decoder, dst *T) error) Property[T] {
	return Property[T]{kind: propField, key: key, vkind: KindCustom, decode: fn}
}

// Padding advances the layout cursor by n bytes without reading input.
// It accounts for alignment gaps and for fields that are not on the wire.
func Padding[T any](n uintptr) Property[T] {
	return Property[T]{kind: propPadding, width: n}
}

// Inline starts a nested wire object under key whose members are decoded
// into the same T. It is closed by EndInline.
func Inline[T any](key string) Property[T] {
	return Property[T]{kind: propInline, key: key}
}

// EndInline closes the innermost Inline.
func EndInline[T any]() Property[T] { return Property[T]{kind: propInlineEnd} }

// End terminates a property list. Properties after it are ignored.
func End[T any]() Property[T] { return Property[T]{kind: propEnd} }

// fieldLayout locates the pointer addr returns for a zero T. ok is false
// when it points outside T or the selector panics.
func fieldLayout[T any](addr func(*T) unsafe.Pointer, width uintptr) (off, w uintptr, ok bool) {
	defer func() {
		if recover() != nil {
			off, w, ok = 0, 0, false
		}
	}()
	zero := new(T)
	p := addr(zero)
	if p == nil {
		return 0, 0, false
	}
	base := uintptr(unsafe.Pointer(zero))
	a := uintptr(p)
	if a < base || a+width > base+unsafe.Sizeof(*zero) {
		return 0, 0, false
	}
	return a - base, width, true
}

func fieldLayoutCheck[T any](off, width uintptr) (uintptr, uintptr, bool) {
	if off+width > unsafe.Sizeof(*new(T)) {
		return 0, 0, false
	}
	return off, width, true
}
