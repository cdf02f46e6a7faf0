package immjson

import "unsafe"

// CompileOpt configures Compile.
type CompileOpt struct {
	// CheckLayout requires the named fields and padding, in order, to cover
	// T contiguously from offset 0 to its size.
	CheckLayout bool
}

// Schema is a compiled, immutable description of how a JSON object maps
// onto a T. It is safe to share between goroutines; each decode keeps its
// state in its own Decoder.
type Schema[T any] struct {
	props []Property[T]
	root  *level[T]
}

// level is one wire object: the top-level object or an inline one.
type level[T any] struct {
	members map[string]*member[T]
}

type member[T any] struct {
	prop  Property[T]
	child *level[T]
}

// Compile turns a flat property list into a Schema. Member lookup is by
// key, so wire order does not matter and unknown keys are skipped.
func Compile[T any](props []Property[T], opts ...CompileOpt) (*Schema[T], error) {
	var co CompileOpt
	if len(opts) > 0 {
		co = opts[len(opts)-1]
	}
	s := &Schema[T]{root: &level[T]{members: map[string]*member[T]{}}}
	stack := []*level[T]{s.root}
loop:
	for i := range props {
		p := &props[i]
		cur := stack[len(stack)-1]
		switch p.kind {
		case propEnd:
			break loop
		case propPadding:
		case propField:
			if p.decode == nil {
				return nil, schemaIssue("property %q has no decoder", p.key)
			}
			if _, dup := cur.members[p.key]; dup {
				return nil, schemaIssue("duplicate key %q", p.key)
			}
			cur.members[p.key] = &member[T]{prop: *p}
		case propInline:
			if _, dup := cur.members[p.key]; dup {
				return nil, schemaIssue("duplicate key %q", p.key)
			}
			child := &level[T]{members: map[string]*member[T]{}}
			cur.members[p.key] = &member[T]{prop: *p, child: child}
			stack = append(stack, child)
		case propInlineEnd:
			if len(stack) == 1 {
				return nil, schemaIssue("EndInline without Inline at property %d", i)
			}
			stack = stack[:len(stack)-1]
		}
		s.props = append(s.props, *p)
	}
	if len(stack) != 1 {
		return nil, schemaIssue("%d inline object(s) not closed", len(stack)-1)
	}
	if co.CheckLayout {
		if err := checkLayout(s.props, unsafe.Sizeof(*new(T))); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustCompile is Compile that panics on error, for package-level schemas.
func MustCompile[T any](props []Property[T], opts ...CompileOpt) *Schema[T] {
	s, err := Compile(props, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// checkLayout walks the properties with a cursor over T the way the
// decoded values will be laid out, padding included.
func checkLayout[T any](props []Property[T], size uintptr) error {
	var cursor uintptr
	for _, p := range props {
		switch p.kind {
		case propPadding:
			cursor += p.width
		case propField:
			if !p.layout {
				return schemaIssue("field %q: layout unknown", p.key)
			}
			if p.offset != cursor {
				return schemaIssue("field %q at offset %d, expected %d", p.key, p.offset, cursor)
			}
			cursor += p.width
		}
	}
	if cursor != size {
		return schemaIssue("properties cover %d of %d bytes", cursor, size)
	}
	return nil
}

// Properties returns the flat property list the schema was compiled from,
// up to its End.
func (s *Schema[T]) Properties() []Property[T] { return s.props }

// Kind reports KindObject; a Schema is the object Value.
func (s *Schema[T]) Kind() Kind { return KindObject }

// DecodeValue decodes one object into dst. Members absent from the input
// keep their current value; a repeated key is decoded again and the last
// occurrence wins. An object without named properties is skipped whole.
func (s *Schema[T]) DecodeValue(d *Decoder, dst *T) error {
	return s.decodeLevel(d, s.root, dst)
}

func (s *Schema[T]) decodeLevel(d *Decoder, lvl *level[T], dst *T) error {
	if err := d.BeginObject(); err != nil {
		return err
	}
	var it ObjectIter
	for {
		key, more, err := d.NextKey(&it)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		m := lvl.members[string(key)]
		if m == nil {
			if err := d.Skip(); err != nil {
				return err
			}
			continue
		}
		p := &m.prop
		d.pushKey(p.key, p.offset, p.layout)
		if m.child != nil {
			err = s.decodeLevel(d, m.child, dst)
		} else {
			err = p.decode(d, dst)
		}
		if err != nil {
			return err
		}
		d.pop()
	}
	return d.EndObject()
}
