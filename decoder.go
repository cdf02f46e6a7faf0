package immjson

import (
	"context"

	eng "github.com/reoring/immjson/internal/engine"
)

// ObjectIter tracks members while walking an object by hand with
// Decoder.NextKey. The zero value is ready to use.
type ObjectIter = eng.ObjectState

// Decoder reads JSON values from a ChunkSource. Schemas drive it during
// DeserializeObject; custom hooks and ad hoc callers use its primitives
// directly. All methods return Issues on failure, located at the current
// line, column and path. A Decoder is single use and not safe for
// concurrent use.
type Decoder struct {
	p    *eng.Parser
	opt  ParseOpt
	path []pathSeg
}

// NewDecoder returns a Decoder reading from src. ctx is checked before
// every chunk pull.
func NewDecoder(ctx context.Context, src ChunkSource, opts ...ParseOpt) *Decoder {
	return newDecoder(ctx, src, normalizeOpt(opts))
}

func newDecoder(ctx context.Context, src ChunkSource, opt ParseOpt) *Decoder {
	if ctx == nil {
		ctx = context.Background()
	}
	g := &guardedSource{ctx: ctx, src: src, max: opt.MaxBytes}
	return &Decoder{p: eng.NewParser(g, opt.engineOptions()), opt: opt, path: make([]pathSeg, 0, 8)}
}

// wrap converts a parser error into Issues at the current path. Errors that
// are already Issues pass through untouched.
func (d *Decoder) wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsIssues(err); ok {
		return err
	}
	iss := toIssues(err, d.Path())
	if off, ok := d.Cursor(); ok {
		iss[0].Params = map[string]any{"offset": off}
	}
	return iss
}

// Line returns the 1-based line of the next unconsumed byte.
func (d *Decoder) Line() int { return d.p.Line() }

// Column returns the 1-based column of the next unconsumed byte.
func (d *Decoder) Column() int { return d.p.Column() }

// InputOffset returns the number of bytes consumed so far.
func (d *Decoder) InputOffset() int64 { return d.p.Offset() }

// ExpectString reads a string value. \u escapes are rejected with
// CodeUnsupported.
func (d *Decoder) ExpectString() (string, error) {
	s, err := d.p.ReadString()
	return s, d.wrap(err)
}

// ExpectBool reads true or false.
func (d *Decoder) ExpectBool() (bool, error) {
	b, err := d.p.ReadBool()
	return b, d.wrap(err)
}

// ExpectNull reads null.
func (d *Decoder) ExpectNull() error { return d.wrap(d.p.ReadNull()) }

// ExpectFloat64 reads a number as float64, applying any exponent.
func (d *Decoder) ExpectFloat64() (float64, error) {
	n, err := d.p.ReadNumber()
	if err != nil {
		return 0, d.wrap(err)
	}
	f, ok := n.Float64()
	if !ok {
		return 0, d.wrap(d.p.Fail(eng.KindRange, "number does not fit in float64"))
	}
	return f, nil
}

// ExpectFloat32 reads a number as float32.
func (d *Decoder) ExpectFloat32() (float32, error) {
	n, err := d.p.ReadNumber()
	if err != nil {
		return 0, d.wrap(err)
	}
	f, ok := n.Float32()
	if !ok {
		return 0, d.wrap(d.p.Fail(eng.KindRange, "number does not fit in float32"))
	}
	return f, nil
}

// ExpectInt reads an integer that fits in a signed bitWidth-bit value.
// Fractions and exponents are rejected even when the value is integral.
func (d *Decoder) ExpectInt(bitWidth int) (int64, error) {
	n, err := d.p.ReadNumber()
	if err != nil {
		return 0, d.wrap(err)
	}
	if !n.IsInteger() {
		return 0, d.wrap(d.p.Fail(eng.KindType, "expected integer, found fraction or exponent"))
	}
	v, ok := n.Int(bitWidth)
	if !ok {
		return 0, d.wrap(d.p.Fail(eng.KindRange, "integer out of range for %d-bit signed", bitWidth))
	}
	return v, nil
}

// ExpectUint reads an integer that fits in an unsigned bitWidth-bit value.
func (d *Decoder) ExpectUint(bitWidth int) (uint64, error) {
	n, err := d.p.ReadNumber()
	if err != nil {
		return 0, d.wrap(err)
	}
	if !n.IsInteger() {
		return 0, d.wrap(d.p.Fail(eng.KindType, "expected integer, found fraction or exponent"))
	}
	v, ok := n.Uint(bitWidth)
	if !ok {
		return 0, d.wrap(d.p.Fail(eng.KindRange, "integer out of range for %d-bit unsigned", bitWidth))
	}
	return v, nil
}

// Skip consumes one value of any kind within the MaxDepth budget.
func (d *Decoder) Skip() error { return d.wrap(d.p.IgnoreAny(d.opt.MaxDepth)) }

// BeginObject consumes '{'.
func (d *Decoder) BeginObject() error { return d.wrap(d.p.BeginObject()) }

// NextKey reads the next member key and its ':'. more is false at the end
// of the object; EndObject then consumes the '}'. The key is only valid
// until the next string is read.
func (d *Decoder) NextKey(it *ObjectIter) (key []byte, more bool, err error) {
	key, more, err = d.p.NextKey(it)
	return key, more, d.wrap(err)
}

// SkipToKey skips members until key, leaving the cursor at its value.
func (d *Decoder) SkipToKey(it *ObjectIter, key string) (bool, error) {
	found, err := d.p.SkipToKey(it, d.opt.MaxDepth, key)
	return found, d.wrap(err)
}

// SkipRest skips the remaining members of the object.
func (d *Decoder) SkipRest(it *ObjectIter) error {
	return d.wrap(d.p.SkipRest(it, d.opt.MaxDepth))
}

// EndObject consumes '}'.
func (d *Decoder) EndObject() error { return d.wrap(d.p.EndObject()) }

// BeginArray consumes '['; empty reports "[]".
func (d *Decoder) BeginArray() (empty bool, err error) {
	empty, err = d.p.BeginArray()
	return empty, d.wrap(err)
}

// ArrayNext consumes ',' (more) or ']' (done).
func (d *Decoder) ArrayNext() (more bool, err error) {
	more, err = d.p.ArrayNext()
	return more, d.wrap(err)
}

// DecodeArray decodes an array through desc. The array fails as a whole
// when Reserve runs out of slots; no element is written past capacity.
func DecodeArray[E any](d *Decoder, desc ArrayDescriptor[E]) error {
	empty, err := d.BeginArray()
	if err != nil || empty {
		return err
	}
	for i := 0; ; i++ {
		var slot *E
		if desc.Reserve != nil {
			slot = desc.Reserve(i)
		}
		d.pushIndex(i)
		if slot == nil {
			err := d.wrap(d.p.Fail(eng.KindCapacity, "array capacity %d exhausted", i)).(Issues)
			if err[0].Params == nil {
				err[0].Params = map[string]any{}
			}
			err[0].Params["capacity"] = i
			return err
		}
		if err := desc.Elem.DecodeValue(d, slot); err != nil {
			return err
		}
		d.pop()
		more, err := d.ArrayNext()
		if err != nil || !more {
			return err
		}
	}
}
