package immjson

import (
	"strconv"
	"strings"
)

// pathSeg is one step from the decode root to the value being decoded.
// Keys come from schemas, so pushing never allocates.
type pathSeg struct {
	key   string
	index int // -1 for object members
	// offset is the destination offset of the member's field when its
	// layout is known.
	offset    uintptr
	hasOffset bool
}

func (d *Decoder) pushKey(key string, offset uintptr, hasOffset bool) {
	d.path = append(d.path, pathSeg{key: key, index: -1, offset: offset, hasOffset: hasOffset})
}

func (d *Decoder) pushIndex(i int) {
	d.path = append(d.path, pathSeg{index: i})
}

func (d *Decoder) pop() { d.path = d.path[:len(d.path)-1] }

// Path renders the current position as a JSON Pointer ("/" at the root).
func (d *Decoder) Path() string {
	if len(d.path) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range d.path {
		b.WriteByte('/')
		if s.index >= 0 {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.key, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Cursor returns the destination offset of the innermost field being
// decoded whose layout is known.
func (d *Decoder) Cursor() (offset uintptr, ok bool) {
	for i := len(d.path) - 1; i >= 0; i-- {
		if d.path[i].hasOffset {
			return d.path[i].offset, true
		}
	}
	return 0, false
}
