package immjson

import (
	"errors"
	"fmt"
	"math"

	eng "github.com/reoring/immjson/internal/engine"
)

// StringMode controls how decoded strings are delivered.
type StringMode int

const (
	// StringsTransfer hands the accumulated bytes to the field as its
	// string without copying; the next string starts from an empty buffer.
	StringsTransfer StringMode = iota
	// StringsReuse copies each string out and keeps the buffer for the next
	// one, trading a copy per string for fewer allocations.
	StringsReuse
)

// GrowFunc enlarges the string buffer. old holds the accumulated bytes; the
// result must keep them and offer at least newCap capacity. Returning an
// error aborts the decode with CodeAllocationFailed.
type GrowFunc = eng.GrowFunc

// DefaultMaxDepth bounds nesting of skipped values.
const DefaultMaxDepth = 16

// ParseOpt bundles parsing options. The last ParseOpt passed to an entry
// point wins; zero fields take their defaults.
type ParseOpt struct {
	// MaxDepth is the nesting budget for values that are skipped (unknown
	// keys, opaque objects). DefaultMaxDepth when zero.
	MaxDepth int
	Strings  StringMode
	// Grow backs the string buffer. Heap allocation when nil.
	Grow GrowFunc
	// MaxExponent bounds number exponents. math.MaxInt16 when zero.
	MaxExponent int
	// MaxBytes fails the decode with CodeTruncated once more bytes than
	// this have been pulled. Unlimited when zero.
	MaxBytes int64
}

func normalizeOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	if opt.MaxExponent <= 0 {
		opt.MaxExponent = math.MaxInt16
	}
	return opt
}

func (o ParseOpt) engineOptions() eng.Options {
	return eng.Options{Grow: o.Grow, Reuse: o.Strings == StringsReuse, MaxExponent: o.MaxExponent}
}

// ErrGrowLimit is returned by a LimitGrow allocator past its budget.
var ErrGrowLimit = errors.New("immjson: string buffer limit reached")

// LimitGrow returns a GrowFunc that refuses to grow a string buffer beyond
// max bytes of capacity, for callers that need a hard bound on string
// memory.
func LimitGrow(max int) GrowFunc {
	return func(old []byte, newCap int) ([]byte, error) {
		if newCap > max {
			return nil, fmt.Errorf("%w: %d > %d bytes", ErrGrowLimit, newCap, max)
		}
		return eng.DefaultGrow(old, newCap)
	}
}
