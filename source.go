package immjson

import (
	"context"
	"errors"
)

// ChunkSource supplies the input one chunk at a time. Pull returns the next
// chunk; an empty chunk or an error ends the stream (io.EOF for a clean
// end). The returned slice is borrowed: it only has to stay valid until
// the next Pull, so a source may reuse a single read buffer.
type ChunkSource interface {
	Pull() ([]byte, error)
}

// ChunkFunc adapts a function to ChunkSource.
type ChunkFunc func() ([]byte, error)

func (f ChunkFunc) Pull() ([]byte, error) { return f() }

// Bytes returns a ChunkSource that delivers b as a single chunk.
func Bytes(b []byte) ChunkSource {
	done := false
	return ChunkFunc(func() ([]byte, error) {
		if done {
			return nil, nil
		}
		done = true
		return b, nil
	})
}

// ErrMaxBytes is the cause of a CodeTruncated issue raised by
// ParseOpt.MaxBytes.
var ErrMaxBytes = errors.New("immjson: input exceeds MaxBytes")

// guardedSource checks the context before every pull and counts bytes
// against MaxBytes.
type guardedSource struct {
	ctx context.Context
	src ChunkSource
	max int64
	n   int64
}

func (g *guardedSource) Pull() ([]byte, error) {
	if err := g.ctx.Err(); err != nil {
		return nil, err
	}
	b, err := g.src.Pull()
	g.n += int64(len(b))
	if g.max > 0 && g.n > g.max {
		return nil, ErrMaxBytes
	}
	return b, err
}
