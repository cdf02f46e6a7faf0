package source

import "io"

// ChunkList delivers pre-split chunks in order.
type ChunkList struct {
	chunks [][]byte
}

// Chunks returns a source delivering each chunk in turn. Empty chunks are
// dropped since an empty chunk ends a stream.
func Chunks(chunks ...[]byte) *ChunkList {
	l := &ChunkList{}
	for _, c := range chunks {
		if len(c) > 0 {
			l.chunks = append(l.chunks, c)
		}
	}
	return l
}

// Pull returns the next chunk or io.EOF.
func (l *ChunkList) Pull() ([]byte, error) {
	if len(l.chunks) == 0 {
		return nil, io.EOF
	}
	c := l.chunks[0]
	l.chunks = l.chunks[1:]
	return c, nil
}

// Bytes splits b into chunks of size bytes (the whole slice when
// size <= 0).
func Bytes(b []byte, size int) *ChunkList {
	if size <= 0 {
		size = len(b)
	}
	var out [][]byte
	for len(b) > 0 {
		n := min(size, len(b))
		out = append(out, b[:n])
		b = b[n:]
	}
	return Chunks(out...)
}

// SplitAt splits b at the given ascending offsets.
func SplitAt(b []byte, offsets ...int) *ChunkList {
	var out [][]byte
	prev := 0
	for _, o := range offsets {
		if o < prev || o > len(b) {
			continue
		}
		out = append(out, b[prev:o])
		prev = o
	}
	out = append(out, b[prev:])
	return Chunks(out...)
}
