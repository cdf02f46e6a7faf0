// Package source provides chunk sources for immjson: an io.Reader read
// through one fixed buffer, byte slices split at chosen offsets, and an
// HTTP response header skipper for raw connections.
package source

import (
	"io"
)

// Puller is the chunk contract shared with immjson.ChunkSource.
type Puller interface {
	Pull() ([]byte, error)
}

// DefaultChunkSize matches the TLS record reads of the dashboard firmware.
const DefaultChunkSize = 256

const maxEmptyReads = 100

// ReaderSource reads an io.Reader through a single reused buffer. Each
// chunk is only valid until the next Pull.
type ReaderSource struct {
	r   io.Reader
	buf []byte
	err error
	// Reads counts successful reads, for diagnostics and tests.
	Reads int
}

// Reader returns a source reading r in chunks of at most size bytes.
// DefaultChunkSize when size <= 0.
func Reader(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Pull returns the next chunk. Data read together with an error is
// returned first and the error on the following call. A reader that keeps
// returning nothing fails with io.ErrNoProgress.
func (s *ReaderSource) Pull() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for range maxEmptyReads {
		n, err := s.r.Read(s.buf)
		if err != nil {
			s.err = err
		}
		if n > 0 {
			s.Reads++
			return s.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
	s.err = io.ErrNoProgress
	return nil, s.err
}
