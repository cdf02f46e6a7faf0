package source

import (
	"errors"
	"io"
)

// ErrNoBody is returned when a stream ends before the end of the HTTP
// response header.
var ErrNoBody = errors.New("source: stream ended inside HTTP header")

var headerEnd = [4]byte{'\r', '\n', '\r', '\n'}

// HeaderSkipper drops an HTTP/1.x response header and delivers the body.
// The blank line ending the header may straddle chunks.
type HeaderSkipper struct {
	src     Puller
	matched int
	inBody  bool
	// HeaderBytes counts the bytes dropped, terminator included.
	HeaderBytes int
}

// SkipHTTPHeader wraps src, a raw HTTP response, so that Pull yields only
// the body.
func SkipHTTPHeader(src Puller) *HeaderSkipper { return &HeaderSkipper{src: src} }

// Pull returns the next body chunk.
func (h *HeaderSkipper) Pull() ([]byte, error) {
	for !h.inBody {
		chunk, err := h.src.Pull()
		if len(chunk) == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				err = ErrNoBody
			}
			return nil, err
		}
		for i, c := range chunk {
			switch {
			case c == headerEnd[h.matched]:
				h.matched++
			case c == '\r':
				h.matched = 1
			default:
				h.matched = 0
			}
			if h.matched == len(headerEnd) {
				h.inBody = true
				h.HeaderBytes += i + 1
				if body := chunk[i+1:]; len(body) > 0 {
					return body, nil
				}
				if err != nil {
					return nil, err
				}
				break
			}
		}
		if !h.inBody {
			h.HeaderBytes += len(chunk)
			if err != nil {
				return nil, err
			}
		}
	}
	return h.src.Pull()
}
