package engine

import (
	"errors"
	"unsafe"
)

// GrowFunc enlarges a string buffer. old holds the accumulated bytes in
// old[:len(old)] with capacity cap(old); the result must keep those bytes
// and have a capacity of at least newCap. A non-nil error aborts the parse.
type GrowFunc func(old []byte, newCap int) ([]byte, error)

// ErrGrowShort is returned when a GrowFunc hands back less capacity than
// requested.
var ErrGrowShort = errors.New("grow returned insufficient capacity")

// DefaultGrow allocates from the Go heap.
func DefaultGrow(old []byte, newCap int) ([]byte, error) {
	b := make([]byte, len(old), newCap)
	copy(b, old)
	return b, nil
}

// StringBuffer accumulates a string value that may span several chunks.
type StringBuffer struct {
	buf  []byte
	grow GrowFunc
}

func (s *StringBuffer) reset() { s.buf = s.buf[:0] }

// append adds b, growing capacity to cap+len(b) when it does not fit.
func (s *StringBuffer) append(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if n := len(s.buf) + len(b); n > cap(s.buf) {
		nb, err := s.grow(s.buf, cap(s.buf)+len(b))
		if err != nil {
			return err
		}
		if cap(nb) < n || len(nb) < len(s.buf) {
			return ErrGrowShort
		}
		s.buf = nb[:len(s.buf)]
	}
	s.buf = append(s.buf, b...)
	return nil
}

func (s *StringBuffer) appendByte(c byte) error {
	one := [1]byte{c}
	return s.append(one[:])
}

// Bytes returns the accumulated bytes. They are only valid until the next
// string is read.
func (s *StringBuffer) Bytes() []byte { return s.buf }

// take delivers the accumulated string. Without reuse the storage becomes
// the string and the buffer is zeroed; with reuse the bytes are copied and
// the storage stays for the next value.
func (s *StringBuffer) take(reuse bool) string {
	if len(s.buf) == 0 {
		s.buf = s.buf[:0]
		return ""
	}
	if reuse {
		str := string(s.buf)
		s.buf = s.buf[:0]
		return str
	}
	str := unsafe.String(unsafe.SliceData(s.buf), len(s.buf))
	s.buf = nil
	return str
}

// readString reads a string body into the buffer. The opening quote has
// already been consumed; the closing one is consumed and dropped.
func (p *Parser) readString() error {
	p.str.reset()
	for {
		if !p.ensure() {
			return p.eof("unterminated string")
		}
		chunk := p.rem
		i := 0
		for i < len(chunk) {
			c := chunk[i]
			if c == '"' || c == '\\' || c < 0x20 {
				break
			}
			i++
		}
		if err := p.str.append(chunk[:i]); err != nil {
			p.rem = chunk[i:]
			return p.allocFailed(err)
		}
		p.rem = chunk[i:]
		if i == len(chunk) {
			continue
		}
		switch c := chunk[i]; {
		case c == '"':
			p.rem = chunk[i+1:]
			return nil
		case c == '\\':
			p.rem = chunk[i+1:]
			out, err := p.readEscape()
			if err != nil {
				return err
			}
			if err := p.str.appendByte(out); err != nil {
				return p.allocFailed(err)
			}
		default:
			return p.fail(KindSyntax, "control character 0x%02x in string", c)
		}
	}
}

// readEscape decodes the byte following a backslash.
func (p *Parser) readEscape() (byte, error) {
	if !p.ensure() {
		return 0, p.eof("unterminated escape")
	}
	c := p.rem[0]
	switch c {
	case '"', '\\', '/':
	case 'b':
		c = '\b'
	case 'f':
		c = '\f'
	case 'n':
		c = '\n'
	case 'r':
		c = '\r'
	case 't':
		c = '\t'
	case 'u':
		return 0, p.fail(KindUnsupported, `\u escapes are not supported`)
	default:
		return 0, p.fail(KindSyntax, "invalid escape %q", c)
	}
	p.rem = p.rem[1:]
	return c, nil
}

// skipString consumes a string body without buffering it. \u escapes are
// checked for shape only since nothing is emitted.
func (p *Parser) skipString() error {
	for {
		if !p.ensure() {
			return p.eof("unterminated string")
		}
		chunk := p.rem
		i := 0
		for i < len(chunk) {
			c := chunk[i]
			if c == '"' || c == '\\' || c < 0x20 {
				break
			}
			i++
		}
		p.rem = chunk[i:]
		if i == len(chunk) {
			continue
		}
		switch c := chunk[i]; {
		case c == '"':
			p.rem = chunk[i+1:]
			return nil
		case c == '\\':
			p.rem = chunk[i+1:]
			if !p.ensure() {
				return p.eof("unterminated escape")
			}
			if p.rem[0] == 'u' {
				p.rem = p.rem[1:]
				if err := p.skipHex4(); err != nil {
					return err
				}
				continue
			}
			if _, err := p.readEscape(); err != nil {
				return err
			}
		default:
			return p.fail(KindSyntax, "control character 0x%02x in string", c)
		}
	}
}

func (p *Parser) skipHex4() error {
	for range 4 {
		if !p.ensure() {
			return p.eof("unterminated escape")
		}
		c := p.rem[0]
		if !isDigit(c) && (c|0x20 < 'a' || c|0x20 > 'f') {
			return p.fail(KindSyntax, "invalid hex digit %q in escape", c)
		}
		p.rem = p.rem[1:]
	}
	return nil
}

func (p *Parser) allocFailed(cause error) error {
	e := p.fail(KindAllocation, "string buffer grow failed").(*Error)
	e.Cause = cause
	return e
}

// ReadString reads a string value and delivers it according to the
// parser's string mode.
func (p *Parser) ReadString() (string, error) {
	c, ok := p.PeekSignificant()
	if !ok {
		return "", p.eof("expected string")
	}
	if c != '"' {
		return "", p.unexpected(c, "string")
	}
	p.rem = p.rem[1:]
	if err := p.readString(); err != nil {
		return "", err
	}
	return p.str.take(p.reuse), nil
}
