package engine

import (
	"errors"
	"io"
	"math"
)

// Puller supplies the next chunk of input. An empty chunk or any error ends
// the stream; io.EOF is plain exhaustion, anything else a source failure.
// The returned slice only has to stay valid until the next call.
type Puller interface {
	Pull() ([]byte, error)
}

// Options configures a Parser.
type Options struct {
	// Grow backs the string buffer. DefaultGrow when nil.
	Grow GrowFunc
	// Reuse keeps the string buffer between string values instead of
	// handing its storage to the decoded string.
	Reuse bool
	// MaxExponent bounds the magnitude of a number's exponent.
	// math.MaxInt16 when zero.
	MaxExponent int
}

// Parser is a pull parser over a chunked byte stream. It keeps only the
// unconsumed suffix of the current chunk, so a document is never buffered
// as a whole. A Parser is single use and not safe for concurrent use.
type Parser struct {
	src Puller
	rem []byte
	str StringBuffer

	reuse  bool
	maxExp int

	line     int
	colAtEnd int
	consumed int64

	done   bool
	srcErr error
}

// NewParser returns a parser pulling from src.
func NewParser(src Puller, opt Options) *Parser {
	p := &Parser{src: src, line: 1, reuse: opt.Reuse, maxExp: opt.MaxExponent}
	p.str.grow = opt.Grow
	if p.str.grow == nil {
		p.str.grow = DefaultGrow
	}
	if p.maxExp <= 0 {
		p.maxExp = math.MaxInt16
	}
	return p
}

// pull replaces the exhausted remainder with the next chunk. After the
// stream has ended the source is never consulted again.
func (p *Parser) pull() bool {
	if p.done {
		return false
	}
	chunk, err := p.src.Pull()
	if err != nil {
		p.done = true
		if !errors.Is(err, io.EOF) {
			p.srcErr = err
		}
	}
	if len(chunk) == 0 {
		p.done = true
		return false
	}
	p.rem = chunk
	p.consumed += int64(len(chunk))
	p.colAtEnd += len(chunk)
	return true
}

// ensure makes at least one byte available, pulling exactly when the
// remainder is empty.
func (p *Parser) ensure() bool {
	return len(p.rem) > 0 || p.pull()
}

// Line returns the 1-based line of the next unconsumed byte.
func (p *Parser) Line() int { return p.line }

// Column returns the 1-based column of the next unconsumed byte.
func (p *Parser) Column() int { return p.colAtEnd - len(p.rem) + 1 }

// Offset returns the number of bytes consumed so far.
func (p *Parser) Offset() int64 { return p.consumed - int64(len(p.rem)) }

// Remainder returns up to n unconsumed bytes of the current chunk.
func (p *Parser) Remainder(n int) string {
	if n > len(p.rem) {
		n = len(p.rem)
	}
	return string(p.rem[:n])
}

// skipSpace advances past whitespace, counting lines. It reports whether a
// significant byte is available.
func (p *Parser) skipSpace() bool {
	for {
		for i, c := range p.rem {
			switch c {
			case ' ', '\t', '\r':
			case '\n':
				p.line++
				p.colAtEnd = len(p.rem) - i - 1
			default:
				p.rem = p.rem[i:]
				return true
			}
		}
		p.rem = p.rem[len(p.rem):]
		if !p.pull() {
			return false
		}
	}
}

// PeekSignificant skips whitespace and returns the next byte without
// consuming it.
func (p *Parser) PeekSignificant() (byte, bool) {
	if !p.skipSpace() {
		return 0, false
	}
	return p.rem[0], true
}

// ExpectChar consumes c if it is the very next byte. Whitespace is not
// skipped.
func (p *Parser) ExpectChar(c byte) bool {
	if !p.ensure() || p.rem[0] != c {
		return false
	}
	p.rem = p.rem[1:]
	return true
}

// TrimExpect skips whitespace and consumes c. On mismatch the cursor is left
// at the first significant byte.
func (p *Parser) TrimExpect(c byte) bool {
	if !p.skipSpace() || p.rem[0] != c {
		return false
	}
	p.rem = p.rem[1:]
	return true
}

// expect is TrimExpect with a diagnostic.
func (p *Parser) expect(c byte) error {
	if p.TrimExpect(c) {
		return nil
	}
	if len(p.rem) == 0 {
		return p.eof("expected '" + string(c) + "'")
	}
	return p.fail(KindSyntax, "expected %q, found %q", c, p.rem[0])
}

// expectLiteral consumes lit byte by byte so that it may straddle chunks.
func (p *Parser) expectLiteral(lit string) error {
	for i := 0; i < len(lit); i++ {
		if !p.ensure() {
			return p.eof("literal " + lit)
		}
		if p.rem[0] != lit[i] {
			return p.fail(KindSyntax, "invalid literal, expected %q", lit)
		}
		p.rem = p.rem[1:]
	}
	return nil
}

func isDigit(c byte) bool { return c-'0' <= 9 }
