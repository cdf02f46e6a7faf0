package engine

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindType
	KindRange
	KindUnsupported
	KindCapacity
	KindIO
	KindAllocation
	KindDepth
	KindTruncated
)

var kindNames = [...]string{
	KindSyntax:      "syntax",
	KindType:        "type mismatch",
	KindRange:       "range",
	KindUnsupported: "unsupported",
	KindCapacity:    "capacity",
	KindIO:          "io",
	KindAllocation:  "allocation",
	KindDepth:       "depth",
	KindTruncated:   "truncated",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single failure type produced by the parser. Line and Column
// are 1-based and point at the first unconsumed byte when the failure was
// detected. Offset counts bytes consumed from the source.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Line   int
	Column int
	Offset int64
	// Snippet holds up to a few unconsumed bytes at the failure point.
	Snippet string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d:%d: %s: %v", e.Line, e.Column, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

const snippetLen = 16

func (p *Parser) fail(kind ErrorKind, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{
		Kind:    kind,
		Msg:     msg,
		Line:    p.line,
		Column:  p.Column(),
		Offset:  p.Offset(),
		Snippet: p.Remainder(snippetLen),
	}
}

// Fail builds an *Error of the given kind at the current position. It is
// exported for schema-level checks (array capacity) that live above the
// parser.
func (p *Parser) Fail(kind ErrorKind, format string, args ...any) error {
	return p.fail(kind, format, args...)
}

// eof reports why no more input is available: a source failure becomes
// KindIO, plain exhaustion KindTruncated.
func (p *Parser) eof(what string) error {
	if p.srcErr != nil {
		e := p.fail(KindIO, "%s: chunk source failed", what).(*Error)
		e.Cause = p.srcErr
		return e
	}
	e := p.fail(KindTruncated, "%s: unexpected end of input", what).(*Error)
	e.Cause = io.ErrUnexpectedEOF
	return e
}

// unexpected reports a byte that cannot start what the caller wanted. When
// the byte starts some other JSON value the failure is a type mismatch.
func (p *Parser) unexpected(c byte, want string) error {
	if found := valueName(c); found != "" {
		return p.fail(KindType, "expected %s, found %s", want, found)
	}
	return p.fail(KindSyntax, "expected %s, found %q", want, c)
}

func valueName(c byte) string {
	switch {
	case c == '"':
		return "string"
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == 't' || c == 'f':
		return "bool"
	case c == 'n':
		return "null"
	case c == '-' || isDigit(c):
		return "number"
	}
	return ""
}
