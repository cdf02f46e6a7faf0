package immjson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/immjson/i18n"
	eng "github.com/reoring/immjson/internal/engine"
)

// Issue codes. Each parse failure maps to exactly one.
const (
	CodeParseError       = "parse_error"       // Unexpected byte or missing delimiter.
	CodeInvalidType      = "invalid_type"      // A value of another JSON type than the schema expects.
	CodeOverflow         = "overflow"          // Number out of range for its target.
	CodeUnsupported      = "unsupported"       // \u escapes.
	CodeTooBig           = "too_big"           // Array capacity exhausted.
	CodeIOError          = "io_error"          // Chunk source failure or cancellation.
	CodeAllocationFailed = "allocation_failed" // String buffer could not grow.
	CodeMaxDepth         = "max_depth"         // Skipped value nested beyond MaxDepth.
	CodeTruncated        = "truncated"         // End of input inside a value, or MaxBytes reached.
	CodeInvalidSchema    = "invalid_schema"
)

// Sentinels for errors.Is. An Issues error matches the sentinel of any of
// its issue codes.
var (
	ErrSyntax        = errors.New("immjson: syntax error")
	ErrTypeMismatch  = errors.New("immjson: type mismatch")
	ErrRange         = errors.New("immjson: value out of range")
	ErrUnsupported   = errors.New("immjson: unsupported input")
	ErrCapacity      = errors.New("immjson: array capacity exhausted")
	ErrIO            = errors.New("immjson: chunk source failed")
	ErrAllocation    = errors.New("immjson: allocation failed")
	ErrDepth         = errors.New("immjson: maximum depth exceeded")
	ErrTruncated     = errors.New("immjson: truncated input")
	ErrInvalidSchema = errors.New("immjson: invalid schema")
)

var codeSentinel = map[string]error{
	CodeParseError:       ErrSyntax,
	CodeInvalidType:      ErrTypeMismatch,
	CodeOverflow:         ErrRange,
	CodeUnsupported:      ErrUnsupported,
	CodeTooBig:           ErrCapacity,
	CodeIOError:          ErrIO,
	CodeAllocationFailed: ErrAllocation,
	CodeMaxDepth:         ErrDepth,
	CodeTruncated:        ErrTruncated,
	CodeInvalidSchema:    ErrInvalidSchema,
}

var kindCode = map[eng.ErrorKind]string{
	eng.KindSyntax:      CodeParseError,
	eng.KindType:        CodeInvalidType,
	eng.KindRange:       CodeOverflow,
	eng.KindUnsupported: CodeUnsupported,
	eng.KindCapacity:    CodeTooBig,
	eng.KindIO:          CodeIOError,
	eng.KindAllocation:  CodeAllocationFailed,
	eng.KindDepth:       CodeMaxDepth,
	eng.KindTruncated:   CodeTruncated,
}

// Issue describes one failure.
type Issue struct {
	Path    string // JSON Pointer of the destination being decoded (for example: /hourly/time/3).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Parser detail, e.g. "expected ',' or '}' after object member".
	Cause   error  // Optional: underlying error.
	// Line and Column are 1-based and locate the first unconsumed byte.
	Line   int
	Column int
	Offset int64 // Bytes consumed from the source (-1 when unknown).
	// InputFragment holds a few unconsumed bytes at the failure point.
	InputFragment string
	// Params carries structured parameters such as the destination
	// "offset" of the field or the array "capacity".
	Params map[string]any
}

// Issues is a collection of errors that implements error. Decoding stops
// at the first failure, so decode errors carry a single issue.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /latitude (3:14): expected number, found string
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Line > 0 {
			fmt.Fprintf(b, " (%d:%d)", it.Line, it.Column)
		}
		if it.Hint != "" {
			b.WriteString(": ")
			b.WriteString(it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is matches the sentinel of any issue's code.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if s, ok := codeSentinel[it.Code]; ok && s == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the issues' causes.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// toIssues converts err into Issues, attaching path when the error does not
// already carry one.
func toIssues(err error, path string) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	if e, ok := eng.AsError(err); ok {
		code := kindCode[e.Kind]
		if e.Kind == eng.KindIO && errors.Is(e.Cause, ErrMaxBytes) {
			code = CodeTruncated
		}
		return AppendIssues(nil, Issue{
			Path:          path,
			Code:          code,
			Message:       i18n.T(code, nil),
			Hint:          e.Msg,
			Cause:         e.Cause,
			Line:          e.Line,
			Column:        e.Column,
			Offset:        e.Offset,
			InputFragment: e.Snippet,
		})
	}
	return AppendIssues(nil, Issue{Path: path, Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: err.Error(), Cause: err, Offset: -1})
}

func schemaIssue(format string, args ...any) Issues {
	return AppendIssues(nil, Issue{
		Path:    "/",
		Code:    CodeInvalidSchema,
		Message: i18n.T(CodeInvalidSchema, nil),
		Hint:    fmt.Sprintf(format, args...),
		Offset:  -1,
	})
}
