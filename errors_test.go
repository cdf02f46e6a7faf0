package immjson_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/i18n"
	"github.com/reoring/immjson/source"
)

func TestIssues_Position(t *testing.T) {
	doc := "{\n  \"count\": 1,\n  \"name\": 12\n}"
	var r reading
	// Splitting must not change where the failure is reported.
	for i := 0; i <= len(doc); i++ {
		err := immjson.DeserializeObject(context.Background(), source.SplitAt([]byte(doc), i), &r, readingSchema)
		iss, ok := immjson.AsIssues(err)
		require.True(t, ok, "split %d: %v", i, err)
		it := iss[0]
		assert.Equal(t, immjson.CodeInvalidType, it.Code)
		assert.Equal(t, "/name", it.Path)
		assert.Equal(t, 3, it.Line, "split %d", i)
		assert.Equal(t, 11, it.Column, "split %d", i)
		assert.Equal(t, int64(strings.Index(doc, "12")), it.Offset, "split %d", i)
		assert.Equal(t, "expected string, found number", it.Hint)
	}

	err := immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(doc)), &r, readingSchema)
	assert.ErrorIs(t, err, immjson.ErrTypeMismatch)
	assert.NotErrorIs(t, err, immjson.ErrSyntax)
	assert.Equal(t, "invalid_type at /name (3:11): expected string, found number", err.Error())
	iss, _ := immjson.AsIssues(err)
	assert.Equal(t, "12\n}", iss[0].InputFragment)
	assert.NotEmpty(t, iss[0].Message)
}

func TestIssues_Message_Localized(t *testing.T) {
	defer i18n.SetLanguage("en")
	var r reading
	i18n.SetLanguage("ja")
	err := immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"count":300}`)), &r, readingSchema)
	iss, _ := immjson.AsIssues(err)
	require.Len(t, iss, 1)
	ja := iss[0].Message

	i18n.SetLanguage("en")
	err = immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"count":300}`)), &r, readingSchema)
	iss, _ = immjson.AsIssues(err)
	assert.NotEqual(t, ja, iss[0].Message)
	assert.Equal(t, i18n.T(immjson.CodeOverflow, nil), iss[0].Message)
}

func TestSource_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chunks := []string{`{"name":"x",`, `"count":`, `1}`}
	pulls := 0
	src := immjson.ChunkFunc(func() ([]byte, error) {
		pulls++
		if pulls == 2 {
			cancel()
		}
		return []byte(chunks[pulls-1]), nil
	})
	var r reading
	err := immjson.DeserializeObject(ctx, src, &r, readingSchema)
	assert.ErrorIs(t, err, immjson.ErrIO)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, pulls, "no pull after cancellation")
	assert.Equal(t, "x", r.Name)
	iss, _ := immjson.AsIssues(err)
	assert.Equal(t, "/count", iss[0].Path)
}

func TestSource_Error(t *testing.T) {
	boom := errors.New("link down")
	n := 0
	src := immjson.ChunkFunc(func() ([]byte, error) {
		n++
		if n == 1 {
			return []byte(`{"count":`), nil
		}
		return nil, boom
	})
	var r reading
	err := immjson.DeserializeObject(context.Background(), src, &r, readingSchema)
	assert.ErrorIs(t, err, immjson.ErrIO)
	assert.ErrorIs(t, err, boom)

	err = immjson.DeserializeObject(context.Background(), source.Chunks([]byte(`{"count":`)), &r, readingSchema)
	assert.ErrorIs(t, err, immjson.ErrTruncated)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestParseOpt_MaxBytes(t *testing.T) {
	doc := []byte(`{"name":"abcdefghijklmnop","count":1}`)
	var r reading
	err := immjson.DeserializeObject(context.Background(), source.Bytes(doc, 8), &r, readingSchema, immjson.ParseOpt{MaxBytes: 16})
	assert.ErrorIs(t, err, immjson.ErrTruncated)
	assert.ErrorIs(t, err, immjson.ErrMaxBytes)

	require.NoError(t, immjson.DeserializeObject(context.Background(), source.Bytes(doc, 8), &r, readingSchema,
		immjson.ParseOpt{MaxBytes: int64(len(doc))}))
	assert.Equal(t, uint8(1), r.Count)
}

func TestParseOpt_LimitGrow(t *testing.T) {
	var r reading
	opt := immjson.ParseOpt{Grow: immjson.LimitGrow(16)}
	require.NoError(t, immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"name":"short"}`)), &r, readingSchema, opt))
	assert.Equal(t, "short", r.Name)

	err := immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"name":"far too long for the limit"}`)), &r, readingSchema, opt)
	assert.ErrorIs(t, err, immjson.ErrAllocation)
	assert.ErrorIs(t, err, immjson.ErrGrowLimit)
	assert.Equal(t, "short", r.Name)
}

func TestParseOpt_Grow(t *testing.T) {
	var caps []int
	opt := immjson.ParseOpt{
		Strings: immjson.StringsReuse,
		Grow: func(old []byte, newCap int) ([]byte, error) {
			caps = append(caps, newCap)
			b := make([]byte, len(old), newCap)
			copy(b, old)
			return b, nil
		},
	}
	var r reading
	require.NoError(t, immjson.DeserializeObject(context.Background(), source.Bytes([]byte(`{"name":"abcdef"}`), 4), &r, readingSchema, opt))
	assert.Equal(t, "abcdef", r.Name)
	// Each grow adds the length of the piece that did not fit.
	for i := 1; i < len(caps); i++ {
		assert.Greater(t, caps[i], caps[i-1])
	}
}

func TestParseOpt_MaxExponent(t *testing.T) {
	var r reading
	err := immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"temp":1e5}`)), &r, readingSchema, immjson.ParseOpt{MaxExponent: 4})
	assert.ErrorIs(t, err, immjson.ErrRange)
	require.NoError(t, immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(`{"temp":1e4}`)), &r, readingSchema, immjson.ParseOpt{MaxExponent: 4}))
	assert.Equal(t, 1e4, r.Temp)
}

func TestAppendIssues(t *testing.T) {
	var iss immjson.Issues
	iss = immjson.AppendIssues(iss, immjson.Issue{Path: "/a", Code: immjson.CodeTooBig}, immjson.Issue{Path: "/b", Code: immjson.CodeIOError})
	require.Len(t, iss, 2)
	assert.ErrorIs(t, iss, immjson.ErrCapacity)
	assert.ErrorIs(t, iss, immjson.ErrIO)
	assert.Equal(t, "too_big at /a; io_error at /b", iss.Error())

	_, ok := immjson.AsIssues(errors.New("plain"))
	assert.False(t, ok)
}
