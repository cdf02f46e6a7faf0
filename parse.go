package immjson

import "context"

// DeserializeObject decodes one JSON object from src into dst as described
// by s. It pulls chunks only as needed and never buffers the document.
//
// On failure dst keeps every value decoded before the failing member, and
// the error is Issues carrying the code, line, column and JSON Pointer of
// the failure. Members missing from the input leave dst untouched, so
// callers should pre-fill dst with zero or sentinel values.
func DeserializeObject[T any](ctx context.Context, src ChunkSource, dst *T, s *Schema[T], opts ...ParseOpt) error {
	if s == nil || dst == nil {
		return schemaIssue("nil schema or destination")
	}
	d := newDecoder(ctx, src, normalizeOpt(opts))
	if err := s.DecodeValue(d, dst); err != nil {
		iss := toIssues(err, d.Path())
		logFailure("deserialize object", iss)
		return iss
	}
	return nil
}

// DeserializeArray decodes one JSON array from src through desc.
func DeserializeArray[E any](ctx context.Context, src ChunkSource, desc ArrayDescriptor[E], opts ...ParseOpt) error {
	if desc.Elem == nil {
		return schemaIssue("array descriptor without element value")
	}
	d := newDecoder(ctx, src, normalizeOpt(opts))
	if err := DecodeArray(d, desc); err != nil {
		iss := toIssues(err, d.Path())
		logFailure("deserialize array", iss)
		return iss
	}
	return nil
}

// ParseFrom decodes a fresh T from src.
func ParseFrom[T any](ctx context.Context, s *Schema[T], src ChunkSource, opts ...ParseOpt) (T, error) {
	var v T
	err := DeserializeObject(ctx, src, &v, s, opts...)
	return v, err
}
