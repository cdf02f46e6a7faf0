package immjson_test

import (
	"context"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/dsl"
	"github.com/reoring/immjson/source"
)

type reading struct {
	Name  string
	Count uint8
	Temp  float64
	OK    bool
	Level int16
	Vals  [4]int32
}

var readingSchema = dsl.ObjectOf[reading]().
	Field("name", dsl.Into(func(r *reading) *string { return &r.Name }, dsl.String())).
	Field("count", dsl.Into(func(r *reading) *uint8 { return &r.Count }, dsl.Uint[uint8]())).
	Field("temp", dsl.Into(func(r *reading) *float64 { return &r.Temp }, dsl.Float64())).
	Field("ok", dsl.Into(func(r *reading) *bool { return &r.OK }, dsl.Bool())).
	Field("level", dsl.Into(func(r *reading) *int16 { return &r.Level }, dsl.Int[int16]())).
	Field("vals", dsl.Fixed(func(r *reading) []int32 { return r.Vals[:] }, dsl.Int[int32]())).
	MustBind()

func decode(t *testing.T, doc string, dst *reading, opts ...immjson.ParseOpt) immjson.Issues {
	t.Helper()
	err := immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(doc)), dst, readingSchema, opts...)
	if err == nil {
		return nil
	}
	iss, ok := immjson.AsIssues(err)
	require.True(t, ok, "expected Issues, got %T: %v", err, err)
	require.Len(t, iss, 1)
	return iss
}

func TestDeserializeObject_AtEverySplit(t *testing.T) {
	doc := "{\n  \"name\": \"probe \\\"7\\\"\",\n  \"count\": 255,\n  \"temp\": -12.5e-1,\n" +
		"  \"ok\": true,\n  \"level\": -32768,\n  \"vals\": [1, -2, 3, 2147483647]\n}"
	want := reading{Name: `probe "7"`, Count: 255, Temp: -1.25, OK: true, Level: -32768, Vals: [4]int32{1, -2, 3, 2147483647}}
	for i := 0; i <= len(doc); i++ {
		for j := i; j <= len(doc); j += 7 {
			var got reading
			err := immjson.DeserializeObject(context.Background(), source.SplitAt([]byte(doc), i, j), &got, readingSchema)
			require.NoError(t, err, "split at %d,%d", i, j)
			require.Equal(t, want, got, "split at %d,%d", i, j)
		}
	}
}

func TestDeserializeObject_ReorderedAndExtraKeys(t *testing.T) {
	type series struct {
		Time [2]int64
		Temp [2]float32
	}
	s := dsl.ObjectOf[series]().
		Field("time", dsl.Fixed(func(v *series) []int64 { return v.Time[:] }, dsl.Int[int64]())).
		Field("temperature_2m", dsl.Fixed(func(v *series) []float32 { return v.Temp[:] }, dsl.Float32())).
		MustBind()

	var got series
	doc := `{"extra":1,"temperature_2m":[1.0],"time":[1700000000]}`
	require.NoError(t, immjson.DeserializeObject(context.Background(), immjson.Bytes([]byte(doc)), &got, s))
	assert.Equal(t, int64(1700000000), got.Time[0])
	assert.Equal(t, float32(1), got.Temp[0])
	assert.Zero(t, got.Time[1])
}

func TestDeserializeObject_UintRange(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"count":255}`, &r))
	assert.Equal(t, uint8(255), r.Count)

	iss := decode(t, `{"count":256}`, &r)
	assert.Equal(t, immjson.CodeOverflow, iss[0].Code)
	assert.Equal(t, "/count", iss[0].Path)
	assert.Equal(t, unsafe.Offsetof(r.Count), iss[0].Params["offset"])
	assert.ErrorIs(t, iss, immjson.ErrRange)

	iss = decode(t, `{"count":-1}`, &r)
	assert.Equal(t, immjson.CodeOverflow, iss[0].Code)
	iss = decode(t, `{"count":1.5}`, &r)
	assert.Equal(t, immjson.CodeInvalidType, iss[0].Code)
	iss = decode(t, `{"level":-32769}`, &r)
	assert.Equal(t, immjson.CodeOverflow, iss[0].Code)
}

func TestDeserializeObject_NumberGrammar(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"temp":0}`, &r))
	assert.Zero(t, r.Temp)
	require.Nil(t, decode(t, `{"temp":0.5}`, &r))
	assert.Equal(t, 0.5, r.Temp)
	require.Nil(t, decode(t, `{"temp":25E+2}`, &r))
	assert.Equal(t, 2500.0, r.Temp)

	for _, bad := range []string{`01`, `-`, `1.`, `.5`, `1e`, `+1`, `--1`} {
		iss := decode(t, `{"temp":`+bad+`}`, &r)
		assert.Equal(t, immjson.CodeParseError, iss[0].Code, bad)
	}
	iss := decode(t, `{"temp":1e400}`, &r)
	assert.Equal(t, immjson.CodeOverflow, iss[0].Code)
}

func TestDeserializeObject_ArrayCapacity(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"vals":[1,2,3,4]}`, &r))
	assert.Equal(t, [4]int32{1, 2, 3, 4}, r.Vals)

	r = reading{}
	iss := decode(t, `{"vals":[5,6,7,8,9]}`, &r)
	assert.Equal(t, immjson.CodeTooBig, iss[0].Code)
	assert.Equal(t, "/vals/4", iss[0].Path)
	assert.Equal(t, 4, iss[0].Params["capacity"])
	assert.Equal(t, [4]int32{5, 6, 7, 8}, r.Vals, "no element is written past capacity")
	assert.ErrorIs(t, iss, immjson.ErrCapacity)

	r = reading{Vals: [4]int32{9, 9, 9, 9}}
	require.Nil(t, decode(t, `{"vals":[]}`, &r))
	assert.Equal(t, [4]int32{9, 9, 9, 9}, r.Vals)
}

func TestDeserializeObject_Strings(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"name":"a\"b\\c\/d\b\f\n\r\t"}`, &r))
	assert.Equal(t, "a\"b\\c/d\b\f\n\r\t", r.Name)

	uesc := `\` + `u0041`
	iss := decode(t, `{"name":"`+uesc+`"}`, &r)
	assert.Equal(t, immjson.CodeUnsupported, iss[0].Code)
	assert.ErrorIs(t, iss, immjson.ErrUnsupported)

	// Skipped strings may carry \u escapes.
	require.Nil(t, decode(t, `{"x":"caf`+`\`+`u00e9","name":"ok"}`, &r))
	assert.Equal(t, "ok", r.Name)

	iss = decode(t, "{\"name\":\"a\tb\"}", &r)
	assert.Equal(t, immjson.CodeParseError, iss[0].Code)
	iss = decode(t, `{"name":"\x"}`, &r)
	assert.Equal(t, immjson.CodeParseError, iss[0].Code)
}

func TestDeserializeObject_StringModes(t *testing.T) {
	type pair struct{ A, B string }
	s := dsl.ObjectOf[pair]().
		Field("a", dsl.Into(func(p *pair) *string { return &p.A }, dsl.String())).
		Field("b", dsl.Into(func(p *pair) *string { return &p.B }, dsl.String())).
		MustBind()
	doc := []byte(`{"a":"first value","b":"second"}`)
	for _, mode := range []immjson.StringMode{immjson.StringsTransfer, immjson.StringsReuse} {
		got, err := immjson.ParseFrom(context.Background(), s, source.Bytes(doc, 5), immjson.ParseOpt{Strings: mode})
		require.NoError(t, err)
		assert.Equal(t, pair{A: "first value", B: "second"}, got, "mode %d", mode)
	}
}

func TestDeserializeObject_MissingFieldsKeepSentinels(t *testing.T) {
	r := reading{Name: "unset", Count: 42, Temp: -999, Vals: [4]int32{-1, -1, -1, -1}}
	require.Nil(t, decode(t, `{"ok":true,"vals":[7]}`, &r))
	assert.Equal(t, reading{Name: "unset", Count: 42, Temp: -999, OK: true, Vals: [4]int32{7, -1, -1, -1}}, r)
}

func TestDeserializeObject_DuplicateKeyLastWins(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"count":1,"count":2}`, &r))
	assert.Equal(t, uint8(2), r.Count)
}

func TestDeserializeObject_PartialWrites(t *testing.T) {
	var r reading
	iss := decode(t, `{"name":"kept","count":7,"ok":"yes","level":3}`, &r)
	assert.Equal(t, immjson.CodeInvalidType, iss[0].Code)
	assert.Equal(t, "/ok", iss[0].Path)
	assert.Equal(t, "kept", r.Name)
	assert.Equal(t, uint8(7), r.Count)
	assert.Zero(t, r.Level)
}

func nested(n int) string {
	return strings.Repeat("[", n) + strings.Repeat("]", n)
}

func TestDeserializeObject_SkipDepth(t *testing.T) {
	var r reading
	require.Nil(t, decode(t, `{"deep":`+nested(16)+`,"count":1}`, &r))
	assert.Equal(t, uint8(1), r.Count)

	iss := decode(t, `{"deep":`+nested(17)+`}`, &r)
	assert.Equal(t, immjson.CodeMaxDepth, iss[0].Code)
	assert.ErrorIs(t, iss, immjson.ErrDepth)

	require.Nil(t, decode(t, `{"deep":`+nested(4)+`}`, &r, immjson.ParseOpt{MaxDepth: 4}))
	iss = decode(t, `{"deep":{"a":{"b":{"c":{"d":1}}}}}`, &r, immjson.ParseOpt{MaxDepth: 4})
	assert.Equal(t, immjson.CodeMaxDepth, iss[0].Code)
}

func TestDeserializeObject_Strictness(t *testing.T) {
	var r reading
	for _, doc := range []string{
		`{"count":1 "ok":true}`,
		`{,"count":1}`,
		`{"count":1,}`,
		`{"vals":[1,]}`,
		`{"vals":[1 2]}`,
		`{"count" 1}`,
		`{count:1}`,
		`{"ok":tru}`,
	} {
		iss := decode(t, doc, &r)
		assert.Equal(t, immjson.CodeParseError, iss[0].Code, doc)
	}
	iss := decode(t, `[1]`, &r)
	assert.Equal(t, immjson.CodeInvalidType, iss[0].Code)
	iss = decode(t, `{"name":"ab`, &r)
	assert.Equal(t, immjson.CodeTruncated, iss[0].Code)
	iss = decode(t, ``, &r)
	assert.Equal(t, immjson.CodeTruncated, iss[0].Code)
}

func TestDeserializeObject_NestedSchema(t *testing.T) {
	type loc struct{ Lat, Lon float32 }
	type station struct {
		ID  string
		Loc loc
		Log [][]uint16
	}
	locSchema := dsl.ObjectOf[loc]().
		Field("lat", dsl.Into(func(l *loc) *float32 { return &l.Lat }, dsl.Float32())).
		Field("lon", dsl.Into(func(l *loc) *float32 { return &l.Lon }, dsl.Float32())).
		MustBind()
	s := dsl.ObjectOf[station]().
		Field("id", dsl.Into(func(s *station) *string { return &s.ID }, dsl.String())).
		Field("loc", dsl.Into(func(s *station) *loc { return &s.Loc }, immjson.Value[loc](locSchema))).
		Field("log", dsl.Bounded(func(s *station) *[][]uint16 { return &s.Log }, 3, dsl.Slice(2, dsl.Uint[uint16]()))).
		MustBind()

	got, err := immjson.ParseFrom(context.Background(), s,
		immjson.Bytes([]byte(`{"loc":{"lon":2.5,"alt":100,"lat":48.75},"log":[[1,2],[],[3]],"id":"st-1"}`)))
	require.NoError(t, err)
	assert.Equal(t, station{ID: "st-1", Loc: loc{Lat: 48.75, Lon: 2.5}, Log: [][]uint16{{1, 2}, nil, {3}}}, got)

	_, err = immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"log":[[1,2,3]]}`)))
	iss, _ := immjson.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/log/0/2", iss[0].Path)
	assert.Equal(t, immjson.CodeTooBig, iss[0].Code)
}

func TestDeserializeObject_OpaqueObject(t *testing.T) {
	type meta struct{}
	type doc struct {
		Meta meta
		N    int
	}
	opaque := immjson.MustCompile([]immjson.Property[meta]{immjson.End[meta]()})
	s := dsl.ObjectOf[doc]().
		Field("meta", dsl.Into(func(d *doc) *meta { return &d.Meta }, immjson.Value[meta](opaque))).
		Field("n", dsl.Into(func(d *doc) *int { return &d.N }, dsl.Int[int]())).
		MustBind()
	got, err := immjson.ParseFrom(context.Background(), s,
		immjson.Bytes([]byte(`{"meta":{"a":[1,{"b":null}],"c":"d"},"n":3}`)))
	require.NoError(t, err)
	assert.Equal(t, 3, got.N)

	_, err = immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"meta":[]}`)))
	assert.ErrorIs(t, err, immjson.ErrTypeMismatch)
}

func TestDeserializeObject_Hook(t *testing.T) {
	type place struct {
		Lat  float64
		Seen int
	}
	// "loc" carries many members; only "lat" is kept.
	s := dsl.ObjectOf[place]().
		Field("loc", dsl.Hook(func(d *immjson.Decoder, p *place) error {
			if err := d.BeginObject(); err != nil {
				return err
			}
			var it immjson.ObjectIter
			found, err := d.SkipToKey(&it, "lat")
			if err != nil {
				return err
			}
			if found {
				if p.Lat, err = d.ExpectFloat64(); err != nil {
					return err
				}
				p.Seen++
				if err := d.SkipRest(&it); err != nil {
					return err
				}
			}
			return d.EndObject()
		})).
		MustBind()

	got, err := immjson.ParseFrom(context.Background(), s,
		immjson.Bytes([]byte(`{"loc":{"name":"x","tags":[1,2],"lat":48.5,"lon":2}}`)))
	require.NoError(t, err)
	assert.Equal(t, place{Lat: 48.5, Seen: 1}, got)

	got, err = immjson.ParseFrom(context.Background(), s, immjson.Bytes([]byte(`{"loc":{"lon":2}}`)))
	require.NoError(t, err)
	assert.Zero(t, got.Seen)
}

func TestDeserializeArray(t *testing.T) {
	var buf [3]uint16
	desc := immjson.ArrayDescriptor[uint16]{
		Reserve: func(i int) *uint16 {
			if i >= len(buf) {
				return nil
			}
			return &buf[i]
		},
		Elem: dsl.Uint[uint16](),
	}
	require.NoError(t, immjson.DeserializeArray(context.Background(), source.Bytes([]byte(` [ 10 , 20,30 ] `), 2), desc))
	assert.Equal(t, [3]uint16{10, 20, 30}, buf)

	err := immjson.DeserializeArray(context.Background(), immjson.Bytes([]byte(`[1,2,3,4]`)), desc)
	assert.ErrorIs(t, err, immjson.ErrCapacity)

	err = immjson.DeserializeArray(context.Background(), immjson.Bytes([]byte(`{}`)), desc)
	assert.ErrorIs(t, err, immjson.ErrTypeMismatch)

	err = immjson.DeserializeArray(context.Background(), immjson.Bytes([]byte(`[]`)), immjson.ArrayDescriptor[uint16]{})
	assert.ErrorIs(t, err, immjson.ErrInvalidSchema)
}
