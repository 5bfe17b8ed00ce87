package value

import (
	"math"
	"testing"

	gyaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualIsKindSensitive(t *testing.T) {
	assert.False(t, Int32(1).Equal(Int64(1)))
	assert.False(t, Int64(1).Equal(Double(1)))
	assert.False(t, DateTime(1).Equal(Int64(1)))
	assert.True(t, Int64(7).Equal(Int64(7)))
	assert.False(t, String("1").Equal(Int32(1)))
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(nil))
}

func TestEqualDoubles(t *testing.T) {
	assert.True(t, Double(math.NaN()).Equal(Double(math.NaN())))
	assert.False(t, Double(0).Equal(Double(math.Copysign(0, -1))))
	assert.True(t, Double(2.5).Equal(Double(2.5)))
}

func TestEqualDocumentsIgnoreKeyOrder(t *testing.T) {
	a := Doc(F("x", Int32(1)), F("y", Arr(String("a"), String("b"))))
	b := Doc(F("y", Arr(String("a"), String("b"))), F("x", Int32(1)))
	assert.True(t, a.Equal(b))

	c := Doc(F("y", Arr(String("b"), String("a"))), F("x", Int32(1)))
	assert.False(t, a.Equal(c), "arrays compare positionally")

	d := Doc(F("x", Int32(1)))
	assert.False(t, a.Equal(d))
	assert.False(t, d.Equal(a))
}

func TestEqualCompoundScalars(t *testing.T) {
	assert.True(t, Binary(0, []byte("ab")).Equal(Binary(0, []byte("ab"))))
	assert.False(t, Binary(0, []byte("ab")).Equal(Binary(4, []byte("ab"))))
	assert.False(t, Binary(0, []byte("ab")).Equal(Binary(0, []byte("ac"))))

	s1 := CodeWithScope("f()", Doc(F("x", Int32(1))))
	s2 := CodeWithScope("f()", Doc(F("x", Int32(1))))
	s3 := CodeWithScope("f()", Doc(F("x", Int32(2))))
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3))
}

func TestCloneIsDeep(t *testing.T) {
	orig := Doc(
		F("bin", Binary(0, []byte{1, 2, 3})),
		F("code", CodeWithScope("g()", Doc(F("k", String("v"))))),
		F("list", Arr(Doc(F("n", Int32(1))))),
	)
	c := orig.Clone()
	require.True(t, orig.Equal(c))

	bin, _ := c.Get("bin")
	bin.Data[0] = 9
	code, _ := c.Get("code")
	require.NoError(t, code.Scope.Put("k", String("changed")))
	list, _ := c.Get("list")
	inner, _ := list.Index(0)
	require.NoError(t, inner.Put("n", Int32(2)))

	want := Doc(
		F("bin", Binary(0, []byte{1, 2, 3})),
		F("code", CodeWithScope("g()", Doc(F("k", String("v"))))),
		F("list", Arr(Doc(F("n", Int32(1))))),
	)
	assert.True(t, orig.Equal(want), "clone mutations leaked: %s", orig)
}

func TestDocumentPrimitives(t *testing.T) {
	d := Doc(F("a", Int32(1)), F("b", Int32(2)))
	require.NoError(t, d.Put("a", Int32(3)))
	require.NoError(t, d.Put("c", Int32(4)))
	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())

	v, ok := d.Get("a")
	require.True(t, ok)
	assert.True(t, v.Equal(Int32(3)))

	assert.True(t, d.Delete("b"))
	assert.False(t, d.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, d.Keys())
	assert.Equal(t, 2, d.Len())

	err := Arr().Put("x", Null())
	assert.ErrorIs(t, err, ErrKind)
}

func TestArrayPrimitives(t *testing.T) {
	a := Arr(String("a"), String("c"))
	require.NoError(t, a.Insert(1, String("b")))
	require.NoError(t, a.Insert(3, String("d")))
	require.NoError(t, a.Append(String("e")))
	assert.Equal(t, `["a","b","c","d","e"]`, a.String())

	x, err := a.RemoveAt(0)
	require.NoError(t, err)
	assert.True(t, x.Equal(String("a")))
	require.NoError(t, a.Set(0, String("B")))
	assert.Equal(t, `["B","c","d","e"]`, a.String())

	assert.ErrorIs(t, a.Insert(9, Null()), ErrIndex)
	assert.ErrorIs(t, a.Set(4, Null()), ErrIndex)
	_, err = a.RemoveAt(-1)
	assert.ErrorIs(t, err, ErrIndex)
	assert.ErrorIs(t, Doc().Append(Null()), ErrKind)
}

func TestShort(t *testing.T) {
	cases := []struct {
		v    *Value
		want string
	}{
		{Null(), "null"},
		{Doc(F("a", Null())), "object"},
		{Arr(), "array"},
		{Bool(true), "true"},
		{Int32(-4), "-4"},
		{Int64(1 << 40), "1099511627776"},
		{Double(2), "2.0"},
		{String("hi"), `value "hi"`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.v.Short())
	}
}

func TestParseJSONClassifiesNumbers(t *testing.T) {
	v, err := ParseJSON([]byte(`{"small":1,"big":2147483648,"neg":-2147483649,"frac":1.5,"exp":1e3}`))
	require.NoError(t, err)

	get := func(k string) *Value {
		x, ok := v.Get(k)
		require.True(t, ok, k)
		return x
	}
	assert.Equal(t, Int32Kind, get("small").Kind)
	assert.Equal(t, Int64Kind, get("big").Kind)
	assert.Equal(t, Int64Kind, get("neg").Kind)
	assert.Equal(t, DoubleKind, get("frac").Kind)
	assert.True(t, get("exp").Equal(Double(1000)))
}

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	in := `{"z":1,"a":{"y":[true,null,"s"],"b":2}}`
	v, err := ParseJSON([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, v.Keys())
	out, err := MarshalJSON(v)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":1} {}`, `[1,]`} {
		_, err := ParseJSON([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestJSONExtendedKindsRoundTrip(t *testing.T) {
	v := Doc(
		F("i64", Int64(5)),
		F("wide", Int64(1<<40)),
		F("d", Double(3)),
		F("nan", Double(math.NaN())),
		F("inf", Double(math.Inf(-1))),
		F("bin", Binary(4, []byte("hello"))),
		F("date", DateTime(1700000000123)),
		F("code", CodeWithScope("return x", Doc(F("x", Int32(1))))),
	)
	b, err := MarshalJSON(v)
	require.NoError(t, err)

	back, err := ParseJSON(b)
	require.NoError(t, err)
	assert.True(t, v.Equal(back), "got %s", back)

	var w Value
	require.NoError(t, w.UnmarshalJSON(b))
	assert.True(t, v.Equal(&w))
}

func TestYAMLRoundTrip(t *testing.T) {
	in := []byte("name: demo\ncount: 3\nratio: 0.5\nflags: [true, false]\nnothing: null\nnested:\n  list:\n    - a\n    - 2\n")
	v, err := ParseYAML(in)
	require.NoError(t, err)

	want := Doc(
		F("name", String("demo")),
		F("count", Int32(3)),
		F("ratio", Double(0.5)),
		F("flags", Arr(Bool(true), Bool(false))),
		F("nothing", Null()),
		F("nested", Doc(F("list", Arr(String("a"), Int32(2))))),
	)
	require.True(t, want.Equal(v), "got %s", v)
	assert.Equal(t, []string{"name", "count", "ratio", "flags", "nothing", "nested"}, v.Keys())

	out, err := MarshalYAML(v)
	require.NoError(t, err)
	back, err := ParseYAML(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(back), "yaml:\n%s", out)
}

func TestYAMLBinaryAndTimestamp(t *testing.T) {
	v := Doc(F("bin", Binary(0, []byte("hello"))), F("at", DateTime(1700000000123)))
	out, err := MarshalYAML(v)
	require.NoError(t, err)
	back, err := ParseYAML(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(back), "yaml:\n%s", out)
}

func TestParseYAMLEmptyIsDocument(t *testing.T) {
	v, err := ParseYAML([]byte("  \n"))
	require.NoError(t, err)
	assert.True(t, v.Equal(Doc()))
}

func TestFromOrdered(t *testing.T) {
	v, err := FromOrdered(gyaml.MapSlice{
		{Key: "b", Value: 1},
		{Key: "a", Value: []any{"x", 2.5, nil}},
		{Key: "m", Value: map[string]any{"z": true, "c": int64(1 << 40)}},
	})
	require.NoError(t, err)
	want := Doc(
		F("b", Int32(1)),
		F("a", Arr(String("x"), Double(2.5), Null())),
		F("m", Doc(F("c", Int64(1<<40)), F("z", Bool(true)))),
	)
	assert.True(t, want.Equal(v), "got %s", v)
	m, _ := v.Get("m")
	assert.Equal(t, []string{"c", "z"}, m.Keys())

	_, err = FromOrdered(struct{}{})
	assert.ErrorIs(t, err, ErrKind)
}

func TestToOrdered(t *testing.T) {
	got := ToOrdered(Doc(F("b", Int32(1)), F("a", Arr(String("x"), Int64(2)))))
	want := gyaml.MapSlice{
		{Key: "b", Value: int32(1)},
		{Key: "a", Value: []any{"x", int64(2)}},
	}
	assert.Equal(t, want, got)
}

func TestParseOrderedYAMLKeepsOrder(t *testing.T) {
	v, err := ParseOrderedYAML([]byte("zeta: 1\nalpha: x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, v.Keys())
	z, _ := v.Get("zeta")
	assert.True(t, z.Equal(Int32(1)))
}
