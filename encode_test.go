package docpatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

func TestEncodeFieldOrder(t *testing.T) {
	p := Patch{
		opAdd(pointer.MustParse("/a"), value.Int32(1)),
		opRemove(pointer.MustParse("/b"), nil),
		opRemove(pointer.MustParse("/c"), value.String("x")),
		opReplace(pointer.MustParse("/d"), value.Bool(false), value.Bool(true)),
		opReplace(pointer.MustParse("/e"), nil, value.Null()),
		opMove(pointer.MustParse("/f"), pointer.MustParse("/g")),
		opCopy(pointer.MustParse("/h"), pointer.MustParse("/i")),
		opTest(pointer.Root, value.Doc()),
	}
	want := `[` +
		`{"op":"add","path":"/a","value":1},` +
		`{"op":"remove","path":"/b"},` +
		`{"op":"remove","path":"/c","value":"x"},` +
		`{"op":"replace","fromValue":false,"path":"/d","value":true},` +
		`{"op":"replace","path":"/e","value":null},` +
		`{"op":"move","from":"/f","path":"/g"},` +
		`{"op":"copy","from":"/h","path":"/i"},` +
		`{"op":"test","path":"","value":{}}` +
		`]`
	assert.Equal(t, want, patchJSON(t, p))
	require.Len(t, p.Encode().Items, len(p))
	first, err := value.MarshalJSON(p[0].Encode())
	require.NoError(t, err)
	assert.Equal(t, `{"op":"add","path":"/a","value":1}`, string(first))
	assert.True(t, p[0].Value.Equal(value.Int32(1)))

	back, err := ParsePatch([]byte(want))
	require.NoError(t, err)
	assert.True(t, p.Equal(back), "got %s", back)
}

func TestDecodeKeepsFieldsPerOp(t *testing.T) {
	p := mustPatch(t, `[
		{"op":"move","from":"/a","path":"/b","value":1},
		{"op":"add","path":"/c","fromValue":2,"value":3},
		{"op":"replace","path":"/d","fromValue":4,"value":5},
		{"path":"/e","op":"remove","value":6}
	]`)
	require.Len(t, p, 4)
	assert.Nil(t, p[0].Value)
	assert.Equal(t, "/a", p[0].From.String())
	assert.Nil(t, p[1].SrcValue)
	assert.True(t, p[2].SrcValue.Equal(value.Int32(4)))
	assert.True(t, p[3].Value.Equal(value.Int32(6)))
	assert.Equal(t, Remove, p[3].Op)
}

func TestDecodeAllowsMissingValue(t *testing.T) {
	p := mustPatch(t, `[{"op":"add","path":"/a"}]`)
	require.Len(t, p, 1)
	assert.Nil(t, p[0].Value)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name, in, msg string
	}{
		{"not json", `[{`, ""},
		{"not an array", `{"op":"add","path":"/a","value":1}`, "docpatch: invalid patch: patch must be an array"},
		{"not an object", `[1]`, "docpatch: invalid patch: operation 0: operation must be an object"},
		{"missing op", `[{"path":"/a"}]`, "docpatch: invalid patch: operation 0: missing 'op' field"},
		{"op not string", `[{"op":1,"path":"/a"}]`, ""},
		{"unknown op", `[{"op":"add","path":"/a","value":1},{"op":"merge","path":"/a"}]`,
			`docpatch: invalid patch: operation 1: unknown operation "merge"`},
		{"missing path", `[{"op":"remove"}]`, "docpatch: invalid patch: operation 0: missing 'path' field"},
		{"missing from", `[{"op":"move","path":"/a"}]`, "docpatch: invalid patch: operation 0: missing 'from' field"},
		{"bad pointer", `[{"op":"remove","path":"a"}]`, ""},
		{"bad from pointer", `[{"op":"copy","from":"x","path":"/a"}]`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePatch([]byte(tc.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPatch)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, err.Error())
			}
		})
	}
}

func TestPatchUnmarshalJSON(t *testing.T) {
	var doc struct {
		Name  string `json:"name"`
		Patch Patch  `json:"patch"`
	}
	err := json.Unmarshal([]byte(`{"name":"n","patch":[{"op":"remove","path":"/x/0"}]}`), &doc)
	require.NoError(t, err)
	require.Len(t, doc.Patch, 1)
	assert.Equal(t, Remove, doc.Patch[0].Op)
	assert.Equal(t, "/x/0", doc.Patch[0].Path.String())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"n","patch":[{"op":"remove","path":"/x/0"}]}`, string(out))

	err = json.Unmarshal([]byte(`{"patch":{}}`), &doc)
	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestDecodePatchPreservesExtendedKinds(t *testing.T) {
	p := Patch{opAdd(pointer.MustParse("/n"), value.Int64(5))}
	back, err := ParsePatch([]byte(patchJSON(t, p)))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, value.Int64Kind, back[0].Value.Kind)
}

func TestParseOp(t *testing.T) {
	for _, op := range []Op{Add, Remove, Replace, Move, Copy, Test} {
		got, err := ParseOp(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseOp("ADD")
	assert.Error(t, err)
}
