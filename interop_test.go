package docpatch

import (
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamledit/docpatch/value"
)

// Diff output must mean the same thing to an independent RFC 6902
// implementation.
func TestDiffAppliesWithJSONPatch(t *testing.T) {
	for _, rt := range roundTrips {
		for _, flags := range []DiffFlags{DefaultDiffFlags(), NoMoveOrCopy(), AddOriginalValueOnReplace} {
			t.Run(rt.name+"/"+flags.String(), func(t *testing.T) {
				p := Diff(mustJSON(t, rt.src), mustJSON(t, rt.dst), flags)
				jp, err := ToJSONPatch(p)
				require.NoError(t, err)
				out, err := jp.Apply([]byte(rt.src))
				require.NoError(t, err, "patch %s", patchJSON(t, p))
				got, err := value.ParseJSON(out)
				require.NoError(t, err)
				requireSameDoc(t, mustJSON(t, rt.dst), got)
			})
		}
	}
}

func TestJSONPatchConversion(t *testing.T) {
	p := mustPatch(t, `[
		{"op":"add","path":"/a/-","value":{"b":[1,2]}},
		{"op":"remove","path":"/c"},
		{"op":"replace","fromValue":1,"path":"/d","value":2},
		{"op":"move","from":"/e","path":"/f"},
		{"op":"copy","from":"/f","path":"/g"},
		{"op":"test","path":"/g","value":"x"}
	]`)
	jp, err := ToJSONPatch(p)
	require.NoError(t, err)
	require.Len(t, jp, len(p))
	kind := jp[3].Kind()
	assert.Equal(t, "move", kind)
	from, err := jp[3].From()
	require.NoError(t, err)
	assert.Equal(t, "/e", from)

	back, err := FromJSONPatch(jp)
	require.NoError(t, err)
	assert.True(t, p.Equal(back), "got\n%s", back)
}

func TestApplyMatchesJSONPatchOnRFCSample(t *testing.T) {
	doc := []byte(`{"foo":["bar","baz"],"x":{"y":1}}`)
	raw := []byte(`[
		{"op":"add","path":"/foo/1","value":"qux"},
		{"op":"move","from":"/x/y","path":"/z"},
		{"op":"copy","from":"/foo","path":"/x/foo"},
		{"op":"test","path":"/z","value":1}
	]`)
	jp, err := jsonpatch.DecodePatch(raw)
	require.NoError(t, err)
	want, err := jp.Apply(doc)
	require.NoError(t, err)

	got, err := ApplyJSON(raw, doc, DefaultCompatFlags())
	require.NoError(t, err)
	requireSameDoc(t, mustJSON(t, string(want)), mustJSON(t, string(got)))
}
