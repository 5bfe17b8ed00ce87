package docpatch

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/yamledit/docpatch/value"
)

func mustJSON(t *testing.T, s string) *value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("bad JSON fixture %q: %v", s, err)
	}
	return v
}

func mustPatch(t *testing.T, s string) Patch {
	t.Helper()
	p, err := ParsePatch([]byte(s))
	if err != nil {
		t.Fatalf("bad patch fixture %q: %v", s, err)
	}
	return p
}

func patchJSON(t *testing.T, p Patch) string {
	t.Helper()
	b, err := p.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func indented(v *value.Value) string {
	b, err := value.MarshalJSONIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(b) + "\n"
}

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// requireSameDoc fails with a unified diff of the two renderings.
func requireSameDoc(t *testing.T, want, got *value.Value, msgAndArgs ...any) {
	t.Helper()
	if want.Equal(got) {
		return
	}
	t.Fatalf("documents differ:\n%s%v", unifiedDiff(indented(want), indented(got)), msgAndArgs)
}
