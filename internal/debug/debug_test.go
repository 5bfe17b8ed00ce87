package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)
	tag.DisableColor()

	Logf("diff", "%d ops\n", 3)
	assert.Equal(t, "[diff] 3 ops\n", buf.String())
}

func TestEnable(t *testing.T) {
	diff, patch := Diff(), Patch()
	defer Enable(diff, patch)

	Enable(true, false)
	assert.True(t, Diff())
	assert.False(t, Patch())
}
