// Package debug holds env-gated diagnostics for docpatch.
package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type debug struct {
	Diff  bool
	Patch bool
}

var (
	d   *debug
	out io.Writer = os.Stderr
	tag           = color.New(color.FgMagenta, color.Bold)
)

func init() {
	d = &debug{}
	d.Diff = boolEnv("DOCPATCH_DEBUG_DIFF")
	d.Patch = boolEnv("DOCPATCH_DEBUG_PATCH")
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		tag.EnableColor()
	} else {
		tag.DisableColor()
	}
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Diff reports whether DOCPATCH_DEBUG_DIFF is set.
func Diff() bool {
	return d.Diff
}

// Patch reports whether DOCPATCH_DEBUG_PATCH is set.
func Patch() bool {
	return d.Patch
}

// SetOutput redirects log output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Enable forces both gates on or off; tests use it to capture output.
func Enable(diff, patch bool) {
	d.Diff = diff
	d.Patch = patch
}

// Logf writes one line prefixed by a colored area name.
func Logf(area, msg string, args ...any) {
	line := fmt.Sprintf(msg, args...)
	line = strings.TrimRight(line, "\n")
	fmt.Fprintf(out, "%s %s\n", tag.Sprintf("[%s]", area), line)
}
