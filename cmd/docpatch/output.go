package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yamledit/docpatch"
	"github.com/yamledit/docpatch/value"
)

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

// colorFor reports whether w is a terminal.
func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var opColors = map[docpatch.Op]*color.Color{
	docpatch.Add:     color.New(color.FgGreen),
	docpatch.Remove:  color.New(color.FgRed),
	docpatch.Replace: color.New(color.FgYellow),
	docpatch.Move:    color.New(color.FgCyan),
	docpatch.Copy:    color.New(color.FgCyan),
	docpatch.Test:    color.New(color.FgBlue),
}

func paint(c *color.Color, on bool, s string) string {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// writePatch prints p as a JSON array with one operation per line.
func writePatch(w io.Writer, p docpatch.Patch, colored bool) error {
	if len(p) == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, op := range p {
		b, err := value.MarshalJSON(op.Encode())
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%q", op.Op)
		head := `{"op":` + name
		buf.WriteString("  {\"op\":")
		buf.WriteString(paint(opColors[op.Op], colored, name))
		buf.Write(b[len(head):])
		if i < len(p)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeDoc(w io.Writer, v *value.Value) error {
	b, err := value.MarshalJSONIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// writeLineDiff prints a line diff of the indented JSON renderings of a
// and b.
func writeLineDiff(w io.Writer, a, b *value.Value, colored bool) error {
	at, err := value.MarshalJSONIndent(a, "", "  ")
	if err != nil {
		return err
	}
	bt, err := value.MarshalJSONIndent(b, "", "  ")
	if err != nil {
		return err
	}
	dmp := diffmatchpatch.New()
	ac, bc, lines := dmp.DiffLinesToChars(string(at)+"\n", string(bt)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ac, bc, false), lines)

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	var buf bytes.Buffer
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				buf.WriteString(paint(del, colored, "-"+line))
			case diffmatchpatch.DiffInsert:
				buf.WriteString(paint(ins, colored, "+"+line))
			default:
				buf.WriteString(" " + line)
			}
		}
	}
	_, err = w.Write(buf.Bytes())
	return err
}
