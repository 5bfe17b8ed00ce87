package yamlpatch

import "bytes"

// detectIndent guesses the indentation step of a YAML text as the gcd of
// the leading space counts of its content lines. It falls back to 2.
func detectIndent(b []byte) int {
	step := 0
	for _, ln := range bytes.Split(b, []byte("\n")) {
		trimmed := bytes.TrimLeft(ln, " ")
		if len(bytes.TrimSpace(trimmed)) == 0 || trimmed[0] == '#' {
			continue
		}
		n := len(ln) - len(trimmed)
		if n == 0 {
			continue
		}
		step = gcd(step, n)
		if step == 1 {
			break
		}
	}
	if step < 2 || step > 8 {
		return 2
	}
	return step
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
