package docpatch

import "github.com/yamledit/docpatch/value"

// lcs returns the longest common subsequence of a and b under deep
// equality. Ties while walking back through the table advance b first, so
// the result is deterministic for a given pair of inputs.
func lcs(a, b []*value.Value) []*value.Value {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}
	tab := make([][]int, n+1)
	for i := range tab {
		tab[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case a[i-1].Equal(b[j-1]):
				tab[i][j] = tab[i-1][j-1] + 1
			case tab[i][j-1] >= tab[i-1][j]:
				tab[i][j] = tab[i][j-1]
			default:
				tab[i][j] = tab[i-1][j]
			}
		}
	}
	res := make([]*value.Value, 0, tab[n][m])
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case a[i-1].Equal(b[j-1]):
			res = append(res, a[i-1])
			i--
			j--
		case tab[i-1][j] > tab[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(res)-1; l < r; l, r = l+1, r-1 {
		res[l], res[r] = res[r], res[l]
	}
	return res
}
