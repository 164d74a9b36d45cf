package spiegel

import (
	"cmp"
	"strconv"
)

// IssueURLOrder sorts issue URLs by year, then issue number. URLs without an
// index-YYYY-N part sort last.
func IssueURLOrder(a, b string) int {
	ya, na, oka := issueURLParts(a)
	yb, nb, okb := issueURLParts(b)
	switch {
	case oka && okb:
		if c := cmp.Compare(ya, yb); c != 0 {
			return c
		}
		return cmp.Compare(na, nb)
	case oka:
		return -1
	case okb:
		return 1
	}
	return cmp.Compare(a, b)
}

func issueURLParts(u string) (int, int, bool) {
	m := issueURLPattern.FindStringSubmatch(u)
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	number, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, number, true
}
