package corpus

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Order compares two map keys for output ordering.
type Order func(a, b string) int

var (
	issueKeyPattern   = regexp.MustCompile(`^(\d+)-(\d+)$`)
	articleKeyPattern = regexp.MustCompile(`(\d+)-(\d+)$`)
)

// IssueOrder sorts "YYYY-NN" keys by year, then issue number. Keys that do not
// parse sort after the ones that do.
func IssueOrder(a, b string) int {
	return pairOrder(issueKeyPattern, a, b)
}

// ArticleOrder sorts "article - NNN-MMM" keys by position, then total. The
// "article - null" sentinel and other unparsable keys sort last.
func ArticleOrder(a, b string) int {
	return pairOrder(articleKeyPattern, a, b)
}

func pairOrder(re *regexp.Regexp, a, b string) int {
	pa, oka := parsePair(re, a)
	pb, okb := parsePair(re, b)
	switch {
	case oka && okb:
		if c := cmp.Compare(pa[0], pb[0]); c != 0 {
			return c
		}
		if c := cmp.Compare(pa[1], pb[1]); c != 0 {
			return c
		}
	case oka:
		return -1
	case okb:
		return 1
	}
	return cmp.Compare(a, b)
}

func parsePair(re *regexp.Regexp, s string) ([2]int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return [2]int{}, false
	}
	x, err := strconv.Atoi(m[1])
	if err != nil {
		return [2]int{}, false
	}
	y, err := strconv.Atoi(m[2])
	if err != nil {
		return [2]int{}, false
	}
	return [2]int{x, y}, true
}

// NaturalOrder compares strings chunk by chunk, treating runs of digits as
// numbers, so "page2" sorts before "page10".
func NaturalOrder(a, b string) int {
	if c := naturalCompare(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, resta := nextChunk(a)
		cb, restb := nextChunk(b)
		if isDigits(ca) && isDigits(cb) {
			na := strings.TrimLeft(ca, "0")
			nb := strings.TrimLeft(cb, "0")
			if c := cmp.Compare(len(na), len(nb)); c != 0 {
				return c
			}
			if c := cmp.Compare(na, nb); c != 0 {
				return c
			}
		} else if c := cmp.Compare(ca, cb); c != 0 {
			return c
		}
		a, b = resta, restb
	}
	return cmp.Compare(len(a), len(b))
}

func nextChunk(s string) (string, string) {
	digit := unicode.IsDigit(rune(s[0]))
	i := 1
	for i < len(s) && unicode.IsDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:]
}

func isDigits(s string) bool {
	return s != "" && unicode.IsDigit(rune(s[0]))
}
