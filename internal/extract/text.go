package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

var typography = strings.NewReplacer(
	"«", `"`, "»", `"`, "„", `"`, "“", `"`,
	"‚", "'", "‘", "'", "’", "'",
	"–", "-", "—", "-", "‐", "-", "‑", "-",
	"…", "...",
)

// NonEmpty trims s and reports whether anything is left.
func NonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// CollapseSpace replaces every whitespace run with one space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeTypography unifies typographic quote, dash and ellipsis variants
// and collapses whitespace. Letters are left alone.
func NormalizeTypography(s string) string {
	return CollapseSpace(typography.Replace(s))
}

// Counts joins the trimmed non-empty texts with single spaces and returns
// the whitespace-separated word count and the character count.
func Counts(texts []string) (words, chars int) {
	return CountText(JoinTrimmed(texts))
}

// CountText returns the whitespace-separated word count and the character
// count of s.
func CountText(s string) (words, chars int) {
	return len(strings.Fields(s)), utf8.RuneCountInString(s)
}

// JoinTrimmed joins the trimmed non-empty texts with single spaces.
func JoinTrimmed(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t, ok := NonEmpty(t); ok {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// ArticleNumber formats a position/total pair as "NNN-MMM".
func ArticleNumber(position, total int) string {
	return fmt.Sprintf("%03d-%03d", position, total)
}

// ArticleKey returns the record key of an article number. A nil number
// yields the sentinel key.
func ArticleKey(number *string) string {
	if number == nil {
		return NullArticleKey
	}
	return "article - " + *number
}

// NullArticleKey is the key of articles without a recoverable number.
const NullArticleKey = "article - null"

// TrimSuffixFold removes suffix from s ignoring case, then trims.
func TrimSuffixFold(s, suffix string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return strings.TrimSpace(s)
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// TruncateBytes shortens s to at most n bytes without splitting a UTF-8
// sequence.
func TruncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
