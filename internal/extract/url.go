package extract

import (
	"net/url"
	"strings"
)

// Resolve makes ref absolute against base. It returns "" when either cannot
// be parsed or ref is blank.
func Resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
