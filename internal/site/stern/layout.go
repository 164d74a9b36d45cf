package stern

import (
	"cmp"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Listing identifies one paginated month listing of one category.
type Listing struct {
	Category string
	Year     int
	Month    int
	// Page is 0 for the first listing of a month, which has no pageNum.
	Page int
}

// ParseListing reads a listing URL of the form
// <origin>/<category>/archiv/?month=M&year=YYYY[&pageNum=P].
func ParseListing(rawURL string) (Listing, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Listing{}, false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) != 2 || segs[1] != "archiv" || segs[0] == "" {
		return Listing{}, false
	}
	q := u.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || len(q.Get("year")) != 4 {
		return Listing{}, false
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return Listing{}, false
	}
	l := Listing{Category: segs[0], Year: year, Month: month}
	if p := q.Get("pageNum"); p != "" {
		if l.Page, err = strconv.Atoi(p); err != nil || l.Page < 0 {
			return Listing{}, false
		}
	}
	return l, true
}

// URL rebuilds the listing URL below origin.
func (l Listing) URL(origin string) string {
	u := fmt.Sprintf("%s/%s/archiv/?month=%d&year=%d", strings.TrimSuffix(origin, "/"), l.Category, l.Month, l.Year)
	if l.Page > 0 {
		u += "&pageNum=" + strconv.Itoa(l.Page)
	}
	return u
}

// FolderName is <cat>_<y>_<MM>_page<P>.
func (l Listing) FolderName() string {
	return fmt.Sprintf("%s_%d_%02d_page%d", l.Category, l.Year, l.Month, l.Page)
}

// Folder is the listing folder below the archive folder:
// <cat>/<cat>_<y>/<cat>_<y>_<MM>/<cat>_<y>_<MM>_page<P>.
func (l Listing) Folder() string {
	yearDir := fmt.Sprintf("%s_%d", l.Category, l.Year)
	monthDir := fmt.Sprintf("%s_%02d", yearDir, l.Month)
	return path.Join(l.Category, yearDir, monthDir, l.FolderName())
}

// Layout places every listing in its category tree below
// www.stern.de/stern_archiv.
type Layout struct{}

// UnitFolder implements download.Layout.
func (Layout) UnitFolder(listingURL string) string {
	l, ok := ParseListing(listingURL)
	if !ok {
		return path.Join(SiteFolder, ArchiveFolder, "unknown_listing")
	}
	return path.Join(SiteFolder, ArchiveFolder, l.Folder())
}

// ListingOrder sorts listing URLs by year, month, then page. Unparsable
// URLs sort last.
func ListingOrder(a, b string) int {
	la, oka := ParseListing(a)
	lb, okb := ParseListing(b)
	switch {
	case oka && okb:
		if c := cmp.Compare(la.Year, lb.Year); c != 0 {
			return c
		}
		if c := cmp.Compare(la.Month, lb.Month); c != 0 {
			return c
		}
		if c := cmp.Compare(la.Page, lb.Page); c != 0 {
			return c
		}
	case oka:
		return -1
	case okb:
		return 1
	}
	return cmp.Compare(a, b)
}
