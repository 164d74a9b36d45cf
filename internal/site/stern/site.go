// Package stern implements discovery, download layout and extraction for
// the category archive at www.stern.de/archiv/.
//
// The archive is organized category → year → month → paginated listing.
// Year files are chronological: each month unit collects the listings of
// every category for that month.
package stern

import (
	"path/filepath"
	"regexp"
)

// Site defaults.
const (
	DefaultArchiveURL = "https://www.stern.de/archiv/"
	DefaultOrigin     = "https://www.stern.de"

	// SiteFolder is the folder below the data root holding raw pages.
	SiteFolder = "www.stern.de"
	// ArchiveFolder groups the listing folders below SiteFolder.
	ArchiveFolder = "stern_archiv"
	// YearLabelPrefix prefixes the top-level key of every year file.
	YearLabelPrefix = "Stern - "
)

// DefaultDenylist names category roots that are not archives of articles.
var DefaultDenylist = []string{"noch-fragen"}

// YearFilePattern matches finished year files.
var YearFilePattern = regexp.MustCompile(`(?i)^stern-\d{4}\.json$`)

// Paths locates the persisted state of the site below a data root.
type Paths struct {
	Root string
}

// ListingURLs is the append-only list of discovered listing URLs.
func (p Paths) ListingURLs() string { return filepath.Join(p.Root, "stern_page_urls_def_1.txt") }

// ListingsAndArticles maps every listing URL to its article URLs.
func (p Paths) ListingsAndArticles() string {
	return filepath.Join(p.Root, "STERN_issues_and_articles_def_1.json")
}

// FailedURLs records every failed fetch during discovery.
func (p Paths) FailedURLs() string { return filepath.Join(p.Root, "failed_urls_stern_def_1.json") }

// FailedDownloadListings records failed listing downloads.
func (p Paths) FailedDownloadListings() string {
	return filepath.Join(p.Root, "failed_issues_stern_def_2.json")
}

// FailedDownloadArticles records failed article downloads.
func (p Paths) FailedDownloadArticles() string {
	return filepath.Join(p.Root, "failed_articles_stern_def_2.json")
}

// Defects is the data-quality ledger.
func (p Paths) Defects() string { return filepath.Join(p.Root, "stern_incorrect_data.json") }

// RawDir holds the category trees of downloaded listings.
func (p Paths) RawDir() string { return filepath.Join(p.Root, SiteFolder, ArchiveFolder) }

// CorpusDir holds the year files.
func (p Paths) CorpusDir() string { return filepath.Join(p.Root, "stern_json_data_nach_jahren") }

// YearFile is the corpus file of year.
func (p Paths) YearFile(year int) string {
	return filepath.Join(p.CorpusDir(), yearFileName(year))
}

// LogFile is the default log location.
func (p Paths) LogFile() string { return filepath.Join(p.Root, "process_STERN.log") }
