// Package spiegel implements discovery, download layout and extraction for
// the weekly print archive at www.spiegel.de/spiegel/print/.
package spiegel

import (
	"path/filepath"
	"regexp"
)

// Site defaults.
const (
	DefaultArchiveURL = "https://www.spiegel.de/spiegel/print/"
	DefaultOrigin     = "https://www.spiegel.de"

	// SiteFolder is the folder below the data root holding raw pages.
	SiteFolder = "www.spiegel.de"
	// YearLabelPrefix prefixes the top-level key of every year file.
	YearLabelPrefix = "Der Spiegel - "
)

// YearFilePattern matches finished year files.
var YearFilePattern = regexp.MustCompile(`(?i)^spiegel-\d{4}\.json$`)

// Paths locates the persisted state of the site below a data root.
type Paths struct {
	Root string
}

// IssueURLs is the append-only list of discovered issue URLs.
func (p Paths) IssueURLs() string { return filepath.Join(p.Root, "spiegel_issue_urls_def_1.txt") }

// IssuesAndArticles maps every issue URL to its article URLs.
func (p Paths) IssuesAndArticles() string {
	return filepath.Join(p.Root, "SPIEGEL_issues_and_articles_def_1.json")
}

// FailedURLs records failed archive root and year page fetches.
func (p Paths) FailedURLs() string { return filepath.Join(p.Root, "failed_urls_def_1.json") }

// FailedIssues records failed issue page fetches during discovery.
func (p Paths) FailedIssues() string { return filepath.Join(p.Root, "failed_issues_def_1.json") }

// FailedDownloadIssues records failed issue downloads.
func (p Paths) FailedDownloadIssues() string {
	return filepath.Join(p.Root, "failed_issues_spiegel_def_2.json")
}

// FailedDownloadArticles records failed article downloads.
func (p Paths) FailedDownloadArticles() string {
	return filepath.Join(p.Root, "failed_articles_spiegel_def_2.json")
}

// Defects is the data-quality ledger.
func (p Paths) Defects() string { return filepath.Join(p.Root, "spiegel_incorrect_data.json") }

// RawDir holds one folder per downloaded issue.
func (p Paths) RawDir() string { return filepath.Join(p.Root, SiteFolder) }

// CorpusDir holds the year files.
func (p Paths) CorpusDir() string { return filepath.Join(p.Root, "spiegel_json_data_nach_jahren") }

// YearFile is the corpus file of year.
func (p Paths) YearFile(year int) string {
	return filepath.Join(p.CorpusDir(), yearFileName(year))
}

// LogFile is the default log location.
func (p Paths) LogFile() string { return filepath.Join(p.Root, "process_SPIEGEL.log") }
