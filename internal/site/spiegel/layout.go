package spiegel

import (
	"path"
	"regexp"
)

var issueURLPattern = regexp.MustCompile(`index-(\d{4})-(\d+)`)

// Layout places every issue in www.spiegel.de/spiegel_YYYY_NN.
type Layout struct{}

// UnitFolder implements download.Layout.
func (Layout) UnitFolder(issueURL string) string {
	return path.Join(SiteFolder, IssueFolderName(issueURL))
}

// IssueFolderName derives spiegel_YYYY_NN from an issue URL such as
// .../index-1947-46.html, or unknown_issue when the URL has no such part.
func IssueFolderName(issueURL string) string {
	m := issueURLPattern.FindStringSubmatch(path.Base(issueURL))
	if m == nil {
		return "unknown_issue"
	}
	return "spiegel_" + m[1] + "_" + m[2]
}
