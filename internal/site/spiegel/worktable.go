package spiegel

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JakeFAU/magazine-corpus/internal/download"
	"github.com/JakeFAU/magazine-corpus/internal/extract"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
)

var (
	issueFolderPattern = regexp.MustCompile(`spiegel_(\d{4})_(\d+)`)
	indexFilePattern   = regexp.MustCompile(`^index(\(\d+\))?\.html$`)
)

// IssueDir is one downloaded issue folder.
type IssueDir struct {
	Year   int
	Number int
	Path   string
}

// Key returns the record key of the issue.
func (d IssueDir) Key() string {
	return IssueKey(d.Year, d.Number)
}

// IssueKey formats the YYYY-NN record key.
func IssueKey(year, number int) string {
	return fmt.Sprintf("%d-%02d", year, number)
}

// ScanIssues groups the issue folders below dir by year. Folders that are
// not named spiegel_<year>_<number> are ignored. Each year's issues are in
// issue number order.
func ScanIssues(dir string) (map[int][]IssueDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list issue folders: %w", err)
	}
	years := make(map[int][]IssueDir)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := issueFolderPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		number, _ := strconv.Atoi(m[2])
		years[year] = append(years[year], IssueDir{Year: year, Number: number, Path: filepath.Join(dir, e.Name())})
	}
	for _, issues := range years {
		slices.SortFunc(issues, func(a, b IssueDir) int { return a.Number - b.Number })
	}
	return years, nil
}

// ArticleFiles lists the non-empty article documents of an issue folder in
// name order. index.html and its numbered copies are not articles.
func ArticleFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".html") || indexFilePattern.MatchString(name) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(folder, name))
		if err != nil || extract.IsEmptyHTML(raw) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// BuildJobs turns an extracted issue into one job per article file. An
// issue without article files yields no jobs and an Issue defect.
func BuildJobs(dir IssueDir, issue IssueResult) ([]Job, ledger.Defects, error) {
	var defects ledger.Defects
	files, err := ArticleFiles(dir.Path)
	if err != nil {
		return nil, defects, err
	}
	if len(files) == 0 {
		defects.Note(dir.Key(), ledger.CategoryIssue, "no articles found in issue")
		return nil, defects, nil
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, Job{
			IssueKey:     dir.Key(),
			Folder:       dir.Path,
			File:         f,
			IssueDate:    issue.Date,
			ReadingTimes: issue.ReadingTimes,
		})
	}
	return jobs, defects, nil
}

// indexPath returns the issue page of an issue folder.
func indexPath(dir IssueDir) string {
	return filepath.Join(dir.Path, download.IndexFile)
}
