package ui

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/muesli/termenv"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

const shortTitleWidth = 10

var (
	header        = []string{"Repo", "#", "Title", "Author", "Branch", "Target", "+1", "UTD", "CI", "Review", "Labels"}
	verboseHeader = append(slices.Clone(header), "URL", "Approvals")
)

// RenderOptions controls how the table is drawn
type RenderOptions struct {
	Verbose bool
	IsTTY   bool
	Width   int
}

// Table collects rows keyed by repository and number. It is safe for concurrent use.
type Table struct {
	mu   sync.Mutex
	rows map[string]models.Row
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{rows: make(map[string]models.Row)}
}

func rowKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", strings.ToLower(repo), number)
}

// Add inserts row, replacing any row with the same repository and number
func (t *Table) Add(row models.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[rowKey(row.Repo, row.Number)] = row
}

// Remove drops the row for repo and number, if present
func (t *Table) Remove(repo string, number int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, rowKey(repo, number))
}

// Len returns the number of rows
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Rows returns a sorted snapshot of the table
func (t *Table) Rows() []models.Row {
	t.mu.Lock()
	rows := make([]models.Row, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row)
	}
	t.mu.Unlock()

	slices.SortFunc(rows, func(a, b models.Row) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return rows
}

// Render writes the table to w. Terminals get aligned, coloured columns; pipes get TSV.
func (t *Table) Render(w io.Writer, opts RenderOptions) error {
	profile := termenv.Ascii
	if opts.IsTTY {
		profile = termenv.ANSI
	}
	out := termenv.NewOutput(w, termenv.WithProfile(profile))

	tp := tableprinter.New(w, opts.IsTTY, opts.Width)
	if opts.Verbose {
		tp.AddHeader(verboseHeader)
	} else {
		tp.AddHeader(header)
	}

	for _, row := range t.Rows() {
		color := colorFunc(out, row.Classification)
		for _, field := range fields(row, opts.Verbose) {
			tp.AddField(field, tableprinter.WithColor(color))
		}
		tp.EndRow()
	}

	return tp.Render()
}

func fields(row models.Row, verbose bool) []string {
	title := strings.ReplaceAll(row.Title, "&", "and")
	if !verbose {
		title = Truncate(title, shortTitleWidth)
	}

	names := make([]string, 0, len(row.Labels))
	for _, label := range row.Labels {
		names = append(names, label.GetName())
	}

	approvals, rebased, ci, review := strconv.Itoa(row.ApprovalCount), BoolText(row.Rebased), CIText(row.CI), BoolText(row.NeedsMyApproval)
	if row.Degraded() {
		approvals, rebased, ci, review = "?", "?", "?", "?"
	}

	out := []string{
		repoName(row.Repo),
		strconv.Itoa(row.Number),
		title,
		row.Author,
		row.HeadRef,
		row.BaseRef,
		approvals,
		rebased,
		ci,
		review,
		LabelText(names, verbose),
	}
	if verbose {
		detail := strings.ReplaceAll(strings.TrimSuffix(row.ApprovalDetail, "\n"), "\n", "; ")
		if row.Degraded() {
			detail = row.Err.Error()
		}
		out = append(out, row.HTMLURL, detail)
	}
	return out
}

func repoName(fullName string) string {
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

func colorFunc(out *termenv.Output, class models.Classification) func(string) string {
	var color termenv.Color
	switch class {
	case models.ClassSuccess:
		color = out.Color("2")
	case models.ClassInfo:
		color = out.Color("4")
	case models.ClassWarning:
		color = out.Color("3")
	case models.ClassDanger:
		color = out.Color("1")
	default:
		return func(s string) string { return s }
	}
	return func(s string) string {
		return out.String(s).Foreground(color).String()
	}
}
