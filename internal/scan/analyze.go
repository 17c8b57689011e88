package scan

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/agusx1211/foldkit/internal/tree"
)

// AnalyzerIgnore is skipped when computing statistics.
var AnalyzerIgnore = append(append([]string(nil), DefaultIgnore...), ".vscode")

type ExtStats struct {
	Files int      `json:"files"`
	Size  int64    `json:"size"`
	Lines int      `json:"lines"`
	Items []string `json:"items"`
}

type Stats struct {
	Files      int                  `json:"files"`
	Folders    int                  `json:"folders"`
	Size       int64                `json:"size"`
	Lines      int                  `json:"lines"`
	Extensions map[string]*ExtStats `json:"extensions"`
}

// Analyze aggregates totals and per-extension statistics of a scanned tree.
// The extension is the lower-cased text after the last dot, or "other".
func Analyze(t *tree.Tree) Stats {
	ignore := make(map[string]struct{}, len(AnalyzerIgnore))
	for _, name := range AnalyzerIgnore {
		ignore[name] = struct{}{}
	}

	stats := Stats{Extensions: make(map[string]*ExtStats)}
	t.Walk(func(n tree.Node, _ int) bool {
		if _, skip := ignore[n.Name]; skip {
			return false
		}
		if !n.IsFile {
			stats.Folders++
			return true
		}
		stats.Files++
		stats.Size += n.Size
		stats.Lines += n.Lines

		ext := Extension(n.Name)
		es, ok := stats.Extensions[ext]
		if !ok {
			es = &ExtStats{}
			stats.Extensions[ext] = es
		}
		es.Files++
		es.Size += n.Size
		es.Lines += n.Lines
		es.Items = append(es.Items, n.Path)
		return true
	})
	return stats
}

func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "other"
	}
	return strings.ToLower(name[i+1:])
}

// FormatSize renders a byte count as B, KB or MB.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// Report renders stats as a plain-text table, extensions ordered by file
// count.
func Report(s Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "files: %d\n", s.Files)
	fmt.Fprintf(&sb, "folders: %d\n", s.Folders)
	fmt.Fprintf(&sb, "size: %s\n", FormatSize(s.Size))
	fmt.Fprintf(&sb, "lines: %d\n", s.Lines)
	if len(s.Extensions) == 0 {
		return sb.String()
	}

	exts := make([]string, 0, len(s.Extensions))
	for ext := range s.Extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		a, b := s.Extensions[exts[i]], s.Extensions[exts[j]]
		if a.Files == b.Files {
			return exts[i] < exts[j]
		}
		return a.Files > b.Files
	})

	sb.WriteString("\n")
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ext\tfiles\tsize\tlines")
	for _, ext := range exts {
		es := s.Extensions[ext]
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", ext, es.Files, FormatSize(es.Size), es.Lines)
	}
	w.Flush()
	return sb.String()
}
