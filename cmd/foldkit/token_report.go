package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/agusx1211/foldkit/internal/collect"
)

const maxReportLines = 20

type reportItem struct {
	Label  string
	Tokens int
	Files  int
}

func buildTokenReport(blob string, model string, files []collect.File) (string, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return "", fmt.Errorf("failed to get tokenizer for model %q: %w", model, err)
	}

	total := len(tkm.Encode(blob, nil, nil))
	fileTokens := make([]reportItem, 0, len(files))
	dirs := make(map[string]*reportItem)
	pathTokens := 0
	for _, f := range files {
		if f.Err != nil {
			continue
		}
		n := len(tkm.Encode(f.Content, nil, nil))
		pathTokens += n
		fileTokens = append(fileTokens, reportItem{Label: f.Label, Tokens: n, Files: 1})

		top, _, nested := strings.Cut(f.Label, "/")
		if !nested {
			continue
		}
		d, ok := dirs[top]
		if !ok {
			d = &reportItem{Label: top + "/"}
			dirs[top] = d
		}
		d.Tokens += n
		d.Files++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", total)
	fmt.Fprintf(&b, "\nmodel: %s\n", model)
	fmt.Fprintf(&b, "file tokens: %d\n", pathTokens)
	fmt.Fprintf(&b, "header tokens: %d\n", total-pathTokens)

	dirItems := make([]reportItem, 0, len(dirs))
	for _, d := range dirs {
		dirItems = append(dirItems, *d)
	}
	sortReportItems(dirItems)
	if len(dirItems) > 0 {
		fmt.Fprintf(&b, "\ntop-level directories:\n")
		writeReportItems(&b, dirItems, pathTokens, true)
	}

	sortReportItems(fileTokens)
	fmt.Fprintf(&b, "\ntop files:\n")
	writeReportItems(&b, fileTokens, pathTokens, false)
	return b.String(), nil
}

func sortReportItems(items []reportItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Tokens == items[j].Tokens {
			return items[i].Label < items[j].Label
		}
		return items[i].Tokens > items[j].Tokens
	})
}

func writeReportItems(b *strings.Builder, items []reportItem, whole int, dirs bool) {
	limit := maxReportLines
	if len(items) < limit {
		limit = len(items)
	}
	for _, it := range items[:limit] {
		if dirs {
			fmt.Fprintf(b, "%d\t%s\t(%s, %d files)\n", it.Tokens, it.Label, formatPercent(it.Tokens, whole), it.Files)
			continue
		}
		fmt.Fprintf(b, "%d\t%s\t(%s)\n", it.Tokens, it.Label, formatPercent(it.Tokens, whole))
	}
	if len(items) > limit {
		fmt.Fprintf(b, "...\n")
	}
}

func formatPercent(part, whole int) string {
	if whole <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}
