// Package comments removes comments from source text.
package comments

import (
	"regexp"
	"strings"
)

// Applied in order. Line comments go first, so a "//" inside a block comment
// takes the rest of that line with it.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`//[^\r\n]*`),
	regexp.MustCompile(`#[^\r\n]*`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
	regexp.MustCompile(`(?s)<!--.*?-->`),
}

// Strip removes //, #, /* */ and <!-- --> comments, drops lines left blank
// and trims the result. The patterns are purely textual: comment markers
// inside string literals are stripped too.
func Strip(code string) string {
	for _, re := range patterns {
		code = re.ReplaceAllString(code, "")
	}

	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
