package structure

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Entry is one line of a parsed diagram. Level 0 is the root.
type Entry struct {
	Name     string
	IsFile   bool
	Level    int
	FullPath string
}

var connectorPattern = regexp.MustCompile(`(├──|└──)\s*`)

// Parse reads a structure diagram. It never fails: lines it cannot make
// sense of are skipped and indentation is taken at face value.
//
// Whether an entry is a file is guessed from its name: it contains a dot,
// does not end in "/" and does not start with ".". Extensionless files such
// as Makefile therefore parse as folders, and dot-folders such as .github
// parse as folders too.
func Parse(text string) []Entry {
	var entries []Entry
	var stack []string
	haveRoot := false

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		raw := bareName(line)
		if raw == "" {
			continue
		}
		name := norm.NFC.String(strings.TrimSuffix(raw, "/"))

		if !haveRoot {
			haveRoot = true
			stack = []string{name}
			entries = append(entries, Entry{Name: name, Level: 0, FullPath: name})
			continue
		}

		depth := indentDepth(line)
		if len(stack) > depth+1 {
			stack = stack[:depth+1]
		}
		for len(stack) < depth+1 {
			stack = append(stack, "")
		}
		stack = append(stack, name)

		entries = append(entries, Entry{
			Name:     name,
			IsFile:   looksLikeFile(raw),
			Level:    depth + 1,
			FullPath: strings.Join(stack, "/"),
		})
	}
	return entries
}

// indentDepth counts leading indent units. A unit is four whitespace runes or
// "│" followed by three whitespace runes.
func indentDepth(line string) int {
	r := []rune(line)
	depth := 0
	for i := 0; i+4 <= len(r); i += 4 {
		if !(unicode.IsSpace(r[i]) || r[i] == '│') {
			break
		}
		if !unicode.IsSpace(r[i+1]) || !unicode.IsSpace(r[i+2]) || !unicode.IsSpace(r[i+3]) {
			break
		}
		depth++
	}
	return depth
}

func bareName(line string) string {
	name := strings.TrimLeftFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == '│'
	})
	name = connectorPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

func looksLikeFile(name string) bool {
	return strings.Contains(name, ".") &&
		!strings.HasSuffix(name, "/") &&
		!strings.HasPrefix(name, ".")
}
