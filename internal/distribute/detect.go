package distribute

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultExtensions are the file extensions recognised in header lines.
var DefaultExtensions = []string{"js", "jsx", "ts", "tsx", "py", "html", "css", "json", "java", "c", "cpp", "txt", "md"}

var (
	commentPrefix    = regexp.MustCompile(`^\s*(//|#|/\*|\*)`)
	framedHeader     = regexp.MustCompile(`^# ===== (.+) =====$`)
	errorPlaceholder = regexp.MustCompile(`^# \[Error reading .*\]: `)
	validExtension   = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)
)

// Block is one file found in a blob.
type Block struct {
	Path    string
	Content string
}

// Detector finds file headers in a blob.
type Detector struct {
	path *regexp.Regexp
}

var defaultDetector = mustDetector(DefaultExtensions)

func mustDetector(extensions []string) *Detector {
	d, err := NewDetector(extensions)
	if err != nil {
		panic("distribute: " + err.Error())
	}
	return d
}

// NewDetector builds a detector for the given extensions, without leading dots.
func NewDetector(extensions []string) (*Detector, error) {
	if len(extensions) == 0 {
		return nil, errors.New("no extensions configured")
	}
	quoted := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if !validExtension.MatchString(ext) {
			return nil, errors.New("invalid extension " + ext)
		}
		quoted = append(quoted, regexp.QuoteMeta(ext))
	}
	re, err := regexp.Compile(`(?i)([\w\-./]+\.(?:` + strings.Join(quoted, "|") + `))\b`)
	if err != nil {
		return nil, err
	}
	return &Detector{path: re}, nil
}

// Header returns the declared path when line is a file header. A collector
// header "# ===== label =====" yields the whole label whatever its
// extension; other comment lines must name a file with a known extension.
func (d *Detector) Header(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if m := framedHeader.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	loc := commentPrefix.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	m := d.path.FindStringSubmatch(line[loc[1]:])
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Detect splits a blob into file blocks. Lines before the first header are
// dropped. A trailing newline ends the last line rather than starting an
// empty one.
//
// Blobs produced by the collector round-trip exactly, whatever the file
// names: for blocks opened by a "# ===== name =====" header the newline the collector appended is removed,
// and the blank separator in front of such a header is not counted as
// content of the block before it. Collector error lines close the current
// block without opening a new one.
func (d *Detector) Detect(blob string) []Block {
	lines := strings.Split(blob, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var blocks []Block
	var cur *pending
	flush := func(nextFramed bool) {
		if cur == nil {
			return
		}
		content := cur.sb.String()
		if nextFramed {
			content = trimNewlines(content, 2)
		}
		if cur.framed {
			content = trimNewlines(content, 1)
		}
		blocks = append(blocks, Block{Path: cur.path, Content: content})
		cur = nil
	}

	for _, line := range lines {
		bare := strings.TrimSuffix(line, "\r")
		if errorPlaceholder.MatchString(bare) {
			flush(true)
			continue
		}
		if path, ok := d.Header(bare); ok {
			framed := framedHeader.MatchString(bare)
			flush(framed)
			cur = &pending{path: path, framed: framed}
			continue
		}
		if cur != nil {
			cur.sb.WriteString(line)
			cur.sb.WriteString("\n")
		}
	}
	flush(false)
	return blocks
}

type pending struct {
	path   string
	framed bool
	sb     strings.Builder
}

func trimNewlines(s string, n int) string {
	for i := 0; i < n && strings.HasSuffix(s, "\n"); i++ {
		s = strings.TrimSuffix(s, "\n")
	}
	return s
}
