package distribute

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusx1211/foldkit/internal/collect"
	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/tree"
)

func detector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultExtensions)
	require.NoError(t, err)
	return d
}

func TestDetector_HeaderScenario(t *testing.T) {
	blocks := detector(t).Detect("// src/components/Button.jsx\nexport default function(){}")
	assert.Equal(t, []Block{{Path: "src/components/Button.jsx", Content: "export default function(){}\n"}}, blocks)
}

func TestDetector_HeaderStyles(t *testing.T) {
	d := detector(t)
	cases := []struct {
		line string
		want string
		ok   bool
	}{
		{"// a/b.ts", "a/b.ts", true},
		{"//src/index.tsx", "src/index.tsx", true},
		{"# utils/helpers.py", "utils/helpers.py", true},
		{"/* styles/main.css */", "styles/main.css", true},
		{" * docs/README.MD", "docs/README.MD", true},
		{"** notes.txt", "notes.txt", true},
		{"# ===== pkg/config.json =====", "pkg/config.json", true},
		{"# ===== cmd/main.go =====", "cmd/main.go", true},
		{"# ===== app/[id]/page.tsx =====", "app/[id]/page.tsx", true},
		{"# ===== my file.js =====", "my file.js", true},
		{"# ===== Makefile =====", "Makefile", true},
		{"// file: ./lib/v1.2/app.js", "./lib/v1.2/app.js", true},
		{"const x = 'a.js'", "", false},
		{"// main.go", "", false},
		{"// archive.jsonl", "", false},
		{"# just a comment", "", false},
	}
	for _, tc := range cases {
		got, ok := d.Header(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestDetector_PreambleAndMultipleBlocks(t *testing.T) {
	blob := "Here are the files:\n\n// a.js\nconst a = 1;\n\n# b/c.py\nprint('c')\n"
	blocks := detector(t).Detect(blob)
	assert.Equal(t, []Block{
		{Path: "a.js", Content: "const a = 1;\n\n"},
		{Path: "b/c.py", Content: "print('c')\n"},
	}, blocks)
}

func TestDetector_CRLF(t *testing.T) {
	blocks := detector(t).Detect("// a.js\r\nx\r\n")
	assert.Equal(t, []Block{{Path: "a.js", Content: "x\r\n"}}, blocks)
}

func TestDetector_ErrorPlaceholderClosesBlock(t *testing.T) {
	blob := "\n\n# ===== a.js =====\nX\n\n\n# [Error reading /p/b.txt]: read /p/b.txt: denied\n\n\n# ===== c.md =====\nZ\n"
	assert.Equal(t, []Block{
		{Path: "a.js", Content: "X"},
		{Path: "c.md", Content: "Z"},
	}, detector(t).Detect(blob))
}

func TestDetector_CustomExtensions(t *testing.T) {
	d, err := NewDetector([]string{"go", ".yaml"})
	require.NoError(t, err)
	_, ok := d.Header("// cmd/main.go")
	assert.True(t, ok)
	_, ok = d.Header("# deploy.yaml")
	assert.True(t, ok)
	_, ok = d.Header("// a.js")
	assert.False(t, ok)

	_, err = NewDetector(nil)
	assert.Error(t, err)
	_, err = NewDetector([]string{"j|s"})
	assert.Error(t, err)
}

func TestDefaultDetector(t *testing.T) {
	require.NotNil(t, New(fsaccess.NewMemory()).detector)
	assert.Panics(t, func() { mustDetector([]string{"j|s"}) })
}

func TestDistributor_Preconditions(t *testing.T) {
	fs := fsaccess.NewMemory()
	d := New(fs)

	_, err := d.Distribute(context.Background(), "// a.js\nx", "")
	assert.ErrorIs(t, err, ErrNoTarget)

	res, err := d.Distribute(context.Background(), "no headers here\n# nor here\n", "/out")
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Empty(t, res.Written)
	_, statErr := fs.Stat("/out")
	assert.Error(t, statErr, "nothing may be written")
}

func TestDistributor_InverseOfCollect(t *testing.T) {
	src := fsaccess.NewMemory()
	require.NoError(t, src.WriteFile("/proj/a.js", "X"))
	require.NoError(t, src.WriteFile("/proj/b/c.py", "Y"))
	require.NoError(t, src.WriteFile("/proj/b/d.txt", "line one\n\nline three\n"))
	require.NoError(t, src.WriteFile("/proj/e.md", ""))

	ctx := context.Background()
	tr, err := tree.NewLoader(src).LoadRoot(ctx, "/proj")
	require.NoError(t, err)
	collected, err := collect.New(src, "/proj").Collect(ctx, tr.SelectAll())
	require.NoError(t, err)

	dst := fsaccess.NewMemory()
	res, err := New(dst).Distribute(ctx, collected.Blob, "/out")
	require.NoError(t, err)
	assert.Len(t, res.Written, 4)

	for rel, want := range map[string]string{
		"a.js":    "X",
		"b/c.py":  "Y",
		"b/d.txt": "line one\n\nline three\n",
		"e.md":    "",
	} {
		got, err := dst.ReadFile(filepath.Join("/out", rel))
		require.NoError(t, err, rel)
		assert.Equal(t, want, got, rel)
	}
}

func TestDistributor_InverseOfCollectAnyLabel(t *testing.T) {
	files := map[string]string{
		"a.js":              "X",
		"b.go":              "package b\n",
		"app/[id]/page.tsx": "export default function Page() {}\n",
		"my file.js":        "spaced",
		"Makefile":          "all:\n\tgo build\n",
		".gitignore":        "dist/\n",
	}
	src := fsaccess.NewMemory()
	for rel, content := range files {
		require.NoError(t, src.WriteFile(filepath.Join("/proj", rel), content))
	}

	ctx := context.Background()
	tr, err := tree.NewLoader(src).LoadRoot(ctx, "/proj")
	require.NoError(t, err)
	collected, err := collect.New(src, "/proj").Collect(ctx, tr.SelectAll())
	require.NoError(t, err)

	dst := fsaccess.NewMemory()
	res, err := New(dst).Distribute(ctx, collected.Blob, "/out")
	require.NoError(t, err)
	assert.Len(t, res.Written, len(files))

	for rel, want := range files {
		got, err := dst.ReadFile(filepath.Join("/out", rel))
		require.NoError(t, err, rel)
		assert.Equal(t, want, got, rel)
	}
}

func TestDistributor_PlanRejectsEscapingFramedLabel(t *testing.T) {
	plan, err := New(fsaccess.NewMemory()).Plan("\n\n# ===== ../../etc/passwd =====\nroot\n", "/out")
	require.NoError(t, err)
	assert.False(t, plan.OK())
	require.Len(t, plan.Problems, 1)
	assert.Equal(t, "../../etc/passwd", plan.Problems[0].Path)
}

func TestDistributor_OverwritesExisting(t *testing.T) {
	fs := fsaccess.NewMemory()
	require.NoError(t, fs.WriteFile("/out/a.js", "old"))

	_, err := New(fs).Distribute(context.Background(), "// a.js\nnew\n", "/out")
	require.NoError(t, err)
	got, err := fs.ReadFile("/out/a.js")
	require.NoError(t, err)
	assert.Equal(t, "new\n", got)
}

func TestDistributor_PlanRejectsEscapingPaths(t *testing.T) {
	fs := fsaccess.NewMemory()
	d := New(fs)
	blob := "// ok.js\nfine\n// ../../etc/passwd.txt\nroot\n"

	plan, err := d.Plan(blob, "/out")
	require.NoError(t, err)
	assert.False(t, plan.OK())
	require.Len(t, plan.Problems, 1)
	assert.Equal(t, "../../etc/passwd.txt", plan.Problems[0].Path)

	res, err := d.Distribute(context.Background(), blob, "/out")
	var planErr *PlanError
	require.True(t, errors.As(err, &planErr))
	assert.Empty(t, res.Written)
	_, statErr := fs.Stat("/out/ok.js")
	assert.Error(t, statErr)
}

func TestDistributor_PlanRejectsAbsolutePaths(t *testing.T) {
	plan, err := New(fsaccess.NewMemory()).Plan("// /etc/motd.txt\nhi\n", "/out")
	require.NoError(t, err)
	assert.False(t, plan.OK())
}

func TestDistributor_PlanConflictsAndDuplicates(t *testing.T) {
	fs := fsaccess.NewMemory()
	require.NoError(t, fs.CreateDirectory("/out/dir.txt"))
	blob := "// a.js\n1\n// a.js\n2\n// lib.js\nx\n// lib.js/inner.js\ny\n// dir.txt\nz\n"

	plan, err := New(fs).Plan(blob, "/out")
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	require.Len(t, plan.Targets, 3)
	assert.Equal(t, "2\n", plan.Targets[0].Block.Content)

	var paths []string
	for _, p := range plan.Problems {
		paths = append(paths, p.Path)
	}
	assert.ElementsMatch(t, []string{"dir.txt", "lib.js"}, paths)
}

func TestDistributor_OnlyAndSkip(t *testing.T) {
	fs := fsaccess.NewMemory()
	blob := "// src/a.js\nA\n// src/a.test.js\nT\n// docs/readme.md\nD\n"

	res, err := New(fs, WithPatterns([]string{"src/**"}, []string{"**/*.test.js"})).
		Distribute(context.Background(), blob, "/out")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/out", "src", "a.js")}, res.Written)
	assert.Len(t, res.Plan.Skipped, 2)

	_, err = New(fs, WithPatterns([]string{"nothing/**"}, nil)).Distribute(context.Background(), blob, "/out")
	assert.ErrorIs(t, err, ErrNoFiles)
}

type failingFS struct {
	*fsaccess.FS
	failOn string
}

func (f *failingFS) WriteFile(path, content string) error {
	if path == f.failOn {
		return &fsaccess.AccessError{Op: "write", Path: path, Err: errors.New("disk full")}
	}
	return f.FS.WriteFile(path, content)
}

func TestDistributor_FirstFailureAborts(t *testing.T) {
	fs := &failingFS{FS: fsaccess.NewMemory(), failOn: filepath.Join("/out", "b.js")}
	blob := "// a.js\nA\n// b.js\nB\n// c.js\nC\n"

	res, err := New(fs).Distribute(context.Background(), blob, "/out")
	require.Error(t, err)
	var accessErr *fsaccess.AccessError
	assert.ErrorAs(t, err, &accessErr)
	assert.Equal(t, []string{filepath.Join("/out", "a.js")}, res.Written)

	_, statErr := fs.Stat("/out/c.js")
	assert.Error(t, statErr)
	got, readErr := fs.ReadFile("/out/a.js")
	require.NoError(t, readErr)
	assert.Equal(t, "A\n", got)
}

func TestDistributor_DryRunOverlay(t *testing.T) {
	dir := t.TempDir()
	base := fsaccess.NewOS()
	overlay := fsaccess.NewOverlay(base)

	res, err := New(overlay).Distribute(context.Background(), "// x/y.md\nhello\n", dir)
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)

	_, err = base.Stat(filepath.Join(dir, "x", "y.md"))
	assert.Error(t, err)
	got, err := overlay.ReadFile(filepath.Join(dir, "x", "y.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", got)
}
