package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-outline/pkg/config"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

func testLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testAppConfig(sets map[string]config.DocumentSetConfig) *config.AppConfig {
	cfg := &config.AppConfig{NumWorkers: 2, DocumentSets: sets}
	_, _ = cfg.Validate()
	return cfg
}

func TestRun_PreservesJobOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "# Alpha\n\n## Beta\n")
	b := writeFile(t, dir, "b.md", "no headings here\n")
	missing := filepath.Join(dir, "missing.md")
	c := writeFile(t, dir, "c.md", "Gamma\n=====\n")

	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	results := o.Run(context.Background(), JobsForFiles([]string{a, b, missing, c}, 6, markdown.Options{}))

	require.Len(t, results, 4)
	assert.Equal(t, []string{a, b, missing, c},
		[]string{results[0].Path, results[1].Path, results[2].Path, results[3].Path})

	assert.True(t, results[0].Success())
	assert.Equal(t, []string{"alpha", "beta"},
		[]string{results[0].Headings[0].AnchorID, results[0].Headings[1].AnchorID})

	assert.True(t, results[1].Success())
	assert.Empty(t, results[1].Headings)

	assert.False(t, results[2].Success())
	assert.ErrorIs(t, results[2].Error, utils.ErrFilesystem)
	assert.ErrorIs(t, results[2].Error, os.ErrNotExist)
	assert.Equal(t, "Filesystem_NotExist", utils.CategorizeError(results[2].Error))

	require.Len(t, results[3].Headings, 1)
	assert.Equal(t, 0, results[3].Headings[0].Line)

	succeeded, failed := o.Stats()
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, failed)
}

func TestRun_RespectsMaxLevelPerJob(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "# One\n## Two\n### Three\n")

	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	results := o.Run(context.Background(), []Job{
		{Path: path, MaxLevel: 1},
		{Path: path, MaxLevel: 3},
	})

	assert.Len(t, results[0].Headings, 1)
	assert.Len(t, results[1].Headings, 3)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var reads int32
	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	o.readFile = func(string) ([]byte, error) {
		atomic.AddInt32(&reads, 1)
		return []byte("# x"), nil
	}

	results := o.Run(ctx, JobsForFiles([]string{"a.md", "b.md", "c.md"}, 6, markdown.Options{}))

	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
		assert.Equal(t, "System_ContextCanceled", utils.CategorizeError(r.Error))
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&reads))
}

func TestRun_BoundedConcurrency(t *testing.T) {
	var current, peak int32
	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	o.readFile = func(string) ([]byte, error) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return []byte("# Doc\n"), nil
	}

	paths := make([]string, 10)
	for i := range paths {
		paths[i] = filepath.Join("docs", string(rune('a'+i))+".md")
	}
	results := o.Run(context.Background(), JobsForFiles(paths, 6, markdown.Options{}))

	assert.Len(t, results, 10)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	succeeded, failed := o.Stats()
	assert.Equal(t, 10, succeeded)
	assert.Zero(t, failed)
}

func TestRun_RendersWithJobOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md",
		"# Guide\n\nSee [site](https://example.com).\n\n<h2 id=\"raw\">Raw</h2>\n")

	logger, _ := test.NewNullLogger()
	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	o.EnableRendering(markdown.NewRenderer(logger), true, true)
	results := o.Run(context.Background(), []Job{
		{Path: path, MaxLevel: 6},
		{Path: path, MaxLevel: 6, Markdown: markdown.Options{NoHTML: true, RenderLinksAsExternal: true}},
	})
	require.Len(t, results, 2)

	passthrough, safe := results[0], results[1]
	require.NoError(t, passthrough.Error)
	require.NoError(t, safe.Error)

	assert.Equal(t, "* [Guide](#guide)\n\t* [Raw](#raw)\n", passthrough.Outline)
	assert.Equal(t, "* [Guide](#guide)\n", safe.Outline)

	assert.Contains(t, passthrough.HTML, `<h2 id="raw">Raw</h2>`)
	assert.NotContains(t, passthrough.HTML, `target="_blank"`)
	assert.NotContains(t, safe.HTML, `<h2 id="raw">`)
	assert.Contains(t, safe.HTML, `target="_blank"`)

	// Headings come from the source text either way
	assert.Equal(t, passthrough.Headings, safe.Headings)
}

func TestRun_RenderingDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "# Guide\n")

	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	results := o.Run(context.Background(), JobsForFiles([]string{path}, 6, markdown.Options{}))

	require.Len(t, results, 1)
	assert.Empty(t, results[0].Outline)
	assert.Empty(t, results[0].HTML)
}

func TestRun_OutlineOnlyAndNoHeadings(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "plain.md", "just text\n")

	logger, _ := test.NewNullLogger()
	o := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	o.EnableRendering(markdown.NewRenderer(logger), true, false)
	results := o.Run(context.Background(), JobsForFiles([]string{plain}, 6, markdown.Options{}))

	require.Len(t, results, 1)
	assert.True(t, results[0].Success())
	assert.Empty(t, results[0].Outline)
	assert.Empty(t, results[0].HTML)
}

func TestNewOrchestrator_RunID(t *testing.T) {
	o1 := NewOrchestrator(testAppConfig(nil), nil, testLogger())
	o2 := NewOrchestrator(testAppConfig(nil), nil, testLogger())

	assert.NotEmpty(t, o1.RunID())
	assert.NotEqual(t, o1.RunID(), o2.RunID())
	assert.Equal(t, o1.RunID(), o1.log.Data["run_id"])
}

func TestJobsForSets(t *testing.T) {
	dir := t.TempDir()
	guide := writeFile(t, dir, "guide.md", "# G")
	intro := writeFile(t, dir, "intro.md", "# I")
	writeFile(t, dir, "notes.txt", "not markdown")
	level := 2
	noHTML := true

	cfg := testAppConfig(map[string]config.DocumentSetConfig{
		"docs": {Paths: []string{filepath.Join(dir, "*.md"), guide}, MaxOutlineLevel: &level, NoHTML: &noHTML},
		"one":  {Paths: []string{intro}},
	})
	cfg.Markdown.RenderLinksAsExternal = true

	jobs, err := JobsForSets(cfg, []string{"one", "docs"})

	require.NoError(t, err)
	global := markdown.Options{RenderLinksAsExternal: true}
	docsOpts := markdown.Options{NoHTML: true, RenderLinksAsExternal: true}
	assert.Equal(t, []Job{
		{Path: intro, SetKey: "one", MaxLevel: 6, Markdown: global},
		{Path: guide, SetKey: "docs", MaxLevel: 2, Markdown: docsOpts},
		{Path: intro, SetKey: "docs", MaxLevel: 2, Markdown: docsOpts},
	}, jobs)
}

func TestJobsForSets_Errors(t *testing.T) {
	cfg := testAppConfig(map[string]config.DocumentSetConfig{
		"bad": {Paths: []string{"[invalid"}},
	})

	_, err := JobsForSets(cfg, []string{"missing"})
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
	assert.Contains(t, err.Error(), "missing")

	_, err = JobsForSets(cfg, []string{"bad"})
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
	assert.Contains(t, err.Error(), "bad pattern")
}

func TestValidateSetKeys(t *testing.T) {
	cfg := testAppConfig(map[string]config.DocumentSetConfig{
		"docs": {Paths: []string{"docs/*.md"}},
		"blog": {Paths: []string{"blog/*.md"}},
	})

	t.Run("all valid", func(t *testing.T) {
		assert.NoError(t, ValidateSetKeys(cfg, []string{"docs", "blog"}))
	})

	t.Run("one invalid", func(t *testing.T) {
		err := ValidateSetKeys(cfg, []string{"docs", "missing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
		assert.Contains(t, err.Error(), "[blog docs]")
	})

	t.Run("empty keys no error", func(t *testing.T) {
		assert.NoError(t, ValidateSetKeys(cfg, []string{}))
	})
}

func TestGetAllSetKeys(t *testing.T) {
	cfg := testAppConfig(map[string]config.DocumentSetConfig{
		"gamma": {Paths: []string{"g"}},
		"alpha": {Paths: []string{"a"}},
		"beta":  {Paths: []string{"b"}},
	})

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, GetAllSetKeys(cfg))
	assert.Empty(t, GetAllSetKeys(testAppConfig(nil)))
}
