// Package orchestrate extracts heading outlines from many documents in parallel.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Sriram-PR/doc-outline/pkg/config"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/outline"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// Job is one document to outline
type Job struct {
	Path     string
	SetKey   string // Empty for documents given directly
	MaxLevel int
	Markdown markdown.Options // Renderer options, used when rendering is enabled
}

// FileResult contains the outcome of outlining a single document
type FileResult struct {
	Job
	Headings []outline.HeadingEntry
	Outline  string // Markdown outline; empty unless outlines are enabled
	HTML     string // Rendered document; empty unless HTML is enabled
	Error    error
	Duration time.Duration
}

// Success reports whether the document was read and outlined.
func (r FileResult) Success() bool {
	return r.Error == nil
}

// Orchestrator manages parallel heading extraction over many documents
type Orchestrator struct {
	extractor *outline.Extractor
	log       *logrus.Entry
	runID     string
	sem       *semaphore.Weighted
	readFile  func(string) ([]byte, error)

	// Optional rendering, see EnableRendering
	renderer    outline.HTMLRenderer
	withOutline bool
	withHTML    bool

	// Per-run counters
	statsMu   sync.Mutex
	succeeded int
	failed    int
}

// NewOrchestrator creates an orchestrator bounded by appCfg.NumWorkers.
// A nil extractor selects the goldmark-backed default.
func NewOrchestrator(appCfg *config.AppConfig, extractor *outline.Extractor, log *logrus.Entry) *Orchestrator {
	if extractor == nil {
		extractor = outline.NewExtractor(nil)
	}
	workers := appCfg.NumWorkers
	if workers <= 0 {
		workers = config.DefaultNumWorkers
	}
	runID := uuid.New().String()

	return &Orchestrator{
		extractor: extractor,
		log:       log.WithFields(logrus.Fields{"component": "orchestrate", "run_id": runID}),
		runID:     runID,
		sem:       semaphore.NewWeighted(int64(workers)),
		readFile:  os.ReadFile,
	}
}

// SetReadFile replaces the function used to load documents. It must be called
// before Run.
func (o *Orchestrator) SetReadFile(readFile func(string) ([]byte, error)) {
	o.readFile = readFile
}

// EnableRendering makes Run also render each document with its job's
// Markdown options: the Markdown outline when withOutline is set and the full
// HTML when withHTML is set. It must be called before Run.
func (o *Orchestrator) EnableRendering(renderer outline.HTMLRenderer, withOutline, withHTML bool) {
	o.renderer = renderer
	o.withOutline = withOutline
	o.withHTML = withHTML
}

// RunID returns the identifier attached to this orchestrator's log entries.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run outlines every job and waits for completion. Results are returned in job
// order. Once ctx is done no further job is started; unstarted jobs carry the
// context error.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job) []FileResult {
	startTime := time.Now()
	o.log.Infof("Starting outline extraction of %d documents", len(jobs))

	results := make([]FileResult, len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(jobs); j++ {
				results[j] = FileResult{Job: jobs[j], Error: err}
				o.record(results[j])
			}
			o.log.Warnf("Stopped scheduling after %d of %d documents: %v", i, len(jobs), err)
			break
		}

		wg.Add(1)
		go func(idx int, j Job) {
			defer wg.Done()
			defer o.sem.Release(1)
			results[idx] = o.processFile(ctx, j)
			o.record(results[idx])
		}(i, job)
	}

	// Wait for all documents to complete
	wg.Wait()

	o.logSummary(results, time.Since(startTime))
	return results
}

// processFile reads and outlines a single document
func (o *Orchestrator) processFile(ctx context.Context, job Job) FileResult {
	startTime := time.Now()
	result := FileResult{Job: job}
	fileLog := o.log.WithField("file", job.Path)

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	data, err := o.readFile(job.Path)
	if err != nil {
		result.Error = err
		if !errors.Is(err, utils.ErrFilesystem) {
			result.Error = utils.WrapErrorf(fmt.Errorf("%w: %w", utils.ErrFilesystem, err), "reading '%s'", job.Path)
		}
		fileLog.WithField("error_category", utils.CategorizeError(result.Error)).Errorf("Failed to read document: %v", err)
		result.Duration = time.Since(startTime)
		return result
	}

	md := string(data)
	result.Headings = o.extractor.ExtractHeadings(md, job.MaxLevel)
	if o.renderer != nil {
		o.render(&result, md, fileLog)
	}
	result.Duration = time.Since(startTime)
	fileLog.Debugf("Extracted %d headings in %v", len(result.Headings), result.Duration)

	return result
}

// render fills the outline and HTML of a result. A document without h1-h4
// headings gets an empty outline.
func (o *Orchestrator) render(result *FileResult, md string, fileLog *logrus.Entry) {
	if o.withOutline {
		out, err := outline.MarkdownOutline(o.renderer, md, result.Markdown, result.MaxLevel)
		switch {
		case err == nil:
			result.Outline = out
		case errors.Is(err, utils.ErrEmptyInput):
			fileLog.Debug("No headings to outline")
		default:
			fileLog.WithField("error_category", utils.CategorizeError(err)).Warnf("Failed to render outline: %v", err)
		}
	}
	if o.withHTML {
		result.HTML = o.renderer.RenderHTML(md, result.Markdown)
	}
}

func (o *Orchestrator) record(r FileResult) {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	if r.Success() {
		o.succeeded++
	} else {
		o.failed++
	}
}

// Stats returns the number of succeeded and failed documents so far.
func (o *Orchestrator) Stats() (succeeded, failed int) {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	return o.succeeded, o.failed
}

// logSummary logs a summary of all extraction results
func (o *Orchestrator) logSummary(results []FileResult, totalDuration time.Duration) {
	totalHeadings := 0
	for _, r := range results {
		totalHeadings += len(r.Headings)
		if r.Error != nil {
			o.log.WithField("file", r.Path).Infof("FAILED: %v", r.Error)
		}
	}
	succeeded, failed := o.Stats()
	o.log.Infof("Outline extraction completed in %v: %d documents (%d success, %d failed), %d headings",
		totalDuration, len(results), succeeded, failed, totalHeadings)
}

// JobsForFiles builds one job per path with a shared outline depth and
// renderer options
func JobsForFiles(paths []string, maxLevel int, opts markdown.Options) []Job {
	jobs := make([]Job, 0, len(paths))
	for _, p := range paths {
		jobs = append(jobs, Job{Path: p, MaxLevel: maxLevel, Markdown: opts})
	}
	return jobs
}

// JobsForSets expands the path patterns of the named document sets into jobs.
// Sets are processed in the given order; paths within a set are sorted and
// deduplicated. Each job carries its set's effective depth and renderer
// options.
func JobsForSets(appCfg *config.AppConfig, setKeys []string) ([]Job, error) {
	if err := ValidateSetKeys(appCfg, setKeys); err != nil {
		return nil, err
	}

	var jobs []Job
	for _, key := range setKeys {
		setCfg := appCfg.DocumentSets[key]
		maxLevel := config.GetEffectiveMaxOutlineLevel(setCfg, *appCfg)
		mdOpts := config.GetEffectiveMarkdownOptions(setCfg, *appCfg)

		seen := make(map[string]bool)
		var paths []string
		for _, pattern := range setCfg.Paths {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: document set '%s' has a bad pattern '%s': %v",
					utils.ErrConfigValidation, key, pattern, err)
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					paths = append(paths, m)
				}
			}
		}
		sort.Strings(paths)

		for _, p := range paths {
			jobs = append(jobs, Job{Path: p, SetKey: key, MaxLevel: maxLevel, Markdown: mdOpts})
		}
	}
	return jobs, nil
}

// ValidateSetKeys checks that all provided set keys exist in the config
func ValidateSetKeys(appCfg *config.AppConfig, setKeys []string) error {
	for _, key := range setKeys {
		if _, exists := appCfg.DocumentSets[key]; !exists {
			return fmt.Errorf("%w: document set '%s' not found. Available sets: %v",
				utils.ErrConfigValidation, key, GetAllSetKeys(appCfg))
		}
	}
	return nil
}

// GetAllSetKeys returns all document set keys from the config, sorted
func GetAllSetKeys(appCfg *config.AppConfig) []string {
	keys := make([]string, 0, len(appCfg.DocumentSets))
	for k := range appCfg.DocumentSets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
