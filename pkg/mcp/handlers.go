package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sriram-PR/doc-outline/pkg/anchor"
	"github.com/Sriram-PR/doc-outline/pkg/config"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/orchestrate"
	"github.com/Sriram-PR/doc-outline/pkg/outline"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// maxLevelArg reads the optional max_level argument, falling back to the
// configured outline depth.
func (s *Server) maxLevelArg(request mcp.CallToolRequest) (int, error) {
	level := request.GetInt("max_level", s.cfg.AppConfig.MaxOutlineLevel)
	if level < 1 || level > 6 {
		return 0, fmt.Errorf("max_level must be between 1 and 6, got %d", level)
	}
	return level, nil
}

// handleExtractHeadings handles the extract_headings tool
func (s *Server) handleExtractHeadings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := request.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("markdown parameter is required"), nil
	}
	maxLevel, err := s.maxLevelArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	startTime := time.Now()
	headings := s.extractor.ExtractHeadings(md, maxLevel)
	count := len(headings)
	if headings == nil {
		headings = []outline.HeadingEntry{}
	}
	if request.GetBool("nested", false) {
		headings = outline.Nest(headings)
	}

	result := map[string]interface{}{
		"headings":   headings,
		"count":      count,
		"max_level":  maxLevel,
		"elapsed_ms": time.Since(startTime).Milliseconds(),
	}

	// Headings never come from front matter, but its metadata is useful to callers
	fm, _, fmErr := markdown.SplitFrontMatter(md)
	if fm != nil {
		result["front_matter_end_line"] = fm.EndLine
		if fm.Fields != nil {
			result["front_matter"] = fm.Fields
		}
		if title := fm.Title(); title != "" {
			result["title"] = title
		}
	}
	if fmErr != nil {
		result["front_matter_error"] = fmErr.Error()
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleFindHeadingLine handles the find_heading_line tool
func (s *Server) handleFindHeadingLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := request.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("markdown parameter is required"), nil
	}
	anchorID := request.GetString("anchor_id", "")
	if anchorID == "" {
		return mcp.NewToolResultError("anchor_id parameter is required"), nil
	}
	maxLevel, err := s.maxLevelArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	line := s.extractor.FindHeadingLine(md, anchorID, maxLevel)

	result := map[string]interface{}{
		"anchor_id": anchorID,
		"line":      line,
		"found":     line >= 0,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleRenderOutline handles the render_outline tool
func (s *Server) handleRenderOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := request.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("markdown parameter is required"), nil
	}
	maxLevel, err := s.maxLevelArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := outline.MarkdownOutline(s.renderer, md, s.cfg.AppConfig.MarkdownOptions(), maxLevel)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyInput) {
			return mcp.NewToolResultError("document has no headings to outline"), nil
		}
		s.log.WithField("error_category", utils.CategorizeError(err)).Warnf("render_outline failed: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to render outline: %v", err)), nil
	}

	result := map[string]interface{}{
		"outline":   out,
		"max_level": maxLevel,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleRenderHTML handles the render_html tool
func (s *Server) handleRenderHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := request.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("markdown parameter is required"), nil
	}

	opts := s.cfg.AppConfig.MarkdownOptions()
	opts.NoHTML = request.GetBool("no_html", opts.NoHTML)
	opts.RenderLinksAsExternal = request.GetBool("external_links", opts.RenderLinksAsExternal)
	opts.AutoHeaderIdentifiers = request.GetBool("auto_ids", opts.AutoHeaderIdentifiers)

	html := s.renderer.RenderHTML(md, opts)

	result := map[string]interface{}{
		"html":        html,
		"html_length": len(html),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleSlugify handles the slugify tool
func (s *Server) handleSlugify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	result := map[string]interface{}{
		"text": text,
		"slug": anchor.Slug(text),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleListDocumentSets handles the list_document_sets tool
func (s *Server) handleListDocumentSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appCfg := s.cfg.AppConfig
	keys := orchestrate.GetAllSetKeys(appCfg)
	sets := make([]map[string]interface{}, 0, len(keys))

	for _, key := range keys {
		setCfg := appCfg.DocumentSets[key]
		setInfo := map[string]interface{}{
			"key":               key,
			"paths":             setCfg.Paths,
			"max_outline_level": config.GetEffectiveMaxOutlineLevel(setCfg, *appCfg),
		}
		if s.jobManager.IsRunning(key) {
			setInfo["status"] = "running"
		}
		sets = append(sets, setInfo)
	}

	result := map[string]interface{}{
		"document_sets": sets,
		"config_path":   s.cfg.ConfigPath,
		"total_sets":    len(sets),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleOutlineDocumentSet handles the outline_document_set tool
func (s *Server) handleOutlineDocumentSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setKey := request.GetString("set_key", "")
	if setKey == "" {
		return mcp.NewToolResultError("set_key parameter is required"), nil
	}

	jobs, err := orchestrate.JobsForSets(s.cfg.AppConfig, []string{setKey})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	job, created := s.jobManager.CreateJob(setKey)
	if !created {
		result := map[string]interface{}{
			"status":  "already_running",
			"message": "An outline job is already in progress for this set",
			"job_id":  job.ID,
			"set_key": setKey,
		}
		return mcp.NewToolResultText(formatJSON(result)), nil
	}

	s.jobManager.SetTotal(job.ID, len(jobs))
	go s.runOutlineJob(job.ID, jobs, request.GetBool("include_html", false))

	result := map[string]interface{}{
		"status":          "started",
		"job_id":          job.ID,
		"set_key":         setKey,
		"documents_total": len(jobs),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job := s.jobManager.GetJob(jobID)
	if job == nil {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}

	result := map[string]interface{}{
		"job_id":              job.ID,
		"set_key":             job.SetKey,
		"status":              job.Status,
		"run_id":              job.RunID,
		"started_at":          job.StartedAt.Format(time.RFC3339),
		"documents_total":     job.DocumentsTotal,
		"documents_processed": job.DocumentsProcessed,
	}
	if !job.CompletedAt.IsZero() {
		result["completed_at"] = job.CompletedAt.Format(time.RFC3339)
		result["duration_ms"] = job.CompletedAt.Sub(job.StartedAt).Milliseconds()
	}
	if job.ErrorMessage != "" {
		result["error"] = job.ErrorMessage
	}
	if job.Status == JobStatusCompleted {
		result["documents"] = job.Documents
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleListJobs handles the list_jobs tool
func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs := s.jobManager.ListJobs()
	list := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		info := map[string]interface{}{
			"job_id":              job.ID,
			"set_key":             job.SetKey,
			"status":              job.Status,
			"started_at":          job.StartedAt.Format(time.RFC3339),
			"documents_total":     job.DocumentsTotal,
			"documents_processed": job.DocumentsProcessed,
		}
		if job.ErrorMessage != "" {
			info["error"] = job.ErrorMessage
		}
		list = append(list, info)
	}

	result := map[string]interface{}{
		"jobs":       list,
		"total_jobs": len(list),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleCancelJob handles the cancel_job tool
func (s *Server) handleCancelJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job := s.jobManager.GetJob(jobID)
	if job == nil {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}
	if !s.jobManager.CancelJob(jobID) {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' is already %s", jobID, job.Status)), nil
	}
	s.log.WithField("job_id", jobID).Info("Outline job cancelled by request")

	result := map[string]interface{}{
		"job_id":  jobID,
		"set_key": job.SetKey,
		"status":  JobStatusCancelled,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// runOutlineJob runs an outline job in the background. Every document is
// rendered with its set's Markdown options to produce its outline, and its
// HTML when withHTML is set.
func (s *Server) runOutlineJob(jobID string, jobs []orchestrate.Job, withHTML bool) {
	s.jobManager.UpdateStatus(jobID, JobStatusRunning, "")
	jobCtx := s.jobManager.GetContext(jobID)
	jobLog := s.log.WithField("job_id", jobID)

	o := orchestrate.NewOrchestrator(s.cfg.AppConfig, s.extractor, jobLog)
	o.EnableRendering(s.renderer, true, withHTML)
	s.jobManager.SetRunID(jobID, o.RunID())
	results := o.Run(jobCtx, jobs)

	docs := make([]DocumentOutline, 0, len(results))
	for _, r := range results {
		doc := DocumentOutline{Path: r.Path, Headings: r.Headings, Outline: r.Outline, HTML: r.HTML}
		if r.Error != nil {
			doc.Error = r.Error.Error()
		}
		docs = append(docs, doc)
	}
	s.jobManager.SetDocuments(jobID, docs)

	if err := jobCtx.Err(); err != nil {
		s.jobManager.UpdateStatus(jobID, JobStatusCancelled, err.Error())
		jobLog.Info("Outline job cancelled")
		return
	}

	succeeded, failed := o.Stats()
	if succeeded == 0 && failed > 0 {
		s.jobManager.UpdateStatus(jobID, JobStatusFailed, fmt.Sprintf("all %d documents failed", failed))
		jobLog.Warn("Outline job failed")
		return
	}
	s.jobManager.UpdateStatus(jobID, JobStatusCompleted, "")
	jobLog.Infof("Outline job completed: %d documents, %d failed", len(results), failed)
}

// formatJSON formats data as an indented JSON string
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
