package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"paperlens/internal/docpack"
	"paperlens/internal/render"
	"paperlens/internal/toc"
	"paperlens/internal/walker"
)

// Worker processes a single conversion job.
type Worker struct {
	log        *slog.Logger
	renderOpts render.Options
	tocOpts    toc.Options
}

func NewWorker(log *slog.Logger, renderOpts render.Options, tocOpts toc.Options) *Worker {
	return &Worker{
		log:        log,
		renderOpts: renderOpts,
		tocOpts:    tocOpts,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse the package.
	job.SetStatus(StatusParsing, "parsing")
	data := job.FileData()
	pkg, err := docpack.Open(data)
	if err != nil {
		log.Error("package open failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if ctx.Err() != nil {
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 2: Walk the document tree. Walk failures degrade to the
	// text-only renderer rather than failing the job outright.
	job.SetStatus(StatusWalking, "walking")
	doc, err := walker.Walk(pkg)
	if err != nil {
		log.Warn("walk failed, trying basic renderer", "error", err)
		job.AddError(fmt.Sprintf("walk: %s", err))
		w.processFallback(job, data)
		return
	}
	if ctx.Err() != nil {
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 3: Render HTML.
	job.SetStatus(StatusRendering, "rendering")
	renderer := render.New(pkg, w.renderOpts)
	fragment := renderer.Fragment(doc)
	stats := renderer.Stats()
	log.Info("rendered document",
		"images", stats.Images,
		"inline_math", stats.InlineMath,
		"display_math", stats.DisplayMath)
	if ctx.Err() != nil {
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 4: Classify chapters.
	job.SetStatus(StatusClassifying, "classifying")
	chapters := toc.Classify(doc.Blocks, w.tocOpts)
	log.Info("classified chapters", "chapters", len(chapters))

	job.SetResult(&Result{HTML: fragment, Chapters: chapters, Stats: stats})
	job.SetStatus(StatusCompleted, "done")
}

// processFallback renders what it can through the simpler reader. Success
// ends the job partial, with an empty chapter tree.
func (w *Worker) processFallback(job *Job, data []byte) {
	html, err := render.BasicHTML(data)
	if err != nil {
		w.log.Error("basic render failed", "job_id", job.ID, "error", err)
		job.AddError(fmt.Sprintf("basic render: %s", err))
		job.SetStatus(StatusFailed, "walking")
		return
	}
	job.SetResult(&Result{HTML: html, Chapters: []*toc.Node{}, Fallback: true})
	job.SetStatus(StatusPartial, "done")
}
