// =============================================================================
// SBA Report Converter - Conversion Engine
// =============================================================================
//
// This package is the record assembler shared by both report types. A
// ReportSpec describes one report declaratively: root tag, how input rows
// become records (one per row for counseling, one per event group for
// training), and how one record becomes a schema subtree. The engine runs
// the same loop for both: collect records, build each subtree, route every
// data problem through the issue tracker, and serialize the document once.
//
// Failure policy: anything wrong with a single record's data is recovered
// locally. The record is emitted with defaults, or skipped and counted when
// its primary identifier is missing. Only unreadable input and unwritable
// output fail the run.
//
// =============================================================================

package convert

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wbciowa/sba-converter/internal/config"
	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/internal/reader"
	"github.com/wbciowa/sba-converter/internal/xmltree"
)

// Context carries the collaborators every builder needs. It replaces the
// ambient logger/validator globals of earlier rewrites: tests construct a
// fresh Context and inspect its tracker afterwards.
type Context struct {
	Cfg     *config.Config
	Log     zerolog.Logger
	Tracker *issue.Tracker
}

// Record is one unit of output: a single row for counseling, or every row
// sharing an event ID for training.
type Record struct {
	ID    string
	Index int // 1-based input row index of the first row, for messages
	Rows  []reader.Row
}

// First returns the record's lead row, which carries the event-level
// fields for grouped records.
func (r Record) First() reader.Row {
	if len(r.Rows) == 0 {
		return reader.Row{}
	}
	return r.Rows[0]
}

// ReportSpec is the declarative description of one report type.
type ReportSpec struct {
	// Name identifies the report in logs and the Run.
	Name string

	// RootTag is the document root element.
	RootTag string

	// RootAttrs are attributes stamped on the root element.
	RootAttrs []xmltree.Attr

	// Collect turns the input table into ordered records. Rows rejected
	// here (missing primary identifier) are routed through the tracker and
	// counted as skipped, never emitted.
	Collect func(ctx *Context, t *reader.Table) ([]Record, int)

	// Build appends one record's subtree to root. A returned error marks
	// the record failed; the run continues.
	Build func(ctx *Context, root *xmltree.Node, rec Record) error
}

// Run is the result of one conversion invocation.
type Run struct {
	ID         string
	Report     string
	InputPath  string
	OutputPath string
	Attempted  int
	Succeeded  int
	Skipped    int
	Issues     []issue.Issue
	Summary    issue.Summary
}

// Converter executes one ReportSpec. Construct a fresh Converter per run;
// it owns its tracker and is not safe for concurrent use.
type Converter struct {
	spec ReportSpec
	ctx  *Context
}

// New creates a converter for the given spec with a fresh issue tracker.
func New(spec ReportSpec, cfg *config.Config, log zerolog.Logger) *Converter {
	return &Converter{
		spec: spec,
		ctx: &Context{
			Cfg:     cfg,
			Log:     log.With().Str("report", spec.Name).Logger(),
			Tracker: issue.NewTracker(),
		},
	}
}

// NewCounseling creates a converter for the Form 641 counseling report.
func NewCounseling(cfg *config.Config, log zerolog.Logger) *Converter {
	return New(CounselingSpec(), cfg, log)
}

// NewTraining creates a converter for the Management Training Report.
func NewTraining(cfg *config.Config, log zerolog.Logger) *Converter {
	return New(TrainingSpec(), cfg, log)
}

// Tracker exposes the run's issue tracker, mainly for tests and reporting.
func (c *Converter) Tracker() *issue.Tracker { return c.ctx.Tracker }

// Convert reads inputPath, assembles the report document, and writes it to
// outputPath. Record-level data problems become Issues on the returned Run;
// only input/output I/O failures return an error.
func (c *Converter) Convert(inputPath, outputPath string) (*Run, error) {
	ctx := c.ctx
	ctx.Log.Info().Str("input", inputPath).Msg("starting conversion")

	table, err := reader.Read(inputPath)
	if err != nil {
		ctx.Log.Error().Err(err).Msg("failed to read input file")
		ctx.Tracker.Add("file", issue.SeverityError, issue.FileAccess, "input_file",
			fmt.Sprintf("Failed to read input file: %v", err))
		return nil, err
	}
	ctx.Log.Info().Int("rows", len(table.Rows)).Msg("input file read")

	records, skipped := c.spec.Collect(ctx, table)

	root := xmltree.New(c.spec.RootTag)
	for _, a := range c.spec.RootAttrs {
		root.SetAttr(a.Name, a.Value)
	}

	for _, rec := range records {
		ctx.Tracker.SetCurrentRecord(rec.ID)
		if err := c.buildRecord(root, rec); err != nil {
			ctx.Log.Error().Err(err).Str("record", rec.ID).Msg("record failed")
			ctx.Tracker.Add(rec.ID, issue.SeverityError, issue.ProcessingError, "record",
				fmt.Sprintf("Unhandled error processing record: %v", err))
			ctx.Tracker.RecordProcessed(false)
			continue
		}
		ctx.Tracker.RecordProcessed(true)
	}

	if err := xmltree.WriteFile(outputPath, root); err != nil {
		ctx.Log.Error().Err(err).Msg("failed to write XML file")
		ctx.Tracker.Add("file", issue.SeverityError, issue.FileWrite, "output_file",
			fmt.Sprintf("Failed to write XML file: %v", err))
		return nil, err
	}

	summary := ctx.Tracker.Summarize()
	run := &Run{
		ID:         uuid.NewString(),
		Report:     c.spec.Name,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Attempted:  summary.TotalRecords,
		Succeeded:  summary.SuccessfulRecords,
		Skipped:    skipped,
		Issues:     ctx.Tracker.Issues(),
		Summary:    summary,
	}
	ctx.Log.Info().
		Int("succeeded", run.Succeeded).
		Int("skipped", run.Skipped).
		Str("output", outputPath).
		Msg("conversion complete")
	return run, nil
}

// buildRecord builds the record's subtree detached and attaches it only on
// success, so a half-built record never lands in the document. A panic in
// a builder is converted to an error and handled like any other failed
// record.
func (c *Converter) buildRecord(root *xmltree.Node, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while building record: %v", r)
		}
	}()

	staging := xmltree.New(c.spec.RootTag)
	if err := c.spec.Build(c.ctx, staging, rec); err != nil {
		return err
	}
	root.Children = append(root.Children, staging.Children...)
	return nil
}
