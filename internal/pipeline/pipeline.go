package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"fashionetl/internal/etlerr"
	"fashionetl/internal/loader"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
	"fashionetl/internal/transform"
)

const (
	OutcomeComplete = "complete"
	OutcomeDegraded = "degraded"
	OutcomeAborted  = "aborted"
)

const previewRows = 5

type Extractor interface {
	ScrapeAll(ctx context.Context) []model.RawProduct
}

type RunStore interface {
	Save(ctx context.Context, run model.Run) error
}

type Deps struct {
	// RunID is generated when empty.
	RunID        string
	Extractor    Extractor
	ExchangeRate float64
	// Sinks are written in order; a failing sink never stops the next one.
	Sinks []loader.Sink
	// Runs is optional.
	Runs RunStore
	Out  io.Writer
	Now  func() time.Time
}

type SinkResult struct {
	Name string
	Err  error
}

func (r SinkResult) OK() bool { return r.Err == nil }

type Summary struct {
	RunID      string
	Extracted  int
	Cleaned    int
	Sinks      []SinkResult
	Succeeded  int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Outcome is aborted when no sink was attempted, complete when every sink
// succeeded, degraded otherwise.
func (s Summary) Outcome() string {
	switch {
	case s.Total == 0:
		return OutcomeAborted
	case s.Succeeded == s.Total:
		return OutcomeComplete
	default:
		return OutcomeDegraded
	}
}

func (s Summary) Run() model.Run {
	return model.Run{
		ID:         s.RunID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Extracted:  s.Extracted,
		Cleaned:    s.Cleaned,
		SinksOK:    s.Succeeded,
		SinksTotal: s.Total,
		Outcome:    s.Outcome(),
	}
}

// Run executes extract, transform and load once. It never returns an error:
// every stage degrades on its own and the summary says how far it got.
func Run(ctx context.Context, deps Deps) (sum Summary) {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RunID == "" {
		deps.RunID = uuid.NewString()
	}
	out := deps.Out

	sum = Summary{RunID: deps.RunID, StartedAt: deps.Now()}
	defer func() {
		sum.FinishedAt = deps.Now()
		observability.RunDuration.Set(sum.FinishedAt.Sub(sum.StartedAt).Seconds())
		record(ctx, deps.Runs, sum)
	}()

	rule := strings.Repeat("=", 50)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "FASHION STUDIO ETL PIPELINE")
	fmt.Fprintln(out, rule)

	fmt.Fprintln(out, "\nStep 1: extracting products from the listing pages...")
	raw := deps.Extractor.ScrapeAll(ctx)
	sum.Extracted = len(raw)
	if len(raw) == 0 {
		fmt.Fprintln(out, "Extraction produced no products. Pipeline stopped.")
		return sum
	}
	fmt.Fprintf(out, "Extraction done: %d products found\n", len(raw))

	fmt.Fprintln(out, "\nStep 2: cleaning and transforming...")
	table, stats, err := transform.TransformWithStats(raw, deps.ExchangeRate)
	if err != nil {
		fmt.Fprintf(out, "Transform failed: %v\n", err)
	}
	for _, st := range stats.Stages {
		observability.RowsDropped.WithLabelValues(string(st.Stage)).Add(float64(st.Dropped))
	}
	sum.Cleaned = table.Len()
	observability.CleanRows.Set(float64(table.Len()))
	if table.Empty() {
		fmt.Fprintln(out, "Transform left no valid rows. Pipeline stopped.")
		return sum
	}
	fmt.Fprintf(out, "Transform done: %d clean rows\n", table.Len())
	renderStages(out, stats)
	fmt.Fprintln(out, "\nSample of the clean data:")
	renderPreview(out, table)

	fmt.Fprintln(out, "\nStep 3: loading into the repositories...")
	for _, sink := range deps.Sinks {
		fmt.Fprintf(out, "\nSaving to %s...\n", sink.Name())
		err := writeSink(ctx, sink, table)
		observability.RecordSink(sink.Name(), err)
		sum.Sinks = append(sum.Sinks, SinkResult{Name: sink.Name(), Err: err})
		sum.Total++
		if err != nil {
			fmt.Fprintf(out, "Error saving to %s: %v\n", sink.Name(), err)
			continue
		}
		sum.Succeeded++
	}

	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintln(out, "ETL PIPELINE SUMMARY")
	fmt.Fprintln(out, rule)
	renderSummary(out, sum)
	if sum.Outcome() == OutcomeComplete {
		fmt.Fprintln(out, "ETL pipeline finished successfully.")
	} else {
		fmt.Fprintln(out, "ETL pipeline finished with problems in the load step.")
	}
	fmt.Fprintln(out, rule)

	return sum
}

// writeSink turns a panicking sink into an ordinary failure so the
// remaining sinks still run.
func writeSink(ctx context.Context, sink loader.Sink, table model.Table) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = etlerr.Internal("sink "+sink.Name(), fmt.Errorf("panic: %v", r))
			slog.Error("sink panicked", "sink", sink.Name(), "err", err)
		}
	}()
	return sink.Write(ctx, table)
}

func record(ctx context.Context, runs RunStore, sum Summary) {
	if runs == nil {
		return
	}
	if err := runs.Save(ctx, sum.Run()); err != nil {
		slog.Warn("failed to record run", "run", sum.RunID, "err", err)
	}
}
