package pipeline

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"fashionetl/internal/model"
	"fashionetl/internal/transform"
)

func renderPreview(out io.Writer, t model.Table) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)

	header := table.Row{}
	for _, c := range model.Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)

	for _, r := range t.Head(previewRows) {
		row := table.Row{}
		for _, cell := range r.Strings() {
			row = append(row, cell)
		}
		tw.AppendRow(row)
	}

	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

func renderStages(out io.Writer, stats transform.Stats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Stage", "Dropped", "Remaining"})
	for _, st := range stats.Stages {
		tw.AppendRow(table.Row{st.Stage, st.Dropped, st.Remaining})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

func renderSummary(out io.Writer, sum Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendRow(table.Row{"Run", sum.RunID})
	tw.AppendRow(table.Row{"Extracted", fmt.Sprintf("%d products", sum.Extracted)})
	tw.AppendRow(table.Row{"Transformed", fmt.Sprintf("%d products", sum.Cleaned)})
	tw.AppendRow(table.Row{"Repositories", fmt.Sprintf("%d/%d", sum.Succeeded, sum.Total)})
	for _, s := range sum.Sinks {
		status := "ok"
		if !s.OK() {
			status = "failed"
		}
		tw.AppendRow(table.Row{"  " + s.Name, status})
	}
	tw.AppendRow(table.Row{"Outcome", sum.Outcome()})
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}
