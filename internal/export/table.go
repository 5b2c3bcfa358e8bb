package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"leadgen-engine/internal/domain"
)

type Mode int

const (
	ASCII Mode = iota
	Markdown
)

var tableColumns = []domain.Field{
	domain.FieldCompanyName,
	domain.FieldEmail,
	domain.FieldPhone,
	domain.FieldWebsite,
}

// RenderTable prints a compact view of the set: a few contact columns plus
// the relevance verdict.
func RenderTable(w io.Writer, set *domain.LeadSet, m Mode) error {
	t := table.NewWriter()
	if m == ASCII {
		t.SetStyle(table.StyleLight)
	}
	t.Style().Format.Footer = text.FormatDefault

	header := table.Row{"#"}
	for _, f := range tableColumns {
		header = append(header, string(f))
	}
	header = append(header, "confidence", "reason")
	t.AppendHeader(header)

	for i, r := range set.Records() {
		row := table.Row{i + 1}
		for _, f := range tableColumns {
			row = append(row, r.Get(f))
		}
		row = append(row, fmt.Sprintf("%.2f", r.Relevance.Confidence), r.Relevance.Reason)
		t.AppendRow(row)
	}

	s := Summarize(set)
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d leads", s.Total), "", "", "", fmt.Sprintf("%.2f", s.MeanConfidence), ""})

	n := len(tableColumns) + 3
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 32},
		{Number: 5, WidthMax: 40},
		{Number: n - 1, Align: text.AlignRight},
		{Number: n, WidthMax: 48},
	})

	var out string
	if m == Markdown {
		out = t.RenderMarkdown()
	} else {
		out = t.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
