package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"smart_crm_backend/internal/analytics/aggregate"
	dealdomain "smart_crm_backend/internal/deals/domain"

	"github.com/xuri/excelize/v2"
)

// Output formats for a report export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// section is one table of a report: its own sheet in XLSX, a block of rows
// in CSV. Cells hold string, int or float64 values.
type section struct {
	name   string
	header []string
	rows   [][]any
}

func profitabilitySections(p aggregate.Profitability, pipeline aggregate.PipelineSummary) []section {
	summary := section{
		name:   "Summary",
		header: []string{"section", "metric", "value"},
		rows: [][]any{
			{"period", "start_date", dayOr(p.Period.Start, "")},
			{"period", "end_date", dayOr(p.Period.End, "")},
			{"revenue", "total_revenue", p.Revenue.TotalRevenue},
			{"revenue", "deal_count", p.Revenue.DealCount},
			{"revenue", "average_deal_size", p.Revenue.AverageDealSize},
			{"costs", "fixed", p.Costs.Fixed},
			{"costs", "variable", p.Costs.Variable},
			{"costs", "labor", p.Costs.Labor},
			{"costs", "total", p.Costs.Total},
			{"profit", "net", p.Profit.Net},
			{"profit", "margin_percent", p.Profit.MarginPercent},
		},
	}
	for _, warning := range p.Warnings {
		summary.rows = append(summary.rows, []any{"warning", "", warning})
	}

	labor := section{
		name:   "Labor",
		header: []string{"user_id", "full_name", "hourly_rate", "billable_hours", "cost"},
	}
	for _, u := range p.Labor.ByUser {
		labor.rows = append(labor.rows, []any{u.UserID.String(), u.FullName, u.HourlyRate, u.BillableHours, u.Cost})
	}

	stages := section{
		name:   "Pipeline",
		header: []string{"stage", "count", "value", "weighted_value"},
	}
	for _, stage := range dealdomain.Stages {
		stages.rows = append(stages.rows, stageRow(string(stage), pipeline.ByStage[stage]))
	}
	if pipeline.Unrecognized.Count > 0 {
		stages.rows = append(stages.rows, stageRow("unrecognized", pipeline.Unrecognized))
	}

	return []section{summary, labor, stages}
}

func stageRow(name string, t aggregate.StageTotals) []any {
	return []any{name, t.Count, t.Value, t.WeightedValue}
}

func render(format string, sections []section) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return renderXLSX(sections)
	default:
		return renderCSV(sections)
	}
}

// renderCSV writes every section header and rows in turn, separated by a
// blank record.
func renderCSV(sections []section) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for i, s := range sections {
		if i > 0 {
			if err := w.Write([]string{""}); err != nil {
				return nil, err
			}
		}
		if err := w.Write(s.header); err != nil {
			return nil, err
		}
		for _, row := range s.rows {
			if err := w.Write(csvRecord(row)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRecord(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', 2, 64)
		case int:
			out[i] = strconv.Itoa(t)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

// renderXLSX writes one sheet per section with numeric cells kept numeric.
func renderXLSX(sections []section) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, s := range sections {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}

		header := make([]any, len(s.header))
		for j, h := range s.header {
			header[j] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(s.header), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(s.name, "A1", last, bold); err != nil {
			return nil, err
		}

		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
