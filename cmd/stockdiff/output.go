package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"

	"stockdiff/internal/pipeline"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q (table, json, yaml)", s)
	}
}

func printReport(w io.Writer, report pipeline.Report, format outputFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		blob, err := yaml.MarshalWithOptions(report, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = w.Write(blob)
		return err
	default:
		return printTable(w, report)
	}
}

func printTable(w io.Writer, report pipeline.Report) error {
	s := report.Summary
	fmt.Fprintf(w, "%s: %s (key %q, qty %q)\n", report.SourceLabel, report.SourceName, report.SourceColumns.Key.Name, report.SourceColumns.Quantity.Name)
	fmt.Fprintf(w, "%s: %s (key %q, qty %q)\n", report.TargetLabel, report.TargetName, report.TargetColumns.Key.Name, report.TargetColumns.Quantity.Name)

	if len(report.Records) == 0 {
		fmt.Fprintf(w, "No differences: %d items match.\n", s.Matched)
		return nil
	}

	if err := renderTable(w, pipeline.ReportHeaders(report), pipeline.ReportRows(report)); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d differences: %d quantity mismatches, %d only in %s, %d only in %s (%d matched)\n",
		s.Discrepancies(), s.Mismatched, s.OnlyInSource, report.SourceLabel, s.OnlyInTarget, report.TargetLabel, s.Matched)
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	table.Header(head...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}
