package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"govyu/internal/config"
	"govyu/internal/sheet"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(cmd *cobra.Command, header []string, rows [][]string) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func writeRows(cmd *cobra.Command, format string, header []string, rows [][]string, aligns []columnAlignment, jsonValue any) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(cmd, jsonValue)
	case config.FormatCSV:
		return writeCSV(cmd, header, rows)
	default:
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderTable(out, header, rows, aligns))
		return nil
	}
}

// tableJSON is the JSON shape of a tabular view.
type tableJSON struct {
	Header []string  `json:"header"`
	Codes  []string  `json:"codes"`
	Rows   []rowJSON `json:"rows"`
}

type rowJSON struct {
	Ordinal int               `json:"ordinal"`
	Onset   string            `json:"onset"`
	Offset  string            `json:"offset"`
	Values  map[string]string `json:"values"`
}

func writeTable(cmd *cobra.Command, format string, times sheet.TimeFormat, t *sheet.Table) error {
	header := t.Header()
	codes := t.Codes()
	records := t.Records(times)
	aligns := []columnAlignment{alignRight, alignRight, alignRight}

	payload := tableJSON{Header: header, Codes: codes, Rows: make([]rowJSON, 0, len(records))}
	for i, row := range t.Rows() {
		values := make(map[string]string, len(codes))
		for j, code := range codes {
			values[code] = row.Values[j]
		}
		payload.Rows = append(payload.Rows, rowJSON{
			Ordinal: row.Ordinal,
			Onset:   records[i][1],
			Offset:  records[i][2],
			Values:  values,
		})
	}
	return writeRows(cmd, format, header, records, aligns, payload)
}
