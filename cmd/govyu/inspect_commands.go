package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"govyu/internal/sheet"
	"govyu/internal/timestamp"
)

type columnSummary struct {
	Name  string   `json:"name"`
	Codes []string `json:"codes"`
	Cells int      `json:"cells"`
	First string   `json:"first_onset,omitempty"`
	Last  string   `json:"last_offset,omitempty"`
}

func newColumnsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "columns FILE",
		Short: "List the columns of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadSheet(args[0])
			if err != nil {
				return err
			}
			times := ctx.timeFormat()

			summaries := make([]columnSummary, 0, s.Len())
			rows := make([][]string, 0, s.Len())
			for _, col := range s.Columns() {
				summary := columnSummary{Name: col.Name, Codes: col.Codes(), Cells: col.Len()}
				if first, last, ok := col.Span(); ok {
					summary.First = formatInstant(first, times)
					summary.Last = formatInstant(last, times)
				}
				summaries = append(summaries, summary)
				rows = append(rows, []string{
					summary.Name,
					strings.Join(summary.Codes, ", "),
					strconv.Itoa(summary.Cells),
					summary.First,
					summary.Last,
				})
			}
			headers := []string{"Column", "Codes", "Cells", "First Onset", "Last Offset"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}
			return writeRows(cmd, ctx.outputFormat(), headers, rows, aligns, summaries)
		},
	}
}

func newCellsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cells FILE COLUMN",
		Short: "Print the cells of one column in ordinal order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadSheet(args[0])
			if err != nil {
				return err
			}
			cols, err := s.Lookup(args[1])
			if err != nil {
				return err
			}
			return writeTable(cmd, ctx.outputFormat(), ctx.timeFormat(), sheet.NewTable(cols[0]))
		},
	}
}

type activeCell struct {
	Column  string            `json:"column"`
	Active  bool              `json:"active"`
	Ordinal int               `json:"ordinal,omitempty"`
	Onset   string            `json:"onset,omitempty"`
	Offset  string            `json:"offset,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

func newAtCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "at FILE TIME [COLUMN...]",
		Short: "Show the cell active at TIME in each column",
		Long: "Show the cell active at TIME in each column (all columns when none are named).\n" +
			"TIME is HH:MM:SS:mmm or a millisecond count.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := timestamp.ParseFlexible(args[1])
			if err != nil {
				return err
			}
			s, err := ctx.loadSheet(args[0])
			if err != nil {
				return err
			}
			cols, err := s.Lookup(args[2:]...)
			if err != nil {
				return err
			}
			cells, err := s.CellsAt(at, args[2:]...)
			if err != nil {
				return err
			}
			times := ctx.timeFormat()

			results := make([]activeCell, 0, len(cells))
			rows := make([][]string, 0, len(cells))
			for i, cell := range cells {
				entry := activeCell{Column: cols[i].Name}
				if cell == nil {
					results = append(results, entry)
					rows = append(rows, []string{entry.Column, "", "", "", ""})
					continue
				}
				entry.Active = true
				entry.Ordinal = cell.Ordinal
				entry.Onset = formatInstant(cell.Onset, times)
				entry.Offset = formatInstant(cell.Offset, times)
				entry.Values = make(map[string]string, len(cols[i].Codes()))
				values := cell.Values()
				pairs := make([]string, 0, len(values))
				for j, code := range cols[i].Codes() {
					value := values[j]
					entry.Values[code] = value
					pairs = append(pairs, fmt.Sprintf("%s=%s", code, value))
				}
				results = append(results, entry)
				rows = append(rows, []string{
					entry.Column,
					strconv.Itoa(entry.Ordinal),
					entry.Onset,
					entry.Offset,
					strings.Join(pairs, " "),
				})
			}
			headers := []string{"Column", "Ordinal", "Onset", "Offset", "Values"}
			aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}
			return writeRows(cmd, ctx.outputFormat(), headers, rows, aligns, results)
		},
	}
}

func formatInstant(ts timestamp.Timestamp, format sheet.TimeFormat) string {
	if format == sheet.TimeMillis {
		return strconv.FormatInt(ts.Millis(), 10)
	}
	return ts.String()
}
