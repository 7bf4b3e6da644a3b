package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/blockbook/internal/block"
	"golang.org/x/net/html"
)

// CSVImporter turns a CSV file into a single table block. The first row is
// the header.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) ([]block.Block, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	attrs := map[string]any{
		"head": []any{tableRow(records[0])},
		"body": tableRows(records[1:]),
	}
	return []block.Block{block.New("core/table", attrs)}, nil
}

func tableRows(records [][]string) []any {
	rows := make([]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, tableRow(rec))
	}
	return rows
}

func tableRow(cells []string) map[string]any {
	out := make([]any, 0, len(cells))
	for _, c := range cells {
		out = append(out, map[string]any{"content": html.EscapeString(c), "tag": "td"})
	}
	return map[string]any{"cells": out}
}
