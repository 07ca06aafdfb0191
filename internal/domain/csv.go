package domain

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column positions shared by the energy and water consumption files:
//
//	year,region,per_capita,dc_per_day
//	2001,Loudoun,"10.2","1,250"
const (
	ColumnYear      = 0
	ColumnRegion    = 1
	ColumnPerCapita = 2
	ColumnDC        = 3
)

// Schema names the column indices a consumption file is read with.
type Schema struct {
	Name            string
	YearColumn      int
	PerCapitaColumn int
	DCColumn        int
}

// EnergySchema reads MWh-per-capita and MWh-per-day columns.
var EnergySchema = Schema{
	Name:            "energy",
	YearColumn:      ColumnYear,
	PerCapitaColumn: ColumnPerCapita,
	DCColumn:        ColumnDC,
}

// WaterSchema reads gallons-per-capita and gallons-per-day columns.
var WaterSchema = Schema{
	Name:            "water",
	YearColumn:      ColumnYear,
	PerCapitaColumn: ColumnPerCapita,
	DCColumn:        ColumnDC,
}

func (s Schema) minFields() int {
	return max(s.YearColumn, s.PerCapitaColumn, s.DCColumn) + 1
}

// ConsumptionRecord is one validated CSV row.
type ConsumptionRecord struct {
	Year      int     `json:"year"`
	PerCapita float64 `json:"per_capita"`
	DCMetric  float64 `json:"dc_metric"`
}

// RejectedRow describes a line the parser dropped.
type RejectedRow struct {
	Line   int    `json:"line"` // 1-based, header is line 1
	Reason string `json:"reason"`
}

// ParseResult holds the accepted records in input order plus the rejects.
type ParseResult struct {
	Records  []ConsumptionRecord `json:"records"`
	Rejected []RejectedRow       `json:"rejected,omitempty"`
}

// ReadConsumptionCSV reads all of r and parses it with schema. The only error
// it returns is a read failure; malformed rows end up in ParseResult.Rejected.
func ReadConsumptionCSV(r io.Reader, schema Schema) (ParseResult, error) {
	var (
		result ParseResult
		lineNo int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue // header
		}
		parseLine(&result, lineNo, sc.Text(), schema)
	}
	if err := sc.Err(); err != nil {
		return result, fmt.Errorf("read %s csv: %w", schema.Name, err)
	}
	return result, nil
}

// ParseConsumptionCSV parses CSV text that is already in memory.
func ParseConsumptionCSV(text string, schema Schema) ParseResult {
	result, _ := ReadConsumptionCSV(strings.NewReader(text), schema) //nolint:errcheck // strings.Reader cannot fail
	return result
}

func parseLine(result *ParseResult, lineNo int, line string, schema Schema) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}

	rec, err := parseRecord(line, schema)
	if err != nil {
		result.Rejected = append(result.Rejected, RejectedRow{Line: lineNo, Reason: err.Error()})
		return
	}
	result.Records = append(result.Records, rec)
}

// parseRecord splits a single line and maps it onto the schema columns.
// Each line is read on its own so an unbalanced quote cannot swallow the
// lines that follow it.
func parseRecord(line string, schema Schema) (ConsumptionRecord, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	fields, err := r.Read()
	if err != nil {
		return ConsumptionRecord{}, fmt.Errorf("split fields: %w", err)
	}
	if len(fields) < schema.minFields() {
		return ConsumptionRecord{}, fmt.Errorf("expected at least %d fields, got %d", schema.minFields(), len(fields))
	}

	year, err := strconv.Atoi(cleanNumeric(fields[schema.YearColumn]))
	if err != nil {
		return ConsumptionRecord{}, fmt.Errorf("year %q: not an integer", fields[schema.YearColumn])
	}
	perCapita, err := parseMagnitude(fields[schema.PerCapitaColumn])
	if err != nil {
		return ConsumptionRecord{}, fmt.Errorf("per-capita: %w", err)
	}
	dc, err := parseMagnitude(fields[schema.DCColumn])
	if err != nil {
		return ConsumptionRecord{}, fmt.Errorf("dc: %w", err)
	}

	return ConsumptionRecord{Year: year, PerCapita: perCapita, DCMetric: dc}, nil
}

// cleanNumeric strips surrounding quotes, whitespace and thousands separators.
func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.ReplaceAll(s, ",", "")
}

// parseMagnitude parses a non-negative finite float.
func parseMagnitude(raw string) (float64, error) {
	s := cleanNumeric(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q is negative", raw)
	}
	return v, nil
}
