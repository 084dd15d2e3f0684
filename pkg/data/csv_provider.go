package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Date layouts tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	time.RFC3339,
}

// CSVProvider loads price tables from CSV files whose headers follow either
// supported naming scheme.
type CSVProvider struct{}

// NewCSVProvider creates a new CSV data provider.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{}
}

// GetName returns the name of the data provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadTable reads one CSV file into a normalized PriceTable. The symbol is
// taken from the file name unless the caller supplies one.
func (p *CSVProvider) LoadTable(filename, symbol string) (*PriceTable, error) {
	if symbol == "" {
		symbol = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}

	// Resolve each header position once; unknown columns are ignored.
	dateCol := -1
	colNames := make(map[int]string)
	for i, h := range header {
		canonical, ok := ResolveColumn(h)
		if !ok {
			continue
		}
		if canonical == ColDate {
			dateCol = i
			continue
		}
		colNames[i] = canonical
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("%w: date (%s)", ErrMissingColumn, symbol)
	}

	var dates []time.Time
	columns := make(map[string][]float64, len(colNames))

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %v", lineNum, err)
		}
		lineNum++

		date, err := parseDate(record[dateCol])
		if err != nil {
			log.Printf("⚠️ Invalid date '%s' at line %d, skipping: %v", record[dateCol], lineNum, err)
			continue
		}

		values := make(map[string]float64, len(colNames))
		bad := false
		for i, name := range colNames {
			if i >= len(record) {
				bad = true
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				log.Printf("⚠️ Invalid %s value '%s' at line %d, skipping", name, record[i], lineNum)
				bad = true
				break
			}
			values[name] = v
		}
		if bad {
			continue
		}

		dates = append(dates, date)
		for name, v := range values {
			columns[name] = append(columns[name], v)
		}
	}

	return NewPriceTable(symbol, dates, columns)
}

// LoadDir loads every *.csv under dir, one table per file.
func (p *CSVProvider) LoadDir(dir string) ([]*PriceTable, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	tables := make([]*PriceTable, 0, len(matches))
	for _, file := range matches {
		table, err := p.LoadTable(file, "")
		if err != nil {
			log.Printf("⚠️ Skipping %s: %v", file, err)
			continue
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no loadable CSV files in %s", dir)
	}
	return tables, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
