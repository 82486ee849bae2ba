// Package utils provides utility functions for the income recommendation engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"income-recommendation-engine/internal/models"
)

// FeatureCSVParser errors
var (
	ErrEmptyCSV        = errors.New("CSV content is empty")
	ErrMissingIDColumn = errors.New("missing required id column")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
)

// missingTokens are cell values treated as absent. Matches the model
// pipeline's export conventions.
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"na":   true,
}

// FeatureCSVParser parses client feature exports. The header row defines the
// feature names; the schema is not fixed here, only the id column is required.
type FeatureCSVParser struct {
	header []string
	idCol  int
}

// NewFeatureCSVParser creates a new feature CSV parser instance.
func NewFeatureCSVParser() *FeatureCSVParser {
	return &FeatureCSVParser{idCol: -1}
}

// ParseFeatures parses CSV content into one attribute map per row. Rows that
// cannot be parsed are reported as errors without aborting the batch.
func (p *FeatureCSVParser) ParseFeatures(content string) ([]models.ClientAttributes, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.readHeader(header); err != nil {
		return nil, []error{err}
	}

	var rows []models.ClientAttributes
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		attrs, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		rows = append(rows, attrs)
	}

	if len(rows) == 0 && len(parseErrors) == 0 {
		return nil, []error{ErrNoDataRows}
	}

	return rows, parseErrors
}

// readHeader stores normalized feature names and locates the id column.
func (p *FeatureCSVParser) readHeader(header []string) error {
	p.header = make([]string, len(header))
	p.idCol = -1

	for i, col := range header {
		name := strings.TrimSpace(col)
		p.header[i] = name
		if strings.EqualFold(name, "id") {
			p.idCol = i
		}
	}

	if p.idCol == -1 {
		return ErrMissingIDColumn
	}

	return nil
}

// parseRow converts one record into an attribute map: numerics coerced to
// float64, everything else kept as string, missing tokens skipped.
func (p *FeatureCSVParser) parseRow(record []string) (models.ClientAttributes, error) {
	if p.idCol >= len(record) {
		return nil, models.ErrMissingClientID
	}

	idValue := strings.TrimSpace(record[p.idCol])
	clientID, err := strconv.ParseInt(idValue, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid client id %q: %w", idValue, err)
	}

	attrs := models.ClientAttributes{"id": clientID}
	for i, cell := range record {
		if i == p.idCol || i >= len(p.header) || p.header[i] == "" {
			continue
		}

		value := strings.TrimSpace(cell)
		if missingTokens[strings.ToLower(value)] {
			continue
		}

		if num, err := parseNumeric(value); err == nil {
			attrs[p.header[i]] = num
		} else {
			attrs[p.header[i]] = value
		}
	}

	return attrs, nil
}

// parseNumeric parses a numeric cell, tolerating thousands separators.
func parseNumeric(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}
