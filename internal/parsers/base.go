// Package parsers turns raw trade-history exports into validated values:
// a CSV reader that normalizes inconsistent headers into canonical row
// maps, a date parser that classifies heterogeneous date tokens, a
// sequential year inference pass for dates exported without a year, and a
// price parser that converts currency strings to integer cents.
//
// The pieces are deliberately free of shared state: every function is a
// pure transformation of its inputs, so files can be imported concurrently
// without locks.
package parsers

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"trade-ledger-service/pkg/errors"
	"trade-ledger-service/pkg/logger"
)

// RawRow is one data row keyed by canonical (normalized) header names.
// It is ephemeral: the row validator consumes it and emits either a
// canonical transaction or a discard.
type RawRow struct {
	// Index is the 1-based position of the row among the file's data rows,
	// used for discard diagnostics. Rows skipped as empty still count, so
	// the index lines up with the source file; fully blank lines do not,
	// because the underlying CSV reader drops them before they are seen.
	Index  int
	Fields map[string]string
}

// Get returns the trimmed cell value for a canonical column key, or the
// empty string when the column is absent.
func (r RawRow) Get(key string) string {
	return strings.TrimSpace(r.Fields[key])
}

// CSVReader reads a whole export into RawRows with normalized headers.
// The actual tokenization (quotes, embedded commas, newlines) is delegated
// to encoding/csv; this type installs the header transform and row shaping
// around it.
type CSVReader struct {
	config    *ImportConfig
	transform func(string) string
	logger    logger.Logger
}

// NewCSVReader creates a CSVReader for the given configuration.
func NewCSVReader(config *ImportConfig) (*CSVReader, error) {
	if config == nil {
		config = DefaultImportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "import_config", config, err)
	}

	return &CSVReader{
		config:    config,
		transform: HeaderTransform(config.ColumnAliases),
		logger:    logger.GetGlobalLogger().WithComponent("csv_reader"),
	}, nil
}

// ReadFile reads and tokenizes a CSV file from disk.
func (cr *CSVReader) ReadFile(path string) ([]RawRow, error) {
	cr.logger.WithField("file_path", path).Debug("Opening CSV file")

	content, err := os.ReadFile(path)
	if err != nil {
		cr.logger.WithError(err).WithField("file_path", path).Error("Failed to open CSV file")
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	return cr.Read(bytes.NewReader(content), path)
}

// Read tokenizes CSV content from a reader. The name is used only for
// diagnostics. An input with no lines at all is an empty-file error; a
// header line followed by no data rows yields an empty (non-nil) slice,
// which the orchestrator reports as "no valid rows".
func (cr *CSVReader) Read(r io.Reader, name string) ([]RawRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return nil, errors.ImportError(errors.CodeEmptyFile, name, nil)
	}

	if cr.config.ValidateEncoding && !utf8.Valid(content) {
		return nil, errors.FileError(errors.CodeEncodingError, name, nil)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = cr.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := cr.readHeaders(reader, name)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRow, 0)
	index := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			cr.logger.WithError(err).WithField("file", name).Warn("Failed to read CSV record")
			return nil, errors.ParseError(errors.CodeInvalidFormat, name, index+1, "record", "", err)
		}

		index++
		if isEmptyRecord(record) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				fields[header] = record[i]
			}
		}
		rows = append(rows, RawRow{Index: index, Fields: fields})
	}

	cr.logger.WithFields(logger.Fields{
		"file":      name,
		"headers":   headers,
		"row_count": len(rows),
	}).Debug("Tokenized CSV content")

	return rows, nil
}

// readHeaders consumes the header line and returns normalized column keys.
// Headerless files fall back to the canonical column order.
func (cr *CSVReader) readHeaders(reader *csv.Reader, name string) ([]string, error) {
	if !cr.config.HasHeader {
		return defaultColumns, nil
	}

	record, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ImportError(errors.CodeEmptyFile, name, nil)
	}
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, name, 1, "headers", "", err).
			WithSuggestion("Check the file format and ensure it's a valid CSV")
	}

	headers := make([]string, len(record))
	for i, header := range record {
		headers[i] = cr.transform(header)
	}
	return headers, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
