// Package importer orchestrates the import pipeline: tokenize a
// trade-history export, validate each row, resolve year-less dates against
// the newest-first row order, and emit canonical transactions plus a
// discard list for everything that could not be salvaged.
package importer

import (
	"sort"
	"time"

	"trade-ledger-service/internal/models"
	"trade-ledger-service/internal/parsers"
	"trade-ledger-service/pkg/errors"
	"trade-ledger-service/pkg/logger"
)

// ImportResult is the outcome of importing one export file.
type ImportResult struct {
	// Source names the file or stream the rows came from.
	Source string `json:"source"`

	// RowCount is the number of non-empty data rows seen.
	RowCount int `json:"row_count"`

	// Records are the transactions that survived validation, in file order.
	Records []*models.Transaction `json:"records"`

	// Discards lists every rejected row with its reason.
	Discards []Discard `json:"discards"`
}

// ImportedCount returns the number of surviving records.
func (r *ImportResult) ImportedCount() int {
	return len(r.Records)
}

// DiscardsByReason aggregates the discard list by reason code.
func (r *ImportResult) DiscardsByReason() map[errors.ErrorCode]int {
	counts := make(map[errors.ErrorCode]int)
	for _, d := range r.Discards {
		counts[d.Reason]++
	}
	return counts
}

// DiscardSummary renders the discard list as an error summary, for callers
// that want a single printable line instead of the full diagnostic table.
func (r *ImportResult) DiscardSummary() *errors.ErrorSummary {
	errs := make([]*errors.LedgerError, 0, len(r.Discards))
	for _, d := range r.Discards {
		errs = append(errs, errors.ValidationError(d.Reason, d.Field, d.Value, nil).
			WithContext("row", d.RowIndex))
	}
	return errors.NewErrorSummary(errs)
}

// Importer runs the import pipeline for one configuration. It holds no
// per-file state, so a single Importer may process files concurrently.
type Importer struct {
	config *parsers.ImportConfig
	reader *parsers.CSVReader
	logger logger.Logger
}

// NewImporter creates an Importer with the given configuration. A nil
// configuration uses the defaults.
func NewImporter(config *parsers.ImportConfig) (*Importer, error) {
	if config == nil {
		config = parsers.DefaultImportConfig()
	}

	reader, err := parsers.NewCSVReader(config)
	if err != nil {
		return nil, err
	}

	return &Importer{
		config: config,
		reader: reader,
		logger: logger.GetGlobalLogger().WithComponent("importer"),
	}, nil
}

// ImportFile imports one export file from disk. The now instant anchors
// year inference and must not move between retries of the same file if
// results are to be reproducible.
func (im *Importer) ImportFile(path string, now time.Time) (*ImportResult, error) {
	rows, err := im.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return im.ImportRows(path, rows, now)
}

// ImportRows runs validation and year inference over already-tokenized
// rows. Partial failure is success: the result carries both records and
// discards, and only a file with zero surviving rows returns an error
// (alongside the result, whose discard list explains what was rejected).
func (im *Importer) ImportRows(source string, rows []parsers.RawRow, now time.Time) (*ImportResult, error) {
	result := &ImportResult{
		Source:   source,
		RowCount: len(rows),
		Records:  []*models.Transaction{},
		Discards: []Discard{},
	}

	if len(rows) == 0 {
		return result, errors.ImportError(errors.CodeNoValidRows, source, nil)
	}

	// First pass: required fields and date classification only. Rows with
	// year-less dates survive here and are resolved in order below.
	candidates := make([]candidate, 0, len(rows))
	for _, row := range rows {
		cand, discard := screenRow(im.config, row)
		if discard != nil {
			im.logDiscard(source, discard)
			result.Discards = append(result.Discards, *discard)
			continue
		}
		candidates = append(candidates, cand)
	}

	// Sequential year inference over the screened rows in file order.
	// Every screened row participates, including rows the second pass will
	// reject, so a bad price or type never shifts a neighbor's year.
	parsedDates := make([]parsers.ParsedDate, len(candidates))
	for i, cand := range candidates {
		parsedDates[i] = cand.date
	}
	dates := parsers.InferYears(parsedDates, now)

	// Second pass: price and type validation against the resolved date.
	for i, cand := range candidates {
		record, discard := finalizeRow(cand, dates[i])
		if discard != nil {
			im.logDiscard(source, discard)
			result.Discards = append(result.Discards, *discard)
			continue
		}
		result.Records = append(result.Records, record)
	}

	// Discards from both passes, back in file order for diagnostics.
	sort.Slice(result.Discards, func(i, j int) bool {
		return result.Discards[i].RowIndex < result.Discards[j].RowIndex
	})

	im.logger.WithFields(logger.Fields{
		"source":    source,
		"rows":      result.RowCount,
		"imported":  result.ImportedCount(),
		"discarded": len(result.Discards),
	}).Info("Import completed")

	if result.ImportedCount() == 0 {
		return result, errors.ImportError(errors.CodeNoValidRows, source, nil).
			WithContext("discarded", len(result.Discards))
	}

	return result, nil
}

func (im *Importer) logDiscard(source string, d *Discard) {
	im.logger.WithFields(logger.Fields{
		"source": source,
		"row":    d.RowIndex,
		"reason": string(d.Reason),
		"field":  d.Field,
	}).Debug("Discarded row")
}
