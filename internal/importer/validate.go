package importer

import (
	"time"

	"trade-ledger-service/internal/models"
	"trade-ledger-service/internal/parsers"
	"trade-ledger-service/pkg/errors"
)

// Discard records one rejected row with enough detail to explain the
// rejection to the user. Discards are diagnostics, never errors: a file
// import only fails when every row is discarded.
type Discard struct {
	// RowIndex is the 1-based data-row position in the source file.
	RowIndex int              `json:"row_index"`
	Reason   errors.ErrorCode `json:"reason"`
	Field    string           `json:"field,omitempty"`
	Value    string           `json:"value,omitempty"`
}

// candidate is a row that passed the screening pass. Its price and type
// tokens are still raw: they are validated only after year inference, so
// the candidate must carry them through.
type candidate struct {
	rowIndex   int
	item       string
	game       string
	price      string
	priceCents string
	typeToken  string
	date       parsers.ParsedDate
}

// requiredColumns are checked in this order so the reported field for a
// multiply-broken row is deterministic.
var requiredColumns = []string{
	parsers.ColumnItem,
	parsers.ColumnGame,
	parsers.ColumnDate,
	parsers.ColumnType,
}

// screenRow runs the first validation pass over one raw row: required
// fields and the date token only. Price and type are not checked here; a
// row that fails on them must still anchor year inference for its
// neighbors, so those checks run in finalizeRow after inference.
func screenRow(config *parsers.ImportConfig, row parsers.RawRow) (candidate, *Discard) {
	for _, column := range requiredColumns {
		if row.Get(column) == "" {
			return candidate{}, &Discard{
				RowIndex: row.Index,
				Reason:   errors.CodeMissingField,
				Field:    column,
			}
		}
	}

	dateToken := row.Get(parsers.ColumnDate)
	parsed := parsers.ParseTransactionDate(dateToken)
	if parsed.Failed() {
		return candidate{}, &Discard{
			RowIndex: row.Index,
			Reason:   errors.CodeInvalidDate,
			Field:    parsers.ColumnDate,
			Value:    dateToken,
		}
	}
	if parsed.NeedsYearInference && !config.AssumeNewestFirst {
		// Without the newest-first assumption a year-less date cannot be
		// resolved, so the row is unparseable rather than guessed at.
		return candidate{}, &Discard{
			RowIndex: row.Index,
			Reason:   errors.CodeInvalidDate,
			Field:    parsers.ColumnDate,
			Value:    dateToken,
		}
	}

	return candidate{
		rowIndex:   row.Index,
		item:       row.Get(parsers.ColumnItem),
		game:       row.Get(parsers.ColumnGame),
		price:      row.Get(parsers.ColumnPrice),
		priceCents: row.Get(parsers.ColumnPriceCents),
		typeToken:  row.Get(parsers.ColumnType),
		date:       parsed,
	}, nil
}

// finalizeRow runs the second validation pass over a screened row once its
// date has been resolved: price and type, then the canonical record. Price
// is the only optional input; a row with neither price column present
// imports with zero cents.
func finalizeRow(cand candidate, date time.Time) (*models.Transaction, *Discard) {
	cents, err := parsers.ParsePriceCents(cand.price, cand.priceCents)
	if err != nil {
		value := cand.price
		if value == "" {
			value = cand.priceCents
		}
		return nil, &Discard{
			RowIndex: cand.rowIndex,
			Reason:   errors.CodeInvalidPrice,
			Field:    parsers.ColumnPrice,
			Value:    value,
		}
	}

	txType, err := models.ParseTransactionType(cand.typeToken)
	if err != nil {
		return nil, &Discard{
			RowIndex: cand.rowIndex,
			Reason:   errors.CodeInvalidType,
			Field:    parsers.ColumnType,
			Value:    cand.typeToken,
		}
	}

	return models.NewTransaction(cand.item, cand.game, date, cents, txType), nil
}
