package importer

import (
	"os"
	"testing"
	"time"

	"trade-ledger-service/internal/models"
	"trade-ledger-service/internal/parsers"
	"trade-ledger-service/pkg/errors"
)

// fixed reference instant for deterministic year inference
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestImporter(t *testing.T, config *parsers.ImportConfig) *Importer {
	t.Helper()
	imp, err := NewImporter(config)
	if err != nil {
		t.Fatalf("Failed to create importer: %v", err)
	}
	return imp
}

func createTempCSVFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "import_*.csv")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()

	t.Cleanup(func() {
		os.Remove(tmpFile.Name())
	})

	return tmpFile.Name()
}

func TestImportFile_SynonymHeadersAndCentsColumn(t *testing.T) {
	imp := newTestImporter(t, nil)

	path := createTempCSVFile(t, "Item Name,Game Name,Acted On,Price in Cents,Type\nAK-47,CS2,15/01/2024,2850,purchase\n")
	result, err := imp.ImportFile(path, testNow)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	if result.ImportedCount() != 1 {
		t.Fatalf("Expected 1 record, got %d", result.ImportedCount())
	}

	record := result.Records[0]
	want := models.Transaction{
		Item:       "AK-47",
		Game:       "CS2",
		Date:       time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		PriceCents: 2850,
		Type:       models.TypePurchase,
	}
	if !record.Equals(&want) {
		t.Errorf("Record = %+v, want %+v", record, want)
	}
}

func TestImportRows_CurrencyPriceColumn(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{{
		Index: 1,
		Fields: map[string]string{
			parsers.ColumnItem:  "Mann Co. Key",
			parsers.ColumnGame:  "TF2",
			parsers.ColumnDate:  "15/01/2024",
			parsers.ColumnPrice: "€12.34",
			parsers.ColumnType:  "sale",
		},
	}}

	result, err := imp.ImportRows("keys.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}
	if result.Records[0].PriceCents != 1234 {
		t.Errorf("PriceCents = %d, want 1234", result.Records[0].PriceCents)
	}
}

func TestImportRows_YearInferenceAcrossBoundary(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithDate(1, "20 Jan"),
		rowWithDate(2, "15 Dec"),
	}

	result, err := imp.ImportRows("recent.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}

	if result.ImportedCount() != 2 {
		t.Fatalf("Expected 2 records, got %d", result.ImportedCount())
	}
	if got := result.Records[0].Date; got.Year() != 2025 || got.Month() != time.January || got.Day() != 20 {
		t.Errorf("First record date = %v, want 2025-01-20", got)
	}
	if got := result.Records[1].Date; got.Year() != 2024 || got.Month() != time.December || got.Day() != 15 {
		t.Errorf("Second record date = %v, want 2024-12-15", got)
	}
}

func TestImportRows_TypeNormalizationAndRejection(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithField(1, parsers.ColumnType, "Purchase"),
		rowWithField(2, parsers.ColumnType, "refund"),
	}

	result, err := imp.ImportRows("types.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}

	if result.ImportedCount() != 1 {
		t.Fatalf("Expected 1 record, got %d", result.ImportedCount())
	}
	if result.Records[0].Type != models.TypePurchase {
		t.Errorf("Type = %q, want purchase", result.Records[0].Type)
	}

	if len(result.Discards) != 1 {
		t.Fatalf("Expected 1 discard, got %d", len(result.Discards))
	}
	discard := result.Discards[0]
	if discard.Reason != errors.CodeInvalidType || discard.RowIndex != 2 || discard.Value != "refund" {
		t.Errorf("Discard = %+v, want invalid_type for row 2", discard)
	}
}

func TestImportRows_ImpossibleDateDiscarded(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithDate(1, "31/02/2024"),
		rowWithDate(2, "15/01/2024"),
	}

	result, err := imp.ImportRows("dates.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}

	if result.ImportedCount() != 1 {
		t.Fatalf("Expected 1 record, got %d", result.ImportedCount())
	}
	if len(result.Discards) != 1 {
		t.Fatalf("Expected 1 discard, got %d", len(result.Discards))
	}
	if result.Discards[0].Reason != errors.CodeInvalidDate || result.Discards[0].Value != "31/02/2024" {
		t.Errorf("Discard = %+v, want unparseable_date for 31/02/2024", result.Discards[0])
	}
}

func TestImportRows_DiscardReasons(t *testing.T) {
	imp := newTestImporter(t, nil)

	tests := []struct {
		name       string
		mutate     func(map[string]string)
		wantReason errors.ErrorCode
		wantField  string
	}{
		{
			"Missing item",
			func(f map[string]string) { delete(f, parsers.ColumnItem) },
			errors.CodeMissingField, parsers.ColumnItem,
		},
		{
			"Whitespace game",
			func(f map[string]string) { f[parsers.ColumnGame] = "   " },
			errors.CodeMissingField, parsers.ColumnGame,
		},
		{
			"Missing date",
			func(f map[string]string) { delete(f, parsers.ColumnDate) },
			errors.CodeMissingField, parsers.ColumnDate,
		},
		{
			"Garbage date",
			func(f map[string]string) { f[parsers.ColumnDate] = "not a date" },
			errors.CodeInvalidDate, parsers.ColumnDate,
		},
		{
			"Garbage price",
			func(f map[string]string) { f[parsers.ColumnPrice] = "free" },
			errors.CodeInvalidPrice, parsers.ColumnPrice,
		},
		{
			"Missing type",
			func(f map[string]string) { delete(f, parsers.ColumnType) },
			errors.CodeMissingField, parsers.ColumnType,
		},
		{
			"Bad type",
			func(f map[string]string) { f[parsers.ColumnType] = "trade" },
			errors.CodeInvalidType, parsers.ColumnType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(fields)
			rows := []parsers.RawRow{
				{Index: 1, Fields: fields},
				{Index: 2, Fields: validFields()},
			}

			result, err := imp.ImportRows("mixed.csv", rows, testNow)
			if err != nil {
				t.Fatalf("ImportRows failed: %v", err)
			}

			if result.ImportedCount() != 1 {
				t.Fatalf("Expected healthy row to survive, got %d records", result.ImportedCount())
			}
			if len(result.Discards) != 1 {
				t.Fatalf("Expected 1 discard, got %d", len(result.Discards))
			}
			discard := result.Discards[0]
			if discard.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", discard.Reason, tt.wantReason)
			}
			if discard.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", discard.Field, tt.wantField)
			}
		})
	}
}

func TestImportRows_RejectedRowsStillAnchorInference(t *testing.T) {
	imp := newTestImporter(t, nil)

	// A row discarded for its price or type still carries a resolved date,
	// and that date must anchor the years of its year-less neighbors.
	tests := []struct {
		name       string
		mutate     func(map[string]string)
		wantReason errors.ErrorCode
	}{
		{
			"Invalid type",
			func(f map[string]string) { f[parsers.ColumnType] = "refund" },
			errors.CodeInvalidType,
		},
		{
			"Invalid price",
			func(f map[string]string) { f[parsers.ColumnPrice] = "free" },
			errors.CodeInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor := validFields()
			anchor[parsers.ColumnDate] = "15/06/2023"
			tt.mutate(anchor)

			rows := []parsers.RawRow{
				{Index: 1, Fields: anchor},
				rowWithDate(2, "20 Jan"),
			}

			result, err := imp.ImportRows("anchored.csv", rows, testNow)
			if err != nil {
				t.Fatalf("ImportRows failed: %v", err)
			}

			if result.ImportedCount() != 1 {
				t.Fatalf("Expected 1 record, got %d", result.ImportedCount())
			}
			got := result.Records[0].Date
			if got.Year() != 2023 || got.Month() != time.January || got.Day() != 20 {
				t.Errorf("Inferred date = %v, want 2023-01-20", got)
			}

			if len(result.Discards) != 1 {
				t.Fatalf("Expected 1 discard, got %d", len(result.Discards))
			}
			discard := result.Discards[0]
			if discard.Reason != tt.wantReason || discard.RowIndex != 1 {
				t.Errorf("Discard = %+v, want %s for row 1", discard, tt.wantReason)
			}
		})
	}
}

func TestImportRows_MissingPriceImportsAsZero(t *testing.T) {
	imp := newTestImporter(t, nil)

	fields := validFields()
	delete(fields, parsers.ColumnPrice)
	delete(fields, parsers.ColumnPriceCents)

	result, err := imp.ImportRows("gift.csv", []parsers.RawRow{{Index: 1, Fields: fields}}, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}
	if result.Records[0].PriceCents != 0 {
		t.Errorf("PriceCents = %d, want 0", result.Records[0].PriceCents)
	}
}

func TestImportRows_AllRowsDiscarded(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithDate(1, "garbage"),
		rowWithField(2, parsers.ColumnType, "refund"),
	}

	result, err := imp.ImportRows("broken.csv", rows, testNow)
	if !errors.HasCode(err, errors.CodeNoValidRows) {
		t.Fatalf("Expected no_valid_rows, got %v", err)
	}
	if result == nil || len(result.Discards) != 2 {
		t.Fatalf("Expected result with 2 discards alongside the error, got %+v", result)
	}
}

func TestImportRows_EmptyRowSet(t *testing.T) {
	imp := newTestImporter(t, nil)

	_, err := imp.ImportRows("header_only.csv", nil, testNow)
	if !errors.HasCode(err, errors.CodeNoValidRows) {
		t.Errorf("Expected no_valid_rows for empty row set, got %v", err)
	}
}

func TestImportFile_EmptyFileIsFatal(t *testing.T) {
	imp := newTestImporter(t, nil)

	path := createTempCSVFile(t, "")
	_, err := imp.ImportFile(path, testNow)
	if !errors.HasCode(err, errors.CodeEmptyFile) {
		t.Errorf("Expected empty_file, got %v", err)
	}
}

func TestImportFile_HeaderOnlyReportsNoValidRows(t *testing.T) {
	imp := newTestImporter(t, nil)

	path := createTempCSVFile(t, "Item Name,Game Name,Acted On,Type\n")
	_, err := imp.ImportFile(path, testNow)
	if !errors.HasCode(err, errors.CodeNoValidRows) {
		t.Errorf("Expected no_valid_rows for header-only file, got %v", err)
	}
}

func TestImportRows_YearlessDatesRequireNewestFirst(t *testing.T) {
	config := parsers.DefaultImportConfig()
	config.AssumeNewestFirst = false
	imp := newTestImporter(t, config)

	rows := []parsers.RawRow{
		rowWithDate(1, "20 Jan"),
		rowWithDate(2, "15/01/2024"),
	}

	result, err := imp.ImportRows("unordered.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}

	if result.ImportedCount() != 1 {
		t.Fatalf("Expected only the dated row to survive, got %d", result.ImportedCount())
	}
	if len(result.Discards) != 1 || result.Discards[0].Reason != errors.CodeInvalidDate {
		t.Errorf("Expected year-less row discarded as unparseable_date, got %+v", result.Discards)
	}
}

func TestImportRows_Idempotent(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithDate(1, "20 Jan"),
		rowWithDate(2, "15 Dec"),
		rowWithDate(3, "2024-01-15T10:30:00Z"),
	}

	first, err := imp.ImportRows("repeat.csv", rows, testNow)
	if err != nil {
		t.Fatalf("First import failed: %v", err)
	}
	second, err := imp.ImportRows("repeat.csv", rows, testNow)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}

	if len(first.Records) != len(second.Records) {
		t.Fatal("Expected identical record counts across runs")
	}
	for i := range first.Records {
		if !first.Records[i].Equals(second.Records[i]) {
			t.Errorf("Record %d differs between runs: %v vs %v",
				i, first.Records[i], second.Records[i])
		}
	}
}

func TestImportRows_DiscardsByReason(t *testing.T) {
	imp := newTestImporter(t, nil)

	rows := []parsers.RawRow{
		rowWithDate(1, "garbage"),
		rowWithDate(2, "nonsense"),
		rowWithField(3, parsers.ColumnType, "refund"),
		{Index: 4, Fields: validFields()},
	}

	result, err := imp.ImportRows("summary.csv", rows, testNow)
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}

	counts := result.DiscardsByReason()
	if counts[errors.CodeInvalidDate] != 2 {
		t.Errorf("unparseable_date count = %d, want 2", counts[errors.CodeInvalidDate])
	}
	if counts[errors.CodeInvalidType] != 1 {
		t.Errorf("invalid_type count = %d, want 1", counts[errors.CodeInvalidType])
	}

	summary := result.DiscardSummary()
	if summary.Total != 3 {
		t.Errorf("Summary total = %d, want 3", summary.Total)
	}
	if !summary.HasCode(errors.CodeInvalidType) {
		t.Error("Expected summary to contain invalid_type")
	}
	if summary.ByCode[errors.CodeInvalidDate] != 2 {
		t.Errorf("Summary unparseable_date count = %d, want 2", summary.ByCode[errors.CodeInvalidDate])
	}
}

func validFields() map[string]string {
	return map[string]string{
		parsers.ColumnItem:  "AK-47",
		parsers.ColumnGame:  "CS2",
		parsers.ColumnDate:  "15/01/2024",
		parsers.ColumnPrice: "12.34",
		parsers.ColumnType:  "sale",
	}
}

func rowWithDate(index int, date string) parsers.RawRow {
	fields := validFields()
	fields[parsers.ColumnDate] = date
	return parsers.RawRow{Index: index, Fields: fields}
}

func rowWithField(index int, column, value string) parsers.RawRow {
	fields := validFields()
	fields[column] = value
	return parsers.RawRow{Index: index, Fields: fields}
}
