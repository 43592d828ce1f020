package parsers

import "fmt"

// ImportConfig holds configuration for reading one trade-history export.
type ImportConfig struct {
	// HasHeader is true when the first line names the columns. Without a
	// header the canonical column order is assumed.
	HasHeader bool `json:"has_header"`

	// Delimiter separates fields; marketplace exports use commas.
	Delimiter rune `json:"delimiter"`

	// ColumnAliases layers extra header spellings over the built-in
	// synonym table, mapping raw header to canonical key.
	ColumnAliases map[string]string `json:"column_aliases,omitempty"`

	// AssumeNewestFirst enables sequential year inference, which relies on
	// the export running from most recent to oldest row. When false,
	// year-less dates are discarded instead of guessed.
	AssumeNewestFirst bool `json:"assume_newest_first"`

	// ValidateEncoding rejects files that are not valid UTF-8.
	ValidateEncoding bool `json:"validate_encoding"`
}

// DefaultImportConfig returns a configuration with sensible defaults for
// Steam Market style exports.
func DefaultImportConfig() *ImportConfig {
	return &ImportConfig{
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases:     map[string]string{},
		AssumeNewestFirst: true,
		ValidateEncoding:  true,
	}
}

// Validate checks if the import configuration is valid
func (c *ImportConfig) Validate() error {
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}

	for alias, canonical := range c.ColumnAliases {
		if alias == "" {
			return fmt.Errorf("column alias cannot be empty")
		}
		switch canonical {
		case ColumnItem, ColumnGame, ColumnDate, ColumnPrice, ColumnPriceCents, ColumnType:
		default:
			return fmt.Errorf("column alias '%s' targets unknown canonical column '%s'", alias, canonical)
		}
	}

	return nil
}

// defaultColumns is the assumed column order for headerless files.
var defaultColumns = []string{ColumnItem, ColumnGame, ColumnDate, ColumnPrice, ColumnType}
