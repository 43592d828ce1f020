package parsers

import "strings"

// Canonical column keys produced by header normalization. Downstream code
// only ever looks rows up by these keys.
const (
	ColumnItem       = "item"
	ColumnGame       = "game"
	ColumnDate       = "date"
	ColumnPrice      = "price"
	ColumnPriceCents = "price_cents"
	ColumnType       = "type"
)

// headerSynonyms maps known marketplace export spellings to canonical keys.
// Lookup is performed on the lower-cased, trimmed header.
var headerSynonyms = map[string]string{
	"item name":      ColumnItem,
	"game name":      ColumnGame,
	"acted on":       ColumnDate,
	"price in cents": ColumnPriceCents,
	"type":           ColumnType,
}

// NormalizeHeader maps a raw header string to its canonical column key.
// Unrecognized headers pass through lower-cased and trimmed; they are
// ignored downstream rather than rejected.
func NormalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := headerSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// HeaderTransform builds a header normalization function that consults the
// given aliases before the built-in synonym table. Alias keys are matched
// case-insensitively, like the built-ins.
func HeaderTransform(aliases map[string]string) func(string) string {
	if len(aliases) == 0 {
		return NormalizeHeader
	}

	lowered := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		lowered[strings.ToLower(strings.TrimSpace(alias))] = canonical
	}

	return func(header string) string {
		normalized := strings.ToLower(strings.TrimSpace(header))
		if canonical, ok := lowered[normalized]; ok {
			return canonical
		}
		if canonical, ok := headerSynonyms[normalized]; ok {
			return canonical
		}
		return normalized
	}
}
