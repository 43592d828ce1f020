package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var centsFactor = decimal.NewFromInt(100)

// currencyStripper removes currency symbols and whitespace from a price
// token before decimal parsing.
var currencyStripper = strings.NewReplacer(
	"€", "",
	"$", "",
	"£", "",
	" ", "",
	"\t", "",
	"\u00a0", "",
)

// ParsePriceCents converts the heterogeneous price representations found in
// exports into an integer cent count. A non-empty price cell is treated as
// decimal currency ("€12.34", "12,34"); otherwise a non-empty price_cents
// cell is treated as an already-in-cents integer; both empty yields zero.
// Failures are returned, never panicked, and negative amounts are rejected.
func ParsePriceCents(price, priceCents string) (int64, error) {
	price = strings.TrimSpace(price)
	priceCents = strings.TrimSpace(priceCents)

	switch {
	case price != "":
		cleaned := normalizeDecimalSeparator(currencyStripper.Replace(price))
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return 0, fmt.Errorf("invalid price '%s': %w", price, err)
		}
		return centsFromDecimal(d.Mul(centsFactor), price)

	case priceCents != "":
		d, err := decimal.NewFromString(priceCents)
		if err != nil {
			return 0, fmt.Errorf("invalid cent amount '%s': %w", priceCents, err)
		}
		return centsFromDecimal(d, priceCents)

	default:
		return 0, nil
	}
}

// normalizeDecimalSeparator handles locale decimal commas: "12,34" becomes
// "12.34". When both separators appear the comma is a thousands separator
// and is dropped ("1,234.56" becomes "1234.56").
func normalizeDecimalSeparator(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	if strings.Contains(s, ".") {
		return strings.ReplaceAll(s, ",", "")
	}
	return strings.Replace(s, ",", ".", 1)
}

func centsFromDecimal(d decimal.Decimal, original string) (int64, error) {
	cents := d.Round(0).IntPart()
	if cents < 0 {
		return 0, fmt.Errorf("price cannot be negative: %s", original)
	}
	return cents, nil
}
