package parsers

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MonthDay carries the month and day of a date whose year is unknown and
// must be reconstructed by the year inference pass.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParsedDate is the result of classifying and parsing one date token.
// Exactly one of Resolved / NeedsYearInference is set for a successful
// parse; both unset means the token could not be parsed at all.
type ParsedDate struct {
	Resolved           *time.Time
	HasTime            bool
	NeedsYearInference bool
	MonthDay           MonthDay
}

// Failed reports a terminal parse failure: no resolved date and no
// month/day pair to infer a year for.
func (p ParsedDate) Failed() bool {
	return p.Resolved == nil && !p.NeedsYearInference
}

func resolved(t time.Time, hasTime bool) ParsedDate {
	return ParsedDate{Resolved: &t, HasTime: hasTime}
}

func parseFailure(hasTime bool) ParsedDate {
	return ParsedDate{HasTime: hasTime}
}

// Month name tables cover the Portuguese and English spellings seen in
// marketplace exports, both 3-letter abbreviations and full names.
var monthNames = map[string]time.Month{
	// Portuguese
	"jan": time.January, "janeiro": time.January,
	"fev": time.February, "fevereiro": time.February,
	"mar": time.March, "março": time.March,
	"abr": time.April, "abril": time.April,
	"mai": time.May, "maio": time.May,
	"jun": time.June, "junho": time.June,
	"jul": time.July, "julho": time.July,
	"ago": time.August, "agosto": time.August,
	"set": time.September, "setembro": time.September,
	"out": time.October, "outubro": time.October,
	"nov": time.November, "novembro": time.November,
	"dez": time.December, "dezembro": time.December,
	// English (where spellings differ)
	"january": time.January,
	"feb":     time.February, "february": time.February,
	"march": time.March,
	"apr":   time.April, "april": time.April,
	"may":  time.May,
	"june": time.June,
	"july": time.July,
	"aug":  time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"november": time.November,
	"dec":      time.December, "december": time.December,
}

// isoLayouts are tried for tokens carrying an ISO-8601 marker ('T' or 'Z').
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02Z",
}

// fallbackLayouts are tried for tokens that match none of the recognized
// lexical shapes.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseTransactionDate classifies a single date token by lexical shape and
// parses it. It is total: any input yields a resolved date, a month/day
// pair flagged for year inference, or an explicit failure. It never panics
// and keeps no state between calls.
func ParseTransactionDate(token string) ParsedDate {
	cleaned := strings.TrimSpace(token)
	if cleaned == "" {
		return parseFailure(false)
	}

	// ISO instants take priority over everything else.
	if strings.ContainsAny(cleaned, "TZ") && !containsLetterOtherThan(cleaned, 'T', 'Z') {
		return parseISODate(cleaned)
	}

	if strings.Contains(cleaned, "/") {
		return parseNumericDate(cleaned)
	}

	if containsLetter(cleaned) {
		return parseNamedMonthDate(cleaned)
	}

	return parseFallbackDate(cleaned)
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// containsLetterOtherThan reports whether s has any letter besides the
// given ones. Used to keep named-month dates like "Tuesday 20 Aug" out of
// the ISO branch even though they contain a 'T'.
func containsLetterOtherThan(s string, allowed ...rune) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		ok := false
		for _, a := range allowed {
			if r == a {
				ok = true
				break
			}
		}
		if !ok {
			return true
		}
	}
	return false
}

func parseISODate(token string) ParsedDate {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return resolved(t, true)
		}
	}
	return parseFailure(true)
}

// civilDate constructs a date and verifies it round-trips: time.Date
// normalizes out-of-range components (Feb 31 becomes Mar 2), so the
// components are compared back to reject impossible dates.
func civilDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func normalizeTwoDigitYear(year, pivot int) int {
	if year >= 100 {
		return year
	}
	if year <= pivot {
		return year + 2000
	}
	return year + 1900
}

// parseNumericDate handles slash-separated dates such as "15/01/2024",
// "15/01/24" and "15/01/2024 18:30:05". The day/month/year interpretation
// is tried first; if the day is out of range for the month, the first two
// tokens are retried swapped as month/day/year. A date invalid under both
// interpretations is a failure.
func parseNumericDate(token string) ParsedDate {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '/' || r == ' ' || r == ',' || r == '\t'
	})

	if len(parts) < 3 {
		return parseFailure(false)
	}

	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return parseFailure(false)
	}

	year = normalizeTwoDigitYear(year, 50)

	date, ok := civilDate(year, time.Month(second), first)
	if !ok {
		date, ok = civilDate(year, time.Month(first), second)
	}
	if !ok {
		return parseFailure(false)
	}

	hasTime := false
	if len(parts) >= 4 && strings.Contains(parts[3], ":") {
		date = date.Add(parseClock(parts[3]))
		hasTime = true
	}

	return resolved(date, hasTime)
}

// parseClock converts "HH:MM" or "HH:MM:SS" into a duration past midnight.
// Unparseable components count as zero.
func parseClock(token string) time.Duration {
	fields := strings.Split(token, ":")
	var h, m, s int
	if len(fields) >= 2 {
		h, _ = strconv.Atoi(fields[0])
		m, _ = strconv.Atoi(fields[1])
	}
	if len(fields) >= 3 {
		s, _ = strconv.Atoi(fields[2])
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// parseNamedMonthDate handles dates spelled with a month name, in either
// Portuguese or English: "20 Aug", "Aug 20", "20 de agosto de 2024",
// "August 20, 2024". Day and year are picked out of the remaining tokens
// independent of position. A missing day defaults to 1; a missing year
// flags the result for sequential year inference.
func parseNamedMonthDate(token string) ParsedDate {
	cleaned := strings.ReplaceAll(strings.ToLower(token), ",", "")
	parts := strings.Fields(cleaned)

	if len(parts) < 2 {
		return parseFailure(false)
	}

	var month time.Month
	for _, part := range parts {
		if m, ok := monthNames[part]; ok {
			month = m
			break
		}
	}
	if month == 0 {
		return parseFailure(false)
	}

	day := 0
	year := -1
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if n >= 1 && n <= 31 && day == 0 {
			day = n
		} else if n >= 1900 || (n >= 0 && n <= 99) {
			year = n
		}
	}

	if day == 0 {
		day = 1
	}

	if year < 0 {
		if _, ok := civilDate(2024, month, day); !ok { // leap year accepts Feb 29
			return parseFailure(false)
		}
		return ParsedDate{
			NeedsYearInference: true,
			MonthDay:           MonthDay{Month: month, Day: day},
		}
	}

	year = normalizeTwoDigitYear(year, 30)

	date, ok := civilDate(year, month, day)
	if !ok {
		return parseFailure(false)
	}
	return resolved(date, false)
}

func parseFallbackDate(token string) ParsedDate {
	hasTime := strings.Contains(token, ":")
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return resolved(t, hasTime)
		}
	}
	return parseFailure(hasTime)
}
