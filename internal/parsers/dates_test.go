package parsers

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, year int, month time.Month, day, hour, min, sec int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func TestParseTransactionDate_ISO(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339 with zone", "2024-01-15T10:30:00Z", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
		{"RFC3339 fractional seconds", "2024-01-15T10:30:00.500Z", time.Date(2024, time.January, 15, 10, 30, 0, 500000000, time.UTC)},
		{"No zone suffix", "2024-01-15T10:30:00", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactionDate(tt.input)
			if got.Failed() {
				t.Fatalf("ParseTransactionDate(%q) failed", tt.input)
			}
			if !got.HasTime {
				t.Error("Expected HasTime for ISO instant")
			}
			if !got.Resolved.Equal(tt.want) {
				t.Errorf("Resolved = %v, want %v", got.Resolved, tt.want)
			}
		})
	}

	if got := ParseTransactionDate("2024-99-99T10:30:00Z"); !got.Failed() {
		t.Error("Expected failure for invalid ISO instant")
	}
}

func TestParseTransactionDate_NumericSlash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		hasTime bool
	}{
		{"Day month year", "15/01/2024", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"Two digit year low", "15/01/24", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"Two digit year high", "15/01/84", time.Date(1984, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"Month day swap", "01/15/2024", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"With time", "15/01/2024 18:30", time.Date(2024, time.January, 15, 18, 30, 0, 0, time.UTC), true},
		{"With seconds", "15/01/2024 18:30:45", time.Date(2024, time.January, 15, 18, 30, 45, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactionDate(tt.input)
			if got.Failed() {
				t.Fatalf("ParseTransactionDate(%q) failed", tt.input)
			}
			if got.HasTime != tt.hasTime {
				t.Errorf("HasTime = %v, want %v", got.HasTime, tt.hasTime)
			}
			if !got.Resolved.Equal(tt.want) {
				t.Errorf("Resolved = %v, want %v", got.Resolved, tt.want)
			}
		})
	}
}

func TestParseTransactionDate_NumericSlashFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Impossible in either order", "31/02/2024"},
		{"Too few tokens", "15/01"},
		{"Non numeric tokens", "aa/bb/cccc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTransactionDate(tt.input); !got.Failed() {
				t.Errorf("ParseTransactionDate(%q) = %+v, expected failure", tt.input, got)
			}
		})
	}
}

func TestParseTransactionDate_NamedMonth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"English with year", "20 Aug 2024", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Month first", "Aug 20 2024", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Full English name with comma", "August 20, 2024", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Portuguese abbreviation", "20 ago 2024", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Portuguese full name", "20 de agosto de 2024", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Two digit year low", "20 aug 24", mustDate(t, 2024, time.August, 20, 0, 0, 0)},
		{"Two digit year high", "20 aug 99", mustDate(t, 1999, time.August, 20, 0, 0, 0)},
		{"Missing day defaults to first", "aug 2024", mustDate(t, 2024, time.August, 1, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactionDate(tt.input)
			if got.Failed() {
				t.Fatalf("ParseTransactionDate(%q) failed", tt.input)
			}
			if got.NeedsYearInference {
				t.Fatalf("ParseTransactionDate(%q) unexpectedly flagged for year inference", tt.input)
			}
			if !got.Resolved.Equal(tt.want) {
				t.Errorf("Resolved = %v, want %v", got.Resolved, tt.want)
			}
		})
	}
}

func TestParseTransactionDate_NamedMonthNeedsInference(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantMonth time.Month
		wantDay   int
	}{
		{"Day month", "20 Jan", time.January, 20},
		{"Month day", "Dec 15", time.December, 15},
		{"Portuguese", "3 fev", time.February, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactionDate(tt.input)
			if !got.NeedsYearInference {
				t.Fatalf("ParseTransactionDate(%q) = %+v, expected year inference flag", tt.input, got)
			}
			if got.Resolved != nil {
				t.Error("Expected no resolved date when year inference is needed")
			}
			if got.MonthDay.Month != tt.wantMonth || got.MonthDay.Day != tt.wantDay {
				t.Errorf("MonthDay = %v/%d, want %v/%d",
					got.MonthDay.Month, got.MonthDay.Day, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestParseTransactionDate_NamedMonthFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"No month name", "someday 2024"},
		{"Single token", "august"},
		{"Impossible day for month", "31 fev 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTransactionDate(tt.input); !got.Failed() {
				t.Errorf("ParseTransactionDate(%q) = %+v, expected failure", tt.input, got)
			}
		})
	}
}

func TestParseTransactionDate_Fallback(t *testing.T) {
	got := ParseTransactionDate("2024-01-15")
	if got.Failed() {
		t.Fatal("Expected fallback to parse ISO-style date without T/Z markers")
	}
	want := mustDate(t, 2024, time.January, 15, 0, 0, 0)
	if !got.Resolved.Equal(want) {
		t.Errorf("Resolved = %v, want %v", got.Resolved, want)
	}
	if got.HasTime {
		t.Error("Expected HasTime to be false for date-only fallback")
	}
}

func TestParseTransactionDate_Totality(t *testing.T) {
	// Any input must yield exactly one of: resolved date, inference flag, or
	// explicit failure. Nothing here may panic.
	inputs := []string{
		"", "   ", "garbage", "//", "::::", "99/99/9999", "T", "Z",
		"15/01/2024", "20 Aug", "2024-01-15T10:30:00Z", "1234567890",
		"\x00\x01", "😀", "aug aug aug",
	}

	for _, input := range inputs {
		got := ParseTransactionDate(input)
		resolvedSet := got.Resolved != nil
		if resolvedSet && got.NeedsYearInference {
			t.Errorf("ParseTransactionDate(%q) has both resolved date and inference flag", input)
		}
	}
}

func TestParseTransactionDate_NoSharedState(t *testing.T) {
	// Two identical calls must return identical results regardless of what
	// was parsed in between.
	first := ParseTransactionDate("20 Aug")
	ParseTransactionDate("15/01/1999")
	second := ParseTransactionDate("20 Aug")

	if first.MonthDay != second.MonthDay || first.NeedsYearInference != second.NeedsYearInference {
		t.Error("Expected identical results for identical inputs")
	}
}
