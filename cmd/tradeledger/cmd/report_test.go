package cmd

import (
	"testing"
	"time"

	"trade-ledger-service/internal/models"
)

func resetReportFlags() {
	search = ""
	game = ""
	txType = ""
	minPrice = ""
	maxPrice = ""
	fromDate = ""
	toDate = ""
	reportFormat = "console"
}

func TestValidateReportFlags(t *testing.T) {
	tests := []struct {
		name        string
		setupFlags  func()
		expectError bool
	}{
		{
			name:        "defaults",
			setupFlags:  func() {},
			expectError: false,
		},
		{
			name:        "invalid output format",
			setupFlags:  func() { reportFormat = "xml" },
			expectError: true,
		},
		{
			name:        "invalid type",
			setupFlags:  func() { txType = "refund" },
			expectError: true,
		},
		{
			name:        "valid type normalized",
			setupFlags:  func() { txType = "Sale" },
			expectError: false,
		},
		{
			name:        "invalid from date",
			setupFlags:  func() { fromDate = "15/01/2024" },
			expectError: true,
		},
		{
			name: "from after to",
			setupFlags: func() {
				fromDate = "2024-06-01"
				toDate = "2024-01-01"
			},
			expectError: true,
		},
		{
			name: "valid date window",
			setupFlags: func() {
				fromDate = "2024-01-01"
				toDate = "2024-06-01"
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetReportFlags()
			tt.setupFlags()
			err := validateReportFlags(reportCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	resetReportFlags()
	search = "ak"
	game = "CS2"
	txType = "sale"
	minPrice = "10.00"
	maxPrice = "150.00"
	fromDate = "2024-01-01"
	toDate = "2024-06-30"

	filter, err := buildFilter()
	if err != nil {
		t.Fatalf("buildFilter failed: %v", err)
	}

	if filter.Search != "ak" || filter.Game != "CS2" {
		t.Errorf("unexpected text filters: %+v", filter)
	}
	if filter.Type != models.TypeSale {
		t.Errorf("Type = %q, want sale", filter.Type)
	}
	if filter.MinPriceCents == nil || *filter.MinPriceCents != 1000 {
		t.Errorf("MinPriceCents = %v, want 1000", filter.MinPriceCents)
	}
	if filter.MaxPriceCents == nil || *filter.MaxPriceCents != 15000 {
		t.Errorf("MaxPriceCents = %v, want 15000", filter.MaxPriceCents)
	}
	if filter.From.IsZero() || filter.From.Month() != time.January {
		t.Errorf("From = %v, want January 2024", filter.From)
	}
	// To is inclusive through the end of the day.
	if filter.To.Hour() != 23 || filter.To.Minute() != 59 {
		t.Errorf("To = %v, want end of day", filter.To)
	}
}

func TestBuildFilter_BadPrice(t *testing.T) {
	resetReportFlags()
	minPrice = "lots"

	if _, err := buildFilter(); err == nil {
		t.Error("expected error for unparseable price flag")
	}
}

func TestBuildFilter_EmptyIsUnconstrained(t *testing.T) {
	resetReportFlags()

	filter, err := buildFilter()
	if err != nil {
		t.Fatalf("buildFilter failed: %v", err)
	}
	if !filter.IsEmpty() {
		t.Errorf("expected empty filter, got %+v", filter)
	}
}
