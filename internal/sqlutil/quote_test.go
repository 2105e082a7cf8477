package sqlutil

import (
	"errors"
	"testing"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "my_table", "`my_table`"},
		{"with hyphen", "roni-test-table", "`roni-test-table`"},
		{"embedded backtick", "my`table", "`my``table`"},
		{"empty", "", "``"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteIdentifier(tt.input); got != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"orders", true},
		{"training_dataset", true},
		{"roni-test-table", true},
		{"Catalog01", true},
		{"", false},
		{"bad name", false},
		{"drop;table", false},
		{"a`b", false},
		{"sch.ema", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidIdentifier(tt.input); got != tt.valid {
				t.Errorf("IsValidIdentifier(%q) = %v, expected %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestQualifyTable(t *testing.T) {
	got, err := QualifyTable("datakoop_poc", "ludo_test", "roni-test-table")
	if err != nil {
		t.Fatalf("QualifyTable() returned error: %v", err)
	}
	expected := "`datakoop_poc`.`ludo_test`.`roni-test-table`"
	if got != expected {
		t.Errorf("QualifyTable() = %q, expected %q", got, expected)
	}
}

func TestQualifyTableInvalidPart(t *testing.T) {
	_, err := QualifyTable("catalog", "bad schema", "table")
	if err == nil {
		t.Fatal("expected error for invalid schema name")
	}

	var invalidErr *InvalidIdentifierError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidIdentifierError, got %T", err)
	}
	if invalidErr.Name != "bad schema" {
		t.Errorf("expected offending name 'bad schema', got %q", invalidErr.Name)
	}
}
