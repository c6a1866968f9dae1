package validation

import (
	"strings"
	"testing"
)

func TestValidatePlanName(t *testing.T) {
	if err := ValidatePlanName("  "); err == nil {
		t.Error("blank name must be rejected")
	}
	if err := ValidatePlanName(strings.Repeat("a", MaxPlanNameLength+1)); err == nil {
		t.Error("long name must be rejected")
	}
	if err := ValidatePlanName("Week of soups"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	// Two bytes per character; the limit counts characters.
	if err := ValidatePlanName(strings.Repeat("é", MaxPlanNameLength)); err != nil {
		t.Errorf("multi-byte name at the limit rejected: %v", err)
	}
	if err := ValidatePlanName(strings.Repeat("é", MaxPlanNameLength+1)); err == nil {
		t.Error("multi-byte name over the limit must be rejected")
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"", true},
		{"2024-02-30", true},
		{"01/02/2024", true},
		{"2024-02-29", false},
	}

	for _, tt := range tests {
		err := ValidateDate("date", tt.date)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
		}
	}
}

func TestValidateSpanAndIndex(t *testing.T) {
	if err := ValidateSpanDays(-1); err == nil {
		t.Error("negative span must be rejected")
	}
	if err := ValidateSpanDays(0); err != nil {
		t.Errorf("zero span means derive: %v", err)
	}
	if err := ValidateSpanDays(MaxSpanDays + 1); err == nil {
		t.Error("oversized span must be rejected")
	}

	if err := ValidateDayIndex(-1); err == nil {
		t.Error("negative day index must be rejected")
	}
	if err := ValidateDayIndex(6); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
