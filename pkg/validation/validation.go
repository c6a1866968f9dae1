package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mealplan-service/pkg/daterange"
)

const (
	MaxPlanNameLength = 100
	MaxSpanDays       = 366
	MaxDayIndex       = 365
)

// ValidatePlanName validates a meal plan name
func ValidatePlanName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("name is required")
	}

	if utf8.RuneCountInString(name) > MaxPlanNameLength {
		return fmt.Errorf("name is too long (max %d characters)", MaxPlanNameLength)
	}

	return nil
}

// ValidateDate validates a YYYY-MM-DD calendar date
func ValidateDate(field, date string) error {
	if date == "" {
		return fmt.Errorf("%s is required", field)
	}

	if _, err := daterange.Parse(date); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}

	return nil
}

// ValidateSpanDays validates a requested plan length; zero means "derive it"
func ValidateSpanDays(span int) error {
	if span < 0 {
		return fmt.Errorf("span_days must not be negative")
	}

	if span > MaxSpanDays {
		return fmt.Errorf("span_days is too large (max %d)", MaxSpanDays)
	}

	return nil
}

// ValidateDayIndex validates a slot's zero-based day index
func ValidateDayIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("day_index must be >= 0")
	}

	if index > MaxDayIndex {
		return fmt.Errorf("day_index is too large (max %d)", MaxDayIndex)
	}

	return nil
}
