package daterange

import "testing"

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"same day", "2024-01-01", "2024-01-01", 0},
		{"next day", "2024-01-01", "2024-01-02", 1},
		{"backwards", "2024-01-05", "2024-01-01", -4},
		{"leap year", "2024-02-28", "2024-03-01", 2},
		{"across year", "2023-12-31", "2024-01-01", 1},
		{"dst week in march", "2024-03-09", "2024-03-11", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetween(tt.a, tt.b)
			if err != nil {
				t.Fatalf("DaysBetween: %v", err)
			}
			if got != tt.want {
				t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDaysBetweenRejectsBadInput(t *testing.T) {
	if _, err := DaysBetween("2024-1-1", "2024-01-02"); err == nil {
		t.Fatal("expected error for non-normalized date")
	}
	if _, err := DaysBetween("2024-01-01", "yesterday"); err == nil {
		t.Fatal("expected error for garbage date")
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-27", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-03-01" {
		t.Errorf("AddDays = %s, want 2024-03-01", got)
	}

	got, err = AddDays("2024-01-01", -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2023-12-31" {
		t.Errorf("AddDays = %s, want 2023-12-31", got)
	}
}

func TestPredicates(t *testing.T) {
	if !IsWithin("2024-01-03", "2024-01-01", "2024-01-07") {
		t.Error("expected date inside window")
	}
	if !IsWithin("2024-01-01", "2024-01-01", "2024-01-01") {
		t.Error("window bounds are inclusive")
	}
	if IsWithin("2024-01-08", "2024-01-01", "2024-01-07") {
		t.Error("expected date outside window")
	}

	if !IsFuture("2024-01-02", "2024-01-01") || IsFuture("2024-01-01", "2024-01-01") {
		t.Error("IsFuture must be strict")
	}
	if !IsPast("2023-12-31", "2024-01-01") || IsPast("2024-01-01", "2024-01-01") {
		t.Error("IsPast must be strict")
	}
}

func TestNormalize(t *testing.T) {
	if _, err := Normalize("2024-13-01"); err == nil {
		t.Error("expected error for month 13")
	}
	got, err := Normalize("2024-06-09")
	if err != nil || got != "2024-06-09" {
		t.Errorf("Normalize = %q, %v", got, err)
	}
}

func TestClocks(t *testing.T) {
	if FixedClock("2024-01-06").Today() != "2024-01-06" {
		t.Error("fixed clock drifted")
	}

	if _, err := NewSystemClock("Mars/Olympus_Mons"); err == nil {
		t.Error("expected invalid timezone error")
	}

	c, err := NewSystemClock("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(c.Today()); err != nil {
		t.Errorf("system clock produced unparseable date: %v", err)
	}
}
