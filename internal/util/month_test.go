package util

import "testing"

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{"mid year", 2026, 6, 2026, 5},
		{"january wraps to previous december", 2026, 1, 2025, 12},
		{"december", 2026, 12, 2026, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
			if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
				t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
					tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
			}
		})
	}
}
