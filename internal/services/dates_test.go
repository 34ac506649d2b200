package services

import (
	"testing"
	"time"
)

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{date(2024, 1, 15), 1, date(2024, 2, 15)},
		{date(2024, 1, 31), 1, date(2024, 2, 29)}, // leap year
		{date(2023, 1, 31), 1, date(2023, 2, 28)},
		{date(2024, 1, 31), 2, date(2024, 3, 31)},
		{date(2024, 10, 31), 1, date(2024, 11, 30)},
		{date(2024, 11, 30), 2, date(2025, 1, 30)},
		{date(2024, 5, 10), 0, date(2024, 5, 10)},
	}
	for _, tc := range cases {
		if got := addMonths(tc.start, tc.months); !got.Equal(tc.want) {
			t.Errorf("addMonths(%s, %d) = %s, want %s",
				tc.start.Format("2006-01-02"), tc.months,
				got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}
