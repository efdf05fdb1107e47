package util

import "time"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// CurrentMonth returns the current year and month in UTC
func CurrentMonth() (int, time.Month) {
	now := time.Now().UTC()
	return now.Year(), now.Month()
}
