package utils

import "time"

const day = 24 * time.Hour

// RentalDays returns the number of whole days between the borrow date and
// the expected return date, with a minimum of one day so that same-day
// rentals are still charged.
func RentalDays(borrowDate, expectedReturnDate time.Time) int64 {
	days := int64(expectedReturnDate.Sub(borrowDate) / day)
	if days < 1 {
		days = 1
	}
	return days
}

// OverdueDays returns the number of whole days the actual return postdates
// the expected return, or zero when the return was on time.
func OverdueDays(expectedReturnDate, actualReturnDate time.Time) int64 {
	days := int64(actualReturnDate.Sub(expectedReturnDate) / day)
	if days < 0 {
		return 0
	}
	return days
}

// RentalCostCents is the charge for the initial rental period.
func RentalCostCents(dailyFeeCents int64, borrowDate, expectedReturnDate time.Time) int64 {
	return dailyFeeCents * RentalDays(borrowDate, expectedReturnDate)
}

// FineCostCents is the charge for a late return. The multiplier comes from
// configuration, not a literal.
func FineCostCents(dailyFeeCents, fineMultiplier int64, expectedReturnDate, actualReturnDate time.Time) int64 {
	return dailyFeeCents * fineMultiplier * OverdueDays(expectedReturnDate, actualReturnDate)
}
