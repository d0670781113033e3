package main

import "time"

// Midnight truncates t to the start of its day in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CurrentEmployees returns employees with no end date, or one falling on or
// after asOf. Days are compared in asOf's location.
func CurrentEmployees(employees []Employee, asOf time.Time) []Employee {
	today := Midnight(asOf)

	var current []Employee
	for _, e := range employees {
		if e.EndDate == nil || !endDay(e, asOf.Location()).Before(today) {
			current = append(current, e)
		}
	}
	return current
}

// PreviousEmployees returns employees whose end date is strictly before asOf.
func PreviousEmployees(employees []Employee, asOf time.Time) []Employee {
	today := Midnight(asOf)

	var previous []Employee
	for _, e := range employees {
		if e.EndDate != nil && endDay(e, asOf.Location()).Before(today) {
			previous = append(previous, e)
		}
	}
	return previous
}

func endDay(e Employee, loc *time.Location) time.Time {
	return Midnight(e.EndDate.In(loc))
}
