package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentAndPreviousEmployees(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 15, 45, 0, 0, time.UTC)

	noEnd := Employee{ID: 1, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	endedBefore := Employee{ID: 2, Name: "B", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: datePtr(2023, 6, 1)}
	endsToday := Employee{ID: 3, Name: "C", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: ptr(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))}
	endsLater := Employee{ID: 4, Name: "D", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: datePtr(2025, 1, 1)}
	endedYesterdayLate := Employee{ID: 5, Name: "E", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: ptr(time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC))}

	all := []Employee{noEnd, endedBefore, endsToday, endsLater, endedYesterdayLate}

	current := CurrentEmployees(all, asOf)
	previous := PreviousEmployees(all, asOf)

	assert.ElementsMatch(t, []int64{1, 3, 4}, ids(current))
	assert.ElementsMatch(t, []int64{2, 5}, ids(previous))
}

func TestClassificationPartitionsEveryDay(t *testing.T) {
	all := []Employee{
		{ID: 1, StartDate: date(2024, 1, 1)},
		{ID: 2, StartDate: date(2023, 1, 1), EndDate: datePtr(2023, 6, 1)},
		{ID: 3, StartDate: date(2023, 1, 1), EndDate: datePtr(2024, 1, 15)},
		{ID: 4, StartDate: date(2023, 1, 1), EndDate: ptr(time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC))},
	}

	for d := date(2022, 12, 1); d.Before(date(2024, 3, 1)); d = d.AddDate(0, 0, 7) {
		current := ids(CurrentEmployees(all, d))
		previous := ids(PreviousEmployees(all, d))

		union := append(append([]int64{}, current...), previous...)
		assert.ElementsMatch(t, ids(all), union, "asOf %s", d)

		for _, id := range current {
			assert.NotContains(t, previous, id, "asOf %s", d)
		}
	}
}

func TestClassifier_Scenarios(t *testing.T) {
	a := Employee{ID: 1, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	b := Employee{ID: 2, Name: "B", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: datePtr(2023, 6, 1)}

	assert.Equal(t, []int64{1}, ids(CurrentEmployees([]Employee{a}, date(2024, 6, 1))))

	assert.Equal(t, []int64{2}, ids(PreviousEmployees([]Employee{b}, date(2024, 1, 1))))
	assert.Empty(t, CurrentEmployees([]Employee{b}, date(2024, 1, 1)))
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	got := Midnight(time.Date(2024, 3, 10, 22, 15, 3, 9, loc))

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), got)
}

func ptr[T any](v T) *T {
	return &v
}
