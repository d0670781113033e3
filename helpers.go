package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

func PrintTable(w io.Writer, headers []string, rows [][]string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// print header
	for i, header := range headers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], header)
	}
	fmt.Fprintln(w)

	// print rows
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s\t", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}
}

// FormatDate renders a date the way the roster shows it, e.g. "2 Jan 2024".
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Local().Format("2 Jan 2006")
}

// RenderList prints the current and previous sections of the roster.
func RenderList(w io.Writer, current, previous []Employee) {
	if len(current) == 0 && len(previous) == 0 {
		fmt.Fprintln(w, "No employee records found")
		return
	}

	if len(current) > 0 {
		fmt.Fprintln(w, "Current employees")
		PrintTable(w, []string{"ID", "Name", "Role", "From"}, employeeRows(current, false))
		fmt.Fprintln(w)
	}

	if len(previous) > 0 {
		fmt.Fprintln(w, "Previous employees")
		PrintTable(w, []string{"ID", "Name", "Role", "From", "To"}, employeeRows(previous, true))
		fmt.Fprintln(w)
	}
}

// RenderEmployee prints a single employee as label/value pairs.
func RenderEmployee(w io.Writer, e Employee) {
	rows := [][]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Name", e.Name},
		{"Role", e.Role},
		{"From", FormatDate(&e.StartDate)},
		{"To", FormatDate(e.EndDate)},
	}
	PrintTable(w, []string{"Field", "Value"}, rows)
}

func employeeRows(employees []Employee, withEnd bool) [][]string {
	sorted := append([]Employee(nil), employees...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Role,
			FormatDate(&e.StartDate),
		}
		if withEnd {
			row = append(row, FormatDate(e.EndDate))
		}
		rows = append(rows, row)
	}
	return rows
}

// parseDate accepts the date spellings users type on the command line.
func parseDate(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2 Jan 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"01/02/2006",
		"1/2/2006",
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
