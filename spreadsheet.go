package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const rosterSheetName = "Employees"

var rosterHeaders = []string{"ID", "Name", "Role", "Start Date", "End Date"}

// ReadRoster loads employees from a .json, .xlsx or .xls file. Spreadsheet
// rows without an id get one derived from now, the same way new employees do.
func ReadRoster(r io.Reader, filename string, now time.Time) ([]Employee, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return decodeRosterJSON(data)
	case ".xls":
		rows, err := readXLSRows(data)
		if err != nil {
			return nil, err
		}
		return employeesFromRows(rows, now)
	case ".xlsx":
		rows, err := readXLSXRows(data)
		if err != nil {
			return nil, err
		}
		return employeesFromRows(rows, now)
	default:
		return nil, fmt.Errorf("unsupported roster file %q", filename)
	}
}

// WriteRoster writes employees to path as .json or .xlsx.
func WriteRoster(path string, employees []Employee) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := encodeRosterJSON(employees)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	case ".xlsx":
		return writeXLSX(path, employees)
	default:
		return fmt.Errorf("unsupported roster file %q", path)
	}
}

func decodeRosterJSON(data []byte) ([]Employee, error) {
	var docs []employeeDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	employees := make([]Employee, 0, len(docs))
	for _, doc := range docs {
		e, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func encodeRosterJSON(employees []Employee) ([]byte, error) {
	docs := make([]employeeDoc, 0, len(employees))
	for _, e := range employees {
		docs = append(docs, toDoc(e))
	}
	return json.MarshalIndent(docs, "", "  ")
}

func readXLSRows(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}

	// ReadAllCells runs on into the following sheets; cap it at the first one.
	first := workbook.GetSheet(0)
	if first == nil || first.MaxRow == 0 {
		return nil, errors.New("worksheet is empty")
	}

	rows := workbook.ReadAllCells(int(first.MaxRow) + 1)
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

func readXLSXRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

func writeXLSX(path string, employees []Employee) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), rosterSheetName); err != nil {
		return err
	}

	header := make([]any, len(rosterHeaders))
	for i, h := range rosterHeaders {
		header[i] = h
	}
	if err := file.SetSheetRow(rosterSheetName, "A1", &header); err != nil {
		return err
	}

	for i, e := range employees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		endDate := ""
		if e.EndDate != nil {
			endDate = e.EndDate.Local().Format("2006-01-02")
		}
		row := []any{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Role,
			e.StartDate.Local().Format("2006-01-02"),
			endDate,
		}
		if err := file.SetSheetRow(rosterSheetName, cell, &row); err != nil {
			return err
		}
	}

	return file.SaveAs(path)
}

// employeesFromRows maps spreadsheet rows onto employees using the header row
// to find columns, so column order does not matter.
func employeesFromRows(rows [][]string, now time.Time) ([]Employee, error) {
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[normalizeHeader(h)] = i
	}

	for _, required := range []string{"name", "role", "start date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	idCol, hasID := cols["id"]
	endCol, hasEnd := cols["end date"]

	var employees []Employee
	for n, row := range rows[1:] {
		line := n + 2
		name := cellValue(row, cols["name"])
		if name == "" {
			continue
		}

		e := Employee{
			ID:   now.UnixMilli() + int64(n),
			Name: name,
			Role: cellValue(row, cols["role"]),
		}

		if hasID {
			if raw := cellValue(row, idCol); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: malformed id %q", line, raw)
				}
				e.ID = id
			}
		}

		start, err := parseCellDate(cellValue(row, cols["start date"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		e.StartDate = start

		if hasEnd {
			if raw := cellValue(row, endCol); raw != "" {
				end, err := parseCellDate(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", line, err)
				}
				e.EndDate = &end
			}
		}

		employees = append(employees, e)
	}

	return employees, nil
}

// parseCellDate also understands Excel serial dates.
func parseCellDate(value string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	return parseDate(value)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
