package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	schemaVersion = 2

	// dates are stored the way a browser's toISOString renders them
	isoLayout = "2006-01-02T15:04:05.000Z"

	// migration queries
	createEmployeesTableSQL = `
  CREATE TABLE IF NOT EXISTS employees (
  id INTEGER PRIMARY KEY,
  data TEXT NOT NULL
  )`

	createEmployeesIDIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_id ON employees (id)`

	getUserVersionSQL = `PRAGMA user_version`
	setUserVersionSQL = `PRAGMA user_version = %d`

	// employee queries
	getAllEmployeesSQL = `SELECT data FROM employees`
	insertEmployeeSQL  = `INSERT INTO employees (id, data) VALUES (?, ?)`
	upsertEmployeeSQL  = `INSERT INTO employees (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data`
	deleteEmployeeSQL  = `DELETE FROM employees WHERE id = ?`
	clearEmployeesSQL  = `DELETE FROM employees`
)

// Repo is the record store. The database handle is opened on first use and
// cached on the Repo for its lifetime.
type Repo struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

var _ Store = (*Repo)(nil)

func NewRepo(dbPath string) *Repo {
	return &Repo{path: dbPath}
}

// Init opens the database, creating it if absent, and brings the schema to
// the current version.
func (r *Repo) Init(ctx context.Context) error {
	_, err := r.conn(ctx)
	return err
}

func (r *Repo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repo) conn(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}

	db, err := openDatabase(ctx, r.path)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func openDatabase(ctx context.Context, dbPath string) (*sql.DB, error) {
	// ensure directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create directory: %v", ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorageUnavailable, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	// verify connection with database
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// runMigrations upgrades an older or fresh database to schemaVersion.
// Existing rows are never touched.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, getUserVersionSQL).Scan(&version); err != nil {
		return fmt.Errorf("%w: read schema version: %v", ErrStorageUnavailable, err)
	}

	if version > schemaVersion {
		return fmt.Errorf("%w: schema version %d is newer than %d", ErrStorageUnavailable, version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	stmts := []string{
		createEmployeesTableSQL,
		createEmployeesIDIndexSQL,
		fmt.Sprintf(setUserVersionSQL, schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate to version %d: %v", ErrStorageUnavailable, schemaVersion, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// +---------------------+
// |                     |
// |   Employee Queries  |
// |                     |
// +---------------------+

// returns every stored employee, order is whatever sqlite hands back
func (r *Repo) GetAll(ctx context.Context) ([]Employee, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, getAllEmployeesSQL)
	if err != nil {
		return nil, operationFailed("retrieve employees", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, operationFailed("retrieve employees", err)
		}

		e, err := decodeEmployee([]byte(data))
		if err != nil {
			return nil, operationFailed("retrieve employees", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, operationFailed("retrieve employees", err)
	}

	return employees, nil
}

// inserts a new employee, fails with ErrDuplicateKey when the id is taken
func (r *Repo) Add(ctx context.Context, e Employee) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	data, err := encodeEmployee(e)
	if err != nil {
		return operationFailed("add employee", err)
	}

	if _, err := db.ExecContext(ctx, insertEmployeeSQL, e.ID, data); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: employee %d already exists", ErrDuplicateKey, e.ID)
		}
		return operationFailed("add employee", err)
	}
	return nil
}

// replaces the employee with the same id, inserting it when absent
func (r *Repo) Update(ctx context.Context, e Employee) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	data, err := encodeEmployee(e)
	if err != nil {
		return operationFailed("update employee", err)
	}

	if _, err := db.ExecContext(ctx, upsertEmployeeSQL, e.ID, data); err != nil {
		return operationFailed("update employee", err)
	}
	return nil
}

// removes the employee, a missing id is not an error
func (r *Repo) Delete(ctx context.Context, id int64) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, deleteEmployeeSQL, id); err != nil {
		return operationFailed("delete employee", err)
	}
	return nil
}

// ReplaceAll clears the collection and inserts employees in one transaction.
// Any failed insert rolls back the clear as well.
func (r *Repo) ReplaceAll(ctx context.Context, employees []Employee) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return operationFailed("save employees", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, clearEmployeesSQL); err != nil {
		return operationFailed("clear existing employees", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEmployeeSQL)
	if err != nil {
		return operationFailed("save employees", err)
	}
	defer stmt.Close()

	for _, e := range employees {
		data, err := encodeEmployee(e)
		if err != nil {
			return operationFailed("save employees", err)
		}

		if _, err := stmt.ExecContext(ctx, e.ID, data); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("%w: employee %d appears more than once", ErrDuplicateKey, e.ID)
			}
			return operationFailed("save employees", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return operationFailed("save employees", err)
	}
	return nil
}

func operationFailed(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", ErrOperationFailed, op, err)
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// +---------------------+
// |                     |
// |    Serialization    |
// |                     |
// +---------------------+

// employeeDoc is the stored shape of an employee. EndDate is left out of the
// document entirely when the employee has none.
type employeeDoc struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
}

func toDoc(e Employee) employeeDoc {
	doc := employeeDoc{
		ID:        e.ID,
		Name:      e.Name,
		Role:      e.Role,
		StartDate: e.StartDate.UTC().Format(isoLayout),
	}
	if e.EndDate != nil {
		doc.EndDate = e.EndDate.UTC().Format(isoLayout)
	}
	return doc
}

func fromDoc(doc employeeDoc) (Employee, error) {
	startDate, err := time.Parse(time.RFC3339, doc.StartDate)
	if err != nil {
		return Employee{}, fmt.Errorf("parse startDate of %d: %w", doc.ID, err)
	}

	e := Employee{
		ID:        doc.ID,
		Name:      doc.Name,
		Role:      doc.Role,
		StartDate: startDate,
	}

	if doc.EndDate != "" {
		endDate, err := time.Parse(time.RFC3339, doc.EndDate)
		if err != nil {
			return Employee{}, fmt.Errorf("parse endDate of %d: %w", doc.ID, err)
		}
		e.EndDate = &endDate
	}

	return e, nil
}

func encodeEmployee(e Employee) ([]byte, error) {
	return json.Marshal(toDoc(e))
}

func decodeEmployee(data []byte) (Employee, error) {
	var doc employeeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Employee{}, err
	}
	return fromDoc(doc)
}
