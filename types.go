package main

import (
	"context"
	"time"
)

type Employee struct {
	ID        int64
	Name      string
	Role      string
	StartDate time.Time
	EndDate   *time.Time
}

// Store is the persistence surface the controllers depend on.
type Store interface {
	GetAll(ctx context.Context) ([]Employee, error)
	Add(ctx context.Context, e Employee) error
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id int64) error
	ReplaceAll(ctx context.Context, employees []Employee) error
}

// Navigator receives route changes from the controllers.
type Navigator interface {
	Navigate(path string)
}

type Mode string

const (
	ModeList Mode = "list"
	ModeNew  Mode = "new"
	ModeEdit Mode = "edit"
	ModeView Mode = "view"
)

type Layout string

const (
	LayoutDesktop Layout = "desktop"
	LayoutMobile  Layout = "mobile"
)

var RoleOptions = []string{
	"Product Designer",
	"Flutter Developer",
	"QA Tester",
	"Product Owner",
}

// EmployeePatch carries the fields an edit overwrites. Nil fields are left alone.
type EmployeePatch struct {
	Name      *string
	Role      *string
	StartDate *time.Time
	EndDate   *time.Time
	ClearEnd  bool
}
