package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Route struct {
	Mode Mode
	ID   int64
}

// ParseRoute maps a navigation path onto a mode:
// "/" list, "/new" create, "/:id" view, "/:id/edit" edit.
func ParseRoute(path string) (Route, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return Route{Mode: ModeList}, nil
	}

	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 1 && parts[0] == "new":
		return Route{Mode: ModeNew}, nil
	case len(parts) == 1:
		id, err := parseID(parts[0])
		if err != nil {
			return Route{}, err
		}
		return Route{Mode: ModeView, ID: id}, nil
	case len(parts) == 2 && parts[1] == "edit":
		id, err := parseID(parts[0])
		if err != nil {
			return Route{}, err
		}
		return Route{Mode: ModeEdit, ID: id}, nil
	default:
		return Route{}, fmt.Errorf("%w: %s", ErrInvalidRoute, path)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed id %q", ErrInvalidRoute, s)
	}
	return id, nil
}

// FormController drives the create, edit and view screens for one employee.
type FormController struct {
	store  Store
	nav    Navigator
	logger *zap.Logger
	now    func() time.Time
	mobile bool

	mode      Mode
	employee  Employee
	currentID int64

	showUndo bool
	deleted  *Employee
}

func NewFormController(store Store, nav Navigator, logger *zap.Logger, layout Layout) *FormController {
	return &FormController{
		store:  store,
		nav:    nav,
		logger: logger,
		now:    time.Now,
		mobile: layout == LayoutMobile,
	}
}

// Open enters the form for path. Anything that is not a form route, or a
// record that cannot be found, sends the user back to the list.
func (f *FormController) Open(ctx context.Context, path string) {
	route, err := ParseRoute(path)
	if err != nil {
		f.logger.Warn("invalid form route", zap.String("path", path), zap.Error(err))
		f.nav.Navigate("/")
		return
	}

	f.mode = route.Mode
	switch route.Mode {
	case ModeNew:
		f.initNew()
	case ModeEdit, ModeView:
		f.currentID = route.ID
		f.load(ctx, route.ID)
	default:
		f.nav.Navigate("/")
	}
}

func (f *FormController) initNew() {
	now := f.now()
	f.currentID = 0
	f.employee = Employee{
		ID:        now.UnixMilli(),
		StartDate: now,
	}
}

// load does a fetch-all and picks the employee out of the snapshot.
func (f *FormController) load(ctx context.Context, id int64) {
	employees, err := f.store.GetAll(ctx)
	if err != nil {
		f.logger.Error("error loading employee", zap.Int64("id", id), zap.Error(err))
		f.nav.Navigate("/")
		return
	}

	for _, e := range employees {
		if e.ID == id {
			f.employee = copyEmployee(e)
			return
		}
	}

	f.logger.Warn("employee not found", zap.Int64("id", id))
	f.nav.Navigate("/")
}

func (f *FormController) Mode() Mode { return f.mode }

func (f *FormController) Employee() Employee { return copyEmployee(f.employee) }

func (f *FormController) CanEdit() bool {
	return f.mode == ModeNew || f.mode == ModeEdit
}

func (f *FormController) UndoVisible() bool { return f.showUndo }

func (f *FormController) SetName(name string) { f.employee.Name = name }

func (f *FormController) SetRole(role string) { f.employee.Role = role }

// SetStartDate also drops an end date that would now precede the start.
func (f *FormController) SetStartDate(d time.Time) {
	f.employee.StartDate = d
	if f.employee.EndDate != nil && d.After(*f.employee.EndDate) {
		f.employee.EndDate = nil
	}
}

func (f *FormController) SetEndDate(d *time.Time) {
	if d == nil {
		f.employee.EndDate = nil
		return
	}
	end := *d
	f.employee.EndDate = &end
}

// Save persists the form and returns to the list. Incomplete forms are
// ignored. Store failures are logged and leave the user on the form.
func (f *FormController) Save(ctx context.Context) bool {
	e := f.employee
	if e.Name == "" || e.Role == "" || e.StartDate.IsZero() {
		return false
	}

	var err error
	switch {
	case f.mode == ModeNew:
		err = f.store.Add(ctx, e)
	case f.mode == ModeEdit && f.currentID != 0:
		err = f.store.Update(ctx, e)
	default:
		f.logger.Error("invalid save mode or missing employee id",
			zap.String("mode", string(f.mode)),
			zap.Int64("id", f.currentID),
		)
		return false
	}

	if err != nil {
		f.logger.Error("error saving employee", zap.Int64("id", e.ID), zap.Error(err))
		return false
	}

	f.nav.Navigate("/")
	return true
}

// Delete removes the open employee and keeps a copy for Undo. Mobile layouts
// get no undo and go straight back to the list.
func (f *FormController) Delete(ctx context.Context) bool {
	if f.currentID == 0 {
		return false
	}

	deleted := copyEmployee(f.employee)
	if err := f.store.Delete(ctx, f.currentID); err != nil {
		f.logger.Error("error deleting employee", zap.Int64("id", f.currentID), zap.Error(err))
		return false
	}
	f.deleted = &deleted

	if f.mobile {
		f.nav.Navigate("/")
	} else {
		f.showUndo = true
	}
	return true
}

// Undo re-adds the deleted employee as a fresh insert.
func (f *FormController) Undo(ctx context.Context) bool {
	if f.deleted == nil {
		return false
	}

	if err := f.store.Add(ctx, *f.deleted); err != nil {
		f.logger.Error("error undoing delete", zap.Int64("id", f.deleted.ID), zap.Error(err))
		return false
	}

	f.showUndo = false
	f.deleted = nil
	f.nav.Navigate("/")
	return true
}

// Dismiss closes the undo prompt, making the delete final.
func (f *FormController) Dismiss() {
	f.showUndo = false
	f.deleted = nil
	f.nav.Navigate("/")
}

func (f *FormController) Back() {
	f.nav.Navigate("/")
}

func copyEmployee(e Employee) Employee {
	if e.EndDate != nil {
		end := *e.EndDate
		e.EndDate = &end
	}
	return e
}
