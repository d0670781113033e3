package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultUndoWindow = 5 * time.Second

// ListController holds the roster shown on the list screen. The cached
// employees are only reloaded by Load; Delete and Undo patch the cache in
// place.
type ListController struct {
	store      Store
	logger     *zap.Logger
	undoWindow time.Duration

	mu        sync.Mutex
	employees []Employee
	deleted   *Employee
	showUndo  bool
	// bumped on each delete so a stale timer leaves a newer undo alone
	undoGen int
}

func NewListController(store Store, logger *zap.Logger, undoWindow time.Duration) *ListController {
	if undoWindow <= 0 {
		undoWindow = defaultUndoWindow
	}
	return &ListController{
		store:      store,
		logger:     logger,
		undoWindow: undoWindow,
	}
}

func (l *ListController) Load(ctx context.Context) {
	employees, err := l.store.GetAll(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.logger.Error("error loading employees", zap.Error(err))
		l.employees = nil
		return
	}
	l.employees = employees
}

func (l *ListController) Employees() []Employee {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Employee, len(l.employees))
	copy(out, l.employees)
	return out
}

func (l *ListController) Current(asOf time.Time) []Employee {
	return CurrentEmployees(l.Employees(), asOf)
}

func (l *ListController) Previous(asOf time.Time) []Employee {
	return PreviousEmployees(l.Employees(), asOf)
}

// Delete removes e from the store and the cache, and offers an undo until
// the undo window runs out.
func (l *ListController) Delete(ctx context.Context, e Employee) bool {
	if err := l.store.Delete(ctx, e.ID); err != nil {
		l.logger.Error("error deleting employee", zap.Int64("id", e.ID), zap.Error(err))
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.employees[:0]
	for _, emp := range l.employees {
		if emp.ID != e.ID {
			kept = append(kept, emp)
		}
	}
	l.employees = kept

	deleted := copyEmployee(e)
	l.deleted = &deleted
	l.showUndo = true
	l.undoGen++

	gen := l.undoGen
	time.AfterFunc(l.undoWindow, func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.undoGen == gen {
			l.showUndo = false
			l.deleted = nil
		}
	})

	return true
}

// UndoPending reports the employee that Undo would restore.
func (l *ListController) UndoPending() (Employee, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.showUndo || l.deleted == nil {
		return Employee{}, false
	}
	return *l.deleted, true
}

// Undo re-adds the last deleted employee and appends it to the cache.
func (l *ListController) Undo(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.deleted == nil {
		return false
	}

	if err := l.store.Add(ctx, *l.deleted); err != nil {
		l.logger.Error("error undoing delete", zap.Int64("id", l.deleted.ID), zap.Error(err))
		return false
	}

	l.employees = append(l.employees, *l.deleted)
	l.showUndo = false
	l.deleted = nil
	return true
}

// Replace swaps the cached roster without touching the store. Save persists it.
func (l *ListController) Replace(employees []Employee) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.employees = append([]Employee(nil), employees...)
}

// Save writes the cached roster over the stored one.
func (l *ListController) Save(ctx context.Context) bool {
	employees := l.Employees()
	if err := l.store.ReplaceAll(ctx, employees); err != nil {
		l.logger.Error("error saving employees", zap.Int("count", len(employees)), zap.Error(err))
		return false
	}
	return true
}
