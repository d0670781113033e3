package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type App struct {
	repo   *Repo
	cfg    Config
	logger *zap.Logger

	in  io.Reader
	out io.Writer
	now func() time.Time

	// role menu for "new" without --role, only offered on a terminal
	interactive func() bool
	selectRole  func() (string, error)
}

func NewApp(repo *Repo, cfg Config, logger *zap.Logger) *App {
	return &App{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		now:    time.Now,

		interactive: stdinIsTerminal,
		selectRole:  pickRole,
	}
}

// Close releases the database and flushes the logger.
func (a *App) Close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("error closing database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *App) layout() Layout {
	if a.cfg.Mobile() {
		return LayoutMobile
	}
	return LayoutDesktop
}

// routeRecorder is the terminal's navigator: it only remembers where the
// controllers asked to go.
type routeRecorder struct {
	route string
}

func (r *routeRecorder) Navigate(path string) { r.route = path }

func (a *App) newForm(nav Navigator) *FormController {
	f := NewFormController(a.repo, nav, a.logger, a.layout())
	f.now = a.now
	return f
}

func (a *App) ListEmployees(ctx context.Context) error {
	lc := NewListController(a.repo, a.logger, a.cfg.UndoWindow)
	lc.Load(ctx)

	today := a.now()
	RenderList(a.out, lc.Current(today), lc.Previous(today))
	return nil
}

func (a *App) CreateEmployee(ctx context.Context, name, role string, start time.Time, end *time.Time) error {
	nav := &routeRecorder{}
	form := a.newForm(nav)
	form.Open(ctx, "/new")

	form.SetName(name)
	form.SetRole(role)
	form.SetStartDate(start)
	if end != nil {
		form.SetEndDate(end)
	}

	if !form.Save(ctx) {
		return ErrNotSaved
	}

	fmt.Fprintf(a.out, "Added %s (%d)\n", name, form.Employee().ID)
	return nil
}

// openForm opens the view or edit form for a CLI id argument. Anything but a
// plain integer id is rejected before it can turn into another route.
func (a *App) openForm(ctx context.Context, id string, mode Mode) (*FormController, error) {
	employeeID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	path := "/" + strconv.FormatInt(employeeID, 10)
	if mode == ModeEdit {
		path += "/edit"
	}

	nav := &routeRecorder{}
	form := a.newForm(nav)
	form.Open(ctx, path)

	if nav.route == "/" || form.Mode() != mode {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return form, nil
}

func (a *App) ShowEmployee(ctx context.Context, id string) error {
	form, err := a.openForm(ctx, id, ModeView)
	if err != nil {
		return err
	}

	RenderEmployee(a.out, form.Employee())
	return nil
}

func (a *App) EditEmployee(ctx context.Context, id string, patch EmployeePatch) error {
	form, err := a.openForm(ctx, id, ModeEdit)
	if err != nil {
		return err
	}

	if patch.Name != nil {
		form.SetName(*patch.Name)
	}
	if patch.Role != nil {
		form.SetRole(*patch.Role)
	}
	if patch.StartDate != nil {
		form.SetStartDate(*patch.StartDate)
	}
	if patch.ClearEnd {
		form.SetEndDate(nil)
	} else if patch.EndDate != nil {
		form.SetEndDate(patch.EndDate)
	}

	if !form.Save(ctx) {
		return ErrNotSaved
	}

	fmt.Fprintf(a.out, "Updated %s (%d)\n", form.Employee().Name, form.Employee().ID)
	return nil
}

// RemoveEmployee deletes through the edit form. The undo prompt stays open
// until the user answers, as the form's confirmation does.
func (a *App) RemoveEmployee(ctx context.Context, id string) error {
	form, err := a.openForm(ctx, id, ModeEdit)
	if err != nil {
		return err
	}

	name := form.Employee().Name
	if !form.Delete(ctx) {
		return fmt.Errorf("could not delete %s", id)
	}

	fmt.Fprintf(a.out, "Employee data has been deleted: %s\n", name)
	if !form.UndoVisible() {
		return nil
	}

	fmt.Fprint(a.out, "Type u to undo, or press Enter to continue: ")
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	if strings.TrimSpace(line) == "u" && form.Undo(ctx) {
		fmt.Fprintf(a.out, "Restored %s\n", name)
		return nil
	}
	form.Dismiss()
	return nil
}

// DeleteEmployee deletes from the list. Undo is offered only until the list's
// undo window runs out.
func (a *App) DeleteEmployee(ctx context.Context, id string) error {
	employeeID, err := parseID(id)
	if err != nil {
		return err
	}

	lc := NewListController(a.repo, a.logger, a.cfg.UndoWindow)
	lc.Load(ctx)

	var target *Employee
	for _, e := range lc.Employees() {
		if e.ID == employeeID {
			e := e
			target = &e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if !lc.Delete(ctx, *target) {
		return fmt.Errorf("could not delete %s", id)
	}

	fmt.Fprintf(a.out, "Employee data has been deleted: %s\n", target.Name)
	fmt.Fprintf(a.out, "Type u and press Enter within %s to undo: ", a.cfg.UndoWindow)

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(a.in).ReadString('\n')
		lines <- strings.TrimSpace(line)
	}()

	select {
	case line := <-lines:
		if line == "u" {
			return a.undoListDelete(ctx, lc, target.Name)
		}
	case <-time.After(a.cfg.UndoWindow):
	}

	fmt.Fprintln(a.out)
	return nil
}

// undoListDelete answers an undo request. The list's own timer may have
// closed the window just before the answer arrived.
func (a *App) undoListDelete(ctx context.Context, lc *ListController, name string) error {
	if _, ok := lc.UndoPending(); !ok {
		fmt.Fprintf(a.out, "Undo window expired, %s was not restored\n", name)
		return nil
	}
	if !lc.Undo(ctx) {
		return fmt.Errorf("%w: could not restore %s", ErrNotSaved, name)
	}

	fmt.Fprintf(a.out, "Restored %s\n", name)
	return nil
}

// Import replaces the whole roster with the contents of source, which is a
// file path or an http(s) URL serving the JSON export format.
func (a *App) Import(ctx context.Context, source string) error {
	var (
		employees []Employee
		err       error
	)

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		employees, err = NewAPIClient().FetchRoster(ctx, source)
	} else {
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return err
		}
		defer f.Close()

		employees, err = ReadRoster(f, source, a.now())
	}
	if err != nil {
		return err
	}

	lc := NewListController(a.repo, a.logger, a.cfg.UndoWindow)
	lc.Replace(employees)
	if !lc.Save(ctx) {
		return ErrNotSaved
	}

	fmt.Fprintf(a.out, "Imported %d employees.\n", len(employees))
	return nil
}

func (a *App) Export(ctx context.Context, path string) error {
	employees, err := a.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })

	if err := WriteRoster(path, employees); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Exported %d employees to %s\n", len(employees), path)
	return nil
}
