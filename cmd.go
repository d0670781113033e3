package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nexidian/gocliselect"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootOptions struct {
	envFile string
	dbPath  string
	mobile  bool
}

func SetupCommands(a *App) *cobra.Command {
	opts := &rootOptions{}

	// root command
	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "Manage an employee roster stored on this machine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupApp(cmd, a, opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to .env file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides ROSTER_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&opts.mobile, "mobile", false, "use the mobile layout (no undo after form deletes)")

	// command for listing current and previous employees
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List current and previous employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ListEmployees(cmd.Context())
		},
	}

	// command for adding a new employee
	var newFlags employeeFlags
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Add a new employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := newFlags.role
			if role == "" && a.interactive() {
				picked, err := a.selectRole()
				if err != nil {
					return err
				}
				role = picked
			}

			start := a.now()
			if newFlags.start != "" {
				t, err := parseDate(newFlags.start)
				if err != nil {
					return err
				}
				start = t
			}

			var end *time.Time
			if newFlags.end != "" {
				t, err := parseDate(newFlags.end)
				if err != nil {
					return err
				}
				end = &t
			}

			return a.CreateEmployee(cmd.Context(), newFlags.name, role, start, end)
		},
	}
	newFlags.register(newCmd)

	// command for viewing one employee
	showCmd := &cobra.Command{
		Use:               "show [id]",
		Short:             "Show an employee",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(a, opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowEmployee(cmd.Context(), args[0])
		},
	}

	// command for editing an employee
	var editFlags employeeFlags
	var clearEnd, remove bool
	editCmd := &cobra.Command{
		Use:               "edit [id]",
		Short:             "Edit or remove an employee",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(a, opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				return a.RemoveEmployee(cmd.Context(), args[0])
			}

			patch, err := editFlags.patch(cmd)
			if err != nil {
				return err
			}
			patch.ClearEnd = clearEnd
			return a.EditEmployee(cmd.Context(), args[0], patch)
		},
	}
	editFlags.register(editCmd)
	editCmd.Flags().BoolVar(&clearEnd, "clear-end", false, "remove the end date")
	editCmd.Flags().BoolVar(&remove, "delete", false, "delete the employee from the form")

	// command for deleting from the list with a timed undo
	deleteCmd := &cobra.Command{
		Use:               "delete [id]",
		Short:             "Delete an employee",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(a, opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DeleteEmployee(cmd.Context(), args[0])
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [file|url]",
		Short: "Replace the roster from a .json, .xlsx or .xls file, or a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Import(cmd.Context(), args[0])
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the roster to a .json or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Export(cmd.Context(), args[0])
		},
	}

	// add commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	return rootCmd
}

func setupApp(cmd *cobra.Command, a *App, opts *rootOptions) error {
	cfg, err := LoadConfig(opts.envFile)
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if cmd.Flags().Changed("mobile") {
		cfg.Layout = string(LayoutDesktop)
		if opts.mobile {
			cfg.Layout = string(LayoutMobile)
		}
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.repo = NewRepo(cfg.DBPath)

	if err := a.repo.Init(cmd.Context()); err != nil {
		return err
	}
	return nil
}

type employeeFlags struct {
	name  string
	role  string
	start string
	end   string
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "employee name")
	cmd.Flags().StringVar(&f.role, "role", "", "employee role")
	cmd.Flags().StringVar(&f.start, "start", "", "start date, e.g. 2024-01-31")
	cmd.Flags().StringVar(&f.end, "end", "", "end date, e.g. 2024-06-30")
}

// patch only carries the flags the user actually passed.
func (f *employeeFlags) patch(cmd *cobra.Command) (EmployeePatch, error) {
	var patch EmployeePatch

	if cmd.Flags().Changed("name") {
		patch.Name = &f.name
	}
	if cmd.Flags().Changed("role") {
		patch.Role = &f.role
	}
	if cmd.Flags().Changed("start") {
		t, err := parseDate(f.start)
		if err != nil {
			return EmployeePatch{}, err
		}
		patch.StartDate = &t
	}
	if cmd.Flags().Changed("end") {
		t, err := parseDate(f.end)
		if err != nil {
			return EmployeePatch{}, err
		}
		patch.EndDate = &t
	}

	return patch, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// pickRole shows the role menu. Escape leaves the role empty.
func pickRole() (string, error) {
	menu := gocliselect.NewMenu("Select role")
	for _, role := range RoleOptions {
		menu.AddItem(role, role)
	}

	choice, err := menu.Display()
	if err != nil {
		return "", fmt.Errorf("select role: %w", err)
	}
	role, _ := choice.(string)
	return role, nil
}

// completion runs without the persistent pre-run hook, so it sets the app up itself
func completeIDs(a *App, opts *rootOptions) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if a.repo == nil {
			if err := setupApp(cmd, a, opts); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}

		employees, err := a.repo.GetAll(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		ids := make([]string, 0, len(employees))
		for _, e := range employees {
			ids = append(ids, fmt.Sprintf("%d\t%s", e.ID, e.Name))
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidRoute):
		return 2
	case errors.Is(err, ErrStorageUnavailable):
		return 3
	default:
		return 1
	}
}
