package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/store"
	"github.com/footprint-tools/mach/internal/ui/style"
)

func reportsCommands(deps Deps) []*dispatchers.Builder {
	parent := dispatchers.Command(dispatchers.CommandSpec{
		Name:        "reports",
		Category:    "devenv",
		Description: "Inspect stored error reports.\n\nEvery crash of a command or of mach itself is recorded with an id.",
		Order:       dispatchers.OrderDeclaration,
	}).
		Handler(func(_ context.Context, inst *dispatchers.Instance, _ *dispatchers.Args) (any, error) {
			return nil, listReports(inst.Stdout(), deps, store.ReportFilter{Limit: 20})
		})

	list := dispatchers.Subcommand(dispatchers.SubcommandSpec{
		Command:     "reports",
		Name:        "list",
		Description: "List recent error reports.",
	}).
		Argument(
			dispatchers.IntFlag("limit", "n", 20, "maximum number of reports"),
			dispatchers.Flag("command", "c", "", "only reports for this command"),
			dispatchers.Flag("since", "", "", "only reports newer than this duration, e.g. 24h"),
		).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			filter := store.ReportFilter{Limit: args.Int("limit"), Command: args.String("command")}
			if since := args.String("since"); since != "" {
				d, err := time.ParseDuration(since)
				if err != nil {
					return nil, dispatchers.WrapUserError(err, "invalid --since value %q", since)
				}
				t := deps.Now().Add(-d)
				filter.Since = &t
			}
			return nil, listReports(inst.Stdout(), deps, filter)
		})

	show := dispatchers.Subcommand(dispatchers.SubcommandSpec{
		Command:     "reports",
		Name:        "show",
		Description: "Show one error report.",
	}).
		Argument(dispatchers.Positional("id", "report id or unique prefix")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			return nil, showReport(inst.Stdout(), deps, args.String("id"))
		})

	clear := dispatchers.Subcommand(dispatchers.SubcommandSpec{
		Command:     "reports",
		Name:        "clear",
		Description: "Delete all error reports.",
	}).
		Argument(dispatchers.BoolFlag("yes", "y", "do not ask for confirmation")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			return clearReports(inst, deps, args.Bool("yes"))
		})

	return []*dispatchers.Builder{parent, list, show, clear}
}

func reportStore(deps Deps) (ReportStore, error) {
	if deps.Reports == nil {
		return nil, dispatchers.NewUserError("error reports are unavailable")
	}
	return deps.Reports, nil
}

func listReports(w io.Writer, deps Deps, filter store.ReportFilter) error {
	reports, err := reportStore(deps)
	if err != nil {
		return err
	}

	list, err := reports.List(filter)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, style.Muted("No error reports."))
		return err
	}

	for _, r := range list {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%s  %s  %-9s  %s  %s\n",
			style.Info(id),
			deps.Times.Full(r.CreatedAt.Local()),
			r.Kind,
			r.Command,
			firstLine(r.Message),
		)
	}
	return nil
}

func showReport(w io.Writer, deps Deps, id string) error {
	reports, err := reportStore(deps)
	if err != nil {
		return err
	}

	r, err := reports.Get(id)
	if errors.Is(err, store.ErrReportNotFound) {
		return dispatchers.NewUserError("no error report with id %q", id)
	}
	if err != nil {
		return dispatchers.WrapUserError(err, "cannot show report %q", id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", style.Header("Report"), r.ID)
	fmt.Fprintf(&b, "Time:    %s\n", deps.Times.Full(r.CreatedAt.Local()))
	fmt.Fprintf(&b, "Kind:    %s\n", r.Kind)
	if r.Command != "" {
		fmt.Fprintf(&b, "Command: %s\n", r.Command)
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "Source:  %s\n", r.Source)
	}
	if len(r.Argv) > 0 {
		fmt.Fprintf(&b, "Argv:    %s\n", strings.Join(r.Argv, " "))
	}
	fmt.Fprintf(&b, "\n%s\n", r.Message)
	if r.Stack != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimRight(r.Stack, "\n"))
	}
	_, err = io.WriteString(w, b.String())
	return err
}

func clearReports(inst *dispatchers.Instance, deps Deps, yes bool) (any, error) {
	reports, err := reportStore(deps)
	if err != nil {
		return nil, err
	}

	if !yes {
		ok, err := deps.Prompt(inst.Interactive(), inst.Stdin(), inst.Stderr()).Confirm("Delete all error reports?", false)
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Fprintln(inst.Stderr(), "Aborted.")
			return 1, nil
		}
	}

	n, err := reports.Clear()
	if err != nil {
		return nil, fmt.Errorf("clearing reports: %w", err)
	}
	fmt.Fprintln(inst.Stdout(), style.Success(fmt.Sprintf("Deleted %d report(s).", n)))
	return nil, nil
}
