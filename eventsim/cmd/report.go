package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/eventsim/datarecording"
	"github.com/sarchlab/eventsim/tracing"
)

type reportOptions struct {
	runID  int
	events int
}

func newReportCommand() *cobra.Command {
	opts := &reportOptions{}

	reportCmd := &cobra.Command{
		Use:   "report <recording.sqlite3>",
		Short: "Summarize a recording written by run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd, args[0], opts)
		},
	}

	f := reportCmd.Flags()
	f.IntVar(&opts.runID, "run", 0, "Only report this run, 0 for all runs")
	f.IntVar(&opts.events, "events", 0,
		"Also list the first dispatched events, up to this number")

	return reportCmd
}

func report(cmd *cobra.Command, path string, opts *reportOptions) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}

	reader := datarecording.NewReader(path)
	defer reader.Close()

	reader.MapTable(tracing.RunTableName, tracing.RunEntry{})
	reader.MapTable(tracing.DispatchTableName, tracing.DispatchEntry{})

	params := datarecording.QueryParams{OrderBy: "RunID"}
	if opts.runID > 0 {
		params.Where = "RunID = ?"
		params.Args = []any{opts.runID}
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	runs, _, err := reader.Query(ctx, tracing.RunTableName, params)
	if err != nil {
		return fmt.Errorf("failed to read runs: %w", err)
	}

	for _, r := range runs {
		run := r.(*tracing.RunEntry)
		fmt.Fprintf(out, "Run %d: t = %v to %v, %d events dispatched\n",
			run.RunID, run.StartTime, run.EndTime, run.Dispatched)
	}

	params.OrderBy = "RunID, Time"

	dispatches, total, err := reader.Query(
		ctx, tracing.DispatchTableName, params)
	if err != nil {
		return fmt.Errorf("failed to read dispatches: %w", err)
	}

	counter := tracing.NewDispositionCounter()
	for _, d := range dispatches {
		counter.Add(d.(*tracing.DispatchEntry))
	}

	fmt.Fprintf(out, "%d dispatches recorded\n", total)

	for _, name := range counter.ActionNames() {
		c := counter.Count(name)
		fmt.Fprintf(out, "  %s: %d dispatched, %d rescheduled, %d deleted\n",
			name, c.Dispatched, c.Rescheduled, c.Deleted)
	}

	for i := 0; i < opts.events && i < len(dispatches); i++ {
		d := dispatches[i].(*tracing.DispatchEntry)
		fmt.Fprintf(out, "%d %v %s %s\n", d.RunID, d.Time, d.Action,
			d.Disposition)
	}

	return nil
}
