package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/eventsim/sim"
)

func newOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order <time>...",
		Short: "Print the given event times in the order they are dispatched.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := sim.MakeManagerBuilder[int64]().
				WithProgressLogger(nil).
				Build()

			for _, arg := range args {
				t, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid event time %q: %w", arg, err)
				}

				manager.Add(sim.NewEvent[int64](t, sim.ActionFunc[int64](
					func(int64) sim.Disposition[int64] {
						return sim.Delete[int64]()
					})))
			}

			for manager.Len() > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), manager.MustNext().Time())
			}

			return nil
		},
	}
}
