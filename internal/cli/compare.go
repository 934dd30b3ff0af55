package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/syncprobe/internal/harness"
	"github.com/roach88/syncprobe/internal/workload"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Strategies []string
	Workers    int
	Increments int
	History    HistoryFlags
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the same workload under several strategies",
		Long: `Run one workload under each strategy, in order, and print a single
report. With no --strategies, every known strategy is compared.

Examples:
  syncprobe compare --workers 8 --increments 50000
  syncprobe compare --strategies locked,atomic --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Strategies, "strategies", nil, "strategies to compare (default all)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 4, "number of concurrent workers")
	cmd.Flags().IntVarP(&opts.Increments, "increments", "n", 100000, "increments per worker")
	opts.History.bind(cmd)

	return cmd
}

func runCompare(opts *CompareOptions, cmd *cobra.Command) error {
	ids := make([]workload.StrategyID, 0, len(opts.Strategies))
	for _, s := range opts.Strategies {
		id, err := workload.ParseStrategy(s)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --strategies", err)
		}
		ids = append(ids, id)
	}

	h := harness.New(harness.WithLogger(opts.logger()))
	rep, err := h.Compare(commandContext(cmd), opts.Workers, opts.Increments, ids...)
	if err != nil && !harness.IsInvariantViolation(err) {
		return harnessExitError(err)
	}

	label := fmt.Sprintf("compare workers=%d increments=%d", opts.Workers, opts.Increments)
	return emitReport(cmd, opts.RootOptions, &opts.History, label, rep)
}
