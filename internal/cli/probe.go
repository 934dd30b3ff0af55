package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/syncprobe/internal/harness"
	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Mode          string
	Readers       int
	TimeoutMillis int
	Repeat        int
	PublishGap    time.Duration
	History       HistoryFlags
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run a cross-thread visibility probe",
		Long: `Run a visibility probe: one writer publishes a value behind a flag and
every reader spins until it sees the flag, then checks the value.

Modes:
  release-acquire - value written before the flag; a stale read is a violation
  reordered       - flag published before the value, --publish-gap apart;
                    stale reads are data

A reader that never sees the flag within --timeout-ms is a timeout and
fails the probe.

Examples:
  syncprobe probe --readers 8 --timeout-ms 500
  syncprobe probe --mode reordered --repeat 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", string(visibility.ReleaseAcquire), "write ordering (release-acquire|reordered)")
	cmd.Flags().IntVarP(&opts.Readers, "readers", "r", 4, "number of reader threads")
	cmd.Flags().IntVar(&opts.TimeoutMillis, "timeout-ms", 1000, "per-reader timeout in milliseconds")
	cmd.Flags().IntVar(&opts.Repeat, "repeat", 1, "number of independent probes")
	cmd.Flags().DurationVar(&opts.PublishGap, "publish-gap", visibility.DefaultPublishGap, "pause between the flag and value stores in reordered mode")
	opts.History.bind(cmd)

	return cmd
}

func runProbe(opts *ProbeOptions, cmd *cobra.Command) error {
	mode, err := visibility.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --mode", err)
	}
	if opts.Repeat < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --repeat: must be >= 1, got %d", opts.Repeat))
	}

	if opts.PublishGap < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --publish-gap: must be >= 0, got %v", opts.PublishGap))
	}

	h := harness.New(
		harness.WithLogger(opts.logger()),
		harness.WithProbeOptions(visibility.WithPublishGap(opts.PublishGap)),
	)
	probes := make([]report.ProbeResult, 0, opts.Repeat)
	for i := 0; i < opts.Repeat; i++ {
		res, err := h.RunProbeMode(commandContext(cmd), mode, opts.Readers, opts.TimeoutMillis)
		if err != nil && !harness.IsTimeout(err) && !harness.IsInvariantViolation(err) {
			return harnessExitError(err)
		}
		probes = append(probes, res)
	}

	label := fmt.Sprintf("probe %s readers=%d timeout=%dms", mode, opts.Readers, opts.TimeoutMillis)
	return emitReport(cmd, opts.RootOptions, &opts.History, label, report.Generate(nil, probes...))
}
