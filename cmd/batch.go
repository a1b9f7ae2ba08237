package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/model"
)

var batchCmd = &cobra.Command{
	Use:   "batch <submission.json>...",
	Short: "Validate many submissions concurrently",
	Long:  "Validates each snapshot against the full catalog with bounded concurrency. The resolved-fields cache is shared across the batch so a field is sent to the model at most once per run.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		r, st, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		subs := make([]*model.Submission, 0, len(args))
		for _, path := range args {
			sub, err := loadSubmission(path)
			if err != nil {
				return err
			}
			subs = append(subs, sub)
		}

		runs, err := r.ValidateBatch(ctx, subs, gate.NewResolvedCache())
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		var failed int
		for _, run := range runs {
			if run.Result != nil && run.Result.Summary.Fail > 0 {
				failed++
			}
		}
		zap.L().Info("batch complete",
			zap.Int("submissions", len(runs)),
			zap.Int("with_failures", failed),
		)
		fmt.Fprintf(os.Stderr, "validated %d submission(s), %d with failing rules\n", len(runs), failed)
		return printJSON(runs)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
