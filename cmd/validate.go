package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/model"
)

var validateParentPath string

var validateCmd = &cobra.Command{
	Use:   "validate <submission.json>",
	Short: "Validate a submission against the rule catalog",
	Long:  "Runs every catalog rule against the submission snapshot, gates missing error-severity fields for LLM resolution, and persists the run. For a revision, pass --parent so the modification rules see the stored changeset.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		r, st, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sub, err := loadSubmission(args[0])
		if err != nil {
			return err
		}

		var cs *model.ChangeSet
		if validateParentPath != "" {
			parent, err := loadSubmission(validateParentPath)
			if err != nil {
				return err
			}
			cs, err = st.GetChangeSet(ctx, parent.ID, sub.ID)
			if err != nil {
				return err
			}
			if cs == nil {
				return eris.Errorf("no changeset stored for (%s, %s); run `plancheck delta` first", parent.ID, sub.ID)
			}
		}

		run, err := r.ValidateSubmission(ctx, sub, cs, gate.NewResolvedCache())
		if err != nil {
			return eris.Wrap(err, "validate")
		}

		if err := printJSON(run); err != nil {
			return err
		}
		if run.Result.Summary.Fail > 0 {
			fmt.Fprintf(os.Stderr, "%d rule(s) failed\n", run.Result.Summary.Fail)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateParentPath, "parent", "", "parent submission snapshot for a revised submission")
	rootCmd.AddCommand(validateCmd)
}
