package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/gate"
)

var revalidateCmd = &cobra.Command{
	Use:   "revalidate <parent.json> <child.json>",
	Short: "Re-run only the rules impacted by the stored changeset",
	Long:  "Loads the persisted changeset for the pair and validates the child against the impacted subset of the catalog. Fails fast when no changeset has been computed for the pair.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		r, st, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		parent, err := loadSubmission(args[0])
		if err != nil {
			return err
		}
		child, err := loadSubmission(args[1])
		if err != nil {
			return err
		}

		run, err := r.Revalidate(ctx, parent, child, gate.NewResolvedCache())
		if err != nil {
			return eris.Wrap(err, "revalidate")
		}
		return printJSON(run)
	},
}

func init() {
	rootCmd.AddCommand(revalidateCmd)
}
