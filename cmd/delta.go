package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/delta"
)

var deltaCmd = &cobra.Command{
	Use:   "delta <parent.json> <child.json>",
	Short: "Compute and persist the changeset between two submission versions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		parent, err := loadSubmission(args[0])
		if err != nil {
			return err
		}
		child, err := loadSubmission(args[1])
		if err != nil {
			return err
		}

		cs, err := delta.Compute(parent, child, cfg.Delta)
		if err != nil {
			return eris.Wrap(err, "delta")
		}
		if err := st.SaveChangeSet(ctx, cs); err != nil {
			return eris.Wrap(err, "save changeset")
		}

		if err := printJSON(cs); err != nil {
			return err
		}
		if cs.RequiresValidation {
			fmt.Fprintf(os.Stderr, "significance %.2f >= %.2f: revalidation required\n", cs.Significance, cfg.Delta.Threshold)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deltaCmd)
}
