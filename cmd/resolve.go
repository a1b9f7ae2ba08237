package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/conflict"
)

var (
	resolveField    string
	resolveDocument string
	resolveOfficer  string
	resolveNotes    string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <submission.json>",
	Short: "List fields whose extractions disagree across documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := loadSubmission(args[0])
		if err != nil {
			return err
		}

		conflicts := conflict.Detect(sub.Fields)
		if len(conflicts) == 0 {
			fmt.Fprintln(os.Stderr, "no conflicts")
			return nil
		}
		return printJSON(conflicts)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <submission.json>",
	Short: "Record an officer's choice of canonical value for a conflicted field",
	Long:  "Appends a field resolution to the audit trail. The conflicting raw extractions are never modified; the latest resolution per field is authoritative.",
	Args:  cobra.ExactArgs(1),
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

		sub, err := loadSubmission(args[0])
		if err != nil {
			return err
		}

		res, err := conflict.NewResolver(st).Resolve(ctx, sub, resolveField, resolveDocument, resolveOfficer, resolveNotes)
		if err != nil {
			return eris.Wrap(err, "resolve")
		}
		return printJSON(res)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveField, "field", "", "field key to resolve")
	resolveCmd.Flags().StringVar(&resolveDocument, "document", "", "id of the document whose value is canonical")
	resolveCmd.Flags().StringVar(&resolveOfficer, "officer", "", "officer identity")
	resolveCmd.Flags().StringVar(&resolveNotes, "notes", "", "optional free-text notes")
	_ = resolveCmd.MarkFlagRequired("field")
	_ = resolveCmd.MarkFlagRequired("document")
	_ = resolveCmd.MarkFlagRequired("officer")

	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(resolveCmd)
}
