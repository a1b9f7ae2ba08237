package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/model"
)

var (
	overrideStatus        string
	overrideJustification string
	overrideOfficer       string
)

var overrideCmd = &cobra.Command{
	Use:   "override <run-id> <rule-id>",
	Short: "Record an officer override of one finding",
	Long:  "Appends a superseding annotation to a finding. The original finding is never mutated; a justification is mandatory.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runID, ruleID := args[0], args[1]

		if overrideJustification == "" {
			return eris.New("a justification is mandatory for overrides")
		}
		newStatus := model.Status(overrideStatus)
		if newStatus != model.StatusPass && newStatus != model.StatusFail && newStatus != model.StatusNeedsReview {
			return eris.Errorf("invalid status %q (want pass, fail, or needs_review)", overrideStatus)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, runID)
		if err != nil {
			return eris.Wrap(err, "override")
		}

		var original *model.Finding
		for i := range run.Result.Findings {
			if run.Result.Findings[i].RuleID == ruleID {
				original = &run.Result.Findings[i]
				break
			}
		}
		if original == nil {
			return eris.Errorf("run %s has no finding for rule %s", runID, ruleID)
		}

		o := &model.OfficerOverride{
			RunID:          runID,
			RuleID:         ruleID,
			OriginalStatus: original.Status,
			OverrideStatus: newStatus,
			Justification:  overrideJustification,
			OfficerID:      overrideOfficer,
		}
		if err := st.SaveOverride(ctx, o); err != nil {
			return eris.Wrap(err, "save override")
		}
		return printJSON(o)
	},
}

func init() {
	overrideCmd.Flags().StringVar(&overrideStatus, "status", "", "superseding status (pass, fail, needs_review)")
	overrideCmd.Flags().StringVar(&overrideJustification, "justification", "", "mandatory free-text justification")
	overrideCmd.Flags().StringVar(&overrideOfficer, "officer", "", "officer identity")
	_ = overrideCmd.MarkFlagRequired("status")
	_ = overrideCmd.MarkFlagRequired("justification")
	_ = overrideCmd.MarkFlagRequired("officer")

	rootCmd.AddCommand(overrideCmd)
}
