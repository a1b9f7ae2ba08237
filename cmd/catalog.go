package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatewayplanning/plancheck/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and lint the rule catalog",
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint <catalog.json|catalog.yaml>",
	Short: "Report every problem in a catalog file without running validation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := catalog.Lint(args[0])
		if err != nil {
			return eris.Wrap(err, "catalog lint")
		}

		if len(issues) == 0 {
			fmt.Fprintln(os.Stderr, "catalog is clean")
			return nil
		}

		if err := printJSON(issues); err != nil {
			return err
		}
		for _, i := range issues {
			if i.Fatal {
				return eris.New("catalog has fatal issues")
			}
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective rule catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := initCatalog()
		if err != nil {
			return err
		}
		return printJSON(cat)
	},
}

func init() {
	catalogCmd.AddCommand(catalogLintCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
