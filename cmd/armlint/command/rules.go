// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ruleListing is the JSON shape of one rule in the `armlint rules` output.
type ruleListing struct {
	ID             string `json:"id"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
	HelpURI        string `json:"helpUri,omitempty"`
}

// rulesCmd represents the rules command.
var rulesCmd = cobra.Command{
	Use:   "rules [flags]",
	Short: "List the effective rule catalog.",
	Long: `Lists the rules the analyzer would evaluate: the builtin catalog plus any
additional rule libraries, narrowed by the filter configuration.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("format")
		if format != formatConsole && format != formatJSON {
			cmd.PrintErrf("%s unknown format %q (want console or json)\n", cmd.ErrPrefix(), format)
			os.Exit(2)
		}
		a, err := initAnalyzer(cmd, nil)
		if err != nil {
			cmd.PrintErrf("%s could not initialize analyzer: %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}
		catalog := a.Rules()
		listing := make([]ruleListing, len(catalog))
		for i, r := range catalog {
			listing[i] = ruleListing{
				ID:             r.ID,
				Severity:       r.Severity.String(),
				Description:    r.Description,
				Recommendation: r.Recommendation,
				HelpURI:        r.HelpURI,
			}
		}
		if format == formatJSON {
			out, err := json.MarshalIndent(listing, "", "  ")
			if err != nil {
				cmd.PrintErrf("%s could not marshal rules: %v\n", cmd.ErrPrefix(), err)
				os.Exit(2)
			}
			cmd.SetOut(os.Stdout)
			cmd.Println(string(out))
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer tw.Flush() // nolint: errcheck
		for _, r := range listing {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Severity, r.Description); err != nil {
				cmd.PrintErrf("%s could not write rules: %v\n", cmd.ErrPrefix(), err)
				os.Exit(2)
			}
		}
	},
}

func init() {
	rulesCmd.Flags().
		StringArrayP("rules", "r", nil, "Path to an additional rule library directory. Repeatable.")
	rulesCmd.Flags().
		String("config", "", "Path to a filter configuration file (JSON or YAML).")
	rulesCmd.Flags().
		String("format", formatConsole, "Output format: console or json.")
}
