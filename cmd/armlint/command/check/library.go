// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package check

import (
	"os"

	"github.com/Azure/armlint"
	"github.com/Azure/armlint/internal/processor"
	"github.com/Azure/armlint/internal/tools/checker"
	"github.com/Azure/armlint/internal/tools/checks"
	"github.com/spf13/cobra"
)

// libraryCmd represents the library check command.
var libraryCmd = cobra.Command{
	Use:   "library [flags] dir",
	Short: "Perform operations on an armlint rule library member.",
	Long:  `Primarily used as a tool to check the validity of a rule library member.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		thisRef := armlint.NewCustomLibraryReference(args[0])
		libs, err := armlint.FetchLibrariesWithDependencies(cmd.Context(), thisRef)
		if err != nil {
			cmd.PrintErrf(
				"%s could not fetch all libraries with dependencies: %v\n",
				cmd.ErrPrefix(),
				err,
			)
			os.Exit(2)
		}

		// Initializing an analyzer over the member and its dependencies
		// exercises the hard invariants: parseable rules, valid severities,
		// compilable expressions and unique ids across the whole set.
		a := armlint.NewAnalyzer(nil)
		if err := a.Init(cmd.Context(), libs.FSs()...); err != nil {
			cmd.PrintErrf("%s library init error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		// The style checks run on the member itself, not its dependencies.
		res := processor.NewResult()
		if err := processor.NewClient(thisRef.FS()).Process(res); err != nil {
			cmd.PrintErrf("%s library process error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		chk := checker.NewValidator(
			checks.CheckRuleIDs(res.Catalog),
			checks.CheckRuleScopes(res.Catalog),
			checks.CheckGuidance(res.Catalog),
			checks.CheckHelpURIs(res.Catalog),
			checks.CheckMetadata(res.Metadata),
		)
		if err := chk.Validate(); err != nil {
			cmd.PrintErrf("%s library check error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
	},
}
