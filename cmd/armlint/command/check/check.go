// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package check

import (
	"os"

	"github.com/spf13/cobra"
)

// CheckCmd represents the library check command.
var CheckCmd = cobra.Command{
	Use:   "check",
	Short: "Perform validations.",
	Long:  `Primarily used as a tool to check the validity of a rule library member.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.PrintErrf("%s check command: missing required child command\n", cmd.ErrPrefix())
		cmd.Usage() // nolint: errcheck
		os.Exit(2)
	},
}

func init() {
	CheckCmd.AddCommand(&libraryCmd)
}
