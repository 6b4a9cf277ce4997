package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in arbor's version
	VersionMajor = 1
	// VersionMinor is the minor number in arbor's version
	VersionMinor = 0
	// VersionPatch is the patch number in arbor's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of arbor",
		Long:  `All software has versions. This is arbor's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("arbor v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
