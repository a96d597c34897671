package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags "-X ...cmd.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the adminsync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("adminsync %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
