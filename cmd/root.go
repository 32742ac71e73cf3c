package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfslabs/idmapd/cmd/load"
	"github.com/nfslabs/idmapd/cmd/perf"
)

const (
	Version = "0.4.2"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "idmapd",
		Short: "identity-mapping cache for user-space NFS servers",
		Long: fmt.Sprintf(`idmapd (v%s)

A bidirectional, TTL-based cache translating NFSv4 owner/group
strings and RPCSEC_GSS principals to local numeric ids and back.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of idmapd",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("idmapd v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(load.LoadCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
