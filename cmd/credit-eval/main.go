// Command credit-eval runs the credit pipeline offline and checks the files
// the workers load at startup.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "credit-eval",
	Short:        "Offline credit decision tooling",
	Long:         "Replays loan applications through the credit pipeline and validates policy and activity registry files.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(registryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
