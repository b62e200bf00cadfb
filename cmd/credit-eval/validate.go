package main

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/pkg/registry"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Credit policy commands",
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a policy override file",
	Long:  "Overlays the file on the built-in policy and checks weights, thresholds and limits. Without --file the built-in policy is checked.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		if _, err := policy.Load(file); err != nil {
			return eris.Wrap(err, "policy validate")
		}
		name := file
		if name == "" {
			name = "built-in policy"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
		return nil
	},
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Activity registry commands",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an activity registry file",
	Long:  "Checks activity naming, unique task types, timeouts, retries and that every input schema compiles. Without --file the embedded registry is checked.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")

		var (
			reg *registry.ActivityRegistry
			err error
		)
		if file == "" {
			reg, err = registry.Default()
		} else {
			reg, err = registry.LoadRegistry(file)
		}
		if err != nil {
			return eris.Wrap(err, "registry validate: load")
		}

		if errs := reg.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
			}
			return eris.Wrapf(errors.Join(errs...), "registry validate: %d problem(s)", len(errs))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registry %s: %d activities ok\n", reg.Version, len(reg.Activities))
		return nil
	},
}

func init() {
	policyValidateCmd.Flags().String("file", "", "policy override YAML")
	policyCmd.AddCommand(policyValidateCmd)

	registryValidateCmd.Flags().String("file", "", "activity registry JSON")
	registryCmd.AddCommand(registryValidateCmd)
}
