package main

import (
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/credit/pipeline"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
	"credit-decision-workers/pkg/registry"

	ala "credit-decision-workers/internal/workers/credit/analyze-loan-application"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one application payload",
	Long:  "Runs a JSON application payload through the same pipeline the analyze-loan-application worker uses and prints the decision.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		asOf, _ := cmd.Flags().GetString("as-of")
		policyFile, _ := cmd.Flags().GetString("policy")
		pretty, _ := cmd.Flags().GetBool("pretty")
		verbose, _ := cmd.Flags().GetBool("verbose")

		raw, err := os.ReadFile(file)
		if err != nil {
			return eris.Wrapf(err, "evaluate: read %s", file)
		}

		reg, err := registry.Default()
		if err != nil {
			return eris.Wrap(err, "evaluate: load registry")
		}
		schema, err := reg.InputSchema(ala.TaskType)
		if err != nil {
			return eris.Wrap(err, "evaluate: input schema")
		}
		result, err := schema.ValidateJSON(string(raw))
		if err != nil {
			return eris.Wrap(err, "evaluate: parse application")
		}
		if !result.Valid {
			return eris.Errorf("evaluate: invalid application: %s", strings.Join(result.GetErrorMessages(), "; "))
		}

		var req models.ApplicationRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return eris.Wrap(err, "evaluate: decode application")
		}
		if violations := req.CheckTerms(); len(violations) > 0 {
			msgs := make([]string, 0, len(violations))
			for _, v := range violations {
				msgs = append(msgs, v.Field+": "+v.Message)
			}
			return eris.Errorf("evaluate: invalid application: %s", strings.Join(msgs, "; "))
		}

		pol, err := policy.Load(policyFile)
		if err != nil {
			return eris.Wrap(err, "evaluate: load policy")
		}

		log := logger.NewNoOpLogger()
		if verbose {
			log = logger.NewZapAdapter(logger.New("debug", "console"))
		}

		var opts []pipeline.Option
		if asOf != "" {
			date, err := civil.ParseDate(asOf)
			if err != nil {
				return eris.Wrapf(err, "evaluate: --as-of %q", asOf)
			}
			at := date.In(time.UTC)
			opts = append(opts, pipeline.WithClock(func() time.Time { return at }))
		}

		outcome, err := pipeline.New(pol, log, opts...).Evaluate(&req)
		if err != nil {
			return eris.Wrap(err, "evaluate: pipeline")
		}

		var out []byte
		if pretty {
			out, err = json.MarshalIndent(outcome.Response, "", "  ")
		} else {
			out, err = json.Marshal(outcome.Response)
		}
		if err != nil {
			return eris.Wrap(err, "evaluate: encode decision")
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}

func init() {
	f := evaluateCmd.Flags()
	f.String("file", "", "path to the application JSON payload")
	f.String("as-of", "", "evaluation date (YYYY-MM-DD); defaults to today")
	f.String("policy", "", "policy override YAML; defaults to the built-in policy")
	f.Bool("pretty", false, "indent the decision JSON")
	f.Bool("verbose", false, "log pipeline stages to stdout")
	_ = evaluateCmd.MarkFlagRequired("file")
}
