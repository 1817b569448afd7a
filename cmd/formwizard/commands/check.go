package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/model"
)

func checkCmd() *cobra.Command {
	var operation string
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a wizard definition or an OpenAPI operation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := appCtx.cfg.Definition
			if len(args) == 1 {
				location = args[0]
			}

			var (
				def model.Wizard
				err error
			)
			if operation != "" {
				if location == "" {
					return fmt.Errorf("--operation requires an OpenAPI document")
				}
				data, readErr := os.ReadFile(location)
				if readErr != nil {
					return readErr
				}
				def, err = definition.FromOpenAPI(cmd.Context(), data, operation)
			} else {
				def, err = definition.Load(location)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d steps\n", def.ID, def.TotalSteps())
			for i, step := range def.Steps {
				detail := fmt.Sprintf("%d options", len(step.Options))
				if step.Kind == model.StepKindFields {
					detail = fmt.Sprintf("%d fields", len(step.Fields))
				}
				fmt.Fprintf(out, "  %d. %s [%s] %s\n", i+1, step.ID, step.Kind, detail)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "OpenAPI operationId carrying x-wizard metadata")
	return cmd
}
