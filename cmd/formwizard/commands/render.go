package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	formwizard "github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func renderCmd() *cobra.Command {
	var (
		step    int
		choices []string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the HTML surface for a step",
		Example: `  formwizard render --demo --choose care-type=live-in --choose care-needs=meals \
    --choose start-time=asap --step 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// choices are applied in one go, so no step should move on by itself
			session, err := appCtx.session(formwizard.WithWizardOptions(wizard.WithoutAutoAdvance()))
			if err != nil {
				return err
			}
			w := session.Wizard()
			if err := applyChoices(w, choices); err != nil {
				return err
			}
			if step > 1 {
				if t := w.JumpTo(step); !t.OK() {
					return fmt.Errorf("cannot open step %d: %w", step, t.Err)
				}
			}

			surface, detach, err := session.HTML(html.WithThemeSelection(
				html.NewThemeSet(html.CareTheme()),
				appCtx.cfg.Theme,
				appCtx.cfg.Variant,
			))
			if err != nil {
				return err
			}
			defer detach()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if _, err := surface.Render(out); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wizard written to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&step, "step", 1, "step to open")
	cmd.Flags().StringArrayVar(&choices, "choose", nil, "selection as step=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// applyChoices feeds step=value pairs into the wizard the way a click would.
func applyChoices(w *wizard.Wizard, choices []string) error {
	def := w.Definition()
	for _, raw := range choices {
		stepID, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid --choose %q: expected step=value", raw)
		}
		stepID, value = strings.TrimSpace(stepID), strings.TrimSpace(value)
		n := def.StepNumber(stepID)
		if n == 0 {
			return fmt.Errorf("invalid --choose %q: %w", raw, wizard.ErrUnknownStep)
		}
		s, _ := def.Step(n)
		var err error
		if s.Kind == model.StepKindMulti {
			err = w.ToggleOption(stepID, value, true)
		} else {
			err = w.SelectOption(stepID, value)
		}
		if err != nil {
			return fmt.Errorf("invalid --choose %q: %w", raw, err)
		}
	}
	return nil
}
