package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Walk through the wizard in the terminal and submit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.InOrStdin()) {
				return errors.New("formwizard: run needs an interactive terminal; use render for scripted output")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := appCtx.session()
			if err != nil {
				return err
			}
			appCtx.serveMetrics(ctx)

			_, err = session.RunTerminal(ctx,
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithOutputFormat(appCtx.format),
				tui.WithLogger(appCtx.log.Named("tui")),
			)
			if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// isTerminal reports whether r is a file attached to a terminal.
func isTerminal(r any) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
