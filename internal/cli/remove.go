package cli

import (
	"os"

	"github.com/spf13/cobra"

	"aptly-ctl/internal/app"
)

type removeOptions struct {
	DryRun bool
}

func newRemoveCommand(cfg *RootConfig) *cobra.Command {
	opts := removeOptions{}
	cmd := &cobra.Command{
		Use:   "remove [REF...]",
		Short: "Remove packages from local repos and refresh dependent publishes",
		Long: "Remove the referenced packages from their repos. Each REF must " +
			"carry a repo name (\"repo/\" prefix); references are read from " +
			"stdin when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			refs := args
			if len(refs) == 0 {
				refs = readRefLines(os.Stdin)
			}
			outcome, err := service.RunRemove(cmd.Context(), app.RemoveRequest{
				Refs:   refs,
				DryRun: opts.DryRun,
			})
			if err != nil {
				return err
			}
			return reportOutcome(outcome)
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Do not actually delete packages or refresh publishes")
	return cmd
}
