package cli

import (
	"os"

	"github.com/spf13/cobra"

	"aptly-ctl/internal/app"
)

type copyOptions struct {
	Target string
	DryRun bool
}

func newCopyCommand(cfg *RootConfig) *cobra.Command {
	opts := copyOptions{}
	cmd := &cobra.Command{
		Use:   "copy [KEY...]",
		Short: "Copy packages between local repos and refresh dependent publishes",
		Long: "Copy packages into the target repo by full aptly key and refresh " +
			"the target's publishes. Keys are read from stdin when none are " +
			"given; stdout lists the references in the target repo, pipeable " +
			"to remove or copy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			refs := args
			if len(refs) == 0 {
				refs = readRefLines(os.Stdin)
			}
			outcome, err := service.RunCopy(cmd.Context(), app.CopyRequest{
				Target: opts.Target,
				Refs:   refs,
				DryRun: opts.DryRun,
			})
			if err != nil {
				return err
			}
			return reportOutcome(outcome)
		},
	}
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "Target repo name")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Do not actually copy packages or refresh publishes")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
