package cli

import (
	"os"

	"github.com/spf13/cobra"

	"aptly-ctl/internal/app"
)

type putOptions struct {
	ForceReplace bool
}

func newPutCommand(cfg *RootConfig) *cobra.Command {
	opts := putOptions{}
	cmd := &cobra.Command{
		Use:   "put REPO [PACKAGE...]",
		Short: "Put packages in a local repo and refresh dependent publishes",
		Long: "Upload package files into REPO and refresh every publish sourced " +
			"from it. File paths are read from stdin when none are given. " +
			"Stdout lists the newly added package references.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			artifacts := args[1:]
			if len(artifacts) == 0 {
				artifacts = readRefLines(os.Stdin)
			}
			outcome, err := service.RunPut(cmd.Context(), app.PutRequest{
				Repo:         args[0],
				Artifacts:    artifacts,
				ForceReplace: opts.ForceReplace,
			})
			if err != nil {
				return err
			}
			return reportOutcome(outcome)
		},
	}
	cmd.Flags().BoolVarP(&opts.ForceReplace, "force-replace", "f", false, "Remove packages conflicting with the packages being added")
	return cmd
}
