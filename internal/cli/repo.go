package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aptly-ctl/internal/types"
)

func newRepoCommand(cfg *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Administer local repos",
	}
	cmd.AddCommand(newRepoListCommand(cfg))
	cmd.AddCommand(newRepoShowCommand(cfg))
	cmd.AddCommand(newRepoCreateCommand(cfg))
	cmd.AddCommand(newRepoEditCommand(cfg))
	cmd.AddCommand(newRepoDeleteCommand(cfg))
	return cmd
}

func newRepoListCommand(cfg *RootConfig) *cobra.Command {
	detail := false
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local repos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			repos, err := service.ListRepos(cmd.Context())
			if err != nil {
				return err
			}
			for _, repo := range repos {
				if detail {
					printRepoInfo(repo)
				} else {
					fmt.Println(repo.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&detail, "detail", false, "Print comment and defaults for every repo")
	return cmd
}

func newRepoShowCommand(cfg *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one local repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			repo, err := service.ShowRepo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRepoInfo(repo)
			return nil
		},
	}
	return cmd
}

func newRepoCreateCommand(cfg *RootConfig) *cobra.Command {
	opts := repoEditOptions{}
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a local repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			repo, err := service.CreateRepo(cmd.Context(), types.RepoInfo{
				Name:                args[0],
				Comment:             opts.Comment,
				DefaultDistribution: opts.Distribution,
				DefaultComponent:    opts.Component,
			})
			if err != nil {
				return err
			}
			printRepoInfo(repo)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRepoEditCommand(cfg *RootConfig) *cobra.Command {
	opts := repoEditOptions{}
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a local repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			repo, err := service.EditRepo(cmd.Context(), types.RepoInfo{
				Name:                args[0],
				Comment:             opts.Comment,
				DefaultDistribution: opts.Distribution,
				DefaultComponent:    opts.Component,
			})
			if err != nil {
				return err
			}
			printRepoInfo(repo)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRepoDeleteCommand(cfg *RootConfig) *cobra.Command {
	force := false
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a local repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			return service.DeleteRepo(cmd.Context(), args[0], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete the repo even when publishes or snapshots use it")
	return cmd
}

type repoEditOptions struct {
	Comment      string
	Distribution string
	Component    string
}

func (o *repoEditOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Comment, "comment", "", "Text describing the repo")
	cmd.Flags().StringVar(&o.Distribution, "dist", "", "Default distribution when publishing from this repo")
	cmd.Flags().StringVar(&o.Component, "comp", "", "Default component when publishing from this repo")
}

func printRepoInfo(repo types.RepoInfo) {
	fmt.Println(repo.Name)
	fmt.Println("    Default distribution: " + repo.DefaultDistribution)
	fmt.Println("    Default component: " + repo.DefaultComponent)
	fmt.Println("    Comment: " + repo.Comment)
}
