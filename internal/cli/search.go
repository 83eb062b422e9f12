package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aptly-ctl/internal/app"
	"aptly-ctl/internal/types"
)

type searchOptions struct {
	Repos    []string
	Name     bool
	WithDeps bool
	Rotate   int
	DirRefs  bool
}

func newSearchCommand(cfg *RootConfig) *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [QUERY...]",
		Short: "Search packages in local repos",
		Long: "Search packages and print the found references to stdout. With " +
			"--rotate N only the surplus beyond the N newest versions per " +
			"package is printed, pipeable to remove.",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			rotate := cmd.Flags().Changed("rotate")
			result, err := service.RunSearch(cmd.Context(), app.SearchRequest{
				Repos:     opts.Repos,
				Queries:   args,
				NameRegex: opts.Name,
				WithDeps:  opts.WithDeps,
				Rotate:    rotate,
				Keep:      opts.Rotate,
			})
			if err != nil {
				return err
			}
			refs := result.Packages
			if result.Rotated {
				refs = result.Rotation.Surplus
			}
			for _, ref := range refs {
				printRef(ref, opts.DirRefs)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&opts.Repos, "repo", "r", nil, "Limit search to the given repos (repeatable)")
	cmd.Flags().BoolVarP(&opts.Name, "name", "n", false, "Treat the query as a regex of the package name")
	cmd.Flags().BoolVar(&opts.WithDeps, "with-deps", false, "Include same-repo dependencies in the result")
	cmd.Flags().IntVar(&opts.Rotate, "rotate", 0, "Keep N newest versions per package and print the rest")
	cmd.Flags().BoolVar(&opts.DirRefs, "dir-refs", false, "Print direct references instead of aptly keys")
	return cmd
}

func printRef(ref types.PackageRef, dirRefs bool) {
	if dirRefs {
		fmt.Printf("%q\n", ref.Repo+"/"+ref.DirRef())
		return
	}
	fmt.Printf("%q\n", ref.String())
}
