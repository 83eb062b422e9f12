package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"aptly-ctl/internal/app"
	"aptly-ctl/internal/types"
)

func newPublishCommand(cfg *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Administer publishes",
	}
	cmd.AddCommand(newPublishListCommand(cfg))
	cmd.AddCommand(newPublishCreateCommand(cfg))
	cmd.AddCommand(newPublishUpdateCommand(cfg))
	cmd.AddCommand(newPublishDropCommand(cfg))
	return cmd
}

func newPublishListCommand(cfg *RootConfig) *cobra.Command {
	detail := false
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publishes",
		Long: "List publishes as \"[storage:]prefix/distribution\" specs, one " +
			"per line, pipeable into update and drop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			publishes, err := service.ListPublishes(cmd.Context())
			if err != nil {
				return err
			}
			for _, publish := range publishes {
				if detail {
					printPublishInfo(publish)
				} else {
					fmt.Println(publish.Key())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&detail, "detail", false, "Print source kind, sources, and stanza fields for every publish")
	return cmd
}

func newPublishCreateCommand(cfg *RootConfig) *cobra.Command {
	opts := publishCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create SPEC SOURCE...",
		Short: "Publish local repos or snapshots",
		Long: "Create the publish named by SPEC (\"[storage:]prefix/distribution\") " +
			"from the given sources. A source is a repo or snapshot name, " +
			"optionally suffixed with \"=component\".",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			sources, err := parsePublishSources(args[1:])
			if err != nil {
				return err
			}
			var architectures []string
			if opts.Architectures != "" {
				architectures = strings.Split(opts.Architectures, ",")
			}
			created, err := service.CreatePublish(cmd.Context(), app.PublishCreateRequest{
				Spec:           args[0],
				SourceKind:     types.SourceKind(opts.SourceKind),
				Sources:        sources,
				Architectures:  architectures,
				Label:          opts.Label,
				Origin:         opts.Origin,
				ForceOverwrite: opts.ForceOverwrite,
			})
			if err != nil {
				return err
			}
			printPublishInfo(created)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.SourceKind, "source-kind", "s", "local", "Publish from local repos or snapshots (local|snapshot)")
	cmd.Flags().StringVar(&opts.Architectures, "architectures", "", "Comma separated list of architectures to publish")
	cmd.Flags().StringVar(&opts.Label, "label", "", "Value of the Label field in the published stanza")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "Value of the Origin field in the published stanza")
	cmd.Flags().BoolVarP(&opts.ForceOverwrite, "force-overwrite", "f", false, "Overwrite files in the pool directory")
	return cmd
}

func newPublishUpdateCommand(cfg *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update SPEC",
		Short: "Update a published local repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			updated, err := service.UpdatePublish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(updated.Key())
			return nil
		},
	}
	return cmd
}

func newPublishDropCommand(cfg *RootConfig) *cobra.Command {
	force := false
	cmd := &cobra.Command{
		Use:   "drop SPEC",
		Short: "Drop a publish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newSyncService(cmd, cfg)
			if err != nil {
				return err
			}
			return service.DropPublish(cmd.Context(), args[0], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Drop the publish without cleaning up the pool")
	return cmd
}

type publishCreateOptions struct {
	SourceKind     string
	Architectures  string
	Label          string
	Origin         string
	ForceOverwrite bool
}

func parsePublishSources(args []string) ([]types.PublishSource, error) {
	sources := make([]types.PublishSource, 0, len(args))
	for _, arg := range args {
		name, component, _ := strings.Cut(arg, "=")
		if name == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid source %q: the name must not be empty", arg))
		}
		sources = append(sources, types.PublishSource{Name: name, Component: component})
	}
	return sources, nil
}

func printPublishInfo(publish types.PublishTarget) {
	fmt.Println(publish.Key())
	fmt.Println("    Source kind: " + string(publish.SourceKind))
	fmt.Println("    Storage: " + publish.Storage)
	fmt.Println("    Label: " + publish.Label)
	fmt.Println("    Origin: " + publish.Origin)
	fmt.Println("    Architectures: " + strings.Join(publish.Architectures, ", "))
	fmt.Println("    Sources: " + strings.Join(publish.Sources, ", "))
}
