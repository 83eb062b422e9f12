package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aptly-ctl/internal/adapters"
	"aptly-ctl/internal/app"
	"aptly-ctl/internal/core"
	"aptly-ctl/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "APTLY_CTL"

type RootConfig struct {
	ConfigFile string
	Profile    string
	URL        string
	TimeoutSec int
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := &RootConfig{}
	cmd := &cobra.Command{
		Use:           "aptly-ctl",
		Short:         "Maintain local repos and publishes on a remote aptly service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			initConfig()
			setupLogging(resolveString(cmd, cfg.LogLevel, "log_level", "log-level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfg.ConfigFile, "config", "c", "", "Config file path")
	cmd.PersistentFlags().StringVarP(&cfg.Profile, "profile", "p", "", "Profile name or number in config file")
	cmd.PersistentFlags().StringVar(&cfg.URL, "url", "", "API endpoint url, overrides the profile")
	cmd.PersistentFlags().IntVar(&cfg.TimeoutSec, "timeout", 0, "API request timeout in seconds")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("profile", cmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("url", cmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newPutCommand(cfg))
	cmd.AddCommand(newRemoveCommand(cfg))
	cmd.AddCommand(newCopyCommand(cfg))
	cmd.AddCommand(newSearchCommand(cfg))
	cmd.AddCommand(newRepoCommand(cfg))
	cmd.AddCommand(newPublishCommand(cfg))
	return cmd
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
}

// setupLogging writes human-readable events to stderr; stdout carries only
// package references so command output stays pipeable.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// newSyncService loads the selected profile, applies flag overrides, and
// wires the API adapter into an app service.
func newSyncService(cmd *cobra.Command, cfg *RootConfig) (app.Service, error) {
	configFile := resolveString(cmd, cfg.ConfigFile, "config", "config")
	selector := resolveString(cmd, cfg.Profile, "profile", "profile")
	profile, err := adapters.NewProfileSourceAdapter().LoadProfile(configFile, selector)
	if err != nil {
		return app.Service{}, err
	}
	if url := resolveString(cmd, cfg.URL, "url", "url"); url != "" {
		profile.URL = url
	}
	if timeout := resolveInt(cmd, cfg.TimeoutSec, "timeout", "timeout"); timeout > 0 {
		profile.TimeoutSec = timeout
	}
	aptly := adapters.NewAptlyAPIAdapter(profile.URL, "", "", profile.TimeoutSec, 0, 0)
	return app.NewService(aptly, profile, log.Logger), nil
}

// reportOutcome prints succeeded package references to stdout in quoted
// form and logs every failure with its kind. A non-empty failure list
// turns into a non-zero exit.
func reportOutcome(outcome types.SyncOutcome) error {
	for _, item := range outcome.Succeeded {
		if item.Package != nil {
			fmt.Printf("%q\n", item.Package.String())
		}
	}
	for _, failure := range outcome.Failed {
		log.Error().
			Str("item", failure.Item.String()).
			Str("kind", string(failure.Kind)).
			Msg(failure.Message)
	}
	if !outcome.OK() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%d of %d items failed", len(outcome.Failed), len(outcome.Failed)+len(outcome.Succeeded)))
	}
	return nil
}

// readRefLines collects non-empty lines, stripping the quotes other
// subcommands emit for copy-paste convenience.
func readRefLines(r io.Reader) []string {
	var refs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"'`)
		if line != "" {
			refs = append(refs, line)
		}
	}
	return refs
}

func exitCodeForError(err error) int {
	if errors.Is(err, core.ErrInvalidVersion) {
		return 2
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal, errbuilder.CodeUnavailable:
		return 5
	default:
		return 1
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
