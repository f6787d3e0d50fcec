package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pastry/internal/version"
	"github.com/arthur-debert/pastry/pkg/config"
	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/pastry"
	"github.com/arthur-debert/pastry/pkg/paths"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity            int
		noInput              bool
		checkout             string
		directory            string
		replayLast           bool
		replayFile           string
		overwriteIfExists    bool
		skipIfFileExists     bool
		outputDir            string
		configFile           string
		defaultConfig        bool
		acceptHooks          string
		listInstalled        bool
		keepProjectOnFailure bool
	)

	rootCmd := &cobra.Command{
		Use:     "pastry TEMPLATE [EXTRA_CONTEXT...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if listInstalled {
				return nil
			}
			if len(args) < 1 {
				return errors.New(errors.ErrInvalidInput, "a TEMPLATE argument is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if listInstalled {
				return runListInstalled(cmd, configFile, defaultConfig)
			}

			hooksOn, err := parseAcceptHooks(acceptHooks)
			if err != nil {
				return err
			}

			extra, err := parseExtraContext(args[1:])
			if err != nil {
				return err
			}

			opts := pastry.Options{
				Template:             args[0],
				Checkout:             checkout,
				NoInput:              noInput,
				Replay:               replayLast,
				ReplayFile:           replayFile,
				OverwriteIfExists:    overwriteIfExists,
				OutputDir:            outputDir,
				ConfigFile:           configFile,
				DefaultConfig:        defaultConfig,
				Directory:            directory,
				SkipIfFileExists:     skipIfFileExists,
				AcceptHooks:          hooksOn,
				KeepProjectOnFailure: keepProjectOnFailure,
			}
			if extra != nil {
				// A typed nil stored in the interface field would read
				// as present to the replay conflict check.
				opts.ExtraContext = extra
			}

			projectDir, err := pastry.Bake(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), projectDir)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.Flags().BoolVar(&noInput, "no-input", false, MsgFlagNoInput)
	rootCmd.Flags().StringVarP(&checkout, "checkout", "c", "", MsgFlagCheckout)
	rootCmd.Flags().StringVar(&directory, "directory", "", MsgFlagDirectory)
	rootCmd.Flags().BoolVar(&replayLast, "replay", false, MsgFlagReplay)
	rootCmd.Flags().StringVar(&replayFile, "replay-file", "", MsgFlagReplayFile)
	rootCmd.Flags().BoolVarP(&overwriteIfExists, "overwrite-if-exists", "f", false, MsgFlagOverwrite)
	rootCmd.Flags().BoolVarP(&skipIfFileExists, "skip-if-file-exists", "s", false, MsgFlagSkipExisting)
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", MsgFlagOutputDir)
	rootCmd.Flags().StringVar(&configFile, "config-file", "", MsgFlagConfigFile)
	rootCmd.Flags().BoolVar(&defaultConfig, "default-config", false, MsgFlagDefaultConfig)
	rootCmd.Flags().StringVar(&acceptHooks, "accept-hooks", "yes", MsgFlagAcceptHooks)
	rootCmd.Flags().BoolVarP(&listInstalled, "list-installed", "l", false, MsgFlagListInstalled)
	rootCmd.Flags().BoolVar(&keepProjectOnFailure, "keep-project-on-failure", false, MsgFlagKeepOnFail)

	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pastry version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

func parseAcceptHooks(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, errors.Newf(errors.ErrInvalidInput,
			"invalid --accept-hooks value %q, expected yes or no", value)
	}
}

// parseExtraContext turns trailing key=value arguments into an
// ordered overlay, first occurrence first.
func parseExtraContext(args []string) (*vars.OrderedMap, error) {
	if len(args) == 0 {
		return nil, nil
	}
	extra := vars.NewOrderedMap()
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"extra context %q is not of the form key=value", arg)
		}
		extra.Set(key, value)
	}
	return extra, nil
}

// runListInstalled prints the names of templates already present in
// the local cache.
func runListInstalled(cmd *cobra.Command, configFile string, defaultConfig bool) error {
	cfg, err := config.Load(configFile, defaultConfig, paths.New())
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(cfg.TemplatesDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "0 installed templates:\n")
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess,
			"failed to read templates directory %s", cfg.TemplatesDir)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		definition := filepath.Join(cfg.TemplatesDir, entry.Name(), vars.DefinitionFile)
		if _, err := os.Stat(definition); err == nil {
			names = append(names, entry.Name())
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d installed templates:\n", len(names))
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), " * %s\n", name)
	}
	return nil
}
