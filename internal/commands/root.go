package commands

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/buildinfo"
	"github.com/plutus-ledger/plutus/internal/config"
	"github.com/plutus-ledger/plutus/internal/importer"
)

const defaultEnvFile = ".env"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	registry   *importer.Registry
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(importer.DefaultRegistry())
}

func newRootCommand(reg *importer.Registry) *cobra.Command {
	opts := &globalOptions{registry: reg}

	rootCmd := &cobra.Command{
		Use:     "plutus",
		Short:   "Classify bank and card statements into ledger transactions",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file with account overrides (default .env if present)")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newLookupCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))
	rootCmd.AddCommand(newSourcesCommand(opts))

	return rootCmd
}

// buildOptions loads the env file and config and returns the inputs for
// resolving a source. The default config path may be missing; an explicit
// one may not.
func (o *globalOptions) buildOptions(cmd *cobra.Command) (importer.BuildOptions, error) {
	envFile, required := o.envFile, true
	if envFile == "" {
		envFile, required = defaultEnvFile, false
	}
	if err := config.LoadDotEnv(envFile, required); err != nil {
		return importer.BuildOptions{}, err
	}

	load := config.LoadOptional
	if cmd.Flags().Changed("config") {
		load = config.Load
	}
	cfg, err := load(o.configPath)
	if err != nil {
		return importer.BuildOptions{}, err
	}

	return importer.BuildOptions{Config: cfg, Environ: config.Environ()}, nil
}

// source looks up a registered source by format name.
func (o *globalOptions) source(format string) (importer.Source, error) {
	src, ok := o.registry.Get(format)
	if !ok {
		return importer.Source{}, fmt.Errorf("unknown source %q (available: %s)", format, strings.Join(o.registry.Formats(), ", "))
	}
	return src, nil
}
