package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plutus-ledger/plutus/internal/lookup"
)

func newLookupCommand(global *globalOptions) *cobra.Command {
	var rulesPath string
	var fallback bool

	cmd := &cobra.Command{
		Use:   "lookup <source> <description>...",
		Short: "Show the account a statement description resolves to",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := global.source(args[0])
			if err != nil {
				return err
			}
			opts, err := global.buildOptions(cmd)
			if err != nil {
				return err
			}
			opts.RulesPath = rulesPath
			accts, rules, err := src.Resolve(opts)
			if err != nil {
				return err
			}

			description := strings.Join(args[1:], " ")
			acct, err := rules.Lookup(description)
			if errors.Is(err, lookup.ErrNotFound) && fallback {
				acct, err = accts.Unknown, nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acct)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "lookup rules CSV replacing the configured dataset")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "print the unknown account instead of failing on a miss")

	return cmd
}

func newRulesCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules <source>",
		Short: "Print the effective lookup rules of a source as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := global.source(args[0])
			if err != nil {
				return err
			}
			opts, err := global.buildOptions(cmd)
			if err != nil {
				return err
			}
			_, rules, err := src.Resolve(opts)
			if err != nil {
				return err
			}
			table, err := rules.Table()
			if err != nil {
				return err
			}
			return lookup.WriteRules(cmd.OutOrStdout(), table.Rules())
		},
	}
}

func newSourcesCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the supported statement sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, format := range global.registry.Formats() {
				src, _ := global.registry.Get(format)
				fmt.Fprintf(w, "%-20s %s (env prefix %s)\n", format, src.Help, src.EnvPrefix)
			}
			return nil
		},
	}
}
