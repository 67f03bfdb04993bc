package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/version"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	dbPath     string
}

// usageError marks bad command line input.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := rootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(root, err))
}

func exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var usage usageError
	if errors.As(err, &usage) || errs.IsConfiguration(err) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, root.UsageString())
		return exitUsage
	}
	return exitFailure
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "meta-collector [format]",
		Short: "Compare your Magic collection against the competitive meta",
		Long: fmt.Sprintf(`meta-collector scores every card of a format's current meta by how much it is
played, compares the result with your collection and lets you browse the
cards you are missing, most important first.

Supported formats: %s.
Without a format argument the configured format is used (default %s).
Formats may be abbreviated or misspelled slightly: "pau" and "moddern" work.`,
			strings.Join(format.Names(), ", "), format.Default),
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runSession(cmd.Context(), flags, arg)
		},
	}
	root.Version = version.Version
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.meta-collector/config.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "Database path (default ~/.meta-collector/collector.db)")

	root.AddCommand(checkCmd(flags))
	root.AddCommand(collectionCmd(flags))
	root.AddCommand(exportCmd(flags))
	root.AddCommand(migrateCmd(flags))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the meta-collector version",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Version)
		},
	}
}
