package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/meta-collector/internal/deckcheck"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/export"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var wishlistOnly bool

	cmd := &cobra.Command{
		Use:   "check <deckfile|url>",
		Short: "Check which cards of a decklist you own",
		Long: `Check reads a decklist file (Arena export or "4 Lightning Bolt" lines) or a
published deck page and prints owned and needed copies per card. Basic lands
always count as owned.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), flags, args[0], wishlistOnly)
		},
	}
	cmd.Flags().BoolVar(&wishlistOnly, "wishlist", false, "Print only the missing cards, one \"{count} {name}\" line each")
	return cmd
}

func runCheck(ctx context.Context, flags *globalFlags, source string, wishlistOnly bool) error {
	env, err := openEnvironment(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	owned, err := env.collection(ctx)
	if err != nil {
		return err
	}

	var report deckcheck.Report
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		deck, err := deckcheck.FetchDeck(ctx, env.fetcher, source)
		if err != nil {
			return errs.DataFetch(source, err)
		}
		report = deckcheck.Check(deck, owned)
	} else {
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read decklist: %w", err)
		}
		report, err = deckcheck.CheckText(string(data), owned)
		if err != nil {
			return err
		}
	}

	if wishlistOnly {
		return export.ExportToWriter(os.Stdout, export.FormatText, report.Wishlist(), false)
	}
	displayCheckReport(report)
	return nil
}
