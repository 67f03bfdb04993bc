package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/meta-collector/internal/export"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export [format]",
		Short: "Write the wishlist of a format without starting a session",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runExport(cmd.Context(), flags, arg, formatName, output)
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "", "Export format: text, csv or json (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout (default a timestamped file in the export directory)")
	return cmd
}

func runExport(ctx context.Context, flags *globalFlags, formatArg, formatName, output string) error {
	env, err := openEnvironment(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	f, err := env.resolveFormat(formatArg)
	if err != nil {
		return err
	}

	exportFormat, err := env.cfg.GetExportFormat()
	if formatName != "" {
		exportFormat, err = export.ParseFormat(formatName)
	}
	if err != nil {
		return err
	}

	_, snapshot, err := env.snapshot(ctx, f)
	if err != nil {
		return err
	}

	builder := export.NewExportBuilder().WithFormat(exportFormat).WithPrettyJSON(true)
	switch output {
	case "-":
		builder = builder.WithWriter(os.Stdout)
	case "":
		builder = builder.WithTimestampedFilename(env.cfg.Export.Dir, "wishlist_"+f.String())
	default:
		builder = builder.WithFilePath(output).WithOverwrite(true)
	}

	if err := builder.Export(wishlist.Export(snapshot.Wishlist)); err != nil {
		return err
	}
	if output != "-" {
		fmt.Printf("✓ Exported %d cards to %s\n", len(snapshot.Wishlist), builder.FilePath())
	}
	return nil
}
