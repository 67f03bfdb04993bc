package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/storage"
)

func collectionCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Edit the stored collection",
	}
	cmd.AddCommand(collectionAddCmd(flags))
	cmd.AddCommand(collectionRemoveCmd(flags))
	cmd.AddCommand(collectionImportCmd(flags))
	cmd.AddCommand(collectionListCmd(flags))
	cmd.AddCommand(collectionBackupsCmd(flags))
	return cmd
}

func collectionAddCmd(flags *globalFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "add <name> [set]",
		Short: "Add owned copies of a card",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), flags, func(ctx context.Context, store *collection.Store) error {
				name, set := cardArgs(args)
				var qty int
				for range max(count, 1) {
					var err error
					if qty, err = store.Add(ctx, name, set); err != nil {
						return err
					}
				}
				fmt.Printf("✓ %s: %d owned\n", name, qty)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of copies")
	return cmd
}

func collectionRemoveCmd(flags *globalFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "remove <name> [set]",
		Short: "Remove owned copies of a card",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), flags, func(ctx context.Context, store *collection.Store) error {
				name, set := cardArgs(args)
				qty, removedAny := 0, false
				for range max(count, 1) {
					n, removed, err := store.Remove(ctx, name, set)
					if err != nil {
						return err
					}
					if !removed {
						break
					}
					qty, removedAny = n, true
				}
				if !removedAny {
					fmt.Printf("No copies of %s to remove\n", name)
					return nil
				}
				fmt.Printf("✓ %s: %d owned\n", name, qty)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of copies")
	return cmd
}

func collectionImportCmd(flags *globalFlags) *cobra.Command {
	var noBackup bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored collection with a file",
		Long: `Import replaces the stored collection with the cards of a file:
  .json  {"Lightning Bolt": ["m10", "2xm"]} or {"Lightning Bolt": 2}
  .yaml  Lightning Bolt: 2
  other  decklist lines such as "2 Lightning Bolt (M10)"`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			entries, err := collection.LoadFile(args[0])
			if err != nil {
				return err
			}
			if !noBackup {
				backup, err := env.storage.Backup(cmd.Context(), storage.DefaultBackupConfig(env.cfg.App.DBPath))
				if err != nil {
					return err
				}
				fmt.Printf("Previous collection saved to %s\n", backup)
			}
			policy, _ := env.cfg.GetDuplicatePolicy()
			owned, err := env.store.Import(cmd.Context(), entries, policy)
			if err != nil {
				return err
			}
			for _, w := range owned.Warnings() {
				fmt.Printf("warning: %s\n", w)
			}
			fmt.Printf("✓ Imported %d copies of %d cards\n", owned.Total(), owned.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not back up the database before replacing the collection")
	return cmd
}

func collectionBackupsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List database backups taken before imports",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			backups, err := storage.ListBackups(storage.DefaultBackupConfig(cfg.App.DBPath).Dir)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("No backups.")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%s  %s  %d bytes\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Path, b.Size)
			}
			return nil
		},
	}
}

func collectionListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored collection",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), flags, func(ctx context.Context, store *collection.Store) error {
				owned, err := store.List(ctx)
				if err != nil {
					return err
				}
				displayCollection(owned)
				return nil
			})
		},
	}
}

func withStore(ctx context.Context, flags *globalFlags, fn func(context.Context, *collection.Store) error) error {
	env, err := openEnvironment(flags)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env.store)
}

func cardArgs(args []string) (name, set string) {
	name = args[0]
	if len(args) > 1 {
		set = args[1]
	}
	return name, set
}
