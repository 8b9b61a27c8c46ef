package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/backup"
)

func backupCmd() *cobra.Command {
	var (
		passphrase string
		list       bool
		restoreKey string
		cleanup    int
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload, list or restore encrypted snapshots",
		Long: `Upload an encrypted snapshot of the household to S3-compatible storage.

Restoring replaces the stored state. Stop any running "foyer serve" first,
it keeps its own copy in memory and would overwrite the restore.

Examples:
  foyer backup --passphrase "correct horse"
  foyer backup --list
  foyer backup --restore foyer/backup-2026-10-18T093000Z.json.enc --passphrase "correct horse"
  foyer backup --cleanup 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				passphrase = os.Getenv("FOYER_BACKUP_PASSPHRASE")
			}

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := cmd.Context()
			e, err := rt.engine(ctx)
			if err != nil {
				return err
			}
			m := backup.NewManager(rt.cfg.BackupS3(), e, rt.logger, nil)
			out := cmd.OutOrStdout()

			switch {
			case list:
				backups, err := m.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tSIZE\tCREATED")
				for _, b := range backups {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Key, b.SizeBytes, b.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			case cleanup > 0:
				removed, err := m.Cleanup(ctx, cleanup)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "removed %d backup(s)\n", len(removed))
				return nil
			case restoreKey != "":
				if passphrase == "" {
					return errors.New("--passphrase is required to restore")
				}
				if err := m.Restore(ctx, restoreKey, passphrase); err != nil {
					return err
				}
				fmt.Fprintf(out, "restored %s\n", restoreKey)
				return nil
			}

			if passphrase == "" {
				return errors.New("--passphrase is required")
			}
			rec, err := m.RunNow(ctx, passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "uploaded %s (%d bytes)\n", rec.Key, rec.SizeBytes)
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "encryption passphrase (or FOYER_BACKUP_PASSPHRASE)")
	cmd.Flags().BoolVar(&list, "list", false, "list stored backups")
	cmd.Flags().StringVar(&restoreKey, "restore", "", "restore the backup with this key")
	cmd.Flags().IntVar(&cleanup, "cleanup", 0, "delete backups older than this many days")
	return cmd
}
