package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func backupCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage encrypted snapshots in object storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Take and upload a snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.srv.BackupManager().RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup %d completed\n", id)
			return nil
		},
	})

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			backups, err := a.srv.BackupManager().List(limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tSIZE\tCREATED\tFILE")
			for _, b := range backups {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", b.ID, b.Status, b.SizeBytes, b.CreatedAt.Format("2006-01-02 15:04"), b.Filename)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots to show")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Replace all collections with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid backup id %q", args[0])
			}
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.srv.BackupManager().Restore(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup %d restored\n", id)
			return nil
		},
	})
	return cmd
}
