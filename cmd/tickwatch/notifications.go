package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirhB/tickwatch/notify"
	"github.com/sirhB/tickwatch/store"
)

func openLog() (*notify.Log, *store.SQLite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	l, err := notify.NewLog(cfg.Notify.Cap, db, notify.Nop{}, zap.NewNop())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return l, db, nil
}

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inspect the notification log",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openLog()
			if err != nil {
				return err
			}
			defer db.Close()

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTITLE\tMESSAGE")
			for _, n := range l.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n",
					n.Time.Format("2006-01-02 15:04:05"), n.Title, n.Message)
			}
			return tw.Flush()
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete every notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openLog()
			if err != nil {
				return err
			}
			defer db.Close()
			l.Clear()
			return nil
		},
	}

	cmd.AddCommand(list, clear)
	return cmd
}
