package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/store"
)

func openBook() (*alerts.Book, *store.SQLite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	book, err := alerts.NewBook(db, zap.NewNop())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return book, db, nil
}

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and edit persisted price alerts",
	}

	var symbol string
	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts, optionally filtered by symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, db, err := openBook()
			if err != nil {
				return err
			}
			defer db.Close()

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSYMBOL\tTARGET\tDIRECTION\tTRIGGERED\tCREATED")
			for _, a := range book.List(symbol) {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%v\t%s\n",
					a.ID, a.Symbol, a.TargetPrice, a.Direction, a.Triggered,
					a.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")

	add := &cobra.Command{
		Use:   "add <symbol> <target-price> <above|below>",
		Short: "Add a one-shot price alert",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad target price %q: %w", args[1], err)
			}
			dir, err := alerts.ParseDirection(args[2])
			if err != nil {
				return err
			}

			book, db, err := openBook()
			if err != nil {
				return err
			}
			defer db.Close()

			a, err := book.Add(args[0], target, dir)
			if err != nil {
				return err
			}
			fmt.Println(a.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <alert-id>",
		Short: "Remove an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, db, err := openBook()
			if err != nil {
				return err
			}
			defer db.Close()

			if !book.Remove(args[0]) {
				return fmt.Errorf("no alert %q", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}
