package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainstash/chainstash/store"
	"github.com/chainstash/chainstash/ui"
)

var (
	txsFrom string
	txsTo   string
)

var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "Ingest and query transaction history",
}

var txsIngestCmd = &cobra.Command{
	Use:   "ingest <address>",
	Short: "Pull an address's recent transactions from the explorer",
	Long: `Fetches the most recent transactions for the address from the explorer
API and stores each one under its hash. Transactions already in the store
are left untouched, so re-running ingestion is always safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		u := ui.NewTerminalUI()

		ctx, cancel := commandContext()
		defer cancel()

		stop := u.Spinner("Fetching transactions from explorer...")
		result, err := app.ingester().Ingest(ctx, args[0])
		stop()
		if err != nil {
			return reportError(u, err)
		}
		u.Success("Transactions stored successfully")
		u.KeyValue([][2]string{
			{"Fetched", fmt.Sprintf("%d", result.Fetched)},
			{"New", fmt.Sprintf("%d", result.Stored)},
		})
		return nil
	},
}

var txsListCmd = &cobra.Command{
	Use:   "list <address>",
	Short: "List stored transactions for an address, newest first",
	Long: `Lists transactions previously ingested for the address. --from and --to
take dates (2006-01-02) or RFC3339 timestamps and bound the listing
inclusively on both ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		u := ui.NewTerminalUI()

		start, err := parseTimeFlag(txsFrom)
		if err != nil {
			return err
		}
		end, err := parseTimeFlag(txsTo)
		if err != nil {
			return err
		}

		txs, err := app.ingester().Query(args[0], start, end)
		if err != nil {
			return reportError(u, err)
		}
		if len(txs) == 0 {
			u.Warn("No stored transactions for %s in that range", args[0])
			return nil
		}

		u.Table(
			[]string{"Hash", "Time (UTC)", "Block", "From", "To", "Value (wei)", "Status"},
			txRows(u, txs),
		)
		return nil
	},
}

// txRows formats stored transactions for the listing table. The status cell
// is styled through the UI so failed transactions stand out in a terminal
// while plain-text consumers still read "ok"/"failed".
func txRows(u ui.UI, txs []store.Transaction) [][]string {
	rows := [][]string{}
	for _, tx := range txs {
		status := u.Style(ui.StyledText{Text: "ok", Severity: ui.SeveritySuccess})
		if tx.IsError == "1" {
			status = u.Style(ui.StyledText{Text: "failed", Severity: ui.SeverityError})
		}
		rows = append(rows, []string{
			tx.Hash,
			tx.TimeStamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", tx.BlockNumber),
			tx.Sender,
			tx.Recipient,
			tx.Value,
			status,
		})
	}
	return rows
}

// parseTimeFlag accepts a bare date or a full RFC3339 timestamp. An empty
// flag means no bound.
func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("couldn't parse %q as a date (2006-01-02) or RFC3339 timestamp", value)
}

func init() {
	txsListCmd.Flags().StringVar(&txsFrom, "from", "", "inclusive lower bound on transaction time")
	txsListCmd.Flags().StringVar(&txsTo, "to", "", "inclusive upper bound on transaction time")
	txsCmd.AddCommand(txsIngestCmd)
	txsCmd.AddCommand(txsListCmd)
	rootCmd.AddCommand(txsCmd)
}
