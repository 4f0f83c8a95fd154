package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainstash/chainstash/ui"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Store and fetch content-addressed payloads",
}

var contentStoreCmd = &cobra.Command{
	Use:   "store <content>",
	Short: "Store a payload and print its content hash",
	Long: `Hashes the given payload the way the content network would and keeps it
in the local store under that hash. Storing the same payload again is a
no-op and prints the same hash.`,
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

		hash, err := app.fetcher().Put(ctx, []byte(args[0]))
		if err != nil {
			return reportError(u, err)
		}
		u.Success("Content stored")
		u.KeyValue([][2]string{
			{"Hash", hash},
		})
		return nil
	},
}

var contentFetchCmd = &cobra.Command{
	Use:   "fetch <hash>",
	Short: "Fetch a payload by content hash",
	Long: `Looks the hash up in the local store first; only on a miss does it go to
the content gateway, and a fetched payload is only accepted if its bytes
hash back to the requested id. Network fetches are cached, so the second
fetch of any hash is always local.`,
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

		stop := u.Spinner("Fetching content...")
		payload, err := app.fetcher().Get(ctx, args[0])
		stop()
		if err != nil {
			return reportError(u, err)
		}
		renderPayload(u, args[0], payload)
		return nil
	},
}

// renderPayload prints the hash and then the payload bytes indented one
// level, so multiline content (pretty-printed JSON) stays visually attached
// to its hash.
func renderPayload(u ui.UI, hash string, payload []byte) {
	u.KeyValue([][2]string{
		{"Hash", hash},
	})
	u.Info("Content:")
	fmt.Fprintf(u.Indent().Writer(), "%s\n", payload)
}

func init() {
	contentCmd.AddCommand(contentStoreCmd)
	contentCmd.AddCommand(contentFetchCmd)
	rootCmd.AddCommand(contentCmd)
}
