package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainstash/chainstash/ui"
)

var nftCmd = &cobra.Command{
	Use:   "nft",
	Short: "Resolve and search NFT metadata",
}

var nftResolveCmd = &cobra.Command{
	Use:   "resolve <contract> <tokenId>",
	Short: "Resolve a token's metadata and store it",
	Long: `Reads tokenURI from the contract, fetches and validates the metadata
document behind it (data URIs decode locally, ipfs:// and ar:// go through
public gateways) and stores the result keyed by contract and token id.
Resolving the same token again refreshes the stored record in place.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		u := ui.NewTerminalUI()

		idx, err := app.metadataIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx, cancel := commandContext()
		defer cancel()

		stop := u.Spinner("Resolving token metadata...")
		record, err := app.assembler(idx).Resolve(ctx, args[0], args[1])
		stop()
		if err != nil {
			return reportError(u, err)
		}

		u.Section("Resolved metadata")
		u.Indent().KeyValue([][2]string{
			{"Contract", record.ContractAddress},
			{"Token ID", record.TokenID},
			{"Name", record.Name},
			{"Description", record.Description},
			{"Image", record.ImageURL},
		})
		return nil
	},
}

var nftSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search previously resolved metadata by name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		u := ui.NewTerminalUI()

		idx, err := app.metadataIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		hits, err := idx.Search(args[0])
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			u.Warn("No resolved metadata matches %q", args[0])
			return nil
		}

		rows := [][]string{}
		for _, hit := range hits {
			rows = append(rows, []string{
				hit.ContractAddress,
				hit.TokenID,
				hit.Name,
				fmt.Sprintf("%.3f", hit.Score),
			})
		}
		u.Table([]string{"Contract", "Token", "Name", "Score"}, rows)
		return nil
	},
}

func init() {
	nftCmd.AddCommand(nftResolveCmd)
	nftCmd.AddCommand(nftSearchCmd)
	rootCmd.AddCommand(nftCmd)
}
