package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chainstash",
	Short: "Resolve and keep externally-sourced chain content locally",
	Long: `Chainstash resolves content that lives around a blockchain: pinned
content-addressed payloads, NFT metadata behind tokenURI, transaction
histories from a block explorer. It keeps everything it has seen in a
local store so repeated lookups never hit the network twice.

It talks to three upstreams:

	1. An Ethereum node for read-only contract calls (tokenURI, name).
	2. Public IPFS and Arweave gateways for content-addressed payloads.
	3. An etherscan-compatible explorer API for transaction history.

Configuration comes from env vars. The ones you are most likely to set:

	ETHEREUM_MAINNET_NODE  JSON-RPC endpoint for contract reads
	ETHERSCAN_API_KEY      explorer API key (recommended for stability)
	IPFS_GATEWAY           content gateway, defaults to https://ipfs.io/ipfs/
	CHAINSTASH_DB          sqlite path, defaults to ~/.chainstash/chainstash.db

Everything fetched is deduplicated by its natural identity: content by its
hash, NFT metadata by (contract, token id), transactions by tx hash. Running
the same command twice never stores the same thing twice.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
