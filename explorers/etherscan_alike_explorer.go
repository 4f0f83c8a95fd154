// Package explorers talks to etherscan-style block explorer APIs. Only the
// account txlist action is used; the response envelope and the string-typed
// wire fields are shared across every etherscan-compatible deployment.
package explorers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/webclient"
)

type EtherscanLikeExplorer struct {
	Domain string
	APIKey string

	client *webclient.Client
}

func NewEtherscanLikeExplorer(domain, apiKey string, client *webclient.Client) *EtherscanLikeExplorer {
	return &EtherscanLikeExplorer{
		Domain: domain,
		APIKey: apiKey,
		client: client,
	}
}

// Transaction is the explorer's wire shape: every field arrives as a string
// regardless of its real type. Parsing to typed values happens at ingestion.
type Transaction struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	BlockHash         string `json:"blockHash"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contractAddress"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	Confirmations     string `json:"confirmations"`
	MethodID          string `json:"methodId"`
	FunctionName      string `json:"functionName"`
}

type txlistResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (ee *EtherscanLikeExplorer) TxListAPIURL(address string, page, offset int) string {
	return fmt.Sprintf(
		"%s/api?module=account&action=txlist&address=%s&page=%d&offset=%d&sort=desc&apikey=%s",
		ee.Domain,
		url.QueryEscape(address),
		page,
		offset,
		ee.APIKey,
	)
}

// RecentTransactions returns the offset most recent transactions for
// address, newest first. A reachable explorer that reports a non-success
// status is still an upstream fault; on errors the Result field carries a
// human-readable string rather than a transaction list.
func (ee *EtherscanLikeExplorer) RecentTransactions(
	ctx context.Context,
	address string,
	page, offset int,
) ([]Transaction, error) {
	reqURL := ee.TxListAPIURL(address, page, offset)
	resp := txlistResponse{}
	status, err := ee.client.GetJSON(ctx, reqURL, &resp)
	if err != nil {
		return nil, common.Tag(common.ErrUpstream, "querying explorer", err)
	}
	if status != http.StatusOK {
		return nil, common.Tagf(common.ErrUpstream, "explorer returned status %d", status)
	}
	if resp.Status != "1" {
		return nil, common.Tagf(common.ErrUpstream, "explorer error: %s", resp.Message)
	}
	txs := []Transaction{}
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, common.Tag(common.ErrMalformedData, "decoding explorer result", err)
	}
	return txs, nil
}
