// Package ingester pulls recent transaction history for an address from the
// explorer API into the store. Ingestion is insert-only and idempotent by
// transaction hash: re-ingesting a page never duplicates or mutates rows.
package ingester

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/explorers"
	"github.com/chainstash/chainstash/store"
)

type Explorer interface {
	RecentTransactions(ctx context.Context, address string, page, offset int) ([]explorers.Transaction, error)
}

type TransactionStore interface {
	InsertTransaction(record *store.Transaction) (bool, error)
	QueryTransactions(address string, start, end *time.Time) ([]store.Transaction, error)
}

type Ingester struct {
	explorer Explorer
	store    TransactionStore
	pageSize int
	logger   *zap.Logger
}

func New(explorer Explorer, txStore TransactionStore, pageSize int, logger *zap.Logger) *Ingester {
	return &Ingester{
		explorer: explorer,
		store:    txStore,
		pageSize: pageSize,
		logger:   logger,
	}
}

// IngestResult reports how many transactions the explorer returned and how
// many of them were new to the store.
type IngestResult struct {
	Fetched int
	Stored  int
}

// Ingest fetches the most recent transactions for address (one page, newest
// first) and inserts each one under its hash. A transaction whose hash is
// already stored is skipped without touching the existing row. A non-numeric
// value in a numeric field aborts the batch with ErrMalformedData naming the
// offending transaction; bad records are surfaced, never silently dropped.
func (ing *Ingester) Ingest(ctx context.Context, address string) (IngestResult, error) {
	if address == "" {
		return IngestResult{}, common.Tagf(common.ErrValidation, "missing address")
	}
	addr, ok := common.NormalizeAddress(address)
	if !ok {
		return IngestResult{}, common.Tagf(common.ErrValidation, "invalid address %q", address)
	}

	txs, err := ing.explorer.RecentTransactions(ctx, addr, 1, ing.pageSize)
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{Fetched: len(txs)}
	for _, tx := range txs {
		record, err := wireToRecord(addr, tx)
		if err != nil {
			return result, err
		}
		created, err := ing.store.InsertTransaction(record)
		if err != nil {
			return result, err
		}
		if created {
			result.Stored++
		}
	}
	ing.logger.Info("transactions ingested",
		zap.String("address", addr),
		zap.Int("fetched", result.Fetched),
		zap.Int("stored", result.Stored),
	)
	return result, nil
}

// Query returns stored transactions for address newest first, bounded by the
// inclusive [start, end] timestamp range when supplied.
func (ing *Ingester) Query(address string, start, end *time.Time) ([]store.Transaction, error) {
	if address == "" {
		return nil, common.Tagf(common.ErrValidation, "missing address")
	}
	addr, ok := common.NormalizeAddress(address)
	if !ok {
		return nil, common.Tagf(common.ErrValidation, "invalid address %q", address)
	}
	return ing.store.QueryTransactions(addr, start, end)
}

func wireToRecord(address string, tx explorers.Transaction) (*store.Transaction, error) {
	blockNumber, err := parseWireInt(tx.Hash, "blockNumber", tx.BlockNumber)
	if err != nil {
		return nil, err
	}
	timeStamp, err := parseWireInt(tx.Hash, "timeStamp", tx.TimeStamp)
	if err != nil {
		return nil, err
	}
	nonce, err := parseWireInt(tx.Hash, "nonce", tx.Nonce)
	if err != nil {
		return nil, err
	}
	txIndex, err := parseWireInt(tx.Hash, "transactionIndex", tx.TransactionIndex)
	if err != nil {
		return nil, err
	}
	confirmations, err := parseWireInt(tx.Hash, "confirmations", tx.Confirmations)
	if err != nil {
		return nil, err
	}
	return &store.Transaction{
		Address:           address,
		Hash:              tx.Hash,
		BlockNumber:       blockNumber,
		TimeStamp:         time.Unix(timeStamp, 0).UTC(),
		Nonce:             nonce,
		BlockHash:         tx.BlockHash,
		TransactionIndex:  txIndex,
		Sender:            tx.From,
		Recipient:         tx.To,
		Value:             tx.Value,
		Gas:               tx.Gas,
		GasPrice:          tx.GasPrice,
		IsError:           tx.IsError,
		TxReceiptStatus:   tx.TxReceiptStatus,
		Input:             tx.Input,
		ContractAddress:   tx.ContractAddress,
		CumulativeGasUsed: tx.CumulativeGasUsed,
		GasUsed:           tx.GasUsed,
		Confirmations:     confirmations,
		MethodID:          tx.MethodID,
		FunctionName:      tx.FunctionName,
	}, nil
}

func parseWireInt(hash, field, value string) (int64, error) {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, common.Tagf(common.ErrMalformedData,
			"transaction %s: field %s is not numeric: %q", hash, field, value)
	}
	return parsed, nil
}
