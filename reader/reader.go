// Package reader executes read-only calls against token contracts. Calls
// are packed with the embedded ERC-721 ABI, sent as eth_call with a bounded
// timeout, and unpacked into typed results. No state-changing call can be
// built from this package.
package reader

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
)

// ContractReader is the read surface the metadata assembler depends on.
type ContractReader interface {
	TokenURI(ctx context.Context, contract string, tokenID *big.Int) (string, error)
	Name(ctx context.Context, contract string) (string, error)
}

type EthReader struct {
	nodeURL string
	timeout time.Duration
	abi     *abi.ABI
	logger  *zap.Logger

	mu     sync.Mutex
	client *ethclient.Client
}

func NewEthReader(nodeURL string, timeout time.Duration, logger *zap.Logger) *EthReader {
	return &EthReader{
		nodeURL: nodeURL,
		timeout: timeout,
		abi:     common.GetERC721ABI(),
		logger:  logger,
	}
}

// ethClient dials the node lazily so constructing a reader never blocks on
// the network.
func (er *EthReader) ethClient() (*ethclient.Client, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	if er.client != nil {
		return er.client, nil
	}
	client, err := rpc.Dial(er.nodeURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", er.nodeURL, err)
	}
	er.client = ethclient.NewClient(client)
	return er.client, nil
}

// CallContract packs method with args, issues an eth_call against contract
// and unpacks the return data into result. RPC failures, reverts and decode
// mismatches all come back as ErrChainRead.
func (er *EthReader) CallContract(
	ctx context.Context,
	result interface{},
	contract string,
	method string,
	args ...interface{},
) error {
	cli, err := er.ethClient()
	if err != nil {
		return common.Tag(common.ErrChainRead, "connecting to node", err)
	}
	data, err := er.abi.Pack(method, args...)
	if err != nil {
		return common.Tag(common.ErrChainRead, fmt.Sprintf("packing %s call", method), err)
	}

	to := ethcommon.HexToAddress(contract)
	timeout, cancel := context.WithTimeout(ctx, er.timeout)
	defer cancel()

	responseBytes, err := cli.CallContract(timeout, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		er.logger.Warn("contract read failed",
			zap.String("contract", contract),
			zap.String("method", method),
			zap.Error(err),
		)
		return common.Tag(common.ErrChainRead, fmt.Sprintf("calling %s on %s", method, contract), err)
	}
	if err := er.abi.UnpackIntoInterface(result, method, responseBytes); err != nil {
		return common.Tag(common.ErrChainRead, fmt.Sprintf("decoding %s result", method), err)
	}
	return nil
}

// TokenURI reads tokenURI(tokenID) from the contract.
func (er *EthReader) TokenURI(ctx context.Context, contract string, tokenID *big.Int) (string, error) {
	result := ""
	err := er.CallContract(ctx, &result, contract, "tokenURI", tokenID)
	return result, err
}

// Name reads the contract-level name().
func (er *EthReader) Name(ctx context.Context, contract string) (string, error) {
	result := ""
	err := er.CallContract(ctx, &result, contract, "name")
	return result, err
}
