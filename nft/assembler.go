// Package nft assembles complete metadata records for ERC-721 tokens: it
// reads the token URI from the contract, resolves whichever URI scheme it
// uses, validates the metadata document and persists the result.
package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/reader"
	"github.com/chainstash/chainstash/resolver"
	"github.com/chainstash/chainstash/store"
	"github.com/chainstash/chainstash/webclient"
)

type MetadataStore interface {
	UpsertMetadata(record *store.NFTMetadata) error
}

// Indexer receives each persisted record for search. Index failures are
// logged and swallowed: search is a convenience, persistence is not.
type Indexer interface {
	Add(record *store.NFTMetadata) error
}

type Assembler struct {
	reader   reader.ContractReader
	resolver *resolver.Resolver
	client   *webclient.Client
	store    MetadataStore
	indexer  Indexer
	logger   *zap.Logger
}

func NewAssembler(
	contractReader reader.ContractReader,
	uriResolver *resolver.Resolver,
	client *webclient.Client,
	metadataStore MetadataStore,
	indexer Indexer,
	logger *zap.Logger,
) *Assembler {
	return &Assembler{
		reader:   contractReader,
		resolver: uriResolver,
		client:   client,
		store:    metadataStore,
		indexer:  indexer,
		logger:   logger,
	}
}

// Resolve builds and persists the metadata record for (contractAddress,
// tokenID). Re-resolving the same token refreshes its single stored row.
//
// The name is never left empty: when the metadata document has no usable
// name, "<contract name> #<token id>" is stored instead.
func (a *Assembler) Resolve(ctx context.Context, contractAddress, tokenID string) (*store.NFTMetadata, error) {
	if contractAddress == "" || tokenID == "" {
		return nil, common.Tagf(common.ErrValidation, "missing contract address or token ID")
	}
	contract, ok := common.NormalizeAddress(contractAddress)
	if !ok {
		return nil, common.Tagf(common.ErrValidation, "invalid contract address %q", contractAddress)
	}
	tokenIDInt, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return nil, common.Tagf(common.ErrValidation, "invalid token ID %q", tokenID)
	}

	tokenURI, err := a.reader.TokenURI(ctx, contract, tokenIDInt)
	if err != nil {
		return nil, err
	}

	metadata, err := a.fetchMetadata(ctx, tokenURI)
	if err != nil {
		return nil, err
	}

	contractName, err := a.reader.Name(ctx, contract)
	if err != nil {
		return nil, err
	}

	// Image URLs go through the same scheme rewriting as token URIs so the
	// stored value is always plainly fetchable.
	imageURL := a.resolver.RewriteURL(stringField(metadata, "image"))

	name := strings.TrimSpace(stringField(metadata, "name"))
	if name == "" {
		name = fmt.Sprintf("%s #%s", contractName, tokenID)
	}

	record := &store.NFTMetadata{
		ContractAddress: contract,
		TokenID:         tokenID,
		Name:            name,
		Description:     stringField(metadata, "description"),
		ImageURL:        imageURL,
		ResolvedAt:      time.Now(),
	}
	if err := a.store.UpsertMetadata(record); err != nil {
		return nil, err
	}
	if err := a.indexer.Add(record); err != nil {
		a.logger.Warn("indexing metadata failed",
			zap.String("contract", contract),
			zap.String("tokenId", tokenID),
			zap.Error(err),
		)
	}
	a.logger.Info("metadata resolved",
		zap.String("contract", contract),
		zap.String("tokenId", tokenID),
		zap.String("name", name),
	)
	return record, nil
}

// fetchMetadata turns a token URI into a parsed metadata document. Inline
// data URIs decode locally; everything else is fetched over HTTP after
// gateway rewriting. A non-2xx response is an upstream fault, an unparsable
// body is malformed data.
func (a *Assembler) fetchMetadata(ctx context.Context, tokenURI string) (map[string]interface{}, error) {
	resolution, err := a.resolver.Resolve(tokenURI)
	if err != nil {
		return nil, err
	}

	payload := resolution.Inline
	if !resolution.IsInline() {
		body, status, err := a.client.GetBytes(ctx, resolution.URL)
		if err != nil {
			return nil, common.Tag(common.ErrUpstream, "fetching token metadata", err)
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, common.Tagf(common.ErrUpstream, "metadata fetch returned status %d", status)
		}
		payload = body
	}

	metadata := map[string]interface{}{}
	if err := json.Unmarshal(payload, &metadata); err != nil {
		return nil, common.Tag(common.ErrMalformedData, "parsing token metadata", err)
	}
	return metadata, nil
}

// stringField pulls a top-level string out of the metadata document.
// Missing keys and non-string values both yield "": documents in the wild
// put all sorts of things in these fields.
func stringField(metadata map[string]interface{}, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
