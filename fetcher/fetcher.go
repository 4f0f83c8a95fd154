// Package fetcher implements cache-first content retrieval against the
// content-addressed network. Reads consult the store before any network I/O
// and repair the cache on a successful network fetch; writes compute the
// content id locally and are idempotent per hash.
package fetcher

import (
	"context"
	"net/http"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/store"
	"github.com/chainstash/chainstash/webclient"
)

// ContentStore is the slice of the store the fetcher needs. Tests substitute
// a counting fake to assert cache hits cause zero network calls.
type ContentStore interface {
	GetContent(hash string) (*store.Content, error)
	PutContent(hash string, payload []byte) (bool, error)
}

type Fetcher struct {
	store   ContentStore
	client  *webclient.Client
	gateway string
	logger  *zap.Logger
}

func New(contentStore ContentStore, client *webclient.Client, gateway string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:   contentStore,
		client:  client,
		gateway: gateway,
		logger:  logger,
	}
}

// ComputeHash returns the CIDv1 (raw codec, sha2-256) of payload. Identical
// payloads always produce identical hashes, which is what makes PutContent's
// insert-if-absent sufficient for dedup.
func ComputeHash(payload []byte) (string, error) {
	digest, err := mh.Sum(payload, mh.SHA2_256, -1)
	if err != nil {
		return "", common.Tag(common.ErrPersistence, "hashing payload", err)
	}
	return cid.NewCidV1(cid.Raw, digest).String(), nil
}

// Put stores payload under its content hash and returns the hash. A payload
// whose hash is already known is not re-inserted; the hash is returned
// either way.
func (f *Fetcher) Put(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", common.Tagf(common.ErrValidation, "missing content")
	}
	hash, err := ComputeHash(payload)
	if err != nil {
		return "", err
	}
	created, err := f.store.PutContent(hash, payload)
	if err != nil {
		return "", err
	}
	f.logger.Info("content stored",
		zap.String("hash", hash),
		zap.Int("size", len(payload)),
		zap.Bool("created", created),
	)
	return hash, nil
}

// Get returns the payload for hash. A store hit is returned with no network
// I/O. On a miss the content network is consulted through the gateway and
// the response is only accepted if its bytes hash back to the requested id;
// verified bytes are written through to the store before returning. When
// neither the store nor the network has the content, the result is
// ErrNotFound, an expected outcome, distinct from an upstream fault.
func (f *Fetcher) Get(ctx context.Context, hash string) ([]byte, error) {
	if hash == "" {
		return nil, common.Tagf(common.ErrValidation, "missing hash")
	}
	requested, err := cid.Decode(hash)
	if err != nil {
		return nil, common.Tag(common.ErrValidation, "parsing content hash", err)
	}

	cached, err := f.store.GetContent(hash)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached.Payload, nil
	}

	body, status, err := f.client.GetBytes(ctx, f.gateway+hash)
	if err != nil {
		return nil, common.Tag(common.ErrUpstream, "fetching from gateway", err)
	}
	switch {
	case status == http.StatusNotFound, status == http.StatusGone:
		return nil, common.Tagf(common.ErrNotFound, "content %s not in store or network", hash)
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return nil, common.Tagf(common.ErrUpstream, "gateway returned status %d for %s", status, hash)
	}

	fetched, err := requested.Prefix().Sum(body)
	if err != nil {
		return nil, common.Tag(common.ErrUpstream, "hashing gateway response", err)
	}
	if !fetched.Equals(requested) {
		return nil, common.Tagf(common.ErrUpstream,
			"gateway response for %s hashed to %s, refusing unverified content", hash, fetched)
	}

	// Read-repair so the next lookup is a pure cache hit.
	if _, err := f.store.PutContent(hash, body); err != nil {
		return nil, err
	}
	f.logger.Info("content fetched from network", zap.String("hash", hash), zap.Int("size", len(body)))
	return body, nil
}
