package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure crossing a package boundary is wrapped with
// exactly one of these so callers can classify it with errors.Is without
// knowing which upstream produced it.
var (
	// ErrValidation means the caller supplied missing or malformed
	// parameters. It is always detected before any external call is made.
	ErrValidation = errors.New("validation error")

	// ErrUpstream means the explorer API or a content gateway was
	// unreachable or returned an error. Reads against these upstreams are
	// safe to retry.
	ErrUpstream = errors.New("upstream error")

	// ErrChainRead means an RPC timeout, a contract revert or an ABI
	// decode mismatch while reading chain state.
	ErrChainRead = errors.New("chain read error")

	// ErrMalformedData means an upstream answered but with data we can't
	// use: invalid JSON, invalid base64 or a non-numeric numeric field.
	// Retrying won't help.
	ErrMalformedData = errors.New("malformed data")

	// ErrPersistence means the store is unavailable or violated a
	// constraint in a way not explained by expected dedup.
	ErrPersistence = errors.New("persistence error")

	// ErrNotFound means content was in neither the store nor the network.
	// This is an expected outcome, not a fault.
	ErrNotFound = errors.New("not found")
)

// Tag classifies err under kind. Both kind and err stay reachable via
// errors.Is, so callers can match the class while logs keep the cause.
func Tag(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// Tagf builds a classified error with no underlying cause.
func Tagf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{kind}, args...)...)
}
