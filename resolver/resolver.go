// Package resolver normalizes the URI schemes found in tokenURI values and
// metadata image fields. It is pure string work: the resolver never touches
// the network, it only decides whether a URI carries its payload inline or
// where the payload can be fetched from.
package resolver

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/chainstash/chainstash/common"
)

const (
	dataJSONPrefix = "data:application/json;base64,"
	ipfsPrefix     = "ipfs://"
	arweavePrefix  = "ar://"
)

// Resolution is the outcome of normalizing one URI. Exactly one of Inline
// and URL is set: Inline holds decoded bytes for data URIs, URL is a plain
// http(s) location for everything else.
type Resolution struct {
	Inline []byte
	URL    string
}

// IsInline reports whether the URI carried its payload inline.
func (r Resolution) IsInline() bool {
	return r.Inline != nil
}

type Resolver struct {
	ipfsGateway    string
	arweaveGateway string
}

func New(ipfsGateway, arweaveGateway string) *Resolver {
	return &Resolver{
		ipfsGateway:    ipfsGateway,
		arweaveGateway: arweaveGateway,
	}
}

// Resolve applies the scheme rules in priority order, first match wins:
//
//  1. data:application/json;base64,... decodes directly to bytes. The
//     decoded bytes must be valid JSON since that is the only inline form
//     token contracts emit.
//  2. ipfs://<id> rewrites to the configured IPFS gateway.
//  3. ar://<id> rewrites to the configured Arweave gateway.
//  4. anything else passes through unchanged and is assumed fetchable.
func (r *Resolver) Resolve(uri string) (Resolution, error) {
	switch {
	case strings.HasPrefix(uri, dataJSONPrefix):
		payload, err := base64.StdEncoding.DecodeString(uri[len(dataJSONPrefix):])
		if err != nil {
			return Resolution{}, common.Tag(common.ErrMalformedData, "decoding base64 data uri", err)
		}
		if !json.Valid(payload) {
			return Resolution{}, common.Tagf(common.ErrMalformedData, "data uri payload is not valid JSON")
		}
		return Resolution{Inline: payload}, nil
	case strings.HasPrefix(uri, ipfsPrefix):
		return Resolution{URL: r.ipfsGateway + uri[len(ipfsPrefix):]}, nil
	case strings.HasPrefix(uri, arweavePrefix):
		return Resolution{URL: r.arweaveGateway + uri[len(arweavePrefix):]}, nil
	default:
		return Resolution{URL: uri}, nil
	}
}

// RewriteURL is Resolve for contexts where inline data makes no sense, e.g.
// image fields. Data URIs and unknown schemes pass through untouched so the
// stored value is still whatever the metadata author wrote.
func (r *Resolver) RewriteURL(uri string) string {
	switch {
	case strings.HasPrefix(uri, ipfsPrefix):
		return r.ipfsGateway + uri[len(ipfsPrefix):]
	case strings.HasPrefix(uri, arweavePrefix):
		return r.arweaveGateway + uri[len(arweavePrefix):]
	default:
		return uri
	}
}
