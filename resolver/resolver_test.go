package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/resolver"
)

func newTestResolver() *resolver.Resolver {
	return resolver.New("https://ipfs.io/ipfs/", "https://arweave.net/")
}

func TestResolveSchemes(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		name    string
		uri     string
		wantURL string
	}{
		{"ipfs", "ipfs://Qm1", "https://ipfs.io/ipfs/Qm1"},
		{"arweave", "ar://X", "https://arweave.net/X"},
		{"https passthrough", "https://example.com/meta.json", "https://example.com/meta.json"},
		{"http passthrough", "http://example.com/meta.json", "http://example.com/meta.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Resolve(tc.uri)
			require.NoError(t, err)
			assert.False(t, res.IsInline())
			assert.Equal(t, tc.wantURL, res.URL)
		})
	}
}

func TestResolveInlineDataURI(t *testing.T) {
	r := newTestResolver()

	// base64 of {"a":1}
	res, err := r.Resolve("data:application/json;base64,eyJhIjoxfQ==")
	require.NoError(t, err)
	require.True(t, res.IsInline())
	assert.JSONEq(t, `{"a":1}`, string(res.Inline))
	assert.Empty(t, res.URL)
}

func TestResolveMalformedDataURI(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve("data:application/json;base64,!!!not-base64!!!")
	require.ErrorIs(t, err, common.ErrMalformedData)

	// valid base64 but the payload is not JSON
	_, err = r.Resolve("data:application/json;base64,aGVsbG8=")
	require.ErrorIs(t, err, common.ErrMalformedData)
}

func TestRewriteURL(t *testing.T) {
	r := newTestResolver()

	assert.Equal(t, "https://ipfs.io/ipfs/QmX", r.RewriteURL("ipfs://QmX"))
	assert.Equal(t, "https://arweave.net/abc", r.RewriteURL("ar://abc"))
	assert.Equal(t, "https://cdn.example.com/1.png", r.RewriteURL("https://cdn.example.com/1.png"))
	assert.Equal(t, "", r.RewriteURL(""))
}
