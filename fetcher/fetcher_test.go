package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/fetcher"
	"github.com/chainstash/chainstash/store"
	"github.com/chainstash/chainstash/webclient"
)

// fakeStore is an in-memory ContentStore that counts calls so tests can
// assert on cache behavior.
type fakeStore struct {
	contents map[string][]byte
	gets     int
	puts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{contents: map[string][]byte{}}
}

func (f *fakeStore) GetContent(hash string) (*store.Content, error) {
	f.gets++
	payload, ok := f.contents[hash]
	if !ok {
		return nil, nil
	}
	return &store.Content{Hash: hash, Payload: payload}, nil
}

func (f *fakeStore) PutContent(hash string, payload []byte) (bool, error) {
	f.puts++
	if _, ok := f.contents[hash]; ok {
		return false, nil
	}
	f.contents[hash] = payload
	return true, nil
}

// countingGateway serves fixed bodies per hash and counts requests.
type countingGateway struct {
	bodies   map[string][]byte
	requests int
}

func (g *countingGateway) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.requests++
		parts := strings.Split(r.URL.Path, "/")
		hash := parts[len(parts)-1]
		body, ok := g.bodies[hash]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	}
}

func newTestFetcher(t *testing.T, st *fakeStore, gateway *countingGateway) *fetcher.Fetcher {
	t.Helper()
	srv := httptest.NewServer(gateway.handler())
	t.Cleanup(srv.Close)
	client := webclient.New(2*time.Second, 1, zap.NewNop())
	return fetcher.New(st, client, srv.URL+"/ipfs/", zap.NewNop())
}

func TestPutGetRoundTrip(t *testing.T) {
	st := newFakeStore()
	gateway := &countingGateway{bodies: map[string][]byte{}}
	f := newTestFetcher(t, st, gateway)

	payload := []byte("hello content network")
	hash, err := f.Put(context.Background(), payload)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	got, err := f.Get(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	// round trip never needed the gateway
	assert.Equal(t, 0, gateway.requests)
}

func TestPutIsDeterministicAndDeduplicated(t *testing.T) {
	st := newFakeStore()
	f := newTestFetcher(t, st, &countingGateway{bodies: map[string][]byte{}})

	payload := []byte("same bytes")
	hash1, err := f.Put(context.Background(), payload)
	require.NoError(t, err)
	hash2, err := f.Put(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, hash1, hash2)
	assert.Len(t, st.contents, 1)
}

func TestPutMissingContent(t *testing.T) {
	st := newFakeStore()
	f := newTestFetcher(t, st, &countingGateway{bodies: map[string][]byte{}})

	_, err := f.Put(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 0, st.puts)
}

func TestGetMissFetchesVerifiesAndRepairs(t *testing.T) {
	payload := []byte("gateway payload")
	hash, err := fetcher.ComputeHash(payload)
	require.NoError(t, err)

	st := newFakeStore()
	gateway := &countingGateway{bodies: map[string][]byte{hash: payload}}
	f := newTestFetcher(t, st, gateway)

	got, err := f.Get(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, gateway.requests)

	// read-repair means the second get is a pure cache hit
	got, err = f.Get(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, gateway.requests)
}

func TestGetRejectsUnverifiableResponse(t *testing.T) {
	hash, err := fetcher.ComputeHash([]byte("the real content"))
	require.NoError(t, err)

	st := newFakeStore()
	gateway := &countingGateway{bodies: map[string][]byte{hash: []byte("tampered bytes")}}
	f := newTestFetcher(t, st, gateway)

	_, err = f.Get(context.Background(), hash)
	require.ErrorIs(t, err, common.ErrUpstream)
	// unverified bytes must never be cached
	assert.Empty(t, st.contents)
}

func TestGetNotFoundAnywhere(t *testing.T) {
	hash, err := fetcher.ComputeHash([]byte("nobody has this"))
	require.NoError(t, err)

	st := newFakeStore()
	f := newTestFetcher(t, st, &countingGateway{bodies: map[string][]byte{}})

	_, err = f.Get(context.Background(), hash)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.NotErrorIs(t, err, common.ErrUpstream)
}

func TestGetValidatesInput(t *testing.T) {
	st := newFakeStore()
	gateway := &countingGateway{bodies: map[string][]byte{}}
	f := newTestFetcher(t, st, gateway)

	_, err := f.Get(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = f.Get(context.Background(), "not-a-cid")
	require.ErrorIs(t, err, common.ErrValidation)

	// validation failures happen before any store or network access
	assert.Equal(t, 0, st.gets)
	assert.Equal(t, 0, gateway.requests)
}
