package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainstash/chainstash/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	return s
}

func TestContentDedup(t *testing.T) {
	s := openTestStore(t)

	created, err := s.PutContent("bafyhash1", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, created)

	// same hash again is a no-op
	created, err = s.PutContent("bafyhash1", []byte("hello"))
	require.NoError(t, err)
	assert.False(t, created)

	record, err := s.GetContent("bafyhash1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, []byte("hello"), record.Payload)
}

func TestContentMissIsNotAnError(t *testing.T) {
	s := openTestStore(t)

	record, err := s.GetContent("bafyunknown")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMetadataUpsertReplacesInPlace(t *testing.T) {
	s := openTestStore(t)

	first := &store.NFTMetadata{
		ContractAddress: "0xabc",
		TokenID:         "1",
		Name:            "Old Name",
		ResolvedAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.UpsertMetadata(first))

	second := &store.NFTMetadata{
		ContractAddress: "0xabc",
		TokenID:         "1",
		Name:            "New Name",
		Description:     "refreshed",
		ResolvedAt:      time.Now(),
	}
	require.NoError(t, s.UpsertMetadata(second))

	record, err := s.GetMetadata("0xabc", "1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "New Name", record.Name)
	assert.Equal(t, "refreshed", record.Description)

	// a different token on the same contract is its own row
	other := &store.NFTMetadata{ContractAddress: "0xabc", TokenID: "2", Name: "Two"}
	require.NoError(t, s.UpsertMetadata(other))
	record, err = s.GetMetadata("0xabc", "2")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Two", record.Name)
}

func TestTransactionInsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	tx := &store.Transaction{
		Address:   "0xfeed",
		Hash:      "0xaaa",
		TimeStamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Value:     "100",
	}
	created, err := s.InsertTransaction(tx)
	require.NoError(t, err)
	assert.True(t, created)

	// same hash again: no new row, existing row untouched
	dup := &store.Transaction{
		Address:   "0xfeed",
		Hash:      "0xaaa",
		TimeStamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Value:     "999",
	}
	created, err = s.InsertTransaction(dup)
	require.NoError(t, err)
	assert.False(t, created)

	txs, err := s.QueryTransactions("0xfeed", nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "100", txs[0].Value)
}

func TestQueryTransactionsRangeAndOrder(t *testing.T) {
	s := openTestStore(t)

	times := []time.Time{
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		_, err := s.InsertTransaction(&store.Transaction{
			Address:   "0xfeed",
			Hash:      string(rune('a' + i)),
			TimeStamp: ts,
		})
		require.NoError(t, err)
	}

	// no bounds: everything, newest first
	txs, err := s.QueryTransactions("0xfeed", nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].TimeStamp.After(txs[1].TimeStamp))
	assert.True(t, txs[1].TimeStamp.After(txs[2].TimeStamp))

	// inclusive bounds keep the records exactly on the boundary
	txs, err = s.QueryTransactions("0xfeed", &times[0], &times[1])
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.WithinDuration(t, times[1], txs[0].TimeStamp, time.Second)
	assert.WithinDuration(t, times[0], txs[1].TimeStamp, time.Second)

	// other addresses don't leak in
	txs, err = s.QueryTransactions("0xother", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
