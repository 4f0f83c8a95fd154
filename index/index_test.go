package index_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainstash/chainstash/index"
	"github.com/chainstash/chainstash/store"
)

func openTestIndex(t *testing.T) *index.MetadataIndex {
	t.Helper()
	idx, err := index.Open(filepath.Join(t.TempDir(), "metadata.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func record(contract, tokenID, name, description string) *store.NFTMetadata {
	return &store.NFTMetadata{
		ContractAddress: contract,
		TokenID:         tokenID,
		Name:            name,
		Description:     description,
	}
}

func TestSearchFindsByNameAndDescription(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(record("0xaaa", "1", "Golden Dragon", "a dragon breathing fire")))
	require.NoError(t, idx.Add(record("0xbbb", "2", "Quiet Meadow", "calm pastoral scenery")))

	hits, err := idx.Search("dragon")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "0xaaa", hits[0].ContractAddress)
	assert.Equal(t, "1", hits[0].TokenID)
	assert.Equal(t, "Golden Dragon", hits[0].Name)
	assert.Greater(t, hits[0].Score, 0.0)

	hits, err = idx.Search("pastoral")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Quiet Meadow", hits[0].Name)
}

func TestSearchToleratesNearMisses(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(record("0xaaa", "1", "meadow", "")))

	// one edit away still surfaces via the fuzzy branch
	hits, err := idx.Search("meadw")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "meadow", hits[0].Name)
}

func TestReindexingReplacesTheOldEntry(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(record("0xaaa", "1", "before rename", "")))
	require.NoError(t, idx.Add(record("0xaaa", "1", "after rename", "")))

	hits, err := idx.Search("rename")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "after rename", hits[0].Name)
}

func TestSearchWithNoMatchesReturnsEmpty(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(record("0xaaa", "1", "something", "")))

	hits, err := idx.Search("zzzzzz")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
