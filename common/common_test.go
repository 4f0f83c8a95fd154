package common_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainstash/chainstash/common"
)

func TestTagKeepsBothKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := common.Tag(common.ErrPersistence, "inserting content", cause)

	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, common.ErrUpstream)
	assert.Contains(t, err.Error(), "inserting content")
}

func TestTagfFormats(t *testing.T) {
	err := common.Tagf(common.ErrValidation, "invalid address %q", "zzz")

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), `"zzz"`)
}

func TestNormalizeAddress(t *testing.T) {
	addr, ok := common.NormalizeAddress("0x1234567890AbCdEf1234567890aBcDeF12345678")
	require.True(t, ok)
	assert.Equal(t, "0x1234567890abcdef1234567890abcdef12345678", addr)

	_, ok = common.NormalizeAddress("0x123")
	assert.False(t, ok)
	_, ok = common.NormalizeAddress("not an address")
	assert.False(t, ok)
}

func TestERC721ABIMethods(t *testing.T) {
	erc721 := common.GetERC721ABI()
	require.NotNil(t, erc721)
	assert.Contains(t, erc721.Methods, "tokenURI")
	assert.Contains(t, erc721.Methods, "name")
}
