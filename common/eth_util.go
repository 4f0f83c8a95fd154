package common

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func GetERC721ABI() *abi.ABI {
	result, _ := abi.JSON(strings.NewReader(erc721abi))
	return &result
}

// NormalizeAddress lowercases addr and reports whether it is a valid hex
// address. Stored records always carry the lowercased form so lookups are
// case-insensitive.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", false
	}
	return strings.ToLower(addr), true
}
