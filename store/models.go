package store

import "time"

// Content is one content-addressed payload. Hash is computed by the fetcher
// from the payload bytes, never supplied by callers, so identical payloads
// always map to the same row.
type Content struct {
	ID        uint   `gorm:"primarykey"`
	Hash      string `gorm:"uniqueIndex;size:128"`
	Payload   []byte
	CreatedAt time.Time
}

func (c *Content) TableName() string {
	return "contents"
}

// NFTMetadata is one resolved token, keyed by (contract, token id). Repeated
// resolution refreshes the row in place instead of appending.
type NFTMetadata struct {
	ID              uint   `gorm:"primarykey"`
	ContractAddress string `gorm:"uniqueIndex:idx_contract_token;size:42"`
	TokenID         string `gorm:"uniqueIndex:idx_contract_token;size:78"`
	Name            string
	Description     string
	ImageURL        string
	ResolvedAt      time.Time
}

func (m *NFTMetadata) TableName() string {
	return "nft_metadata"
}

// Transaction mirrors the explorer's txlist shape. Numeric-string fields of
// the wire format are parsed to integers before they get here; the
// wei-denominated amounts stay strings since they routinely exceed int64.
type Transaction struct {
	ID                uint   `gorm:"primarykey"`
	Address           string `gorm:"index;size:42"`
	Hash              string `gorm:"uniqueIndex;size:66"`
	BlockNumber       int64
	TimeStamp         time.Time `gorm:"index"`
	Nonce             int64
	BlockHash         string
	TransactionIndex  int64
	Sender            string `gorm:"size:42"`
	Recipient         string `gorm:"size:42"`
	Value             string
	Gas               string
	GasPrice          string
	IsError           string
	TxReceiptStatus   string
	Input             string
	ContractAddress   string
	CumulativeGasUsed string
	GasUsed           string
	Confirmations     int64
	MethodID          string
	FunctionName      string
	CreatedAt         time.Time
}

func (t *Transaction) TableName() string {
	return "transactions"
}
