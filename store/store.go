// Package store owns all persisted state: content payloads, resolved NFT
// metadata and ingested transactions. Natural keys are enforced with unique
// indexes so concurrent writers racing past an existence check converge on a
// single row instead of duplicating it.
package store

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chainstash/chainstash/common"
)

type Store struct {
	db *gorm.DB
}

var memorySeq atomic.Int64

// Open opens (and migrates) the sqlite database at path. An empty path opens
// a fresh in-memory database, which is what the tests use. The in-memory DSN
// is uniquely named per call so two opens never share state, while cache=shared
// keeps the pool's connections pointed at the same database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:mem%d?mode=memory&cache=shared", memorySeq.Add(1))
	if path != "" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}
	db, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, common.Tag(common.ErrPersistence, "opening database", err)
	}
	if err := db.AutoMigrate(&Content{}, &NFTMetadata{}, &Transaction{}); err != nil {
		return nil, common.Tag(common.ErrPersistence, "migrating schema", err)
	}
	return &Store{db: db}, nil
}

// PutContent inserts the payload under hash if no row with that hash exists
// yet. It reports whether a new row was created; re-submitting known content
// is a no-op.
func (s *Store) PutContent(hash string, payload []byte) (bool, error) {
	record := Content{
		Hash:      hash,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, common.Tag(common.ErrPersistence, "inserting content", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetContent returns the stored payload for hash, or (nil, nil) when the
// hash is unknown. A miss here is not an error: the fetcher still has the
// network to try.
func (s *Store) GetContent(hash string) (*Content, error) {
	record := Content{}
	result := s.db.Where("hash = ?", hash).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, common.Tag(common.ErrPersistence, "reading content", result.Error)
	}
	return &record, nil
}

// UpsertMetadata writes the record keyed by (contract address, token id),
// replacing any previous resolution of the same token in place.
func (s *Store) UpsertMetadata(record *NFTMetadata) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_address"}, {Name: "token_id"}},
		UpdateAll: true,
	}).Create(record)
	if result.Error != nil {
		return common.Tag(common.ErrPersistence, "upserting metadata", result.Error)
	}
	return nil
}

// GetMetadata returns the stored record for (contract, tokenID), or
// (nil, nil) when the token has never been resolved.
func (s *Store) GetMetadata(contract, tokenID string) (*NFTMetadata, error) {
	record := NFTMetadata{}
	result := s.db.Where("contract_address = ? AND token_id = ?", contract, tokenID).
		First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, common.Tag(common.ErrPersistence, "reading metadata", result.Error)
	}
	return &record, nil
}

// InsertTransaction inserts the row if its hash is new and reports whether
// it was. Existing rows are never touched: ingestion is insert-only.
func (s *Store) InsertTransaction(record *Transaction) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, common.Tag(common.ErrPersistence, "inserting transaction", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// QueryTransactions returns transactions for address (already lowercased by
// the caller) ordered newest first. Bounds are inclusive on both ends when
// supplied.
func (s *Store) QueryTransactions(address string, start, end *time.Time) ([]Transaction, error) {
	query := s.db.Where("address = ?", address)
	if start != nil {
		query = query.Where("time_stamp >= ?", *start)
	}
	if end != nil {
		query = query.Where("time_stamp <= ?", *end)
	}
	records := []Transaction{}
	result := query.Order("time_stamp desc").Find(&records)
	if result.Error != nil {
		return nil, common.Tag(common.ErrPersistence, "querying transactions", result.Error)
	}
	return records, nil
}
