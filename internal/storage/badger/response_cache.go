package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
)

// cacheKeyPrefix keeps cache entries apart from badgerhold's typed records
const cacheKeyPrefix = "cache:"

// ResponseCache implements interfaces.ResponseCache on raw badger entries,
// relying on badger's per-entry TTL for expiry.
type ResponseCache struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewResponseCache creates a new ResponseCache instance
func NewResponseCache(db *BadgerDB, logger arbor.ILogger) interfaces.ResponseCache {
	return &ResponseCache{
		db:     db,
		logger: logger,
	}
}

func (c *ResponseCache) key(key string) []byte {
	return []byte(cacheKeyPrefix + key)
}

// Get returns the cached value for key; expired entries read as missing
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.DB().View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key with the given ttl
func (c *ResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.DB().Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(c.key(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing key is not an error
func (c *ResponseCache) Delete(ctx context.Context, key string) error {
	err := c.db.DB().Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// DeletePrefix drops every cache entry whose key starts with prefix
func (c *ResponseCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := c.db.DB().DropPrefix(c.key(prefix)); err != nil {
		return fmt.Errorf("failed to drop cache prefix %s: %w", prefix, err)
	}
	c.logger.Debug().Str("prefix", prefix).Msg("Cache prefix dropped")
	return nil
}
