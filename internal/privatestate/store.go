// Package privatestate persists the will's private state per contract address.
package privatestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/will-wallet/internal/model"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
)

// Store is a badger-backed private state store
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store under dir. An empty dir keeps everything in memory.
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create private state dir: %w", err)
	}
	opts.Logger = badgerLogger{logger: logger}
	opts.NumCompactors = 2
	opts.NumMemtables = 2
	opts.BlockCacheSize = 8 << 20
	opts.IndexCacheSize = 8 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open private state store: %w", err)
	}
	return &Store{db: db}, nil
}

func key(addr model.ContractAddress) []byte {
	return []byte(model.WillPrivateStateID + "/" + addr.String())
}

// Get returns the stored state for addr, or nil when none was stored
func (s *Store) Get(ctx context.Context, addr model.ContractAddress) (*model.PrivateState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(addr))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read private state: %w", err)
	}

	var ps model.PrivateState
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("failed to decode private state: %w", err)
	}
	return &ps, nil
}

// Set stores the state for addr
func (s *Store) Set(ctx context.Context, addr model.ContractAddress, ps model.PrivateState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("failed to encode private state: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(addr), raw)
	}); err != nil {
		return fmt.Errorf("failed to write private state: %w", err)
	}
	return nil
}

// Delete removes the state for addr
func (s *Store) Delete(ctx context.Context, addr model.ContractAddress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(addr))
	})
}

// Close flushes and closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's logs through zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Error().Msgf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warn().Msgf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.logger.Debug().Msgf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Trace().Msgf(f, v...) }
