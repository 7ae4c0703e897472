package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const draftPrefix = "draft:"

// Drafts is a badger-backed DraftStore. Entries expire on their own once
// their TTL passes.
type Drafts struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ DraftStore = (*Drafts)(nil)

// OpenDrafts opens (or creates) the draft database at path.
func OpenDrafts(path string, logger *slog.Logger) (*Drafts, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return openDrafts(opts, logger)
}

// OpenDraftsInMemory opens a draft store that lives only in memory.
func OpenDraftsInMemory(logger *slog.Logger) (*Drafts, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openDrafts(opts, logger)
}

func openDrafts(opts badger.Options, logger *slog.Logger) (*Drafts, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if logger != nil {
		logger.Info("Draft database opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return &Drafts{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (d *Drafts) Close() error {
	if d.logger != nil {
		d.logger.Info("Closing draft database")
	}
	return d.db.Close()
}

func draftKey(id string) []byte {
	return []byte(draftPrefix + id)
}

// SaveDraft stores data under id, replacing any earlier value.
// A non-positive ttl keeps the draft until it is deleted.
func (d *Drafts) SaveDraft(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := badger.NewEntry(draftKey(id), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// LoadDraft returns the stored bytes for id.
// Returns ErrNotFound if the draft never existed or has expired.
func (d *Drafts) LoadDraft(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(draftKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return data, nil
}

// DeleteDraft removes the draft for id. Deleting a missing draft is not an error.
func (d *Drafts) DeleteDraft(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(draftKey(id))
	})
}

// CountDrafts returns the number of live drafts.
func (d *Drafts) CountDrafts(ctx context.Context) (int, error) {
	n := 0
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(draftPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}
