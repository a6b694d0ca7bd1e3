package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	badgerPrefixRecord = "rec:"
	badgerPrefixHash   = "hash:"
	badgerPrefixClaim  = "claim:"
	badgerPrefixHold   = "hold:"
	badgerSequenceKey  = "meta:seq"

	badgerSequenceBandwidth = 100
	badgerConflictRetries   = 5
	badgerGCInterval        = 5 * time.Minute
	badgerGCDiscardRatio    = 0.5
)

type badgerLog struct {
	db       *badgerdb.DB
	seq      *badgerdb.Sequence
	claimTTL time.Duration
	logger   zerolog.Logger

	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// NewBadger opens (or creates) a badger backed Log in dir.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewBadger(dir string, claimTTL time.Duration) (Log, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve history directory")
	}

	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}

	logger := log.With().Str("component", "history").Str("backend", "badger").Logger()

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", absPath)
	}

	seq, err := db.GetSequence([]byte(badgerSequenceKey), badgerSequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to open record sequence")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &badgerLog{
		db:       db,
		seq:      seq,
		claimTTL: claimTTL,
		logger:   logger,
		gcCancel: cancel,
	}

	b.gcWg.Add(1)
	go b.runGC(ctx)

	logger.Info().Str("path", absPath).Msg("Badger history opened")

	return b, nil
}

func (b *badgerLog) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := b.db.RunValueLogGC(badgerGCDiscardRatio); err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				b.logger.Warn().Err(err).Msg("Badger value log GC failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// update retries fn when a concurrent transaction touched the same keys.
func (b *badgerLog) update(fn func(txn *badgerdb.Txn) error) error {
	var err error
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		err = b.db.Update(fn)
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
		b.logger.Debug().Int("attempt", attempt+1).Msg("Badger transaction conflict, retrying")
	}

	return err
}

func (b *badgerLog) Append(_ context.Context, rec *SwapRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal swap record")
	}

	n, err := b.seq.Next()
	if err != nil {
		return errors.Wrap(err, "failed to allocate record key")
	}
	recordKey := recordKey(n)

	return b.update(func(txn *badgerdb.Txn) error {
		for _, h := range rec.Hashes() {
			_, err := txn.Get(hashKey(h))
			if err == nil {
				return errors.Wrapf(ErrDuplicate, "hash %s", h)
			}
			if !errors.Is(err, badgerdb.ErrKeyNotFound) {
				return errors.Wrap(err, "failed to read hash index")
			}
		}

		if err := txn.Set(recordKey, data); err != nil {
			return errors.Wrap(err, "failed to write swap record")
		}
		for _, h := range rec.Hashes() {
			if err := txn.Set(hashKey(h), recordKey); err != nil {
				return errors.Wrap(err, "failed to write hash index")
			}
		}

		return nil
	})
}

func (b *badgerLog) FindByHash(_ context.Context, hash string) (*SwapRecord, error) {
	var rec SwapRecord

	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(hashKey(hash))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return errors.Wrapf(ErrNotFound, "hash %s", hash)
		}
		if err != nil {
			return errors.Wrap(err, "failed to read hash index")
		}

		key, err := item.ValueCopy(nil)
		if err != nil {
			return errors.Wrap(err, "failed to read hash index")
		}

		item, err = txn.Get(key)
		if err != nil {
			return errors.Wrapf(err, "hash %s points to a missing record", hash)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (b *badgerLog) Paginate(_ context.Context, offset int, limit int) ([]*SwapRecord, int, error) {
	offset, limit = clampPage(offset, limit)

	out := make([]*SwapRecord, 0, limit)
	total := 0

	err := b.db.View(func(txn *badgerdb.Txn) error {
		prefix := []byte(badgerPrefixRecord)

		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration starts at the last key below the prefix upper bound
		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			total++
			if total <= offset || len(out) >= limit {
				continue
			}

			var rec SwapRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return errors.Wrap(err, "failed to decode swap record")
			}
			out = append(out, &rec)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (b *badgerLog) Claim(_ context.Context, hash string) (func(), error) {
	err := b.update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(hashKey(hash)); err == nil {
			return errors.Wrapf(ErrDuplicate, "hash %s", hash)
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return errors.Wrap(err, "failed to read hash index")
		}

		if item, err := txn.Get(holdKey(hash)); err == nil {
			reason, err := item.ValueCopy(nil)
			if err != nil {
				return errors.Wrap(err, "failed to read hold")
			}
			return heldError(hash, string(reason))
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return errors.Wrap(err, "failed to read hold")
		}

		if _, err := txn.Get(claimKey(hash)); err == nil {
			return errors.Wrapf(ErrClaimed, "hash %s", hash)
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return errors.Wrap(err, "failed to read claim")
		}

		return txn.SetEntry(badgerdb.NewEntry(claimKey(hash), []byte{1}).WithTTL(b.claimTTL))
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := b.update(func(txn *badgerdb.Txn) error {
				return txn.Delete(claimKey(hash))
			}); err != nil {
				b.logger.Warn().Err(err).Str("tx_hash", hash).Msg("Failed to release claim")
			}
		})
	}, nil
}

func (b *badgerLog) Hold(_ context.Context, hash string, reason string) error {
	err := b.update(func(txn *badgerdb.Txn) error {
		return txn.Set(holdKey(hash), []byte(reason))
	})

	return errors.Wrap(err, "failed to write hold")
}

func (b *badgerLog) Unhold(_ context.Context, hash string) error {
	err := b.update(func(txn *badgerdb.Txn) error {
		return txn.Delete(holdKey(hash))
	})

	return errors.Wrap(err, "failed to delete hold")
}

func (b *badgerLog) Close() error {
	b.gcCancel()
	b.gcWg.Wait()

	if err := b.seq.Release(); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to release record sequence")
	}

	return errors.Wrap(b.db.Close(), "failed to close badger database")
}

func recordKey(n uint64) []byte {
	key := make([]byte, len(badgerPrefixRecord)+8) //nolint:mnd
	copy(key, badgerPrefixRecord)
	binary.BigEndian.PutUint64(key[len(badgerPrefixRecord):], n)

	return key
}

func hashKey(hash string) []byte {
	return []byte(badgerPrefixHash + hash)
}

func claimKey(hash string) []byte {
	return []byte(badgerPrefixClaim + hash)
}

func holdKey(hash string) []byte {
	return []byte(badgerPrefixHold + hash)
}

// badgerLogger routes badger's own logging through zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

var _ badgerdb.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Msgf(format, args...)
}
