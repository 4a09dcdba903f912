package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cockroachdb/pebble"
)

// errStopIteration terminates a prefix scan early without signaling failure.
var errStopIteration = errors.New("stop iteration")

// Tx is a storage transaction backed by an indexed pebble batch. Writes are
// visible to subsequent reads within the same Tx and become durable only on
// Commit.
type Tx struct {
	store *Store
	batch *pebble.Batch
}

// Commit atomically applies every write in the transaction.
func (tx *Tx) Commit() error {
	if err := tx.batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Discard drops the transaction without applying it.
func (tx *Tx) Discard() {
	_ = tx.batch.Close()
}

func (tx *Tx) get(key []byte, out interface{}) error {
	val, closer, err := tx.batch.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer closer.Close()

	if err := json.Unmarshal(val, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func decodeValue(value []byte, out interface{}) error {
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}

func (tx *Tx) put(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := tx.batch.Set(key, data, nil); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (tx *Tx) putRef(key, target []byte) error {
	if err := tx.batch.Set(key, target, nil); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (tx *Tx) delete(key []byte) error {
	if err := tx.batch.Delete(key, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (tx *Tx) has(key []byte) (bool, error) {
	_, closer, err := tx.batch.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	closer.Close()
	return true, nil
}

// iterate visits every key with the given prefix in lexicographic order.
// Returning a non-nil error from fn stops iteration.
func (tx *Tx) iterate(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := tx.batch.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return fmt.Errorf("failed to read iterator value: %w", err)
		}
		if err := fn(iter.Key(), val); err != nil {
			return err
		}
	}
	return iter.Error()
}

// nextSeq allocates the next value of a named sequence counter, starting
// at 1. Counters live inside the transaction, so row ids assigned during a
// block that fails to commit are never burned.
func (tx *Tx) nextSeq(entity string) (uint64, error) {
	key := SeqKey(entity)

	var current uint64
	val, closer, err := tx.batch.Get(key)
	switch err {
	case nil:
		current, err = strconv.ParseUint(string(val), 10, 64)
		closer.Close()
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence %s: %w", entity, err)
		}
	case pebble.ErrNotFound:
		current = 0
	default:
		return 0, fmt.Errorf("failed to read sequence %s: %w", entity, err)
	}

	next := current + 1
	if err := tx.batch.Set(key, []byte(strconv.FormatUint(next, 10)), nil); err != nil {
		return 0, fmt.Errorf("failed to bump sequence %s: %w", entity, err)
	}
	return next, nil
}
