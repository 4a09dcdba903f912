package storage

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/pebble"
)

// LoadCursor returns the height of the last applied block. A missing
// cursor is initialized to the given start height inside the transaction.
func (tx *Tx) LoadCursor(start uint64) (uint64, error) {
	var raw string
	err := tx.getRaw(CursorKey(), &raw)
	switch err {
	case nil:
		height, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("corrupt cursor %q: %w", raw, perr)
		}
		return height, nil
	case ErrNotFound:
		if err := tx.putRef(CursorKey(), []byte(strconv.FormatUint(start, 10))); err != nil {
			return 0, err
		}
		return start, nil
	default:
		return 0, err
	}
}

// AdvanceCursor moves the cursor from expected to next. The move only
// succeeds when the stored cursor still equals expected; any other value
// means a second writer is running and ErrCursorConflict is returned.
func (tx *Tx) AdvanceCursor(expected, next uint64) error {
	var raw string
	if err := tx.getRaw(CursorKey(), &raw); err != nil {
		if err == ErrNotFound {
			return fmt.Errorf("%w: cursor missing, expected %d", ErrCursorConflict, expected)
		}
		return err
	}
	current, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("corrupt cursor %q: %w", raw, err)
	}
	if current != expected {
		return fmt.Errorf("%w: cursor at %d, expected %d", ErrCursorConflict, current, expected)
	}
	return tx.putRef(CursorKey(), []byte(strconv.FormatUint(next, 10)))
}

func (tx *Tx) getRaw(key []byte, out *string) error {
	val, closer, err := tx.batch.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer closer.Close()
	*out = string(val)
	return nil
}
