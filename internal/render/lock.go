package render

import (
	"fmt"

	"github.com/zoobzio/sqlast/internal/types"
)

// RenderLockClause appends the row lock requested in QueryOptions.
func (t *Translator) RenderLockClause() error {
	lock := t.options.Lock
	if lock.Mode == types.LockNone || lock.Mode == types.LockRead {
		return nil
	}
	if _, ok := t.root.(*types.QueryGroup); ok {
		return t.Unsupported("row locking on a set operation")
	}

	caps := t.profile.Capabilities
	syntax := t.profile.Syntax
	if caps.RowLocking == RowLockingNone {
		if err := t.CheckLockWait(lock.Wait); err != nil {
			return err
		}
		t.logger.Warn("row locking not supported, lock ignored",
			"dialect", t.profile.DisplayName(),
			"mode", lock.Mode.String(),
		)
		return nil
	}

	clause := syntax.ForUpdate
	if lock.Mode == types.LockPessimisticRead && caps.RowLocking == RowLockingFull && syntax.ForShare != "" {
		clause = syntax.ForShare
	}
	t.AppendSQL(clause)
	return t.RenderLockWait(lock)
}

// CheckLockWait fails when the requested wait behavior cannot be honored.
func (t *Translator) CheckLockWait(wait types.LockWait) error {
	caps := t.profile.Capabilities
	switch wait {
	case types.SkipLocked:
		if !caps.SkipLocked || caps.RowLocking == RowLockingNone {
			return t.Unsupported("skip locked", "rows locked by other transactions would block instead of being skipped")
		}
	case types.NoWait:
		if !caps.NoWait || caps.RowLocking == RowLockingNone {
			return t.Unsupported("nowait")
		}
	}
	return nil
}

// RenderLockWait appends the skip locked, nowait or timeout modifier.
func (t *Translator) RenderLockWait(lock types.LockOptions) error {
	if err := t.CheckLockWait(lock.Wait); err != nil {
		return err
	}
	syntax := t.profile.Syntax
	switch lock.Wait {
	case types.SkipLocked:
		t.AppendSQL(syntax.SkipLocked)
	case types.NoWait:
		t.AppendSQL(syntax.NoWait)
	default:
		if lock.Timeout <= 0 {
			return nil
		}
		if !t.profile.Capabilities.LockTimeout || syntax.WaitTimeout == "" {
			t.logger.Warn("lock timeout not supported, waiting indefinitely",
				"dialect", t.profile.DisplayName(),
				"timeout", lock.Timeout,
			)
			return nil
		}
		t.AppendSQL(fmt.Sprintf(syntax.WaitTimeout, int(lock.Timeout.Seconds())))
	}
	return nil
}
