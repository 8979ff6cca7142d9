package fifo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const lockPollInterval = 5 * time.Millisecond

// LockPath is the advisory lock file clients hold for the length of one
// request/response transaction.
func (p Pair) LockPath() string {
	return p.RequestPath + ".lock"
}

// TxLock is a held client transaction lock.
type TxLock struct {
	f *os.File
}

// LockTx takes an exclusive flock on the pair's lock file, polling until it
// is free or ctx is done. Separate TxLocks exclude each other even inside one
// process because each holds its own open file description.
func (p Pair) LockTx(ctx context.Context) (*TxLock, error) {
	f, err := os.OpenFile(p.LockPath(), os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &TxLock{f: f}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return nil, fmt.Errorf("flock %s: %w", p.LockPath(), err)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock.
func (l *TxLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
