// Package logmem is an in-memory, hash-chained audit log.
package logmem

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"signet/internal/domain"
	"signet/internal/usecase"
)

type Log struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	clock   func() time.Time
}

func New() *Log {
	return NewWithClock(nil)
}

func NewWithClock(clock func() time.Time) *Log {
	if clock == nil {
		clock = time.Now
	}
	return &Log{clock: clock}
}

func (l *Log) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuditEntry{}, err
	}
	if entry.Action == "" || entry.Outcome == "" {
		return domain.AuditEntry{}, errors.New("audit entry missing action or outcome")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.clock()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Microsecond)
	if entry.PrincipalID != nil {
		id := *entry.PrincipalID
		entry.PrincipalID = &id
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Seq = int64(len(l.entries)) + 1
	entry.PrevHash = domain.ZeroAuditHash
	if n := len(l.entries); n > 0 {
		entry.PrevHash = l.entries[n-1].Hash
	}
	entry.Hash = domain.AuditEntryHash(entry)
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *Log) List(ctx context.Context) ([]domain.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

var (
	_ usecase.AuditSink      = (*Log)(nil)
	_ usecase.AuditLogReader = (*Log)(nil)
)
