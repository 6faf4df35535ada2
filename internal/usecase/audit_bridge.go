package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"signet/internal/domain"
)

// AuditBridge records every sign and verify attempt to the audit sink.
// It never fails the calling operation: sink errors are logged as warnings
// and counted.
type AuditBridge struct {
	Sink   AuditSink
	Clock  Clock
	Logger zerolog.Logger

	dropped atomic.Int64
}

func NewAuditBridge(sink AuditSink, clock Clock, logger zerolog.Logger) *AuditBridge {
	return &AuditBridge{
		Sink:   sink,
		Clock:  clock,
		Logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record appends one entry. An empty principalID is stored as null.
func (b *AuditBridge) Record(ctx context.Context, principalID string, action domain.AuditAction, outcome domain.AuditOutcome, detail string) {
	if b == nil {
		return
	}
	entry := domain.AuditEntry{
		Action:    action,
		Outcome:   outcome,
		Detail:    detail,
		Timestamp: b.now().UTC(),
	}
	if principalID != "" {
		id := principalID
		entry.PrincipalID = &id
	}
	if err := b.append(ctx, entry); err != nil {
		b.dropped.Add(1)
		b.Logger.Warn().
			Err(err).
			Str("action", string(action)).
			Str("outcome", string(outcome)).
			Str("principal_id", principalID).
			Msg("audit append failed")
	}
}

// Dropped reports how many entries could not be appended.
func (b *AuditBridge) Dropped() int64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

func (b *AuditBridge) append(ctx context.Context, entry domain.AuditEntry) (err error) {
	if b.Sink == nil {
		return errors.New("audit sink required")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("audit sink panicked")
		}
	}()
	// The entry is written even when the caller's request was cancelled.
	_, err = b.Sink.Append(context.WithoutCancel(ctx), entry)
	return err
}

func (b *AuditBridge) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now().UTC()
}
