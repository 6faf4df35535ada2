package usecase

import (
	"context"
	"errors"
	"fmt"

	"signet/internal/domain"
)

// VerifyAuditChain walks the persisted audit log and checks sequence
// numbers, back-links and entry hashes.
func VerifyAuditChain(ctx context.Context, reader AuditLogReader) error {
	if reader == nil {
		return errors.New("audit log reader required")
	}
	entries, err := reader.List(ctx)
	if err != nil {
		return err
	}

	expectedSeq := int64(1)
	prevHash := domain.ZeroAuditHash
	for _, entry := range entries {
		if entry.Seq != expectedSeq {
			return fmt.Errorf("audit chain seq mismatch: expected %d got %d", expectedSeq, entry.Seq)
		}
		if entry.PrevHash != prevHash {
			return fmt.Errorf("audit chain prev hash mismatch at seq %d", entry.Seq)
		}
		if entry.Timestamp.IsZero() {
			return fmt.Errorf("audit chain missing timestamp at seq %d", entry.Seq)
		}
		if domain.AuditEntryHash(entry) != entry.Hash {
			return fmt.Errorf("audit chain hash mismatch at seq %d", entry.Seq)
		}
		prevHash = entry.Hash
		expectedSeq++
	}
	return nil
}
