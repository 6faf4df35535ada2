package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ZeroAuditHash is the PrevHash of the first entry in a chain.
const ZeroAuditHash = "0000000000000000000000000000000000000000000000000000000000000000"

type auditChainPayload struct {
	Version     string `json:"v"`
	Seq         int64  `json:"seq"`
	PrincipalID string `json:"principal_id"`
	Action      string `json:"action"`
	Detail      string `json:"detail"`
	Outcome     string `json:"outcome"`
	Timestamp   string `json:"timestamp"`
	PrevHash    string `json:"prev_hash"`
}

// AuditEntryHash computes the chain hash of entry from its content, Seq and
// PrevHash. Timestamps are hashed at microsecond precision so that entries
// survive a round trip through postgres unchanged.
func AuditEntryHash(entry AuditEntry) string {
	principalID := ""
	if entry.PrincipalID != nil {
		principalID = *entry.PrincipalID
	}
	payload := auditChainPayload{
		Version:     AuditChainVersion,
		Seq:         entry.Seq,
		PrincipalID: principalID,
		Action:      string(entry.Action),
		Detail:      entry.Detail,
		Outcome:     string(entry.Outcome),
		Timestamp:   entry.Timestamp.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano),
		PrevHash:    entry.PrevHash,
	}
	// Struct fields marshal in declaration order, which fixes the layout.
	canonical, _ := json.Marshal(payload)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
