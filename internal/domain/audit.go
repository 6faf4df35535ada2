package domain

import "time"

type AuditAction string

const (
	AuditActionRegister      AuditAction = "REGISTER"
	AuditActionSign          AuditAction = "SIGN"
	AuditActionVerify        AuditAction = "VERIFY"
	AuditActionMessageCreate AuditAction = "MESSAGE_CREATE"
	AuditActionMessageVerify AuditAction = "MESSAGE_VERIFY"
)

type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
	AuditOutcomeValid   AuditOutcome = "valid"
	AuditOutcomeInvalid AuditOutcome = "invalid"
)

// AuditChainVersion tags the hash input layout of persisted audit entries.
const AuditChainVersion = "audit_chain_v0"

// AuditEntry is one append-only log record. PrincipalID is nil when the
// attempt could not be attributed to a principal.
type AuditEntry struct {
	ID          string
	PrincipalID *string
	Action      AuditAction
	Detail      string
	Outcome     AuditOutcome
	Timestamp   time.Time

	// Set by sinks that chain entries.
	Seq      int64
	PrevHash string
	Hash     string
}
