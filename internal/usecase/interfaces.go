package usecase

import (
	"context"
	"iter"
	"time"

	"signet/internal/domain"
)

// PrincipalRepository is the principal store. Get reports absence through the
// found flag; err is reserved for store failures.
type PrincipalRepository interface {
	Get(ctx context.Context, id string) (domain.Principal, bool, error)
	Create(ctx context.Context, principal domain.Principal) error
	ListAll(ctx context.Context) ([]domain.Principal, error)
}

type MessageRepository interface {
	Get(ctx context.Context, id string) (domain.SignedMessage, bool, error)
	Create(ctx context.Context, msg domain.SignedMessage) error
}

// AuditSink is the append-only log the AuditBridge writes to.
type AuditSink interface {
	Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
}

type AuditLogReader interface {
	List(ctx context.Context) ([]domain.AuditEntry, error)
}

// SignatureIndex maps raw signature bytes to the principal that produced them.
type SignatureIndex interface {
	Put(ctx context.Context, sig []byte, principalID string) error
	Lookup(ctx context.Context, sig []byte) (principalID string, found bool, err error)
}

// CandidateSource yields the principals a detached signature is tried
// against, in the order they should be tried. A non-nil error ends the
// sequence. Consumers may stop early; sources must not do work past that.
type CandidateSource interface {
	Candidates(ctx context.Context, sig []byte) iter.Seq2[domain.Principal, error]
}

type KeyProvisioner interface {
	GenerateKeyPair() (domain.KeyPair, error)
}

// CryptoService signs and verifies with PEM-encoded keys. Verify returns an
// error only when the key material is unusable.
type CryptoService interface {
	Sign(privateKeyPEM string, payload []byte) ([]byte, error)
	Verify(publicKeyPEM string, payload []byte, sig []byte) (bool, error)
}

type Clock func() time.Time

type IDGenerator func() string
