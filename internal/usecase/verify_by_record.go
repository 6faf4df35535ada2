package usecase

import (
	"context"
	"errors"
	"fmt"

	"signet/internal/domain"
	"signet/pkg/codec"
)

// VerifyByRecord re-checks the signature stored on a SignedMessage against
// its signatory's public key.
type VerifyByRecord struct {
	Messages   MessageRepository
	Principals PrincipalRepository
	Crypto     CryptoService
	Audit      *AuditBridge
}

func (uc *VerifyByRecord) Execute(ctx context.Context, messageID string) (domain.VerifyResult, error) {
	if uc.Messages == nil || uc.Principals == nil || uc.Crypto == nil {
		return domain.VerifyResult{}, errors.New("verify by record: dependencies not configured")
	}
	msg, found, err := uc.Messages.Get(ctx, messageID)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	if !found {
		uc.Audit.Record(ctx, "", domain.AuditActionMessageVerify, domain.AuditOutcomeFailure, "message not found")
		return domain.VerifyResult{}, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, messageID)
	}

	principal, found, err := uc.Principals.Get(ctx, msg.SignatoryID)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	if !found {
		uc.Audit.Record(ctx, msg.SignatoryID, domain.AuditActionVerify, domain.AuditOutcomeFailure, "signatory not found")
		return domain.VerifyResult{}, fmt.Errorf("%w: signatory %s of message %s", domain.ErrPrincipalNotFound, msg.SignatoryID, msg.ID)
	}
	if !principal.HasPublicKey() {
		uc.Audit.Record(ctx, principal.ID, domain.AuditActionVerify, domain.AuditOutcomeFailure, "public key missing")
		return domain.VerifyResult{}, fmt.Errorf("%w: principal %s has no public key", domain.ErrMissingKey, principal.ID)
	}

	sig, err := codec.DecodeSignature(msg.Signature)
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("stored signature of message %s: %w", msg.ID, err)
	}
	valid, err := uc.Crypto.Verify(principal.PublicKeyPEM, []byte(msg.Content), sig)
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("principal %s: %w", principal.ID, err)
	}

	timestamp := msg.Timestamp
	result := domain.VerifyResult{
		Status:         domain.VerifyStatusInvalid,
		SignatoryID:    principal.ID,
		SignatoryEmail: principal.Email,
		MessageID:      msg.ID,
		Timestamp:      &timestamp,
		Algorithm:      domain.SignatureAlgorithm,
	}
	outcome := domain.AuditOutcomeInvalid
	if valid {
		result.Status = domain.VerifyStatusValid
		outcome = domain.AuditOutcomeValid
	} else {
		result.Reason = domain.ReasonSignatureMismatch
	}
	uc.Audit.Record(ctx, principal.ID, domain.AuditActionVerify, outcome, "message "+msg.ID)
	uc.Audit.Record(ctx, principal.ID, domain.AuditActionMessageVerify, outcome, "message "+msg.ID)
	return result, nil
}
