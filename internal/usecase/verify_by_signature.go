package usecase

import (
	"context"
	"errors"
	"fmt"

	"signet/internal/domain"
	"signet/pkg/codec"
)

// VerifyBySignature resolves the signer of a detached signature by trying
// candidate principals until one public key verifies. The first match in
// candidate order wins; later principals are not consulted.
type VerifyBySignature struct {
	Candidates CandidateSource
	Crypto     CryptoService
	Audit      *AuditBridge
}

func (uc *VerifyBySignature) Execute(ctx context.Context, text string, encodedSignature string) (domain.VerifyResult, error) {
	if uc.Candidates == nil || uc.Crypto == nil {
		return domain.VerifyResult{}, errors.New("verify by signature: dependencies not configured")
	}
	sig, err := codec.DecodeSignature(encodedSignature)
	if err != nil {
		uc.Audit.Record(ctx, "", domain.AuditActionVerify, domain.AuditOutcomeFailure, domain.ReasonMalformedSignature)
		return domain.VerifyResult{}, err
	}

	payload := []byte(text)
	for principal, err := range uc.Candidates.Candidates(ctx, sig) {
		if err != nil {
			return domain.VerifyResult{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.VerifyResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, ctxErr)
		}
		if !principal.HasPublicKey() {
			continue
		}
		valid, err := uc.Crypto.Verify(principal.PublicKeyPEM, payload, sig)
		if err != nil {
			return domain.VerifyResult{}, fmt.Errorf("principal %s: %w", principal.ID, err)
		}
		if valid {
			uc.Audit.Record(ctx, principal.ID, domain.AuditActionVerify, domain.AuditOutcomeValid, "detached signature matched")
			return domain.VerifyResult{
				Status:         domain.VerifyStatusValid,
				SignatoryID:    principal.ID,
				SignatoryEmail: principal.Email,
				Algorithm:      domain.SignatureAlgorithm,
			}, nil
		}
	}

	uc.Audit.Record(ctx, "", domain.AuditActionVerify, domain.AuditOutcomeInvalid, domain.ReasonNoMatchingSigner)
	return domain.VerifyResult{
		Status:    domain.VerifyStatusInvalid,
		Algorithm: domain.SignatureAlgorithm,
		Reason:    domain.ReasonNoMatchingSigner,
	}, nil
}
