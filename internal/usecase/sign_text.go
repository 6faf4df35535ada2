package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"signet/internal/domain"
	"signet/pkg/codec"
)

// SignText produces a detached signature over text with a principal's
// private key.
type SignText struct {
	Principals PrincipalRepository
	Crypto     CryptoService
	Audit      *AuditBridge
	// Index is optional; when set, each produced signature is recorded so that
	// search verification can try its signer first.
	Index  SignatureIndex
	Logger zerolog.Logger
}

type SignTextResult struct {
	Principal domain.Principal
	Signature string
}

func (uc *SignText) Execute(ctx context.Context, principalID string, text string) (string, error) {
	res, err := uc.sign(ctx, principalID, text)
	if err != nil {
		return "", err
	}
	return res.Signature, nil
}

func (uc *SignText) sign(ctx context.Context, principalID string, text string) (SignTextResult, error) {
	if uc.Principals == nil || uc.Crypto == nil {
		return SignTextResult{}, errors.New("sign text: dependencies not configured")
	}
	principal, found, err := uc.Principals.Get(ctx, principalID)
	if err != nil {
		uc.Audit.Record(ctx, "", domain.AuditActionSign, domain.AuditOutcomeFailure, "principal "+principalID+" lookup failed")
		return SignTextResult{}, err
	}
	if !found {
		uc.Audit.Record(ctx, "", domain.AuditActionSign, domain.AuditOutcomeFailure, "principal "+principalID+" not found")
		return SignTextResult{}, fmt.Errorf("%w: %s", domain.ErrPrincipalNotFound, principalID)
	}
	if !principal.HasPrivateKey() {
		uc.Audit.Record(ctx, principal.ID, domain.AuditActionSign, domain.AuditOutcomeFailure, "private key missing")
		return SignTextResult{}, fmt.Errorf("%w: principal %s has no private key", domain.ErrMissingKey, principal.ID)
	}

	raw, err := uc.Crypto.Sign(principal.PrivateKeyPEM, []byte(text))
	if err != nil {
		uc.Audit.Record(ctx, principal.ID, domain.AuditActionSign, domain.AuditOutcomeFailure, "signing failed")
		return SignTextResult{}, err
	}
	uc.Audit.Record(ctx, principal.ID, domain.AuditActionSign, domain.AuditOutcomeSuccess, "text signed")
	uc.recordIndex(ctx, raw, principal.ID)

	return SignTextResult{Principal: principal, Signature: codec.EncodeSignature(raw)}, nil
}

func (uc *SignText) recordIndex(ctx context.Context, raw []byte, principalID string) {
	if uc.Index == nil {
		return
	}
	if err := uc.Index.Put(context.WithoutCancel(ctx), raw, principalID); err != nil {
		uc.Logger.Warn().Err(err).Str("principal_id", principalID).Msg("signature index update failed")
	}
}
