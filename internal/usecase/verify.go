package usecase

import (
	"context"
	"errors"

	"signet/internal/domain"
)

// VerifyRequest selects the verification mode: a record id, or text with a
// detached signature. Empty fields count as absent.
type VerifyRequest struct {
	MessageID string
	Text      string
	Signature string
}

type Verifier struct {
	ByRecord    *VerifyByRecord
	BySignature *VerifyBySignature
	Audit       *AuditBridge
}

func (v *Verifier) Verify(ctx context.Context, req VerifyRequest) (domain.VerifyResult, error) {
	switch {
	case req.MessageID != "":
		if v.ByRecord == nil {
			return domain.VerifyResult{}, errors.New("verify: record mode not configured")
		}
		return v.ByRecord.Execute(ctx, req.MessageID)
	case req.Text != "" && req.Signature != "":
		if v.BySignature == nil {
			return domain.VerifyResult{}, errors.New("verify: signature mode not configured")
		}
		return v.BySignature.Execute(ctx, req.Text, req.Signature)
	default:
		v.Audit.Record(ctx, "", domain.AuditActionVerify, domain.AuditOutcomeInvalid, domain.ReasonInsufficientParameters)
		return domain.VerifyResult{
			Status: domain.VerifyStatusInvalid,
			Reason: domain.ReasonInsufficientParameters,
		}, nil
	}
}
