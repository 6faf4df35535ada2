package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signet/internal/domain"
)

// SignMessage signs content for a principal and stores the result as an
// immutable SignedMessage.
type SignMessage struct {
	Signer   *SignText
	Messages MessageRepository
	Audit    *AuditBridge
	Clock    Clock
	NewID    IDGenerator
}

func (uc *SignMessage) Execute(ctx context.Context, principalID string, content string) (domain.SignedMessage, error) {
	if uc.Signer == nil || uc.Messages == nil {
		return domain.SignedMessage{}, errors.New("sign message: dependencies not configured")
	}
	if principalID == "" || content == "" {
		return domain.SignedMessage{}, fmt.Errorf("%w: principal_id and content are required", domain.ErrInvalidInput)
	}

	res, err := uc.Signer.sign(ctx, principalID, content)
	if err != nil {
		return domain.SignedMessage{}, err
	}

	msg := domain.SignedMessage{
		ID:          uc.newID(),
		SignatoryID: res.Principal.ID,
		Content:     content,
		Signature:   res.Signature,
		Timestamp:   uc.now().UTC(),
	}
	if err := uc.Messages.Create(ctx, msg); err != nil {
		uc.Audit.Record(ctx, res.Principal.ID, domain.AuditActionMessageCreate, domain.AuditOutcomeFailure, "message create failed")
		return domain.SignedMessage{}, err
	}
	uc.Audit.Record(ctx, res.Principal.ID, domain.AuditActionMessageCreate, domain.AuditOutcomeSuccess, "message "+msg.ID+" created and signed")
	return msg, nil
}

func (uc *SignMessage) newID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return uuid.NewString()
}

func (uc *SignMessage) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock()
	}
	return time.Now()
}

type GetMessage struct {
	Messages MessageRepository
}

func (uc *GetMessage) Execute(ctx context.Context, messageID string) (domain.SignedMessage, error) {
	if uc.Messages == nil {
		return domain.SignedMessage{}, errors.New("get message: dependencies not configured")
	}
	msg, found, err := uc.Messages.Get(ctx, messageID)
	if err != nil {
		return domain.SignedMessage{}, err
	}
	if !found {
		return domain.SignedMessage{}, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, messageID)
	}
	return msg, nil
}
