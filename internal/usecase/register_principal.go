package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"signet/internal/domain"
)

type RegisterPrincipalRequest struct {
	Email string
	Name  string
}

type RegisterPrincipal struct {
	Principals PrincipalRepository
	Keys       KeyProvisioner
	Audit      *AuditBridge
	Clock      Clock
	NewID      IDGenerator
}

// Execute provisions a key pair and creates the principal with both keys in
// one store write. Nothing is written when key generation fails.
func (uc *RegisterPrincipal) Execute(ctx context.Context, req RegisterPrincipalRequest) (domain.Principal, error) {
	if uc.Principals == nil || uc.Keys == nil {
		return domain.Principal{}, errors.New("register principal: dependencies not configured")
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return domain.Principal{}, err
	}

	pair, err := uc.Keys.GenerateKeyPair()
	if err != nil {
		uc.Audit.Record(ctx, "", domain.AuditActionRegister, domain.AuditOutcomeFailure, "key generation failed")
		if !errors.Is(err, domain.ErrKeyGeneration) {
			err = fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
		}
		return domain.Principal{}, err
	}
	if pair.PublicKeyPEM == "" || pair.PrivateKeyPEM == "" {
		uc.Audit.Record(ctx, "", domain.AuditActionRegister, domain.AuditOutcomeFailure, "key generation returned a partial pair")
		return domain.Principal{}, fmt.Errorf("%w: partial key pair", domain.ErrKeyGeneration)
	}

	principal := domain.Principal{
		ID:            uc.newID(),
		Email:         email,
		Name:          strings.TrimSpace(req.Name),
		PublicKeyPEM:  pair.PublicKeyPEM,
		PrivateKeyPEM: pair.PrivateKeyPEM,
		CreatedAt:     uc.now().UTC(),
	}
	if err := uc.Principals.Create(ctx, principal); err != nil {
		uc.Audit.Record(ctx, "", domain.AuditActionRegister, domain.AuditOutcomeFailure, "principal create failed")
		return domain.Principal{}, err
	}
	uc.Audit.Record(ctx, principal.ID, domain.AuditActionRegister, domain.AuditOutcomeSuccess, "principal registered")
	return principal, nil
}

func (uc *RegisterPrincipal) newID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return uuid.NewString()
}

func (uc *RegisterPrincipal) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock()
	}
	return time.Now()
}

// NormalizeEmail trims and lower-cases an address. It only checks the shape
// needed for a lookup key; deliverability is not its concern.
func NormalizeEmail(email string) (string, error) {
	// A Caser holds state, so each call gets its own.
	normalized := cases.Lower(language.Und).String(strings.TrimSpace(email))
	if normalized == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidEmail)
	}
	at := strings.Index(normalized, "@")
	if at <= 0 || at == len(normalized)-1 || strings.Count(normalized, "@") != 1 {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEmail, normalized)
	}
	if strings.ContainsAny(normalized, " \t\r\n") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEmail, normalized)
	}
	return normalized, nil
}
