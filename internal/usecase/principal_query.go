package usecase

import (
	"context"
	"errors"
	"fmt"

	"signet/internal/domain"
)

type GetPrincipal struct {
	Principals PrincipalRepository
}

// Execute returns the principal's public view; private key material never
// leaves this package through it.
func (uc *GetPrincipal) Execute(ctx context.Context, principalID string) (domain.Principal, error) {
	if uc.Principals == nil {
		return domain.Principal{}, errors.New("get principal: dependencies not configured")
	}
	p, found, err := uc.Principals.Get(ctx, principalID)
	if err != nil {
		return domain.Principal{}, err
	}
	if !found {
		return domain.Principal{}, fmt.Errorf("%w: %s", domain.ErrPrincipalNotFound, principalID)
	}
	return p.PublicView(), nil
}
