package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"signet/internal/domain"
	"signet/internal/usecase"
)

type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Get(ctx context.Context, id string) (domain.Principal, bool, error) {
	if r.db == nil {
		return domain.Principal{}, false, errDBUnavailable
	}
	if !validID(id) {
		return domain.Principal{}, false, nil
	}
	var model PrincipalModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return domain.Principal{}, false, nil
		}
		return domain.Principal{}, false, storeError("get principal", err)
	}
	return principalFromModel(model), true, nil
}

func (r *PrincipalRepository) Create(ctx context.Context, principal domain.Principal) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if !validID(principal.ID) {
		return fmt.Errorf("%w: principal id must be a uuid", domain.ErrInvalidInput)
	}
	model := principalModelFromDomain(principal)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email already registered", domain.ErrPrincipalExists)
		}
		return storeError("create principal", err)
	}
	return nil
}

// ListAll returns principals in registration order, ties broken by id so the
// search order is stable across calls.
func (r *PrincipalRepository) ListAll(ctx context.Context) ([]domain.Principal, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []PrincipalModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, storeError("list principals", err)
	}
	out := make([]domain.Principal, 0, len(models))
	for _, model := range models {
		out = append(out, principalFromModel(model))
	}
	return out, nil
}

func principalModelFromDomain(p domain.Principal) PrincipalModel {
	return PrincipalModel{
		ID:            p.ID,
		Email:         p.Email,
		Name:          p.Name,
		PublicKeyPEM:  p.PublicKeyPEM,
		PrivateKeyPEM: p.PrivateKeyPEM,
		CreatedAt:     p.CreatedAt.UTC(),
	}
}

func principalFromModel(model PrincipalModel) domain.Principal {
	return domain.Principal{
		ID:            model.ID,
		Email:         model.Email,
		Name:          model.Name,
		PublicKeyPEM:  model.PublicKeyPEM,
		PrivateKeyPEM: model.PrivateKeyPEM,
		CreatedAt:     model.CreatedAt.UTC(),
	}
}

var _ usecase.PrincipalRepository = (*PrincipalRepository)(nil)
