package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"signet/internal/domain"
	"signet/internal/usecase"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Get(ctx context.Context, id string) (domain.SignedMessage, bool, error) {
	if r.db == nil {
		return domain.SignedMessage{}, false, errDBUnavailable
	}
	if !validID(id) {
		return domain.SignedMessage{}, false, nil
	}
	var model SignedMessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return domain.SignedMessage{}, false, nil
		}
		return domain.SignedMessage{}, false, storeError("get message", err)
	}
	return domain.SignedMessage{
		ID:          model.ID,
		SignatoryID: model.SignatoryID,
		Content:     model.Content,
		Signature:   model.Signature,
		Timestamp:   model.Timestamp.UTC(),
	}, true, nil
}

func (r *MessageRepository) Create(ctx context.Context, msg domain.SignedMessage) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if !validID(msg.ID) || !validID(msg.SignatoryID) {
		return fmt.Errorf("%w: message and signatory ids must be uuids", domain.ErrInvalidInput)
	}
	model := SignedMessageModel{
		ID:          msg.ID,
		SignatoryID: msg.SignatoryID,
		Content:     msg.Content,
		Signature:   msg.Signature,
		Timestamp:   msg.Timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: message %s already exists", domain.ErrInvalidInput, msg.ID)
		}
		return storeError("create message", err)
	}
	return nil
}

var _ usecase.MessageRepository = (*MessageRepository)(nil)
