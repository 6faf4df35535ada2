package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signet/internal/domain"
	"signet/internal/usecase"
)

const auditChainName = "global"

type AuditEntryRepository struct {
	db *gorm.DB
}

func NewAuditEntryRepository(db *gorm.DB) *AuditEntryRepository {
	return &AuditEntryRepository{db: db}
}

// Append links entry to the tail of the chain inside one transaction. The
// audit_seq row is locked so concurrent writers serialize on it.
func (r *AuditEntryRepository) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if r.db == nil {
		return domain.AuditEntry{}, errDBUnavailable
	}
	if entry.Action == "" || entry.Outcome == "" {
		return domain.AuditEntry{}, errors.New("audit entry missing action or outcome")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Microsecond)

	var out domain.AuditEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, prevHash, err := nextAuditSeq(ctx, tx)
		if err != nil {
			return err
		}
		entry.Seq = seq
		entry.PrevHash = prevHash
		entry.Hash = domain.AuditEntryHash(entry)

		model := auditEntryModelFromDomain(entry)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return domain.AuditEntry{}, storeError("append audit entry", err)
	}
	return out, nil
}

func (r *AuditEntryRepository) List(ctx context.Context) ([]domain.AuditEntry, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AuditEntryModel
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, storeError("list audit entries", err)
	}
	out := make([]domain.AuditEntry, 0, len(models))
	for _, model := range models {
		out = append(out, auditEntryFromModel(model))
	}
	return out, nil
}

func auditEntryModelFromDomain(entry domain.AuditEntry) AuditEntryModel {
	var principalID *string
	if entry.PrincipalID != nil {
		principalID = stringPtrIfNotEmpty(*entry.PrincipalID)
	}
	return AuditEntryModel{
		ID:          entry.ID,
		Seq:         entry.Seq,
		PrincipalID: principalID,
		Action:      string(entry.Action),
		Detail:      entry.Detail,
		Outcome:     string(entry.Outcome),
		PrevHash:    entry.PrevHash,
		Hash:        entry.Hash,
		CreatedAt:   entry.Timestamp.UTC(),
	}
}

func auditEntryFromModel(model AuditEntryModel) domain.AuditEntry {
	return domain.AuditEntry{
		ID:          model.ID,
		PrincipalID: model.PrincipalID,
		Action:      domain.AuditAction(model.Action),
		Detail:      model.Detail,
		Outcome:     domain.AuditOutcome(model.Outcome),
		Timestamp:   model.CreatedAt.UTC(),
		Seq:         model.Seq,
		PrevHash:    model.PrevHash,
		Hash:        model.Hash,
	}
}

func nextAuditSeq(ctx context.Context, tx *gorm.DB) (int64, string, error) {
	if err := tx.WithContext(ctx).Exec(
		"INSERT INTO audit_seq (chain, seq) VALUES (?, 0) ON CONFLICT (chain) DO NOTHING",
		auditChainName,
	).Error; err != nil {
		return 0, "", err
	}

	var currentSeq int64
	if err := tx.WithContext(ctx).Raw(
		"SELECT seq FROM audit_seq WHERE chain = ? FOR UPDATE",
		auditChainName,
	).Scan(&currentSeq).Error; err != nil {
		return 0, "", err
	}
	nextSeq := currentSeq + 1
	if err := tx.WithContext(ctx).Exec(
		"UPDATE audit_seq SET seq = ? WHERE chain = ?",
		nextSeq,
		auditChainName,
	).Error; err != nil {
		return 0, "", err
	}

	prevHash := domain.ZeroAuditHash
	if currentSeq > 0 {
		var prev AuditEntryModel
		if err := tx.WithContext(ctx).
			Where("seq = ?", currentSeq).
			Take(&prev).Error; err != nil {
			return 0, "", err
		}
		prevHash = prev.Hash
	}
	if prevHash == "" {
		return 0, "", fmt.Errorf("missing previous audit hash at seq %d", currentSeq)
	}
	return nextSeq, prevHash, nil
}

var (
	_ usecase.AuditSink      = (*AuditEntryRepository)(nil)
	_ usecase.AuditLogReader = (*AuditEntryRepository)(nil)
)
