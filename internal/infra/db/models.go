package db

import "time"

type PrincipalModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"uniqueIndex;not null"`
	Name          string    `gorm:"not null"`
	PublicKeyPEM  string    `gorm:"column:public_key_pem;type:text;not null"`
	PrivateKeyPEM string    `gorm:"column:private_key_pem;type:text;not null"`
	CreatedAt     time.Time `gorm:"index;not null"`
}

func (PrincipalModel) TableName() string {
	return "principals"
}

type SignedMessageModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	SignatoryID string    `gorm:"type:uuid;index;not null"`
	Content     string    `gorm:"type:text;not null"`
	Signature   string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"not null"`
}

func (SignedMessageModel) TableName() string {
	return "signed_messages"
}

// AuditEntryModel keeps principal_id as free text: failed attempts may carry
// ids that never belonged to a principal.
type AuditEntryModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Seq         int64     `gorm:"uniqueIndex;not null"`
	PrincipalID *string   `gorm:"index"`
	Action      string    `gorm:"index;not null"`
	Detail      string    `gorm:"type:text"`
	Outcome     string    `gorm:"not null"`
	PrevHash    string    `gorm:"not null"`
	Hash        string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

type AuditSeqModel struct {
	Chain string `gorm:"primaryKey"`
	Seq   int64  `gorm:"not null"`
}

func (AuditSeqModel) TableName() string {
	return "audit_seq"
}
