package domain

import "time"

type VerifyStatus string

const (
	VerifyStatusValid   VerifyStatus = "VALID"
	VerifyStatusInvalid VerifyStatus = "INVALID"
)

// SignatureAlgorithm names the only scheme in use: SHA-256 digest,
// RSASSA-PKCS1-v1_5 signature, RSA-2048 keys.
const SignatureAlgorithm = "RSASSA-PKCS1-v1_5-SHA256"

const (
	ReasonNoMatchingSigner       = "no matching signer"
	ReasonInsufficientParameters = "insufficient parameters"
	ReasonSignatureMismatch      = "signature does not match content"
	ReasonMessageNotFound        = "message not found"
	ReasonMalformedSignature     = "malformed signature"
)

type VerifyResult struct {
	Status         VerifyStatus
	SignatoryID    string
	SignatoryEmail string
	MessageID      string
	Timestamp      *time.Time
	Algorithm      string
	Reason         string
}

func (r VerifyResult) Valid() bool {
	return r.Status == VerifyStatusValid
}
